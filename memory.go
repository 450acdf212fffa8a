package medra

import (
	"fmt"
	"sync"
	"unsafe"
)

// memoryPool manages device-side allocations with free-list reuse.
// Blocks are rounded up to cache-line multiples so repeated
// allocate/release cycles of similarly sized buffers recycle storage
// instead of growing the heap.
type memoryPool struct {
	mu         sync.Mutex
	freeList   []*block
	totalAlloc int64
	peakAlloc  int64
}

type block struct {
	data []byte
	size int // requested size; len(data) is the rounded capacity
}

func newMemoryPool() *memoryPool {
	return &memoryPool{}
}

// allocate returns a zeroed block of at least size bytes.
func (mp *memoryPool) allocate(size int) (*block, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	alignedSize := (size + CacheLineSize - 1) &^ (CacheLineSize - 1)

	mp.mu.Lock()
	defer mp.mu.Unlock()

	// Reuse from the free list when a block is large enough.
	for i, blk := range mp.freeList {
		if len(blk.data) >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			blk.size = size
			clear(blk.data)
			mp.totalAlloc += int64(len(blk.data))
			if mp.totalAlloc > mp.peakAlloc {
				mp.peakAlloc = mp.totalAlloc
			}
			return blk, nil
		}
	}

	blk := &block{
		data: make([]byte, alignedSize),
		size: size,
	}
	mp.totalAlloc += int64(alignedSize)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
	return blk, nil
}

// release returns a block to the free list.
func (mp *memoryPool) release(blk *block) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.freeList = append(mp.freeList, blk)
	mp.totalAlloc -= int64(len(blk.data))
}

// stats returns current and peak pool usage in bytes.
func (mp *memoryPool) stats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// Buffer is a linear device memory region, used for kernel outputs
// such as counter arrays.
type Buffer struct {
	dev *Device
	blk *block
	mu  sync.Mutex
}

// CreateBuffer allocates a linear device buffer of the given size in
// bytes, zero-initialized.
func (d *Device) CreateBuffer(size int) (*Buffer, error) {
	if err := d.checkAlive(); err != nil {
		return nil, err
	}
	blk, err := d.pool.allocate(size)
	if err != nil {
		return nil, err
	}
	b := &Buffer{dev: d, blk: blk}
	d.mu.Lock()
	d.buffers[b] = struct{}{}
	d.mu.Unlock()
	return b, nil
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blk == nil {
		return 0
	}
	return b.blk.size
}

// Write copies host memory into the buffer. The source must cover the
// whole buffer.
func (b *Buffer) Write(src []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blk == nil {
		return NewError(StatusInvalidArg, "Buffer.Write", "buffer storage was released", nil)
	}
	if len(src) < b.blk.size {
		return NewError(StatusInvalidArg, "Buffer.Write",
			fmt.Sprintf("source holds %d bytes, buffer needs %d", len(src), b.blk.size), nil)
	}
	copy(b.blk.data[:b.blk.size], src)
	return nil
}

// Read copies the buffer contents back to host memory. When a
// dependent event is supplied, Read blocks until that submission has
// completed, so an in-flight kernel's output is never observed early.
func (b *Buffer) Read(dst []byte, dep *Event) error {
	if dep != nil {
		if err := dep.Wait(Indefinite); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blk == nil {
		return NewError(StatusInvalidArg, "Buffer.Read", "buffer storage was released", nil)
	}
	if len(dst) < b.blk.size {
		return NewError(StatusInvalidArg, "Buffer.Read",
			fmt.Sprintf("destination holds %d bytes, buffer holds %d", len(dst), b.blk.size), nil)
	}
	copy(dst, b.blk.data[:b.blk.size])
	return nil
}

// Uint32 returns a uint32 view of the buffer for kernel access. The
// view aliases device memory; elements may be updated with atomic
// operations from concurrent thread groups.
func (b *Buffer) Uint32() []uint32 {
	if b.blk == nil {
		return nil
	}
	n := b.blk.size / 4
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b.blk.data[0])), n)
}

// Bytes returns a byte view of the buffer for kernel access.
func (b *Buffer) Bytes() []byte {
	if b.blk == nil {
		return nil
	}
	return b.blk.data[:b.blk.size]
}

// DestroyBuffer releases a buffer ahead of device destroy, returning
// its storage to the pool for reuse.
func (d *Device) DestroyBuffer(b *Buffer) error {
	if err := d.checkAlive(); err != nil {
		return err
	}
	d.mu.Lock()
	if _, ok := d.buffers[b]; !ok {
		d.mu.Unlock()
		return ErrDoubleDestroy
	}
	delete(d.buffers, b)
	d.mu.Unlock()
	b.release()
	return nil
}

// release returns the buffer's storage to the pool.
func (b *Buffer) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blk != nil {
		b.dev.pool.release(b.blk)
		b.blk = nil
	}
}

// Surface2D is a two-dimensional device memory region holding one byte
// per pixel, row-major.
type Surface2D struct {
	dev    *Device
	width  int
	height int
	blk    *block
	mu     sync.Mutex
}

// CreateSurface2D allocates a width×height byte surface.
func (d *Device) CreateSurface2D(width, height int) (*Surface2D, error) {
	if err := d.checkAlive(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, NewError(StatusInvalidArg, "CreateSurface2D",
			fmt.Sprintf("invalid surface extent %dx%d", width, height), nil)
	}
	blk, err := d.pool.allocate(width * height)
	if err != nil {
		return nil, err
	}
	s := &Surface2D{dev: d, width: width, height: height, blk: blk}
	d.mu.Lock()
	d.surfaces[s] = struct{}{}
	d.mu.Unlock()
	return s, nil
}

// Dim returns the surface extent in pixels.
func (s *Surface2D) Dim() (width, height int) {
	return s.width, s.height
}

// Write copies host memory onto the surface. The source must cover the
// whole surface.
func (s *Surface2D) Write(src []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blk == nil {
		return NewError(StatusInvalidArg, "Surface2D.Write", "surface storage was released", nil)
	}
	size := s.width * s.height
	if len(src) < size {
		return NewError(StatusInvalidArg, "Surface2D.Write",
			fmt.Sprintf("source holds %d bytes, surface needs %d", len(src), size), nil)
	}
	copy(s.blk.data[:size], src)
	return nil
}

// Read copies the surface contents back to host memory, first waiting
// on the dependent event when one is supplied.
func (s *Surface2D) Read(dst []byte, dep *Event) error {
	if dep != nil {
		if err := dep.Wait(Indefinite); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blk == nil {
		return NewError(StatusInvalidArg, "Surface2D.Read", "surface storage was released", nil)
	}
	size := s.width * s.height
	if len(dst) < size {
		return NewError(StatusInvalidArg, "Surface2D.Read",
			fmt.Sprintf("destination holds %d bytes, surface holds %d", len(dst), size), nil)
	}
	copy(dst, s.blk.data[:size])
	return nil
}

// Bytes returns the device-visible byte view of the surface for kernel
// access, row-major with no padding.
func (s *Surface2D) Bytes() []byte {
	if s.blk == nil {
		return nil
	}
	return s.blk.data[:s.width*s.height]
}

// DestroySurface releases a surface ahead of device destroy.
func (d *Device) DestroySurface(s *Surface2D) error {
	if err := d.checkAlive(); err != nil {
		return err
	}
	d.mu.Lock()
	if _, ok := d.surfaces[s]; !ok {
		d.mu.Unlock()
		return ErrDoubleDestroy
	}
	delete(d.surfaces, s)
	d.mu.Unlock()
	s.release()
	return nil
}

// release returns the surface's storage to the pool.
func (s *Surface2D) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blk != nil {
		s.dev.pool.release(s.blk)
		s.blk = nil
	}
}
