package medra

import (
	"runtime"
	"sync"
)

// Device is a handle to the compute device. All programs, kernels,
// memory objects, geometries, tasks, and queues are created through a
// Device and owned by it: anything not explicitly destroyed is
// reclaimed when the Device itself is destroyed.
type Device struct {
	Name       string // Human-readable device name
	NumCores   int    // Number of execution cores
	MaxThreads int    // Maximum concurrent threads

	mu        sync.Mutex
	destroyed bool
	features  CPUFeatures
	pool      *memoryPool
	programs  map[*Program]struct{}
	buffers   map[*Buffer]struct{}
	surfaces  map[*Surface2D]struct{}
	spaces    map[*ThreadGroupSpace]struct{}
	tasks     map[*Task]struct{}
	queues    map[*Queue]struct{}
}

// Dim2 is a two-dimensional extent or index within a thread-group
// space. Media thread spaces are two-dimensional; there is no Z axis.
type Dim2 struct {
	X, Y int
}

// Size returns the total number of elements.
func (d Dim2) Size() int {
	return d.X * d.Y
}

// ThreadID identifies one thread's position within the dispatch: the
// group it belongs to, its local index within the group, and the
// dimensions of both the group and the whole space.
type ThreadID struct {
	GroupIdx Dim2 // Group index within the thread space
	LocalIdx Dim2 // Thread index within the group
	GroupDim Dim2 // Threads per group
	SpaceDim Dim2 // Groups in the thread space
}

// GlobalX returns the global X index of the thread.
func (tid ThreadID) GlobalX() int {
	return tid.GroupIdx.X*tid.GroupDim.X + tid.LocalIdx.X
}

// GlobalY returns the global Y index of the thread.
func (tid ThreadID) GlobalY() int {
	return tid.GroupIdx.Y*tid.GroupDim.Y + tid.LocalIdx.Y
}

// KernelFunc is the body of a compute kernel. It is invoked once per
// thread of the dispatch and must be safe for concurrent calls from
// multiple goroutines. Arguments arrive in SetArg order.
type KernelFunc func(tid ThreadID, args ...any)

// OpenDevice creates a device handle. The handle probes the host CPU
// for its identity and feature set and owns all resources subsequently
// created through it.
func OpenDevice() (*Device, error) {
	d := &Device{
		Name:       deviceName(),
		NumCores:   runtime.NumCPU(),
		MaxThreads: runtime.NumCPU() * 2,
		features:   detectCPUFeatures(),
		pool:       newMemoryPool(),
		programs:   make(map[*Program]struct{}),
		buffers:    make(map[*Buffer]struct{}),
		surfaces:   make(map[*Surface2D]struct{}),
		spaces:     make(map[*ThreadGroupSpace]struct{}),
		tasks:      make(map[*Task]struct{}),
		queues:     make(map[*Queue]struct{}),
	}
	return d, nil
}

// Features reports the instruction-set extensions the device detected.
func (d *Device) Features() CPUFeatures {
	return d.features
}

// Destroy releases the device and every resource created through it
// that was not explicitly destroyed. Queues are drained before their
// workers stop. The handle is unusable afterwards.
func (d *Device) Destroy() error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return ErrDoubleDestroy
	}
	d.destroyed = true
	queues := make([]*Queue, 0, len(d.queues))
	for q := range d.queues {
		queues = append(queues, q)
	}
	buffers := make([]*Buffer, 0, len(d.buffers))
	for b := range d.buffers {
		buffers = append(buffers, b)
	}
	surfaces := make([]*Surface2D, 0, len(d.surfaces))
	for s := range d.surfaces {
		surfaces = append(surfaces, s)
	}
	d.programs = nil
	d.spaces = nil
	d.tasks = nil
	d.mu.Unlock()

	// Drain in-flight submissions before tearing memory down.
	for _, q := range queues {
		q.close()
	}
	for _, b := range buffers {
		b.release()
	}
	for _, s := range surfaces {
		s.release()
	}
	return nil
}

// checkAlive reports ErrDeviceDestroyed when the handle is dead.
// Callers hold no lock; the flag only ever flips false to true.
func (d *Device) checkAlive() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDeviceDestroyed
	}
	return nil
}
