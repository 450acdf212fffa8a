package medra

import (
	"bytes"
	"errors"
	"testing"
)

func openDeviceOrFail(t testing.TB) *Device {
	t.Helper()
	dev, err := OpenDevice()
	if err != nil {
		t.Fatalf("OpenDevice failed: %v", err)
	}
	t.Cleanup(func() { dev.Destroy() })
	return dev
}

func TestDeviceIdentity(t *testing.T) {
	dev := openDeviceOrFail(t)

	if dev.Name == "" {
		t.Error("device name is empty")
	}
	if dev.NumCores < 1 {
		t.Errorf("NumCores = %d, want at least 1", dev.NumCores)
	}
	// Feature string always renders, even on a scalar-only host.
	if dev.Features().String() == "" {
		t.Error("feature string is empty")
	}
}

func TestBufferRoundTrip(t *testing.T) {
	dev := openDeviceOrFail(t)

	sizes := []int{4, 256, 4096, 1 << 20}
	for _, size := range sizes {
		buf, err := dev.CreateBuffer(size)
		if err != nil {
			t.Fatalf("CreateBuffer(%d) failed: %v", size, err)
		}

		src := make([]byte, size)
		for i := range src {
			src[i] = byte(i * 7)
		}
		if err := buf.Write(src); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		dst := make([]byte, size)
		if err := buf.Read(dst, nil); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if !bytes.Equal(src, dst) {
			t.Errorf("size %d: readback differs from upload", size)
		}
	}
}

func TestBufferZeroInitialized(t *testing.T) {
	dev := openDeviceOrFail(t)

	buf, err := dev.CreateBuffer(1024)
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	for i, v := range buf.Uint32() {
		if v != 0 {
			t.Fatalf("fresh buffer has %d at element %d", v, i)
		}
	}
}

func TestBufferReuseIsZeroed(t *testing.T) {
	dev := openDeviceOrFail(t)

	buf, err := dev.CreateBuffer(512)
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	dirty := make([]byte, 512)
	for i := range dirty {
		dirty[i] = 0xAA
	}
	if err := buf.Write(dirty); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := dev.DestroyBuffer(buf); err != nil {
		t.Fatalf("DestroyBuffer failed: %v", err)
	}

	// The pool hands the released block back; it must come back clean.
	reused, err := dev.CreateBuffer(512)
	if err != nil {
		t.Fatalf("CreateBuffer after release failed: %v", err)
	}
	for i, b := range reused.Bytes() {
		if b != 0 {
			t.Fatalf("reused buffer has %#x at byte %d", b, i)
		}
	}
}

func TestCreateBufferRejectsBadSize(t *testing.T) {
	dev := openDeviceOrFail(t)

	for _, size := range []int{0, -4} {
		if _, err := dev.CreateBuffer(size); !IsInvalidArg(err) {
			t.Errorf("CreateBuffer(%d) = %v, want invalid argument", size, err)
		}
	}
}

func TestSurfaceRoundTrip(t *testing.T) {
	dev := openDeviceOrFail(t)

	const w, h = 64, 32
	surf, err := dev.CreateSurface2D(w, h)
	if err != nil {
		t.Fatalf("CreateSurface2D failed: %v", err)
	}
	if gw, gh := surf.Dim(); gw != w || gh != h {
		t.Fatalf("Dim() = %dx%d, want %dx%d", gw, gh, w, h)
	}

	src := make([]byte, w*h)
	for i := range src {
		src[i] = byte(i)
	}
	if err := surf.Write(src); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	dst := make([]byte, w*h)
	if err := surf.Read(dst, nil); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(src, dst) {
		t.Error("surface readback differs from upload")
	}
}

func TestSurfaceRejectsShortIO(t *testing.T) {
	dev := openDeviceOrFail(t)

	surf, err := dev.CreateSurface2D(16, 16)
	if err != nil {
		t.Fatalf("CreateSurface2D failed: %v", err)
	}
	if err := surf.Write(make([]byte, 8)); !IsInvalidArg(err) {
		t.Errorf("short Write = %v, want invalid argument", err)
	}
	if err := surf.Read(make([]byte, 8), nil); !IsInvalidArg(err) {
		t.Errorf("short Read = %v, want invalid argument", err)
	}
	if _, err := dev.CreateSurface2D(0, 16); !IsInvalidArg(err) {
		t.Errorf("zero-width surface = %v, want invalid argument", err)
	}
}

func TestDestroyedDeviceRejectsCreation(t *testing.T) {
	dev, err := OpenDevice()
	if err != nil {
		t.Fatalf("OpenDevice failed: %v", err)
	}
	if err := dev.Destroy(); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	if _, err := dev.CreateBuffer(64); StatusOf(err) != StatusDeviceDestroyed {
		t.Errorf("CreateBuffer after destroy = %v, want device destroyed", err)
	}
	if _, err := dev.CreateQueue(); StatusOf(err) != StatusDeviceDestroyed {
		t.Errorf("CreateQueue after destroy = %v, want device destroyed", err)
	}
	if err := dev.Destroy(); !errors.Is(err, ErrDoubleDestroy) {
		t.Errorf("second Destroy = %v, want %v", err, ErrDoubleDestroy)
	}
}

func TestExplicitResourceDestroy(t *testing.T) {
	dev := openDeviceOrFail(t)

	task, err := dev.CreateTask()
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := dev.DestroyTask(task); err != nil {
		t.Fatalf("DestroyTask failed: %v", err)
	}
	if err := dev.DestroyTask(task); !errors.Is(err, ErrDoubleDestroy) {
		t.Errorf("second DestroyTask = %v, want %v", err, ErrDoubleDestroy)
	}

	space, err := dev.CreateThreadGroupSpace(1, 1, 4, 4)
	if err != nil {
		t.Fatalf("CreateThreadGroupSpace failed: %v", err)
	}
	if err := dev.DestroyThreadGroupSpace(space); err != nil {
		t.Fatalf("DestroyThreadGroupSpace failed: %v", err)
	}
	if err := dev.DestroyThreadGroupSpace(space); !errors.Is(err, ErrDoubleDestroy) {
		t.Errorf("second DestroyThreadGroupSpace = %v, want %v", err, ErrDoubleDestroy)
	}
}

func TestThreadGroupSpaceValidation(t *testing.T) {
	dev := openDeviceOrFail(t)

	cases := []struct {
		name                             string
		threadW, threadH, groupW, groupH int
	}{
		{"zero thread width", 0, 1, 4, 4},
		{"zero group height", 1, 1, 4, 0},
		{"negative group width", 1, 1, -2, 4},
		{"oversized group", 64, 64, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dev.CreateThreadGroupSpace(tc.threadW, tc.threadH, tc.groupW, tc.groupH)
			if StatusOf(err) != StatusInvalidThreadSpace {
				t.Errorf("got %v, want invalid thread-group space", err)
			}
		})
	}
}

func TestBufferReductions(t *testing.T) {
	dev := openDeviceOrFail(t)

	buf, err := dev.CreateBuffer(16 * 4)
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	counters := buf.Uint32()
	for i := range counters {
		counters[i] = uint32(i + 1)
	}
	if got := buf.SumUint32(); got != 136 { // 1+2+...+16
		t.Errorf("SumUint32() = %d, want 136", got)
	}
	if got := buf.MaxUint32(); got != 16 {
		t.Errorf("MaxUint32() = %d, want 16", got)
	}
}
