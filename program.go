package medra

import (
	"fmt"
)

// Program is a set of named kernels. It is the runtime's rendition of
// a precompiled kernel binary: kernel bodies are compiled into the
// host binary and looked up by the name they were registered under.
type Program struct {
	kernels map[string]KernelFunc
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{
		kernels: make(map[string]KernelFunc),
	}
}

// Register adds a kernel body under the given name, replacing any
// previous registration of that name.
func (p *Program) Register(name string, fn KernelFunc) {
	p.kernels[name] = fn
}

// LoadProgram makes a program's kernels available on the device.
// A nil or empty program is rejected with StatusInvalidProgram.
func (d *Device) LoadProgram(p *Program) error {
	if err := d.checkAlive(); err != nil {
		return err
	}
	if p == nil || len(p.kernels) == 0 {
		return NewError(StatusInvalidProgram, "LoadProgram", "program holds no kernels", nil)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDeviceDestroyed
	}
	d.programs[p] = struct{}{}
	return nil
}

// Kernel is one named kernel with its bound arguments. Arguments are
// snapshotted at enqueue time, so a kernel may be re-bound and
// re-enqueued without disturbing earlier submissions.
type Kernel struct {
	name string
	fn   KernelFunc
	args []any
}

// Name returns the name the kernel was registered under.
func (k *Kernel) Name() string {
	return k.name
}

// CreateKernel looks up a kernel by name in a loaded program.
func (d *Device) CreateKernel(p *Program, name string) (*Kernel, error) {
	if err := d.checkAlive(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	_, loaded := d.programs[p]
	d.mu.Unlock()
	if !loaded {
		return nil, NewError(StatusInvalidProgram, "CreateKernel", "program not loaded on this device", nil)
	}
	fn, ok := p.kernels[name]
	if !ok {
		return nil, NewError(StatusInvalidKernel, "CreateKernel",
			fmt.Sprintf("kernel %q not found in program", name), nil)
	}
	return &Kernel{
		name: name,
		fn:   fn,
		args: make([]any, 0, 4),
	}, nil
}

// SetArg binds a positional kernel argument. Indices must be in
// [0, MaxKernelArgs); gaps left unbound are passed as nil.
func (k *Kernel) SetArg(index int, value any) error {
	if index < 0 || index >= MaxKernelArgs {
		return NewError(StatusInvalidArg, "SetArg",
			fmt.Sprintf("argument index %d out of range", index), nil)
	}
	for len(k.args) <= index {
		k.args = append(k.args, nil)
	}
	k.args[index] = value
	return nil
}
