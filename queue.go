package medra

import (
	"fmt"
	"sync"
	"time"
)

// Indefinite is the wait-forever sentinel for Event.Wait.
const Indefinite time.Duration = -1

// ThreadGroupSpace is the thread-group geometry of a dispatch:
// threadW×threadH threads per group, groupW×groupH groups.
type ThreadGroupSpace struct {
	group Dim2
	space Dim2
}

// CreateThreadGroupSpace creates a dispatch geometry. All extents must
// be positive and a group may not exceed MaxThreadsPerGroup threads.
func (d *Device) CreateThreadGroupSpace(threadW, threadH, groupW, groupH int) (*ThreadGroupSpace, error) {
	if err := d.checkAlive(); err != nil {
		return nil, err
	}
	if threadW <= 0 || threadH <= 0 || groupW <= 0 || groupH <= 0 {
		return nil, NewError(StatusInvalidThreadSpace, "CreateThreadGroupSpace",
			fmt.Sprintf("degenerate geometry %dx%d threads, %dx%d groups", threadW, threadH, groupW, groupH), nil)
	}
	if threadW*threadH > MaxThreadsPerGroup {
		return nil, NewError(StatusInvalidThreadSpace, "CreateThreadGroupSpace",
			fmt.Sprintf("%d threads per group exceeds limit of %d", threadW*threadH, MaxThreadsPerGroup), nil)
	}
	ts := &ThreadGroupSpace{
		group: Dim2{X: threadW, Y: threadH},
		space: Dim2{X: groupW, Y: groupH},
	}
	d.mu.Lock()
	if d.spaces != nil {
		d.spaces[ts] = struct{}{}
	}
	d.mu.Unlock()
	return ts, nil
}

// DestroyThreadGroupSpace releases a geometry ahead of device destroy.
func (d *Device) DestroyThreadGroupSpace(ts *ThreadGroupSpace) error {
	if err := d.checkAlive(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.spaces[ts]; !ok {
		return ErrDoubleDestroy
	}
	delete(d.spaces, ts)
	return nil
}

// Task is a container of kernels submitted as one unit of work.
type Task struct {
	kernels []*Kernel
}

// CreateTask creates an empty task.
func (d *Device) CreateTask() (*Task, error) {
	if err := d.checkAlive(); err != nil {
		return nil, err
	}
	t := &Task{}
	d.mu.Lock()
	if d.tasks != nil {
		d.tasks[t] = struct{}{}
	}
	d.mu.Unlock()
	return t, nil
}

// DestroyTask releases a task ahead of device destroy.
func (d *Device) DestroyTask(t *Task) error {
	if err := d.checkAlive(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.tasks[t]; !ok {
		return ErrDoubleDestroy
	}
	delete(d.tasks, t)
	return nil
}

// AddKernel appends a kernel to the task.
func (t *Task) AddKernel(k *Kernel) error {
	if k == nil {
		return NewError(StatusInvalidKernel, "AddKernel", "nil kernel", nil)
	}
	t.kernels = append(t.kernels, k)
	return nil
}

// Event is the completion signal of one submission. The submission's
// start and end times become readable once the event is signaled.
type Event struct {
	done  chan struct{}
	start time.Time
	end   time.Time
}

// Wait blocks until the submission completes. Pass Indefinite to wait
// forever; a finite timeout returns StatusEventNotReady on expiry.
func (e *Event) Wait(timeout time.Duration) error {
	if timeout < 0 {
		<-e.done
		return nil
	}
	select {
	case <-e.done:
		return nil
	case <-time.After(timeout):
		return ErrEventNotReady
	}
}

// ExecutionTime reports how long the submission ran on the device.
// It fails with StatusEventNotReady until the event is signaled.
func (e *Event) ExecutionTime() (time.Duration, error) {
	select {
	case <-e.done:
		return e.end.Sub(e.start), nil
	default:
		return 0, ErrEventNotReady
	}
}

// signaled reports completion without blocking.
func (e *Event) signaled() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// submission is a task snapshot taken at enqueue time.
type submission struct {
	fn   KernelFunc
	args []any
}

// Queue is an in-order execution queue. Submissions execute strictly
// in enqueue order on a single dequeue goroutine; the thread groups of
// one submission still run in parallel across cores. Waiting on the
// last submission's event therefore implies all earlier submissions
// have completed.
type Queue struct {
	dev     *Device
	pending chan func()
	closed  chan struct{}
	once    sync.Once
}

// CreateQueue creates an in-order queue and starts its worker.
func (d *Device) CreateQueue() (*Queue, error) {
	if err := d.checkAlive(); err != nil {
		return nil, err
	}
	q := &Queue{
		dev:     d,
		pending: make(chan func(), QueueDepth),
		closed:  make(chan struct{}),
	}
	go q.worker()
	d.mu.Lock()
	d.queues[q] = struct{}{}
	d.mu.Unlock()
	return q, nil
}

// worker drains submissions in order.
func (q *Queue) worker() {
	for task := range q.pending {
		task()
	}
	close(q.closed)
}

// close stops the queue after draining in-flight submissions.
func (q *Queue) close() {
	q.once.Do(func() {
		close(q.pending)
	})
	<-q.closed
}

// EnqueueWithGroup submits a task over the given geometry. The call is
// non-blocking: it returns a completion event before execution begins.
// Kernel arguments are snapshotted here, so the caller may re-bind and
// re-enqueue the same kernel immediately.
func (q *Queue) EnqueueWithGroup(t *Task, ts *ThreadGroupSpace) (*Event, error) {
	if err := q.dev.checkAlive(); err != nil {
		return nil, err
	}
	if t == nil || len(t.kernels) == 0 {
		return nil, NewError(StatusQueueError, "EnqueueWithGroup", "task holds no kernels", nil)
	}
	if ts == nil {
		return nil, NewError(StatusInvalidThreadSpace, "EnqueueWithGroup", "nil thread-group space", nil)
	}

	subs := make([]submission, len(t.kernels))
	for i, k := range t.kernels {
		args := make([]any, len(k.args))
		copy(args, k.args)
		subs[i] = submission{fn: k.fn, args: args}
	}
	geo := *ts

	ev := &Event{done: make(chan struct{})}
	q.pending <- func() {
		ev.start = time.Now()
		for _, sub := range subs {
			dispatchGroups(sub.fn, geo, sub.args, q.dev.NumCores)
		}
		ev.end = time.Now()
		close(ev.done)
	}
	return ev, nil
}
