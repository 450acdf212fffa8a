// Package medra provides a media-kernel runtime API executed on CPU.
// It models the device/program/kernel/surface/queue surface of a GPU
// media runtime so that samples written against that surface run on
// CPU-only infrastructure, with thread groups spread across cores.
//
// Example usage:
//
//	dev, _ := medra.OpenDevice()
//	defer dev.Destroy()
//
//	dev.LoadProgram(prog)
//	kernel, _ := dev.CreateKernel(prog, "histogram_atomic")
//
//	queue, _ := dev.CreateQueue()
//	task, _ := dev.CreateTask()
//	task.AddKernel(kernel)
//
//	space, _ := dev.CreateThreadGroupSpace(1, 1, groupsX, groupsY)
//	event, _ := queue.EnqueueWithGroup(task, space)
//	event.Wait(medra.Indefinite)
package medra
