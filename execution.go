package medra

import (
	"sync"
)

// dispatchGroups runs one kernel over a thread-group space. Groups are
// the unit of parallel work: each worker goroutine takes a contiguous
// range of groups and runs the threads of each group sequentially,
// which keeps a group's tile resident in that core's cache.
func dispatchGroups(fn KernelFunc, ts ThreadGroupSpace, args []any, numWorkers int) {
	numGroups := ts.space.Size()
	if numGroups == 0 {
		return
	}
	if numWorkers > numGroups {
		numWorkers = numGroups
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	groupsPerWorker := (numGroups + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for worker := 0; worker < numWorkers; worker++ {
		start := worker * groupsPerWorker
		end := start + groupsPerWorker
		if end > numGroups {
			end = numGroups
		}
		go func(start, end int) {
			defer wg.Done()
			for group := start; group < end; group++ {
				runGroup(fn, ts, linearTo2D(group, ts.space), args)
			}
		}(start, end)
	}
	wg.Wait()
}

// runGroup executes every thread of one group in row-major order.
func runGroup(fn KernelFunc, ts ThreadGroupSpace, groupIdx Dim2, args []any) {
	for ty := 0; ty < ts.group.Y; ty++ {
		for tx := 0; tx < ts.group.X; tx++ {
			fn(ThreadID{
				GroupIdx: groupIdx,
				LocalIdx: Dim2{X: tx, Y: ty},
				GroupDim: ts.group,
				SpaceDim: ts.space,
			}, args...)
		}
	}
}

// linearTo2D converts a linear group index to 2D coordinates.
func linearTo2D(linear int, dim Dim2) Dim2 {
	return Dim2{
		X: linear % dim.X,
		Y: linear / dim.X,
	}
}
