// Command histogram runs the 64-bin histogram sample: it computes a
// reference histogram on the host, dispatches the tiled atomic kernel
// through the medra runtime, and verifies the two results match bin
// for bin.
//
// With no positional argument the input is generated from a fixed
// seed; otherwise the argument names a raw binary file of
// little-endian 32-bit records.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/medracompute/medra"
	"github.com/medracompute/medra/histogram"
)

// check aborts on any failed runtime or I/O call, printing the
// diagnostic. No failure here is recoverable in place.
func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	var (
		width   = flag.Int("width", 4096*4, "surface width in bytes (4 bytes per record)")
		height  = flag.Int("height", 4096, "surface height in rows")
		iters   = flag.Int("iters", 101, "kernel launches; the first is warm-up and excluded from timing")
		logPath = flag.String("log", "", "append run results to this JSON-lines file")
	)
	flag.Parse()

	var inputFile string
	if flag.NArg() >= 1 {
		inputFile = flag.Arg(0)
	} else {
		fmt.Fprintln(os.Stderr, "Usage: histogram [flags] input_file")
		fmt.Fprintln(os.Stderr, "No input file specified. Using seeded random input ...")
	}
	if *width <= 0 || *height <= 0 || *width%4 != 0 {
		check(fmt.Errorf("invalid input extent %dx%d: width must be a positive multiple of 4", *width, *height))
	}
	if *iters < 1 {
		check(fmt.Errorf("iteration count %d must be at least 1", *iters))
	}

	numRecords := *width * *height / 4
	fmt.Printf("Processing %dx%d inputs\n", *width/4, *height)

	var records []uint32
	if inputFile != "" {
		var err error
		records, err = histogram.Load(inputFile, numRecords)
		check(err)
	} else {
		records = histogram.Generate(histogram.DefaultSeed, numRecords)
	}

	// Host reference first; the accelerated run is verified against it.
	var cpuHist [histogram.NumBins]uint32
	histogram.Reference(records, &cpuHist)

	dev, err := medra.OpenDevice()
	check(err)
	deviceName := dev.Name

	prog := histogram.Program()
	check(dev.LoadProgram(prog))
	kernel, err := dev.CreateKernel(prog, histogram.KernelName)
	check(err)

	input, err := dev.CreateSurface2D(*width, *height)
	check(err)
	check(input.Write(histogram.Bytes(records)))

	// One output buffer per iteration so overlapped submissions never
	// reuse a counter array that an earlier launch is still writing.
	outputs := make([]*medra.Buffer, *iters)
	for i := range outputs {
		outputs[i], err = dev.CreateBuffer(4 * histogram.NumBins)
		check(err)
	}

	groupsX, groupsY := histogram.GroupCounts(*width, *height)
	space, err := dev.CreateThreadGroupSpace(1, 1, groupsX, groupsY)
	check(err)

	queue, err := dev.CreateQueue()
	check(err)
	task, err := dev.CreateTask()
	check(err)
	check(task.AddKernel(kernel))

	events := make([]*medra.Event, *iters)
	wallStart := time.Now()
	for i := 0; i < *iters; i++ {
		if i == 1 {
			wallStart = time.Now()
		}
		check(kernel.SetArg(0, input))
		check(kernel.SetArg(1, outputs[i]))
		events[i], err = queue.EnqueueWithGroup(task, space)
		check(err)
	}

	// The queue is in-order: the final event covers every submission.
	last := events[*iters-1]
	check(last.Wait(medra.Indefinite))
	wall := time.Since(wallStart)

	check(dev.DestroyTask(task))
	check(dev.DestroyThreadGroupSpace(space))

	raw := make([]byte, 4*histogram.NumBins)
	check(outputs[*iters-1].Read(raw, last))
	var devHist [histogram.NumBins]uint32
	for i := range devHist {
		devHist[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}

	var kernelTotal time.Duration
	for i := 1; i < *iters; i++ {
		d, err := events[i].ExecutionTime()
		check(err)
		kernelTotal += d
	}

	count := *iters - 1
	kernelMs := 0.0
	wallMs := 0.0
	if count > 0 {
		kernelMs = float64(kernelTotal.Microseconds()) / 1000.0 / float64(count)
		wallMs = float64(wall.Microseconds()) / 1000.0 / float64(count)
		fmt.Printf("Kernel %s execution time is %.6f msec\n", histogram.KernelName, kernelMs)
		fmt.Printf("Total time is %.6f msec\n", wallMs)
		fmt.Printf("Total Iteration count is %d\n", count)
	}

	check(dev.Destroy())

	passed := histogram.Equal(&cpuHist, &devHist)
	if *logPath != "" {
		check(medra.NewRunLogger(*logPath).Log(medra.RunResult{
			Kernel:     histogram.KernelName,
			Device:     deviceName,
			Iterations: count,
			KernelMs:   kernelMs,
			WallMs:     wallMs,
			Passed:     passed,
		}))
	}

	if passed {
		fmt.Println("PASSED")
		return
	}
	fmt.Println("FAILED")
	os.Exit(-1)
}
