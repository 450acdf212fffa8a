// Package histogram computes a 64-bin intensity histogram of packed
// 32-bit records, both as a plain reference loop on the host and as a
// tiled atomic kernel dispatched through the medra runtime.
//
// A record contributes four 6-bit fields, extracted at bit offsets
// 2, 10, 18 and 26. Each field is the top six bits of one byte of the
// record, so the device kernel bins raw surface bytes with b>>2 and
// arrives at the same counts as the record-wise reference.
package histogram

import (
	"sync/atomic"

	"github.com/medracompute/medra"
)

const (
	// NumBins is the number of histogram counters.
	NumBins = 64

	// BlockWidth and BlockHeight are the per-group tile extent in
	// bytes. One thread group scans one tile.
	BlockWidth  = 32
	BlockHeight = 512

	// KernelName is the name the device kernel is registered under.
	KernelName = "histogram_atomic"
)

// fieldShifts are the bit offsets of the four 6-bit fields in a record.
var fieldShifts = [4]uint{2, 10, 18, 26}

// Reference computes the histogram of records on the host. hist must
// be pre-zeroed by the caller; each record adds exactly four counts.
func Reference(records []uint32, hist *[NumBins]uint32) {
	for _, x := range records {
		for _, s := range fieldShifts {
			hist[(x>>s)&0x3F]++
		}
	}
}

// Equal reports whether two histograms match bin for bin.
func Equal(a, b *[NumBins]uint32) bool {
	for i := 0; i < NumBins; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Total returns the sum of all bins. A histogram of N records always
// totals 4×N.
func Total(hist *[NumBins]uint32) uint64 {
	var sum uint64
	for _, n := range hist {
		sum += uint64(n)
	}
	return sum
}

// Kernel is the device kernel. It expects the input surface as
// argument 0 and the output counter buffer as argument 1, and is
// dispatched with one thread per group over ceil(width/BlockWidth) ×
// ceil(height/BlockHeight) groups.
//
// Each group scans its tile, clamped at the surface bounds, into a
// group-local histogram and then publishes the local counts with
// atomic adds, so concurrent groups never lose increments.
func Kernel(tid medra.ThreadID, args ...any) {
	src := args[0].(*medra.Surface2D)
	out := args[1].(*medra.Buffer)

	width, height := src.Dim()
	x0 := tid.GroupIdx.X * BlockWidth
	y0 := tid.GroupIdx.Y * BlockHeight
	x1 := min(x0+BlockWidth, width)
	y1 := min(y0+BlockHeight, height)

	data := src.Bytes()
	var local [NumBins]uint32
	for y := y0; y < y1; y++ {
		row := data[y*width : y*width+width]
		for x := x0; x < x1; x++ {
			local[row[x]>>2]++
		}
	}

	bins := out.Uint32()
	for i, n := range local {
		if n != 0 {
			atomic.AddUint32(&bins[i], n)
		}
	}
}

// Program returns a program holding the histogram kernel.
func Program() *medra.Program {
	p := medra.NewProgram()
	p.Register(KernelName, Kernel)
	return p
}

// GroupCounts returns the thread-group space extent covering a
// width×height surface: tiles are BlockWidth×BlockHeight, with partial
// tiles at the right and bottom edges rounded up so sub-tile inputs
// still dispatch.
func GroupCounts(width, height int) (groupsX, groupsY int) {
	groupsX = (width + BlockWidth - 1) / BlockWidth
	groupsY = (height + BlockHeight - 1) / BlockHeight
	return groupsX, groupsY
}
