package medra

// Reductions over counter buffers. These run on the host against the
// device-visible view and are meant for sanity checks after readback,
// not for hot paths.

// SumUint32 returns the sum of the buffer's uint32 elements.
func (b *Buffer) SumUint32() uint64 {
	var sum uint64
	for _, v := range b.Uint32() {
		sum += uint64(v)
	}
	return sum
}

// MaxUint32 returns the largest uint32 element, or 0 for an empty
// buffer.
func (b *Buffer) MaxUint32() uint32 {
	var max uint32
	for _, v := range b.Uint32() {
		if v > max {
			max = v
		}
	}
	return max
}
