// Package medra runtime limits and allocator constants
package medra

const (
	// CacheLineSize is the allocation alignment in bytes
	CacheLineSize = 64

	// MaxThreadsPerGroup bounds one thread group's size
	MaxThreadsPerGroup = 1024

	// MaxKernelArgs bounds positional kernel arguments
	MaxKernelArgs = 32

	// QueueDepth is the number of submissions a queue buffers before
	// enqueue blocks
	QueueDepth = 1024
)
