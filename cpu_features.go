package medra

import (
	"strings"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks the instruction set extensions available to the
// device's execution cores.
type CPUFeatures struct {
	HasSSE4    bool
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool
	HasFMA     bool
	HasNEON    bool
}

// detectCPUFeatures probes the host CPU.
func detectCPUFeatures() CPUFeatures {
	return CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
		HasNEON:    cpu.ARM64.HasASIMD,
	}
}

// String lists the detected extensions, or "scalar" when none apply.
func (f CPUFeatures) String() string {
	var features []string
	if f.HasSSE4 {
		features = append(features, "SSE4")
	}
	if f.HasAVX {
		features = append(features, "AVX")
	}
	if f.HasAVX2 {
		features = append(features, "AVX2")
	}
	if f.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if f.HasFMA {
		features = append(features, "FMA")
	}
	if f.HasNEON {
		features = append(features, "NEON")
	}
	if len(features) == 0 {
		return "scalar"
	}
	return strings.Join(features, " ")
}

// deviceName returns the CPU brand string, falling back to a generic
// name on platforms that do not expose one.
func deviceName() string {
	if name := strings.TrimSpace(cpuid.CPU.BrandName); name != "" {
		return name
	}
	return "CPU"
}
