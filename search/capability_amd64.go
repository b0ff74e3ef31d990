//go:build amd64

package search

import "golang.org/x/sys/cpu"

func init() {
	switch {
	case cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW:
		isa, hwLane = "avx512", 64
	case cpu.X86.HasAVX2:
		isa, hwLane = "avx2", 32
	default:
		isa, hwLane = "sse2", 16
	}
	hasArch = cpu.X86.HasSSE2
	initCapabilities()
}
