//go:build arm64

package search

import "golang.org/x/sys/cpu"

func init() {
	if cpu.ARM64.HasASIMD {
		isa, hwLane = "neon", 16
		hasArch = true
	}
	initCapabilities()
}
