package search

import (
	"os"
	"strings"
)

const (
	// baseLane is the lane width of a plain 128-bit vector unit.
	baseLane = 16
	// laneFactor widens the hardware lane so one pass covers a few registers.
	laneFactor = 2
	// maxLane caps the widened lane width.
	maxLane = 128

	// archMaxNeedle is the longest needle the 128-bit arch matcher handles itself.
	archMaxNeedle = 16

	// EnvISA forces the portable baseline when set to "generic".
	EnvISA = "NEEDLE_SIMD"
)

// Package-level state, set once by the platform init.
var (
	isa        = "generic"
	hwLane     = baseLane
	hasArch    bool
	overridden bool
	laneWidth  int
)

// initCapabilities is called from the platform specific init functions after
// the CPU features were probed.
func initCapabilities() {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvISA))); v == "generic" {
		overridden = true
		isa = "generic"
		hwLane = baseLane
		hasArch = false
	}

	laneWidth = hwLane * laneFactor
	if laneWidth > maxLane {
		laneWidth = maxLane
	}
}

// LaneWidth returns the number of bytes the portable vectorized matcher
// inspects per lane.
func LaneWidth() int {
	return laneWidth
}

// HasArch reports whether the architecture specific 128-bit matcher runs
// natively. If not, VectorizedArch delegates to Vectorized.
func HasArch() bool {
	return hasArch
}

// ISA returns the name of the instruction set the lane width was derived from.
func ISA() string {
	return isa
}

// IsOverridden reports whether NEEDLE_SIMD forced the portable baseline.
func IsOverridden() bool {
	return overridden
}
