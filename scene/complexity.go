package scene

import "github.com/gogpu/compositor"

// ComplexityCalculator estimates whether replaying a display list is
// expensive enough to justify caching its pixels.
type ComplexityCalculator interface {
	// Compute returns a complexity score for the display list.
	Compute(dl *compositor.DisplayList) int

	// ShouldBeCached reports whether a score clears the caching bar.
	ShouldBeCached(score int) bool
}

// naiveComplexityThreshold is the minimum op count worth caching.
// Below it, replaying the list is cheaper than a bitmap blit.
const naiveComplexityThreshold = 5

type naiveComplexityCalculator struct{}

// NaiveComplexityCalculator scores a display list by its operation
// count, including nested lists.
func NaiveComplexityCalculator() ComplexityCalculator {
	return naiveComplexityCalculator{}
}

// Compute implements ComplexityCalculator.
func (naiveComplexityCalculator) Compute(dl *compositor.DisplayList) int {
	if dl == nil {
		return 0
	}
	return dl.OpCount(true)
}

// ShouldBeCached implements ComplexityCalculator.
func (naiveComplexityCalculator) ShouldBeCached(score int) bool {
	return score > naiveComplexityThreshold
}
