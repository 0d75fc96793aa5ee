package graph

// Position is a 2D layout coordinate on the graph canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is the visualization-ready representation of a club.
type Node struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Position   Position          `json:"position"`
	Size       float64           `json:"size"`
	Category   string            `json:"category"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Default size derivation constants. These are tunables, not semantics:
// the invariant is that size stays within [Base, Max] and never decreases
// as connection degree grows.
const (
	DefaultSizeBase      = 20.0
	DefaultSizeIncrement = 5.0
	DefaultSizeMax       = 80.0
)

// SizeScale derives a node's rendered size from its connection degree
// using a linear-clamped formula.
type SizeScale struct {
	Base      float64
	Increment float64
	Max       float64
}

// DefaultSizeScale returns the reference scale (20 + 5*degree, capped at 80).
func DefaultSizeScale() SizeScale {
	return SizeScale{
		Base:      DefaultSizeBase,
		Increment: DefaultSizeIncrement,
		Max:       DefaultSizeMax,
	}
}

// SizeFor computes the node size for a given degree, clamped to [Base, Max].
func (s SizeScale) SizeFor(degree int) float64 {
	if degree < 0 {
		degree = 0
	}
	size := s.Base + float64(degree)*s.Increment
	if size < s.Base {
		size = s.Base
	}
	if size > s.Max {
		size = s.Max
	}
	return size
}
