package graph

// Edge is the visualization-ready representation of a connection.
// SourceID and TargetID always reference nodes present in the same payload;
// the aggregator drops edges that dangle or loop back to their own node.
type Edge struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
	Strength int    `json:"strength"`
	Label    string `json:"label,omitempty"`
}

// PairKey returns a canonical key for the unordered endpoint pair plus the
// edge type. At most one edge exists per key: connections of different types
// between the same pair stay distinct, exact duplicates collapse.
func (e Edge) PairKey() string {
	a, b := e.SourceID, e.TargetID
	if b < a {
		a, b = b, a
	}
	return a + "|" + b + "|" + e.Type
}
