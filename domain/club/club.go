package club

// Club is a read model of a club row as the entity store returns it.
// The CRUD layer owns the write side; this core only ever reads clubs,
// so the type is a plain struct rather than a rich aggregate.
type Club struct {
	ID     string
	Name   string
	League string
	Active bool

	// X and Y are the authoritative layout coordinates. They are the only
	// graph-specific fields persisted outside this core; everything else
	// (size, visibility, mode) is derived at aggregation or render time.
	X float64
	Y float64

	// Attributes is an open key/value bag (country, founded, colors, ...)
	// carried through to the payload for client-side filtering and coloring.
	Attributes map[string]string
}

// ConnectionType enumerates the relationship kinds between clubs.
type ConnectionType string

const (
	ConnectionRivalry     ConnectionType = "rivalry"
	ConnectionFriendship  ConnectionType = "friendship"
	ConnectionPartnership ConnectionType = "partnership"
	ConnectionOwnership   ConnectionType = "ownership"
)

// Connection is a read model of a typed, weighted relationship between
// two clubs. Strength is an ordinal (1 = weakest), not a continuous weight.
type Connection struct {
	ID       string
	SourceID string
	TargetID string
	Type     ConnectionType
	Strength int
	Label    string
	Active   bool
}

// Filter narrows entity store reads. The zero value selects active rows only.
type Filter struct {
	IncludeInactive bool
}
