package graphview

// Mode is a named rendering configuration trading visual fidelity for
// throughput as graph size grows.
type Mode int

const (
	ModeStandard Mode = iota
	ModeHighPerformance
	ModeUltra
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeHighPerformance:
		return "high-performance"
	case ModeUltra:
		return "ultra"
	default:
		return "unknown"
	}
}

// Thresholds are the node-count boundaries between modes.
type Thresholds struct {
	HighPerformance int
	Ultra           int
}

// DefaultThresholds returns the reference boundaries: 500 and 1000 nodes.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighPerformance: 500,
		Ultra:           1000,
	}
}

// SelectMode picks the rendering mode for a graph of the given node count.
// It is a pure function: callers re-evaluate it whenever a payload is
// loaded or filtered.
func SelectMode(nodeCount int, th Thresholds) Mode {
	switch {
	case nodeCount >= th.Ultra:
		return ModeUltra
	case nodeCount >= th.HighPerformance:
		return ModeHighPerformance
	default:
		return ModeStandard
	}
}

// ModeConfig is the concrete rendering behavior a mode implies.
type ModeConfig struct {
	CullingEnabled bool
	LazyLoading    bool
	Style          Style
}

// Config returns the behavior for the mode.
func (m Mode) Config() ModeConfig {
	switch m {
	case ModeUltra:
		return ModeConfig{
			CullingEnabled: true,
			LazyLoading:    true,
			Style: Style{
				Effects:        EffectsMinimal,
				ShowEdgeLabels: false,
				AnimateLayout:  false,
			},
		}
	case ModeHighPerformance:
		return ModeConfig{
			CullingEnabled: true,
			LazyLoading:    false,
			Style: Style{
				Effects:        EffectsReduced,
				ShowEdgeLabels: false,
				AnimateLayout:  true,
			},
		}
	default:
		return ModeConfig{
			CullingEnabled: false,
			LazyLoading:    false,
			Style: Style{
				Effects:        EffectsFull,
				ShowEdgeLabels: true,
				AnimateLayout:  true,
			},
		}
	}
}
