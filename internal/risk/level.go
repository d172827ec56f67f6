package risk

// Level is the ordinal risk tier derived from R.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
	LevelSevere Level = "severe"
)

// Tier cut points, inclusive lower bounds.
const (
	severeCut = 0.8
	highCut   = 0.6
	mediumCut = 0.3
)

// LevelFor maps a risk value onto the four-tier scale:
// severe >= 0.8, high >= 0.6, medium >= 0.3, low below that.
func LevelFor(r float64) Level {
	switch {
	case r >= severeCut:
		return LevelSevere
	case r >= highCut:
		return LevelHigh
	case r >= mediumCut:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Rank orders levels from 0 (low) to 3 (severe). Unknown levels rank -1.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	case LevelSevere:
		return 3
	}
	return -1
}
