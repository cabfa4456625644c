package bench

// Phase is a step in the life of a test point.
type Phase int

// Phases in order.
const (
	Idle Phase = iota
	Initializing
	Warmup
	Measuring
	Aggregating
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Warmup:
		return "warmup"
	case Measuring:
		return "measuring"
	case Aggregating:
		return "aggregating"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is how a test point ended.
type Outcome int

// Outcomes.
const (
	// Measured points produced a Result, verified or not.
	Measured Outcome = iota
	// Skipped points could not run on this host.
	Skipped
	// Aborted points failed during initialization or measurement.
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Measured:
		return "measured"
	case Skipped:
		return "skipped"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}
