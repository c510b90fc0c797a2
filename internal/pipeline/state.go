package pipeline

// State is a step or terminal state of a run.
type State int

const (
	Extracting State = iota
	Loading
	Diverting
	Reindexing

	// Succeeded: every row was appended to the sink.
	Succeeded
	// Degraded: the sink is stale but the data is staged in the fallback
	// location.
	Degraded
	// FailedHard: data is neither in the sink nor staged.
	FailedHard
)

func (s State) String() string {
	switch s {
	case Extracting:
		return "extracting"
	case Loading:
		return "loading"
	case Diverting:
		return "diverting"
	case Reindexing:
		return "reindexing"
	case Succeeded:
		return "succeeded"
	case Degraded:
		return "degraded"
	case FailedHard:
		return "failed_hard"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == Succeeded || s == Degraded || s == FailedHard
}

// Process exit codes.
const (
	ExitOK              = 0
	ExitConfig          = 1
	ExitFailedHard      = 2
	ExitDegraded        = 3
	ExitDegradedTrigger = 4
)
