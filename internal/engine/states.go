package engine

// State is the lifecycle position of one task within a run.
type State int

const (
	StatePending State = iota
	StateResolving
	StateSending
	StateExtracting
	StateRecorded
	StateErrored
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateResolving:
		return "RESOLVING"
	case StateSending:
		return "SENDING"
	case StateExtracting:
		return "EXTRACTING"
	case StateRecorded:
		return "RECORDED"
	case StateErrored:
		return "ERRORED"
	default:
		return "UNKNOWN"
	}
}

// RunState is how a whole run ended.
type RunState int

const (
	// RunCompleted means every task was attempted.
	RunCompleted RunState = iota
	// RunHalted means stop-on-error fired and remaining tasks were
	// never attempted.
	RunHalted
	// RunCanceled means the caller's context ended the run early.
	RunCanceled
)

func (s RunState) String() string {
	switch s {
	case RunCompleted:
		return "COMPLETED"
	case RunHalted:
		return "HALTED"
	case RunCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}
