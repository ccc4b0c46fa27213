package watcher

// State is a Watcher lifecycle stage.
type State int

const (
	StateCreated State = iota
	StateStarted
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// OutcomeKind classifies how a work item finished.
type OutcomeKind int

const (
	OutcomeValue OutcomeKind = iota
	OutcomeError
	OutcomePanic
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValue:
		return "value"
	case OutcomeError:
		return "error"
	case OutcomePanic:
		return "panic"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
