package dialogue

import "github.com/damon-houk/transaction-manager/internal/domain/entity"

// Step is the position of a session in the add or get dialogue
type Step int

const (
	StepIdle Step = iota
	StepAddID
	StepAddDate
	StepAddAmount
	StepGet
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepAddID:
		return "add_id"
	case StepAddDate:
		return "add_date"
	case StepAddAmount:
		return "add_amount"
	case StepGet:
		return "get"
	default:
		return "unknown"
	}
}

// State is the per-session dialogue state. The zero value is an idle session.
// Pending is only set while an add dialogue is in flight.
type State struct {
	Step    Step
	Pending *entity.TransactionBuilder
}

func (s *State) reset() {
	s.Step = StepIdle
	s.Pending = nil
}
