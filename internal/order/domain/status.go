package domain

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusOnWay     Status = "on_way"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var allStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusConfirmed: {},
	StatusPreparing: {},
	StatusOnWay:     {},
	StatusDelivered: {},
	StatusCancelled: {},
}

func ValidStatus(s Status) bool {
	_, ok := allStatuses[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// transitions is the forward edge set of the order lifecycle. cancelled is
// reachable from every non-terminal state and is handled in CanTransitionTo.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed},
	StatusConfirmed: {StatusPreparing},
	StatusPreparing: {StatusOnWay},
	StatusOnWay:     {StatusDelivered},
}

// CanTransitionTo enforces the order state machine. Setting the current
// status again is allowed so reconciliation stays idempotent.
func (s Status) CanTransitionTo(next Status) bool {
	if !ValidStatus(next) {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
