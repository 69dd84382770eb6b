package helper

import "backend-hms/internal/models"

// transitionMap lists the allowed next states per current status.
// completed and cancelled are terminal.
var transitionMap = map[string][]string{
	models.StatusWaiting:        {models.StatusInConsultation, models.StatusCancelled},
	models.StatusInConsultation: {models.StatusCompleted},
	models.StatusCompleted:      {},
	models.StatusCancelled:      {},
}

// CanTransition reports whether a token may move from one status to
// another. A same-status request is treated as a legal no-op so replayed
// actions stay idempotent.
func CanTransition(from, to string) bool {
	allowed, ok := transitionMap[from]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no action can move the token further.
func IsTerminal(status string) bool {
	allowed, ok := transitionMap[status]
	return ok && len(allowed) == 0
}
