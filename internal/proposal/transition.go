package proposal

import (
	"errors"
	"fmt"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
)

// ErrInvalidTransition is matched by every *InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvalidTransitionError is returned when an action does not apply to the current status.
type InvalidTransitionError struct {
	From   domain.ProposalStatus
	Action domain.ProposalAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a proposal in status %s", e.Action, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

var transitions = map[domain.ProposalStatus]map[domain.ProposalAction]domain.ProposalStatus{
	domain.StatusDraft: {
		domain.ActionSubmit: domain.StatusReview,
	},
	domain.StatusReview: {
		domain.ActionApprove: domain.StatusApproved,
		domain.ActionReject:  domain.StatusDraft,
	},
	domain.StatusApproved: {
		domain.ActionSend: domain.StatusSent,
	},
}

// actionOrder fixes the order AvailableActions reports actions in.
var actionOrder = []domain.ProposalAction{
	domain.ActionSubmit,
	domain.ActionApprove,
	domain.ActionReject,
	domain.ActionSend,
}

// NextStatus returns the status reached by applying action in status from.
func NextStatus(from domain.ProposalStatus, action domain.ProposalAction) (domain.ProposalStatus, error) {
	to, ok := transitions[from][action]
	if !ok {
		return from, &InvalidTransitionError{From: from, Action: action}
	}
	return to, nil
}

// Transition returns a copy of p with its status advanced by action. Only the status
// field changes.
func Transition(p domain.Proposal, action domain.ProposalAction) (domain.Proposal, error) {
	to, err := NextStatus(p.Status, action)
	if err != nil {
		return p, err
	}
	p.Status = to
	return p, nil
}

// AvailableActions lists the actions that apply in status. SENT has none.
func AvailableActions(status domain.ProposalStatus) []domain.ProposalAction {
	actions := make([]domain.ProposalAction, 0, 2)
	for _, a := range actionOrder {
		if _, ok := transitions[status][a]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}
