package domain

import "strings"

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	StatusDraft    ProposalStatus = "DRAFT"
	StatusReview   ProposalStatus = "REVIEW"
	StatusApproved ProposalStatus = "APPROVED"
	StatusSent     ProposalStatus = "SENT"
)

// ProposalAction moves a proposal from one status to another.
type ProposalAction string

const (
	ActionSubmit  ProposalAction = "submit"
	ActionApprove ProposalAction = "approve"
	ActionReject  ProposalAction = "reject"
	ActionSend    ProposalAction = "send"
)

var proposalStatusLabels = map[ProposalStatus]string{
	StatusDraft:    "Draft",
	StatusReview:   "In Review",
	StatusApproved: "Approved",
	StatusSent:     "Sent",
}

var proposalStatuses = map[string]ProposalStatus{
	"draft":    StatusDraft,
	"review":   StatusReview,
	"approved": StatusApproved,
	"sent":     StatusSent,
}

var proposalActions = map[string]ProposalAction{
	"submit":  ActionSubmit,
	"approve": ActionApprove,
	"reject":  ActionReject,
	"send":    ActionSend,
}

// Label returns a human-readable label for the status.
func (s ProposalStatus) Label() string {
	if label, ok := proposalStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}

// Valid reports whether s is one of the known statuses.
func (s ProposalStatus) Valid() bool {
	_, ok := proposalStatusLabels[s]
	return ok
}

// ParseProposalStatus returns the status for a given name (case-insensitive).
func ParseProposalStatus(name string) (ProposalStatus, bool) {
	status, ok := proposalStatuses[strings.ToLower(strings.TrimSpace(name))]

	return status, ok
}

// ParseProposalAction returns the action for a given name (case-insensitive).
func ParseProposalAction(name string) (ProposalAction, bool) {
	action, ok := proposalActions[strings.ToLower(strings.TrimSpace(name))]

	return action, ok
}
