// Package claims holds the claim domain model: bills, the status workflow,
// the guarded repository, and the analytics aggregation.
package claims

// Status represents a claim's position in the approval workflow.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusPartiallySettled Status = "partiallysettled"
	StatusSettled          Status = "settled"
)

// transitions is the single source of truth for workflow legality. No other
// code path may decide whether a status change is allowed.
var transitions = map[Status][]Status{
	StatusDraft:            {StatusSubmitted},
	StatusSubmitted:        {StatusApproved, StatusRejected},
	StatusApproved:         {StatusPartiallySettled},
	StatusPartiallySettled: {StatusSettled},
	StatusRejected:         {},
	StatusSettled:          {},
}

var displayNames = map[Status]string{
	StatusDraft:            "Draft",
	StatusSubmitted:        "Submitted",
	StatusApproved:         "Approved",
	StatusRejected:         "Rejected",
	StatusPartiallySettled: "Partially Settled",
	StatusSettled:          "Settled",
}

var descriptions = map[Status]string{
	StatusDraft:            "Claim is being prepared and can still be edited",
	StatusSubmitted:        "Claim has been submitted for review",
	StatusApproved:         "Claim has been approved for settlement",
	StatusRejected:         "Claim has been rejected",
	StatusPartiallySettled: "A partial settlement has been paid out",
	StatusSettled:          "Claim is fully settled",
}

// AllStatuses lists every workflow status in stage order.
func AllStatuses() []Status {
	return []Status{
		StatusDraft, StatusSubmitted, StatusApproved,
		StatusRejected, StatusPartiallySettled, StatusSettled,
	}
}

// ParseStatus maps a stored status string onto the closed set. Unknown or
// missing values decode to draft so older records never fail to load.
func ParseStatus(s string) Status {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return StatusDraft
	}
	return st
}

// ValidTransitions returns the statuses this status may move to next.
func (s Status) ValidTransitions() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether target appears in the transition table for
// s. Unknown statuses simply return false.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the workflow ends here.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsEditable reports whether claim fields may still change. Only drafts are
// editable.
func (s Status) IsEditable() bool {
	return s == StatusDraft
}

// DisplayName returns the human-facing name of the status.
func (s Status) DisplayName() string {
	return displayNames[s]
}

// Description returns a one-line explanation of the status.
func (s Status) Description() string {
	return descriptions[s]
}
