package models

import "fmt"

// Status is the lifecycle state of a Draft. A draft only ever moves forward
// along the transition graph; the approve/reject fork and the posting retry
// edge are the only branches.
type Status string

const (
	StatusIdea             Status = "idea"
	StatusGenerating       Status = "generating"
	StatusGenerationFailed Status = "generation_failed"
	StatusQualityReview    Status = "quality_review"
	StatusRejected         Status = "rejected"
	StatusPendingApproval  Status = "pending_approval"
	StatusApproved         Status = "approved"
	StatusPosting          Status = "posting"
	StatusPosted           Status = "posted"
	StatusPostFailed       Status = "post_failed"
)

// transitions holds every legal edge of the draft lifecycle.
// post_failed -> posting is the retry edge for partially published drafts.
var transitions = map[Status][]Status{
	StatusIdea:            {StatusGenerating},
	StatusGenerating:      {StatusQualityReview, StatusGenerationFailed},
	StatusQualityReview:   {StatusPendingApproval, StatusRejected},
	StatusPendingApproval: {StatusApproved, StatusRejected},
	StatusApproved:        {StatusPosting},
	StatusPosting:         {StatusPosted, StatusPostFailed},
	StatusPostFailed:      {StatusPosting},
}

// CanTransition reports whether next is a legal successor of s.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the automatic pipeline is done with a draft in
// this state. Reprocessing starts a new draft referencing the same idea.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusPosted, StatusGenerationFailed:
		return true
	}
	return false
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	if _, ok := transitions[s]; ok {
		return true
	}
	return s.Terminal()
}

// StateError reports an illegal transition attempt. The draft is left
// unchanged whenever one is returned.
type StateError struct {
	DraftID string
	From    Status
	To      Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("draft %s: illegal transition %s -> %s", e.DraftID, e.From, e.To)
}
