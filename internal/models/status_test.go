package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusIdea, StatusGenerating},
		{StatusGenerating, StatusQualityReview},
		{StatusGenerating, StatusGenerationFailed},
		{StatusQualityReview, StatusPendingApproval},
		{StatusQualityReview, StatusRejected},
		{StatusPendingApproval, StatusApproved},
		{StatusPendingApproval, StatusRejected},
		{StatusApproved, StatusPosting},
		{StatusPosting, StatusPosted},
		{StatusPosting, StatusPostFailed},
		{StatusPostFailed, StatusPosting},
	}

	for _, edge := range legal {
		assert.True(t, edge.from.CanTransition(edge.to), "%s -> %s must be legal", edge.from, edge.to)
	}

	illegal := []struct{ from, to Status }{
		{StatusIdea, StatusQualityReview},
		{StatusIdea, StatusPosted},
		{StatusGenerating, StatusPendingApproval},
		{StatusQualityReview, StatusApproved},
		{StatusPendingApproval, StatusPosting},
		{StatusApproved, StatusPosted},
		{StatusRejected, StatusPendingApproval},
		{StatusPosted, StatusPosting},
		{StatusGenerationFailed, StatusGenerating},
		{StatusPostFailed, StatusPosted},
		{StatusGenerating, StatusIdea},
	}

	for _, edge := range illegal {
		assert.False(t, edge.from.CanTransition(edge.to), "%s -> %s must be illegal", edge.from, edge.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusRejected, StatusPosted, StatusGenerationFailed}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s must be terminal", s)
		assert.Empty(t, transitions[s], "terminal state %s must have no outgoing edges", s)
	}

	active := []Status{
		StatusIdea, StatusGenerating, StatusQualityReview,
		StatusPendingApproval, StatusApproved, StatusPosting, StatusPostFailed,
	}
	for _, s := range active {
		assert.False(t, s.Terminal(), "%s must not be terminal", s)
	}
}

func TestStatusValid(t *testing.T) {
	all := []Status{
		StatusIdea, StatusGenerating, StatusGenerationFailed, StatusQualityReview,
		StatusRejected, StatusPendingApproval, StatusApproved, StatusPosting,
		StatusPosted, StatusPostFailed,
	}
	for _, s := range all {
		assert.True(t, s.Valid(), "%s must be a known status", s)
	}

	assert.False(t, Status("").Valid())
	assert.False(t, Status("drafting").Valid())
}

func TestDraftTransitionTo(t *testing.T) {
	draft := &Draft{DraftID: "draft-1", Status: StatusIdea}

	require.NoError(t, draft.TransitionTo(StatusGenerating))
	assert.Equal(t, StatusGenerating, draft.Status)

	err := draft.TransitionTo(StatusPosted)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "draft-1", stateErr.DraftID)
	assert.Equal(t, StatusGenerating, stateErr.From)
	assert.Equal(t, StatusPosted, stateErr.To)

	// The draft is untouched after a refused transition.
	assert.Equal(t, StatusGenerating, draft.Status)
}
