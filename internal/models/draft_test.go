package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetsTerminal(t *testing.T) {
	t.Run("all completed", func(t *testing.T) {
		d := &Draft{Assets: []Asset{
			{Kind: AssetText, Status: AssetCompleted},
			{Kind: AssetImage, Status: AssetCompleted},
		}}
		terminal, failed := d.AssetsTerminal()
		assert.True(t, terminal)
		assert.False(t, failed)
	})

	t.Run("one pending keeps the draft open", func(t *testing.T) {
		d := &Draft{Assets: []Asset{
			{Kind: AssetText, Status: AssetCompleted},
			{Kind: AssetVideo, Status: AssetPending},
		}}
		terminal, failed := d.AssetsTerminal()
		assert.False(t, terminal)
		assert.False(t, failed)
	})

	t.Run("a failure is reported even while others are pending", func(t *testing.T) {
		d := &Draft{Assets: []Asset{
			{Kind: AssetText, Status: AssetFailed},
			{Kind: AssetVideo, Status: AssetPending},
		}}
		terminal, failed := d.AssetsTerminal()
		assert.False(t, terminal)
		assert.True(t, failed)
	})

	t.Run("no assets counts as terminal", func(t *testing.T) {
		d := &Draft{}
		terminal, failed := d.AssetsTerminal()
		assert.True(t, terminal)
		assert.False(t, failed)
	})
}

func TestCompletedAssets(t *testing.T) {
	d := &Draft{Assets: []Asset{
		{Kind: AssetText, Status: AssetCompleted, Content: "body"},
		{Kind: AssetVideo, Status: AssetPending},
		{Kind: AssetImage, Status: AssetFailed},
	}}

	completed := d.CompletedAssets()
	assert.Len(t, completed, 1)
	assert.Equal(t, AssetText, completed[0].Kind)
}

func TestResultFor(t *testing.T) {
	d := &Draft{PostingResults: []PostingResult{
		{Platform: "telegram", Status: PostingSuccess, PostID: "42"},
	}}

	r, ok := d.ResultFor("telegram")
	assert.True(t, ok)
	assert.Equal(t, "42", r.PostID)

	_, ok = d.ResultFor("twitter")
	assert.False(t, ok)
}

func TestQualityEvaluationPresent(t *testing.T) {
	assert.False(t, QualityEvaluation{}.Present())
	assert.True(t, QualityEvaluation{Decision: DecisionPass, Score: 8}.Present())
}
