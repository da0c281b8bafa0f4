package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestlabs/crest/internal/models"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Payload struct {
		Draft models.Draft `json:"draft"`
	} `json:"payload"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestResponseEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondSuccess(c, http.StatusOK, gin.H{"draft": models.Draft{DraftID: "draft-x-1"}})

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, "draft-x-1", body.Payload.Draft.DraftID)
	})

	t.Run("error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, http.StatusConflict, "already decided")

		require.Equal(t, http.StatusConflict, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, "already decided", body.Message)
	})

	t.Run("created draft with failed generation keeps the success envelope", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		draft := &models.Draft{
			DraftID: "draft-x-1",
			Status:  models.StatusGenerationFailed,
		}
		respondPartial(c, draft, errors.New("video generation failed"))

		require.Equal(t, http.StatusAccepted, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, "video generation failed", body.Message)
		assert.Equal(t, models.StatusGenerationFailed, body.Payload.Draft.Status)
	})
}
