package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/pipeline"
	"github.com/crestlabs/crest/internal/provider"
)

func respondSuccess(c *gin.Context, code int, payload interface{}) {
	c.JSON(code, gin.H{
		"status":  "success",
		"payload": payload,
	})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  "error",
		"message": message,
	})
}

// respondPartial reports a draft that was created even though generation did
// not finish cleanly. The request itself succeeded; the draft's own status
// carries the generation outcome, and the message explains it.
func respondPartial(c *gin.Context, draft *models.Draft, err error) {
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "success",
		"message": err.Error(),
		"payload": gin.H{"draft": draft},
	})
}

// respondPipelineError maps pipeline errors onto HTTP status codes.
func (s *Server) respondPipelineError(c *gin.Context, err error) {
	var (
		stateErr      *models.StateError
		validationErr *pipeline.ValidationError
		configErr     *pipeline.ConfigError
	)

	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, pipeline.ErrAlreadyDecided):
		respondError(c, http.StatusConflict, err.Error())
	case errors.As(err, &stateErr):
		respondError(c, http.StatusConflict, err.Error())
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &configErr):
		respondError(c, http.StatusServiceUnavailable, err.Error())
	default:
		if provErr, ok := provider.AsError(err); ok {
			respondError(c, http.StatusBadGateway, provErr.Error())
			return
		}
		s.Logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

type ideationRequest struct {
	Trends    map[string]interface{} `json:"trends"`
	Headlines []string               `json:"headlines"`
}

func (s *Server) handleRunIdeation(c *gin.Context) {
	var req ideationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ideas := s.Pipeline.RunIdeation(c.Request.Context(), pipeline.IdeationInput{
		Trends:    req.Trends,
		Headlines: req.Headlines,
	})

	respondSuccess(c, http.StatusOK, gin.H{"ideas": ideas})
}

type createDraftRequest struct {
	IdeaID    string   `json:"idea_id" binding:"required"`
	Platforms []string `json:"platforms"`
	Kinds     []string `json:"kinds"`
	Style     string   `json:"style"`
}

func (s *Server) handleCreateDraft(c *gin.Context) {
	var req createDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "idea_id is required")
		return
	}

	kinds := make([]models.AssetKind, 0, len(req.Kinds))
	for _, k := range req.Kinds {
		kinds = append(kinds, models.AssetKind(k))
	}
	if len(kinds) == 0 {
		kinds = []models.AssetKind{models.AssetText}
	}

	draft, err := s.Pipeline.CreateAndGenerate(c.Request.Context(), req.IdeaID, req.Platforms, pipeline.GenerationRequest{
		Kinds: kinds,
		Style: req.Style,
	})
	if err != nil {
		if draft == nil {
			s.respondPipelineError(c, err)
			return
		}
		respondPartial(c, draft, err)
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"draft": draft})
}

func (s *Server) handleListDrafts(c *gin.Context) {
	status := models.Status(c.Query("status"))
	if status == "" {
		respondError(c, http.StatusBadRequest, "status query parameter is required")
		return
	}
	if !status.Valid() {
		respondError(c, http.StatusBadRequest, "unknown status")
		return
	}

	drafts, err := s.Pipeline.ListDrafts(c.Request.Context(), status)
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"drafts": drafts})
}

func (s *Server) handleGetDraft(c *gin.Context) {
	draft, err := s.Pipeline.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) handlePollDraft(c *gin.Context) {
	draft, err := s.Pipeline.PollDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) handleQualityGate(c *gin.Context) {
	draft, evaluation, err := s.Pipeline.RunQualityGate(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"draft":      draft,
		"evaluation": evaluation,
	})
}

func (s *Server) handleRequestApproval(c *gin.Context) {
	receipt, err := s.Pipeline.RequestApproval(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"receipt": receipt})
}

type decisionRequest struct {
	DraftID  string `json:"draft_id" binding:"required"`
	Decision string `json:"decision" binding:"required"`
}

func (s *Server) handleDecision(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "draft_id and decision are required")
		return
	}

	draft, err := s.Pipeline.RecordDecision(c.Request.Context(), req.DraftID, pipeline.Decision(req.Decision))
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) handlePublish(c *gin.Context) {
	draft, err := s.Pipeline.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) handlePlatforms(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"platforms": s.Pipeline.Platforms()})
}

func (s *Server) handleStats(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		respondError(c, http.StatusBadRequest, "days must be a positive integer")
		return
	}

	stats, err := s.Stats.GetRecentStats(days)
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"stats": stats})
}

func (s *Server) handleRecentAudit(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		respondError(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	events, err := s.Pipeline.Audit().RecentEvents(c.Request.Context(), limit)
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"events": events})
}

func (s *Server) handleDraftAudit(c *gin.Context) {
	events, err := s.Pipeline.Audit().EventsForDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"events": events})
}
