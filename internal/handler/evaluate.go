package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/model"
	"home-valuation/internal/service"
)

// EvaluationService runs evaluations
type EvaluationService interface {
	Evaluate(ctx context.Context, in service.EvaluateInput) (*model.EvaluationResult, error)
	Score(ctx context.Context, in service.ScoreInput) (*model.EvaluationResult, error)
}

// EvaluateHandler handles evaluation HTTP requests
type EvaluateHandler struct {
	evaluator EvaluationService
}

// NewEvaluateHandler creates a new evaluate handler
func NewEvaluateHandler(evaluator EvaluationService) *EvaluateHandler {
	return &EvaluateHandler{evaluator: evaluator}
}

// Evaluate handles POST /api/v1/evaluate
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	var req model.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("Invalid request: "+err.Error()))
		return
	}

	renovation, ok := model.ParseRenovation(req.Renovation)
	if !ok {
		writeError(c, apperrors.InvalidInput("Invalid request: unknown renovation "+req.Renovation))
		return
	}

	in := service.EvaluateInput{
		Property: model.PropertyDescription{
			City:        strings.TrimSpace(req.City),
			District:    strings.TrimSpace(req.District),
			Community:   strings.TrimSpace(req.Community),
			Layout:      strings.TrimSpace(req.Layout),
			Floor:       strings.TrimSpace(req.Floor),
			Orientation: strings.TrimSpace(req.Direction),
			Renovation:  renovation,
			Description: strings.TrimSpace(req.AdditionalDesc),
		},
		Area:      req.Area,
		BasePrice: req.BasePrice,
	}

	result, err := h.evaluator.Evaluate(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Score handles POST /api/v1/evaluate/score
func (h *EvaluateHandler) Score(c *gin.Context) {
	var req model.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.InvalidInput("Invalid request: "+err.Error()))
		return
	}

	result, err := h.evaluator.Score(c.Request.Context(), service.ScoreInput{
		Scores:    &req.Scores,
		District:  strings.TrimSpace(req.District),
		Area:      req.Area,
		BasePrice: req.BasePrice,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
