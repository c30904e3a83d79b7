package handlers

import (
	"errors"
	"net/http"

	"testlab/services"
	"testlab/store"

	"github.com/gin-gonic/gin"
)

// ReviewHandler serves the admin review flow: listing results, inspecting a
// single attempt and overriding answer correctness.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

type overrideAnswerRequest struct {
	AnswerID  uint  `json:"answer_id" binding:"required"`
	IsCorrect *bool `json:"is_correct" binding:"required"`
}

func (h *ReviewHandler) ListResults(c *gin.Context) {
	attempts, err := h.reviewService.ListResults()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}

	c.JSON(http.StatusOK, attempts)
}

func (h *ReviewHandler) GetAttempt(c *gin.Context) {
	attemptID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attempt ID"})
		return
	}

	attempt, err := h.reviewService.GetAttemptDetail(attemptID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attempt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attempt"})
		return
	}

	c.JSON(http.StatusOK, attempt)
}

func (h *ReviewHandler) OverrideAnswer(c *gin.Context) {
	attemptID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attempt ID"})
		return
	}

	var req overrideAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := h.reviewService.OverrideAnswer(attemptID, req.AnswerID, *req.IsCorrect)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Attempt not found"})
		case errors.Is(err, store.ErrAnswerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update answer"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "score": score})
}
