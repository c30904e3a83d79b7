package handlers

import (
	"errors"
	"net/http"

	"testlab/services"
	"testlab/store"

	"github.com/gin-gonic/gin"
)

// AttemptHandler serves the student side: the catalog, the test-taking view,
// the eligibility check, submission and personal results.
type AttemptHandler struct {
	attemptService *services.AttemptService
	testService    *services.TestService
	hub            *services.Hub
}

func NewAttemptHandler(attemptService *services.AttemptService, testService *services.TestService, hub *services.Hub) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		testService:    testService,
		hub:            hub,
	}
}

func (h *AttemptHandler) AvailableTests(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tests, err := h.testService.AvailableTests(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tests"})
		return
	}

	c.JSON(http.StatusOK, tests)
}

func (h *AttemptHandler) GetTest(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	testID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test ID"})
		return
	}

	view, err := h.attemptService.GetTestForTaking(userID.(uint), testID)
	if err != nil {
		if errors.Is(err, store.ErrTestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Test not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load test"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AttemptHandler) AttemptStatus(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	testID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test ID"})
		return
	}

	hasAttempt, err := h.attemptService.HasAttempt(userID.(uint), testID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check attempt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"has_attempt": hasAttempt})
}

func (h *AttemptHandler) Submit(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	testID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test ID"})
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attempt, err := h.attemptService.Submit(userID.(uint), testID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateAttempt):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already taken this test"})
		case errors.Is(err, store.ErrTestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Test not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit test"})
		}
		return
	}

	if h.hub != nil {
		h.hub.BroadcastSubmission(attempt)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"score":      attempt.Score,
		"attempt_id": attempt.ID,
	})
}

func (h *AttemptHandler) MyResults(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	attempts, err := h.attemptService.MyResults(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}

	c.JSON(http.StatusOK, attempts)
}
