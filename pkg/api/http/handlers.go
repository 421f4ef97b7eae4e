package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/workers"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecuteRequest represents an execution request
type ExecuteRequest struct {
	Query    string                `json:"query" binding:"required"`
	Context  domain.RequestContext `json:"context"`
	ClientID string                `json:"client_id"`
}

// ExecuteAsyncResponse represents an accepted async submission
type ExecuteAsyncResponse struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := s.pool.Health().GetStatus()

	code := http.StatusOK
	state := "healthy"
	if !status.Healthy {
		code = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	c.JSON(code, gin.H{
		"status":    state,
		"timestamp": status.Timestamp.Format(time.RFC3339),
		"workers": gin.H{
			"total":       status.TotalWorkers,
			"idle":        status.IdleWorkers,
			"busy":        status.BusyWorkers,
			"stopped":     status.StoppedWorkers,
			"queue_depth": status.QueueDepth,
		},
	})
}

// handleExecute runs one request synchronously and returns the full outcome
func (s *Server) handleExecute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Error("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	request := &domain.Request{Query: req.Query, Context: req.Context}

	outcome, err := s.orchestrator.Execute(c.Request.Context(), request, req.ClientID)
	if err != nil {
		s.logger.Error("execution failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{
				Code:    "EXECUTION_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// handleExecuteAsync queues one request on the worker pool. The terminal
// result is delivered as a result event on the client's results channel.
func (s *Server) handleExecuteAsync(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Error("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	task := workers.Task{
		ID:       uuid.NewString(),
		ClientID: req.ClientID,
		Request:  domain.Request{Query: req.Query, Context: req.Context},
	}

	if err := s.pool.Submit(task); err != nil {
		s.logger.Warn("task submission rejected", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrorDetail{
				Code:    "QUEUE_FULL",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, ExecuteAsyncResponse{
		TaskID:      task.ID,
		Status:      "queued",
		SubmittedAt: time.Now().Format(time.RFC3339),
	})
}

// handleListHistory returns all retained sessions, newest first
func (s *Server) handleListHistory(c *gin.Context) {
	sessions, err := s.history.ListSessions(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "HISTORY_UNAVAILABLE",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// handleGetHistory returns one session by id
func (s *Server) handleGetHistory(c *gin.Context) {
	session, err := s.history.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: ErrorDetail{
					Code:    "SESSION_NOT_FOUND",
					Message: "session not found",
				},
			})
			return
		}

		s.logger.Error("failed to get session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "HISTORY_UNAVAILABLE",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// handleDeleteHistory removes one session by id
func (s *Server) handleDeleteHistory(c *gin.Context) {
	if err := s.history.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: ErrorDetail{
					Code:    "SESSION_NOT_FOUND",
					Message: "session not found",
				},
			})
			return
		}

		s.logger.Error("failed to delete session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "HISTORY_UNAVAILABLE",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
