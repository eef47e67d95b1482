package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Isba24ha/barliberty-sub000/internal/middleware"
	"github.com/Isba24ha/barliberty-sub000/internal/services"
	"github.com/Isba24ha/barliberty-sub000/pkg/utils"
)

// SessionHandler holds the session service.
type SessionHandler struct {
	sessionService services.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ss services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

// OpenSession starts a shift for the calling cashier.
func (h *SessionHandler) OpenSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	var req services.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	session, err := h.sessionService.OpenSession(userID, req)
	if err != nil {
		utils.LogError(err, "OpenSession: Error from sessionService.OpenSession")
		if errors.Is(err, services.ErrActiveSessionExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "You already have an active shift session.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to open session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetActiveSession returns the caller's active session (venue-wide for
// servers and managers), or 200 with null when none is open.
func (h *SessionHandler) GetActiveSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}
	role, _ := middleware.CurrentUserRole(c)

	session, err := h.sessionService.GetActiveSession(userID, role)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveSession) {
			c.JSON(http.StatusOK, gin.H{"session": nil})
			return
		}
		utils.LogError(err, "GetActiveSession: Error from sessionService.GetActiveSession")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch active session.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// EndSession closes a shift and freezes its totals.
func (h *SessionHandler) EndSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	session, err := h.sessionService.EndSession(userID, sessionID)
	if err != nil {
		utils.LogError(err, "EndSession: Error from sessionService.EndSession")
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session not found.", ""))
		} else if errors.Is(err, services.ErrSessionNotOwned) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Session belongs to another cashier.", ""))
		} else if errors.Is(err, services.ErrSessionAlreadyClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Session is already closed.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to end session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionStats returns the live aggregate snapshot for a session.
func (h *SessionHandler) GetSessionStats(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	stats, err := h.sessionService.GetSessionStats(sessionID)
	if err != nil {
		utils.LogError(err, "GetSessionStats: Error from sessionService.GetSessionStats")
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session not found.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch session stats.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, stats)
}
