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

// AbsenceHandler holds the absence service.
type AbsenceHandler struct {
	absenceService services.AbsenceService
}

// NewAbsenceHandler creates a new AbsenceHandler.
func NewAbsenceHandler(as services.AbsenceService) *AbsenceHandler {
	return &AbsenceHandler{absenceService: as}
}

// CreateAbsence files a leave request for the calling user.
func (h *AbsenceHandler) CreateAbsence(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	var req services.CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	absence, err := h.absenceService.CreateAbsence(userID, req)
	if err != nil {
		utils.LogError(err, "CreateAbsence: Error from absenceService.CreateAbsence")
		if errors.Is(err, services.ErrInvalidAbsenceDates) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid absence date range.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create absence.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, absence)
}

// GetAbsences lists all leave requests.
func (h *AbsenceHandler) GetAbsences(c *gin.Context) {
	absences, err := h.absenceService.GetAbsences()
	if err != nil {
		utils.LogError(err, "GetAbsences: Error from absenceService.GetAbsences")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch absences.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, absences)
}

// ApproveAbsence approves a pending leave request.
func (h *AbsenceHandler) ApproveAbsence(c *gin.Context) {
	approverID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	absenceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid absence ID format.", err.Error()))
		return
	}

	absence, err := h.absenceService.ApproveAbsence(approverID, absenceID)
	if err != nil {
		utils.LogError(err, "ApproveAbsence: Error from absenceService.ApproveAbsence")
		if errors.Is(err, services.ErrAbsenceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Absence not found.", ""))
		} else if errors.Is(err, services.ErrAbsenceAlreadyApproved) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Absence is already approved.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to approve absence.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, absence)
}
