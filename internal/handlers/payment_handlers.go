package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Isba24ha/barliberty-sub000/internal/middleware"
	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/services"
	"github.com/Isba24ha/barliberty-sub000/pkg/utils"
)

// PaymentHandler holds the payment service.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

// CreatePayment records a payment against an order, with its side effects
// (credit balance, order completion, table release) committed atomically.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	cashierID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	var req services.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	payment, err := h.paymentService.CreatePayment(cashierID, req)
	if err != nil {
		utils.LogError(err, "CreatePayment: Error from paymentService.CreatePayment")
		switch {
		case errors.Is(err, services.ErrNoActiveSession):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "You must have an active shift session to record payments.", ""))
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", ""))
		case errors.Is(err, services.ErrOrderNotEditable):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order is completed or cancelled and cannot accept payments.", ""))
		case errors.Is(err, services.ErrPaymentExceedsBalance):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Payment amount exceeds the outstanding balance.", err.Error()))
		case errors.Is(err, services.ErrReceivedBelowAmount):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Received amount is less than the payment amount.", err.Error()))
		case errors.Is(err, services.ErrCreditClientRequired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Credit payments require a credit_client_id.", ""))
		case errors.Is(err, services.ErrCreditClientNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Credit client not found.", ""))
		case errors.Is(err, services.ErrCreditClientInactive):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Credit client is inactive.", ""))
		case errors.Is(err, services.ErrCreditLimitExceeded):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Credit limit exceeded.", err.Error()))
		case errors.Is(err, services.ErrManagerConsumptionOnly):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Manager consumption is only allowed for orders served to a manager.", ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record payment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// GetPayments lists payments for a session.
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	sessionIDStr := c.Query("session_id")
	if sessionIDStr == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "session_id query parameter is required.", ""))
		return
	}
	sessionID, err := strconv.ParseInt(sessionIDStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session_id format.", err.Error()))
		return
	}

	payments, err := h.paymentService.GetPaymentsBySession(sessionID)
	if err != nil {
		utils.LogError(err, "GetPayments: Error from paymentService.GetPaymentsBySession")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch payments.", "Internal error"))
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}
