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

// CreditClientHandler holds the credit client and payment services. Payments
// are needed for the standalone repayment route.
type CreditClientHandler struct {
	creditService  services.CreditClientService
	paymentService services.PaymentService
}

// NewCreditClientHandler creates a new CreditClientHandler.
func NewCreditClientHandler(cs services.CreditClientService, ps services.PaymentService) *CreditClientHandler {
	return &CreditClientHandler{creditService: cs, paymentService: ps}
}

// CreateCreditClient registers a customer allowed to buy on credit.
func (h *CreditClientHandler) CreateCreditClient(c *gin.Context) {
	var req services.CreateCreditClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	client, err := h.creditService.CreateCreditClient(req)
	if err != nil {
		utils.LogError(err, "CreateCreditClient: Error from creditService.CreateCreditClient")
		if errors.Is(err, services.ErrCreditClientExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A credit client with this email already exists.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create credit client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetCreditClients lists credit clients. ?active_only=true filters.
func (h *CreditClientHandler) GetCreditClients(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	clients, err := h.creditService.GetCreditClients(activeOnly)
	if err != nil {
		utils.LogError(err, "GetCreditClients: Error from creditService.GetCreditClients")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch credit clients.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetCreditClientByID fetches one credit client with their balance.
func (h *CreditClientHandler) GetCreditClientByID(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid credit client ID format.", err.Error()))
		return
	}

	client, err := h.creditService.GetCreditClientByID(clientID)
	if err != nil {
		utils.LogError(err, "GetCreditClientByID: Error from creditService.GetCreditClientByID")
		if errors.Is(err, services.ErrCreditClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Credit client not found.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch credit client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateCreditClient edits a credit client's profile and limit.
func (h *CreditClientHandler) UpdateCreditClient(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid credit client ID format.", err.Error()))
		return
	}

	var req services.UpdateCreditClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	client, err := h.creditService.UpdateCreditClient(clientID, req)
	if err != nil {
		utils.LogError(err, "UpdateCreditClient: Error from creditService.UpdateCreditClient")
		if errors.Is(err, services.ErrCreditClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Credit client not found.", ""))
		} else if errors.Is(err, services.ErrCreditClientExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A credit client with this email already exists.", ""))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update credit client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, client)
}

// RecordRepayment registers money received against a client's balance.
func (h *CreditClientHandler) RecordRepayment(c *gin.Context) {
	cashierID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	clientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid credit client ID format.", err.Error()))
		return
	}

	var req services.RepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	payment, err := h.paymentService.RecordRepayment(cashierID, clientID, req)
	if err != nil {
		utils.LogError(err, "RecordRepayment: Error from paymentService.RecordRepayment")
		if errors.Is(err, services.ErrCreditClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Credit client not found.", ""))
		} else if errors.Is(err, services.ErrNoActiveSession) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "You must have an active shift session to record repayments.", ""))
		} else if errors.Is(err, services.ErrRepaymentExceedsBalance) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Repayment exceeds the client's outstanding credit.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record repayment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, payment)
}
