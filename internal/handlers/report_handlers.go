package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Isba24ha/barliberty-sub000/internal/services"
	"github.com/Isba24ha/barliberty-sub000/pkg/utils"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetTopProducts returns the day's best sellers by revenue.
func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	products, err := h.reportService.GetTopProducts(c.Query("date"))
	if err != nil {
		utils.LogError(err, "GetTopProducts: Error from reportService.GetTopProducts")
		if errors.Is(err, services.ErrInvalidReportDate) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date format. Use YYYY-MM-DD.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch top products.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetSalesReport returns the day's totals broken down by payment method.
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	report, err := h.reportService.GetSalesReport(c.Query("date"))
	if err != nil {
		utils.LogError(err, "GetSalesReport: Error from reportService.GetSalesReport")
		if errors.Is(err, services.ErrInvalidReportDate) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date format. Use YYYY-MM-DD.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sales report.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, report)
}
