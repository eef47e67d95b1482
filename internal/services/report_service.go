package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
	"github.com/Isba24ha/barliberty-sub000/internal/repositories"
)

var ErrInvalidReportDate = errors.New("invalid report date, expected YYYY-MM-DD")

// --- ReportService Interface ---
type ReportService interface {
	GetTopProducts(date string) ([]models.TopProduct, error)
	GetSalesReport(date string) (*models.SalesReport, error)
}

type reportService struct {
	reportRepo repositories.ReportRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(rr repositories.ReportRepository) ReportService {
	return &reportService{reportRepo: rr}
}

func parseReportDate(date string) (time.Time, error) {
	if date == "" {
		// Default to today when no date is supplied.
		return time.Now(), nil
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidReportDate, date)
	}
	return parsed, nil
}

func (s *reportService) GetTopProducts(date string) ([]models.TopProduct, error) {
	day, err := parseReportDate(date)
	if err != nil {
		return nil, err
	}
	products, err := s.reportRepo.GetTopProductsByDate(day)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	return products, nil
}

func (s *reportService) GetSalesReport(date string) (*models.SalesReport, error) {
	day, err := parseReportDate(date)
	if err != nil {
		return nil, err
	}
	report, err := s.reportRepo.GetSalesByDate(day)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales report: %w", err)
	}
	return report, nil
}
