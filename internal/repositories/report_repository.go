package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Isba24ha/barliberty-sub000/internal/models"
)

// ReportRepository defines the interface for manager-report aggregate queries.
type ReportRepository interface {
	GetTopProductsByDate(date time.Time) ([]models.TopProduct, error)
	GetSalesByDate(date time.Time) (*models.SalesReport, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// GetTopProductsByDate aggregates items of completed orders created on the
// given day, grouped by product, ordered by revenue, limited to five.
func (r *reportRepository) GetTopProductsByDate(date time.Time) ([]models.TopProduct, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	products := []models.TopProduct{}
	query := `SELECT p.id, p.name, SUM(oi.quantity) AS quantity_sold, SUM(oi.total_price) AS revenue
	          FROM order_items oi
	          JOIN orders o ON oi.order_id = o.id
	          JOIN products p ON oi.product_id = p.id
	          WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at < $2
	          GROUP BY p.id, p.name
	          ORDER BY revenue DESC
	          LIMIT 5`

	rows, err := r.db.Query(query, startOfDay, endOfDay)
	if err != nil {
		return nil, fmt.Errorf("%w: querying top products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tp models.TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.ProductName, &tp.QuantitySold, &tp.Revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning top product: %v", ErrDatabaseError, err)
		}
		products = append(products, tp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating top product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

// GetSalesByDate aggregates one day's payments by method.
func (r *reportRepository) GetSalesByDate(date time.Time) (*models.SalesReport, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	report := &models.SalesReport{Date: startOfDay.Format("2006-01-02")}
	query := `SELECT
	            COALESCE(SUM(amount) FILTER (WHERE method = 'cash'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE method = 'mobile_money'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE method = 'credit'), 0),
	            COALESCE(SUM(amount) FILTER (WHERE method = 'manager_consumption'), 0),
	            COALESCE(SUM(amount), 0),
	            COUNT(*)
	          FROM payments
	          WHERE created_at >= $1 AND created_at < $2`

	err := r.db.QueryRow(query, startOfDay, endOfDay).Scan(
		&report.CashTotal, &report.MobileMoneyTotal, &report.CreditTotal,
		&report.ManagerConsumptionTotal, &report.GrandTotal, &report.PaymentCount,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregating sales for %s: %v", ErrDatabaseError, report.Date, err)
	}
	return report, nil
}
