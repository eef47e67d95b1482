package models

// TopProduct is one row of the top-products-by-revenue report.
type TopProduct struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// SalesReport aggregates one day's payments by method.
type SalesReport struct {
	Date                    string  `json:"date"`
	CashTotal               float64 `json:"cash_total"`
	MobileMoneyTotal        float64 `json:"mobile_money_total"`
	CreditTotal             float64 `json:"credit_total"`
	ManagerConsumptionTotal float64 `json:"manager_consumption_total"`
	GrandTotal              float64 `json:"grand_total"`
	PaymentCount            int     `json:"payment_count"`
}
