package models

import "time"

// Payment methods. manager_consumption is a zero-charge method reserved for
// designated staff accounts.
const (
	PaymentCash               = "cash"
	PaymentMobileMoney        = "mobile_money"
	PaymentCredit             = "credit"
	PaymentManagerConsumption = "manager_consumption"
)

// Payment belongs to an order, or to a credit client alone for standalone
// credit repayments.
type Payment struct {
	ID             int64     `json:"id" db:"id"`
	OrderID        *int64    `json:"order_id,omitempty" db:"order_id"`
	CreditClientID *int64    `json:"credit_client_id,omitempty" db:"credit_client_id"`
	CashierID      int64     `json:"cashier_id" db:"cashier_id"`
	SessionID      int64     `json:"session_id" db:"session_id"`
	Method         string    `json:"method" db:"method"`
	Amount         float64   `json:"amount" db:"amount"`
	ReceivedAmount *float64  `json:"received_amount,omitempty" db:"received_amount"`
	ChangeAmount   *float64  `json:"change_amount,omitempty" db:"change_amount"`
	IsPartial      bool      `json:"is_partial" db:"is_partial"`
	ReceiptNumber  string    `json:"receipt_number" db:"receipt_number"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// IsValidPaymentMethod reports whether method is one of the known methods.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentMobileMoney, PaymentCredit, PaymentManagerConsumption:
		return true
	default:
		return false
	}
}
