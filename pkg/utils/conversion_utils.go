package utils

import (
	"math"
	"strconv"
)

// Int64ToStr converts an int64 to its string representation.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// StrToInt64 converts a string to an int64.
func StrToInt64(s string) (int64, error) {
	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}

// RoundMoney rounds a monetary amount to two decimal places.
// Amounts are stored as NUMERIC(10,2) in the database; this keeps
// server-side arithmetic consistent with what gets persisted.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
