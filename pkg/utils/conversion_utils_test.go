package utils

import "testing"

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{10.006, 10.01},
		{10.004, 10.0},
		{0.1 + 0.2, 0.3},
		{19.999, 20.0},
		{-5.554, -5.55},
	}
	for _, tc := range cases {
		if got := RoundMoney(tc.in); got != tc.want {
			t.Errorf("RoundMoney(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestStrToInt64(t *testing.T) {
	n, err := StrToInt64("42")
	if err != nil || n != 42 {
		t.Fatalf("StrToInt64(42) = %d, %v", n, err)
	}
	if _, err := StrToInt64("abc"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}
