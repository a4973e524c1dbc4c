package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFeeAmount(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		percent string
		want    string
	}{
		{"转账2%", "50.00", "2", "1.00"},
		{"入金5%", "100.00", "5", "5.00"},
		{"提现3%", "30.00", "3", "0.90"},
		{"零费率", "100.00", "0", "0.00"},
		{"不足一分向下", "0.10", "2", "0.00"},
		{"四舍五入进位", "33.33", "2", "0.67"},
		{"半分进位", "25.00", "2", "0.50"},
		{"大额", "99999.99", "2.5", "2500.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tc.amount)
			percent := decimal.RequireFromString(tc.percent)
			got := FeeAmount(amount, percent)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("FeeAmount(%s, %s) = %s, 期望 %s", tc.amount, tc.percent, got.String(), tc.want)
			}
		})
	}
}
