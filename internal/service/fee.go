package service

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FeeAmount 计算平台手续费
//
// fee = amount * percent / 100，保留2位小数
// 舍入规则固定为四舍五入（round half up，decimal.Round 的行为），
// 对账逻辑依赖这个规则，不要改
func FeeAmount(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred).Round(2)
}
