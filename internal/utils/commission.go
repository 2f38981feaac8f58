package utils

import (
	"github.com/shopspring/decimal"

	"bliss-balance-backend/internal/domain"
)

// CommissionAmount computes the platform's cut of a purchase in minor
// units: round(gross × rate / 100), half away from zero. Rates may be
// fractional percentages, so the arithmetic runs on decimals rather than
// floats.
func CommissionAmount(gross int64, ratePercent float64) int64 {
	if gross <= 0 || ratePercent <= 0 {
		return 0
	}
	rate := decimal.NewFromFloat(ratePercent)
	amount := decimal.NewFromInt(gross).Mul(rate).Div(decimal.NewFromInt(100))
	return amount.Round(0).IntPart()
}

// MerchantNet is the amount credited to the merchant for a purchase.
func MerchantNet(gross, commission int64) int64 {
	return gross - commission
}

// ValidCommissionRate reports whether a rate is usable as a percentage.
func ValidCommissionRate(ratePercent float64) bool {
	return ratePercent >= 0 && ratePercent <= 100
}

// EffectiveRate picks the merchant's own rate when set, otherwise the
// global default configured by the administrator.
func EffectiveRate(merchant *domain.Account, globalPercent float64) float64 {
	if merchant.CommissionRate != nil {
		return *merchant.CommissionRate
	}
	return globalPercent
}
