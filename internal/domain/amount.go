package domain

import "github.com/shopspring/decimal"

// AmountScale es la cantidad de decimales que persiste NUMERIC(14,2).
const AmountScale = 2

// CheckAmount valida un monto de dinero: no negativo y con a lo sumo dos decimales
// (10.50 y 10.500 pasan, 10.005 no).
func CheckAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativeAmount
	}
	if !d.Equal(d.Round(AmountScale)) {
		return ErrAmountScale
	}
	return nil
}
