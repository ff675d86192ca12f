package repair

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// Rollup calcula los totales derivados de una reparación a partir del conjunto completo de sus líneas.
// PartsCost = Σ line.TotalPrice; TotalCost = LaborCost + PartsCost.
// Es pura e idempotente: nunca ajusta incrementalmente un valor previo.
func Rollup(laborCost decimal.Decimal, lines []*entity.RepairPart) (partsCost, totalCost decimal.Decimal) {
	partsCost = decimal.Zero
	for _, l := range lines {
		partsCost = partsCost.Add(l.TotalPrice)
	}
	return partsCost, laborCost.Add(partsCost)
}

// LineTotal calcula el total de una línea (cantidad * precio unitario).
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
