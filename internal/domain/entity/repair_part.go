package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepairPart es una línea del ledger: N unidades de un repuesto consumidas por una reparación,
// al precio vigente al momento de agregarla. No se modifica; un cambio de cantidad es quitar + agregar.
type RepairPart struct {
	ID         string
	RepairID   string
	PartID     string
	PartName   string // solo lectura (join con parts)
	Quantity   int
	UnitPrice  decimal.Decimal // snapshot del precio del catálogo
	TotalPrice decimal.Decimal // Quantity * UnitPrice, calculado una vez
	CreatedAt  time.Time
}
