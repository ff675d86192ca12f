package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part representa un repuesto del catálogo del taller.
// StockQuantity solo cambia vía StockRepository (reservar, liberar, recibir); nunca por edición del catálogo.
type Part struct {
	ID            string
	Code          string // código interno único
	Name          string
	CategoryID    *string
	Price         decimal.Decimal // precio de venta unitario
	Cost          decimal.Decimal // costo unitario de compra
	StockQuantity int             // existencias en bodega (>= 0)
	MinQuantity   int             // punto de reorden
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica si el repuesto está en o por debajo del punto de reorden.
func (p *Part) IsLowStock() bool {
	return p.StockQuantity <= p.MinQuantity
}
