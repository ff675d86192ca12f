package entity

import "time"

// Tipos de movimiento de stock.
const (
	StockMovementReserve = "reserve" // salida por línea agregada a una reparación
	StockMovementRelease = "release" // devolución por línea quitada
	StockMovementReceipt = "receipt" // entrada de mercancía
)

// StockMovement es el registro de auditoría de cada cambio de existencias de un repuesto.
type StockMovement struct {
	ID        string
	PartID    string
	Type      string
	Quantity  int    // positivo entrada, negativo salida
	Reference string // id de línea/reparación o nota de recepción
	CreatedBy string // UserID
	CreatedAt time.Time
}
