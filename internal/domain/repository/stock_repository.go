package repository

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// StockRef identifica quién y por qué se mueve el stock (queda en stock_movements).
type StockRef struct {
	Reference string
	UserID    string
}

// StockRepository es la única vía para modificar stock_quantity de un repuesto.
// Solo se obtiene dentro de una transacción del TxRunner; cada llamada registra su movimiento.
type StockRepository interface {
	// Reserve descuenta quantity de forma atómica (check-and-decrement).
	// Devuelve *domain.InsufficientStockError si no alcanza; el stock no cambia.
	Reserve(ctx context.Context, partID string, quantity int, ref StockRef) (remaining int, err error)
	// Release suma quantity sin condición (devolución de una línea quitada).
	Release(ctx context.Context, partID string, quantity int, ref StockRef) (remaining int, err error)
	// Receive suma quantity por entrada de mercancía.
	Receive(ctx context.Context, partID string, quantity int, ref StockRef) (remaining int, err error)
}

// StockMovementRepository consulta el historial de movimientos (solo lectura).
type StockMovementRepository interface {
	ListByPart(ctx context.Context, partID string, limit, offset int) ([]*entity.StockMovement, error)
}
