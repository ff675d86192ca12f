package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// PartFilter filtros para listar repuestos.
type PartFilter struct {
	LowStock   bool // solo stock_quantity <= min_quantity
	ActiveOnly bool
	Limit      int
	Offset     int
}

// PartRepository define el puerto de persistencia del catálogo de repuestos (DIP).
// Ningún método escribe stock_quantity: eso es exclusivo de StockRepository.
type PartRepository interface {
	Create(ctx context.Context, part *entity.Part) error
	GetByID(ctx context.Context, id string) (*entity.Part, error)
	GetByCode(ctx context.Context, code string) (*entity.Part, error)
	// GetForUpdate bloquea la fila del repuesto (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Part, error)
	Update(ctx context.Context, part *entity.Part) error
	UpdateCost(ctx context.Context, partID string, cost decimal.Decimal) error
	List(ctx context.Context, filter PartFilter) ([]*entity.Part, error)
	// Delete devuelve domain.ErrPartReferenced si alguna línea de reparación lo referencia.
	Delete(ctx context.Context, id string) error
}
