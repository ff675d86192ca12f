package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// RepairFilter filtros para listar órdenes de reparación.
type RepairFilter struct {
	Status string // vacío = todos
	Limit  int
	Offset int
}

// RepairRepository define el puerto de persistencia de órdenes de reparación.
type RepairRepository interface {
	Create(ctx context.Context, repair *entity.Repair) error
	GetByID(ctx context.Context, id string) (*entity.Repair, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Repair, error)
	// Update persiste los campos editables (estado, técnico, fechas, descripción, estimado, mano de obra).
	// No toca parts_cost ni total_cost.
	Update(ctx context.Context, repair *entity.Repair) error
	// UpdateCosts persiste los totales derivados; solo lo invoca el recálculo del ledger.
	UpdateCosts(ctx context.Context, repairID string, partsCost, totalCost decimal.Decimal) error
	List(ctx context.Context, filter RepairFilter) ([]*entity.Repair, error)
}
