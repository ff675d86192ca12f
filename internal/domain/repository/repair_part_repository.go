package repository

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// RepairPartRepository define el puerto de persistencia de las líneas repuesto-reparación.
// No hay Update: las líneas son inmutables.
type RepairPartRepository interface {
	Create(ctx context.Context, line *entity.RepairPart) error
	GetByID(ctx context.Context, id string) (*entity.RepairPart, error)
	ListByRepair(ctx context.Context, repairID string) ([]*entity.RepairPart, error)
	Delete(ctx context.Context, id string) error
}
