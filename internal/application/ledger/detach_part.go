package ledger

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/repair"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// DetachPartInput entrada para quitar una línea de una reparación.
type DetachPartInput struct {
	RepairID string
	LineID   string
	UserID   string
}

// DetachPart elimina la línea, devuelve al stock exactamente la cantidad que descontó y
// recalcula los totales en la misma transacción.
func (uc *RepairLedgerUseCase) DetachPart(ctx context.Context, input DetachPartInput) error {
	if input.RepairID == "" || input.LineID == "" {
		return domain.ErrInvalidInput
	}

	return uc.txRunner.Run(ctx, func(
		repairRepo repository.RepairRepository,
		lineRepo repository.RepairPartRepository,
		_ repository.PartRepository,
		stockRepo repository.StockRepository,
	) error {
		r, err := repairRepo.GetForUpdate(ctx, input.RepairID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}

		line, err := lineRepo.GetByID(ctx, input.LineID)
		if err != nil {
			return err
		}
		// Una línea de otra reparación se reporta igual que una inexistente
		if line == nil || line.RepairID != r.ID {
			return domain.ErrNotFound
		}
		if repair.IsTerminal(r.Status) {
			return domain.ErrRepairClosed
		}

		if err := lineRepo.Delete(ctx, line.ID); err != nil {
			return err
		}
		if _, err := stockRepo.Release(ctx, line.PartID, line.Quantity, repository.StockRef{
			Reference: line.ID,
			UserID:    input.UserID,
		}); err != nil {
			return err
		}
		return recalculate(ctx, repairRepo, lineRepo, r)
	})
}
