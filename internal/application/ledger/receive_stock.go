package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/catalog"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// ReceiveStockInput entrada de mercancía para un repuesto.
// UnitCost opcional: si viene, actualiza el costo promedio ponderado del repuesto.
type ReceiveStockInput struct {
	PartID    string
	Quantity  int
	UnitCost  *decimal.Decimal
	Reference string
	UserID    string
}

// ReceiveStock suma existencias a un repuesto vía la autoridad de stock (con su movimiento).
func (uc *RepairLedgerUseCase) ReceiveStock(ctx context.Context, input ReceiveStockInput) (*entity.Part, error) {
	if input.PartID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if input.UnitCost != nil {
		if err := domain.CheckAmount(*input.UnitCost); err != nil {
			return nil, err
		}
	}

	var out *entity.Part
	err := uc.txRunner.Run(ctx, func(
		_ repository.RepairRepository,
		_ repository.RepairPartRepository,
		partRepo repository.PartRepository,
		stockRepo repository.StockRepository,
	) error {
		part, err := partRepo.GetForUpdate(ctx, input.PartID)
		if err != nil {
			return err
		}
		if part == nil {
			return domain.ErrNotFound
		}
		if input.UnitCost != nil {
			newCost := catalog.CostCalculator(part.StockQuantity, part.Cost, input.Quantity, *input.UnitCost)
			if err := partRepo.UpdateCost(ctx, part.ID, newCost); err != nil {
				return err
			}
			part.Cost = newCost
		}
		ref := input.Reference
		if ref == "" {
			ref = "recepción"
		}
		remaining, err := stockRepo.Receive(ctx, part.ID, input.Quantity, repository.StockRef{
			Reference: ref,
			UserID:    input.UserID,
		})
		if err != nil {
			return err
		}
		part.StockQuantity = remaining
		out = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
