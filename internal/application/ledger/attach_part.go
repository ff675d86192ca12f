package ledger

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repair"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// AttachPartInput entrada para agregar un repuesto a una reparación.
type AttachPartInput struct {
	RepairID string
	PartID   string
	Quantity int
	UserID   string
}

// AttachPart agrega Quantity unidades del repuesto a la reparación al precio vigente del catálogo,
// descuenta el stock y recalcula los totales. Todo en una transacción: si algo falla no queda
// línea, ni descuento de stock, ni cambio de totales.
func (uc *RepairLedgerUseCase) AttachPart(ctx context.Context, input AttachPartInput) (*entity.RepairPart, error) {
	if input.RepairID == "" || input.PartID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var created *entity.RepairPart
	err := uc.txRunner.Run(ctx, func(
		repairRepo repository.RepairRepository,
		lineRepo repository.RepairPartRepository,
		partRepo repository.PartRepository,
		stockRepo repository.StockRepository,
	) error {
		// 1. Bloquea la orden primero (orden fijo de locks: reparación -> repuesto)
		r, err := repairRepo.GetForUpdate(ctx, input.RepairID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if repair.IsTerminal(r.Status) {
			return domain.ErrRepairClosed
		}

		// 2. Bloquea el repuesto y valida existencias
		part, err := partRepo.GetForUpdate(ctx, input.PartID)
		if err != nil {
			return err
		}
		if part == nil {
			return domain.ErrNotFound
		}
		if !part.IsActive {
			return domain.ErrPartInactive
		}
		if input.Quantity > part.StockQuantity {
			return &domain.InsufficientStockError{
				PartID:    part.ID,
				PartName:  part.Name,
				Requested: input.Quantity,
				Available: part.StockQuantity,
			}
		}

		// 3. Snapshot del precio y alta de la línea
		line := &entity.RepairPart{
			ID:         uc.newID(),
			RepairID:   r.ID,
			PartID:     part.ID,
			PartName:   part.Name,
			Quantity:   input.Quantity,
			UnitPrice:  part.Price,
			TotalPrice: repair.LineTotal(input.Quantity, part.Price),
			CreatedAt:  uc.now(),
		}
		if err := lineRepo.Create(ctx, line); err != nil {
			return err
		}

		// 4. Descuento de stock (check-and-decrement atómico en el repositorio)
		if _, err := stockRepo.Reserve(ctx, part.ID, input.Quantity, repository.StockRef{
			Reference: line.ID,
			UserID:    input.UserID,
		}); err != nil {
			return err
		}

		// 5. Recalcula totales desde el conjunto completo de líneas
		if err := recalculate(ctx, repairRepo, lineRepo, r); err != nil {
			return err
		}
		created = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
