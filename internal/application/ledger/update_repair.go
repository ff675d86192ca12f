package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repair"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// UpdateRepairInput actualización parcial de una reparación. Solo los campos no nil se aplican.
// TechnicianID con valor "" desasigna el técnico.
type UpdateRepairInput struct {
	RepairID      string
	Status        *string
	TechnicianID  *string
	StartDate     *time.Time
	EndDate       *time.Time
	Description   *string
	EstimatedCost *decimal.Decimal
	LaborCost     *decimal.Decimal
}

// IsEmpty indica si no trae ningún campo reconocido.
func (in UpdateRepairInput) IsEmpty() bool {
	return in.Status == nil && in.TechnicianID == nil && in.StartDate == nil && in.EndDate == nil &&
		in.Description == nil && in.EstimatedCost == nil && in.LaborCost == nil
}

// UpdateRepair aplica los campos permitidos. El estado pasa por la máquina de estados y
// total_cost se recalcula releyendo las líneas (nunca desde una copia previa de parts_cost).
func (uc *RepairLedgerUseCase) UpdateRepair(ctx context.Context, input UpdateRepairInput) (*entity.Repair, error) {
	if input.RepairID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}
	if input.LaborCost != nil {
		if err := domain.CheckAmount(*input.LaborCost); err != nil {
			return nil, err
		}
	}
	if input.EstimatedCost != nil {
		if err := domain.CheckAmount(*input.EstimatedCost); err != nil {
			return nil, err
		}
	}

	var updated *entity.Repair
	err := uc.txRunner.Run(ctx, func(
		repairRepo repository.RepairRepository,
		lineRepo repository.RepairPartRepository,
		_ repository.PartRepository,
		_ repository.StockRepository,
	) error {
		r, err := repairRepo.GetForUpdate(ctx, input.RepairID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		wasTerminal := repair.IsTerminal(r.Status)

		if input.LaborCost != nil && wasTerminal && !input.LaborCost.Equal(r.LaborCost) {
			return domain.ErrRepairClosed
		}

		if input.TechnicianID != nil {
			if *input.TechnicianID == "" {
				r.TechnicianID = nil
			} else {
				techID := *input.TechnicianID
				r.TechnicianID = &techID
			}
		}
		if input.Description != nil {
			r.Description = *input.Description
		}
		if input.EstimatedCost != nil {
			r.EstimatedCost = *input.EstimatedCost
		}
		if input.LaborCost != nil {
			r.LaborCost = *input.LaborCost
		}
		if input.StartDate != nil {
			start := *input.StartDate
			r.StartDate = &start
		}
		if input.EndDate != nil {
			end := *input.EndDate
			r.EndDate = &end
		}

		if input.Status != nil {
			if err := repair.Transition(r.Status, *input.Status); err != nil {
				return err
			}
			if *input.Status != r.Status {
				r.Status = *input.Status
				stampDates(r, now)
			}
		}

		if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
			return fmt.Errorf("%w: la fecha de fin es anterior a la de inicio", domain.ErrInvalidInput)
		}

		r.UpdatedAt = now
		if err := repairRepo.Update(ctx, r); err != nil {
			return err
		}
		if err := recalculate(ctx, repairRepo, lineRepo, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// stampDates completa fecha de inicio/fin al entrar en un estado si no fueron informadas.
func stampDates(r *entity.Repair, now time.Time) {
	switch r.Status {
	case entity.RepairStatusInProgress:
		if r.StartDate == nil {
			r.StartDate = &now
		}
	case entity.RepairStatusCompleted, entity.RepairStatusCancelled:
		if r.EndDate == nil {
			r.EndDate = &now
		}
	}
}
