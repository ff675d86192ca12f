package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repair"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// RepairLedgerUseCase concentra las operaciones que mutan reparaciones, líneas y stock
// (agregar repuesto, quitar repuesto, editar reparación, recibir mercancía).
// Cada operación es una sola transacción con bloqueo de filas en orden fijo:
// reparación -> línea -> repuesto.
type RepairLedgerUseCase struct {
	txRunner TxRunner
	now      func() time.Time
	newID    func() string
}

// NewRepairLedgerUseCase construye el caso de uso.
func NewRepairLedgerUseCase(txRunner TxRunner) *RepairLedgerUseCase {
	return &RepairLedgerUseCase{
		txRunner: txRunner,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// recalculate relee todas las líneas de la reparación dentro de la transacción y persiste
// parts_cost y total_cost. Es el único sitio donde se escriben los totales derivados.
func recalculate(
	ctx context.Context,
	repairRepo repository.RepairRepository,
	lineRepo repository.RepairPartRepository,
	r *entity.Repair,
) error {
	lines, err := lineRepo.ListByRepair(ctx, r.ID)
	if err != nil {
		return err
	}
	partsCost, totalCost := repair.Rollup(r.LaborCost, lines)
	if err := repairRepo.UpdateCosts(ctx, r.ID, partsCost, totalCost); err != nil {
		return err
	}
	r.PartsCost = partsCost
	r.TotalCost = totalCost
	return nil
}
