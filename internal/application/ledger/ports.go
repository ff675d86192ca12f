package ledger

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback completo: ni línea, ni movimiento de stock, ni totales.
// Las implementaciones devuelven domain.ErrConflictRetryable cuando la BD aborta por contención.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		repairRepo repository.RepairRepository,
		lineRepo repository.RepairPartRepository,
		partRepo repository.PartRepository,
		stockRepo repository.StockRepository,
	) error) error
}
