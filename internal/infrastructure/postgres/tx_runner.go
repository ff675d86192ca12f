package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
	"github.com/jhoicas/Taller-api/pkg/config"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

const (
	baseBackoff = 10 * time.Millisecond
	maxBackoff  = 200 * time.Millisecond
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + row locks).
// Si la BD aborta por contención (deadlock, serialización, lock_timeout) reintenta el callback
// completo hasta MaxRetries veces y luego devuelve domain.ErrConflictRetryable.
type TxRunner struct {
	pool        *pgxpool.Pool
	maxRetries  int
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool y la configuración del ledger.
func NewTxRunner(pool *pgxpool.Pool, cfg config.LedgerConfig) *TxRunner {
	return &TxRunner{
		pool:        pool,
		maxRetries:  cfg.MaxRetries,
		lockTimeout: cfg.LockTimeout(),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	repairRepo repository.RepairRepository,
	lineRepo repository.RepairPartRepository,
	partRepo repository.PartRepository,
	stockRepo repository.StockRepository,
) error) error {
	for attempt := 0; ; attempt++ {
		err := classifyTxError(r.runOnce(ctx, fn))
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflictRetryable) || attempt >= r.maxRetries {
			return err
		}
		wait := backoff(attempt)
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", wait).Msg("transacción abortada por contención, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	repairRepo repository.RepairRepository,
	lineRepo repository.RepairPartRepository,
	partRepo repository.PartRepository,
	stockRepo repository.StockRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// is_local = true: el valor vive solo en esta transacción
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`,
			fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	repairRepo := NewRepairRepository(tx)
	lineRepo := NewRepairPartRepository(tx)
	partRepo := NewPartRepository(tx)
	stockRepo := newStockRepository(tx)

	if err := fn(repairRepo, lineRepo, partRepo, stockRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// backoff espera creciente entre reintentos: 10ms, 20ms, 40ms... con tope maxBackoff.
func backoff(attempt int) time.Duration {
	d := baseBackoff << attempt
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
