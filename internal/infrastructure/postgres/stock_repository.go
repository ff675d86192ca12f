package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.StockRepository = (*stockRepo)(nil)

// stockRepo es la autoridad de stock. Sin constructor exportado: solo TxRunner lo crea sobre una tx.
type stockRepo struct {
	q Querier
}

func newStockRepository(q Querier) *stockRepo {
	return &stockRepo{q: q}
}

// Reserve descuenta con un UPDATE condicional: si no alcanza, ninguna fila cambia.
func (r *stockRepo) Reserve(ctx context.Context, partID string, quantity int, ref repository.StockRef) (int, error) {
	var remaining int
	err := r.q.QueryRow(ctx, `
		UPDATE parts SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING stock_quantity`, partID, quantity,
	).Scan(&remaining)
	if err != nil {
		if isNoRows(err) {
			return 0, r.shortage(ctx, partID, quantity)
		}
		if isCheckViolation(err) {
			// la tx ya quedó abortada: no se puede releer el disponible
			return 0, fmt.Errorf("%w: %v", domain.ErrInsufficientStock, err)
		}
		return 0, fmt.Errorf("reserve stock: %w", err)
	}
	if err := r.insertMovement(ctx, partID, entity.StockMovementReserve, -quantity, ref); err != nil {
		return 0, err
	}
	return remaining, nil
}

// Release devuelve quantity al stock (línea quitada).
func (r *stockRepo) Release(ctx context.Context, partID string, quantity int, ref repository.StockRef) (int, error) {
	return r.increment(ctx, partID, quantity, entity.StockMovementRelease, ref)
}

// Receive suma quantity por entrada de mercancía.
func (r *stockRepo) Receive(ctx context.Context, partID string, quantity int, ref repository.StockRef) (int, error) {
	return r.increment(ctx, partID, quantity, entity.StockMovementReceipt, ref)
}

func (r *stockRepo) increment(ctx context.Context, partID string, quantity int, movType string, ref repository.StockRef) (int, error) {
	var remaining int
	err := r.q.QueryRow(ctx, `
		UPDATE parts SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock_quantity`, partID, quantity,
	).Scan(&remaining)
	if err != nil {
		if isNoRows(err) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("%s stock: %w", movType, err)
	}
	if err := r.insertMovement(ctx, partID, movType, quantity, ref); err != nil {
		return 0, err
	}
	return remaining, nil
}

// shortage arma el error de stock insuficiente con la cantidad disponible actual.
func (r *stockRepo) shortage(ctx context.Context, partID string, requested int) error {
	var (
		name      string
		available int
	)
	err := r.q.QueryRow(ctx, `SELECT name, stock_quantity FROM parts WHERE id = $1`, partID).Scan(&name, &available)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("read stock: %w", err)
	}
	return &domain.InsufficientStockError{PartID: partID, PartName: name, Requested: requested, Available: available}
}

func (r *stockRepo) insertMovement(ctx context.Context, partID, movType string, quantity int, ref repository.StockRef) error {
	var createdBy *string
	if ref.UserID != "" {
		createdBy = &ref.UserID
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, part_id, type, quantity, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		uuid.New().String(), partID, movType, quantity, ref.Reference, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}
