package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.RepairPartRepository = (*RepairPartRepo)(nil)

// RepairPartRepo líneas repuesto-reparación sobre PostgreSQL. Sin UPDATE: las líneas son inmutables.
type RepairPartRepo struct {
	q Querier
}

// NewRepairPartRepository construye el adaptador de líneas.
func NewRepairPartRepository(q Querier) *RepairPartRepo {
	return &RepairPartRepo{q: q}
}

const lineSelect = `
	SELECT rp.id, rp.repair_id, rp.part_id, p.name, rp.quantity, rp.unit_price, rp.total_price, rp.created_at
	FROM repair_parts rp
	JOIN parts p ON p.id = rp.part_id`

func scanLine(row pgx.Row) (*entity.RepairPart, error) {
	var l entity.RepairPart
	if err := row.Scan(&l.ID, &l.RepairID, &l.PartID, &l.PartName, &l.Quantity, &l.UnitPrice, &l.TotalPrice, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserta la línea con el precio ya congelado.
func (r *RepairPartRepo) Create(ctx context.Context, line *entity.RepairPart) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO repair_parts (id, repair_id, part_id, quantity, unit_price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		line.ID, line.RepairID, line.PartID, line.Quantity, line.UnitPrice, line.TotalPrice, line.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidQuantity
		}
		return fmt.Errorf("insert repair part: %w", err)
	}
	return nil
}

// GetByID obtiene una línea. Devuelve nil, nil si no existe.
func (r *RepairPartRepo) GetByID(ctx context.Context, id string) (*entity.RepairPart, error) {
	l, err := scanLine(r.q.QueryRow(ctx, lineSelect+` WHERE rp.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repair part: %w", err)
	}
	return l, nil
}

// ListByRepair devuelve todas las líneas de la orden en orden de alta.
func (r *RepairPartRepo) ListByRepair(ctx context.Context, repairID string) ([]*entity.RepairPart, error) {
	rows, err := r.q.Query(ctx, lineSelect+` WHERE rp.repair_id = $1 ORDER BY rp.created_at, rp.id`, repairID)
	if err != nil {
		return nil, fmt.Errorf("list repair parts: %w", err)
	}
	defer rows.Close()
	list := []*entity.RepairPart{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repair part: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Delete elimina la línea.
func (r *RepairPartRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM repair_parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete repair part: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
