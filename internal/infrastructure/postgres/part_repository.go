package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

const partColumns = `id, code, name, category_id, price, cost, stock_quantity, min_quantity, is_active, created_at, updated_at`

// PartRepo implementación del puerto PartRepository sobre PostgreSQL (usable con pool o tx).
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador de persistencia para repuestos. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

func scanPart(row pgx.Row) (*entity.Part, error) {
	var p entity.Part
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.Price, &p.Cost,
		&p.StockQuantity, &p.MinQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo repuesto. El stock inicial se carga después vía StockRepository.Receive.
func (r *PartRepo) Create(ctx context.Context, part *entity.Part) error {
	query := `
		INSERT INTO parts (` + partColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		part.ID, part.Code, part.Name, part.CategoryID, part.Price, part.Cost,
		part.MinQuantity, part.IsActive, part.CreatedAt, part.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: la categoría no existe", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert part: %w", err)
	}
	part.StockQuantity = 0
	return nil
}

// GetByID obtiene un repuesto por ID. Devuelve nil, nil si no existe.
func (r *PartRepo) GetByID(ctx context.Context, id string) (*entity.Part, error) {
	p, err := scanPart(r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return p, nil
}

// GetByCode obtiene un repuesto por código.
func (r *PartRepo) GetByCode(ctx context.Context, code string) (*entity.Part, error) {
	p, err := scanPart(r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE code = $1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part by code: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene el repuesto y bloquea la fila (SELECT FOR UPDATE).
func (r *PartRepo) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	p, err := scanPart(r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part for update: %w", err)
	}
	return p, nil
}

// Update actualiza los datos de catálogo. No modifica stock_quantity (solo vía StockRepository).
func (r *PartRepo) Update(ctx context.Context, part *entity.Part) error {
	query := `
		UPDATE parts SET name = $2, category_id = $3, price = $4, cost = $5, min_quantity = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		part.ID, part.Name, part.CategoryID, part.Price, part.Cost, part.MinQuantity, part.IsActive, part.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: la categoría no existe", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update part: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo promedio (usado por la recepción de mercancía).
func (r *PartRepo) UpdateCost(ctx context.Context, partID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE parts SET cost = $2, updated_at = now() WHERE id = $1`, partID, cost)
	if err != nil {
		return fmt.Errorf("update part cost: %w", err)
	}
	return nil
}

// List lista repuestos por código con paginación y filtros opcionales.
func (r *PartRepo) List(ctx context.Context, filter repository.PartFilter) ([]*entity.Part, error) {
	query := `
		SELECT ` + partColumns + ` FROM parts
		WHERE ($1 = false OR stock_quantity <= min_quantity)
		  AND ($2 = false OR is_active)
		ORDER BY code
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, filter.LowStock, filter.ActiveOnly, limitOrAll(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un repuesto. Si alguna línea lo referencia la FK (ON DELETE RESTRICT) lo impide.
func (r *PartRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrPartReferenced
		}
		return fmt.Errorf("delete part: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// limitOrAll traduce limit <= 0 a NULL (LIMIT NULL = sin límite en PostgreSQL).
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
