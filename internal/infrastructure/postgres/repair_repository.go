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

var _ repository.RepairRepository = (*RepairRepo)(nil)

const repairColumns = `id, vehicle_id, customer_id, technician_id, status, description,
	labor_cost, parts_cost, total_cost, estimated_cost, start_date, end_date, created_at, updated_at`

// RepairRepo implementación de RepairRepository sobre PostgreSQL (usable con pool o tx).
type RepairRepo struct {
	q Querier
}

// NewRepairRepository construye el adaptador de órdenes de reparación.
func NewRepairRepository(q Querier) *RepairRepo {
	return &RepairRepo{q: q}
}

func scanRepair(row pgx.Row) (*entity.Repair, error) {
	var r entity.Repair
	err := row.Scan(&r.ID, &r.VehicleID, &r.CustomerID, &r.TechnicianID, &r.Status, &r.Description,
		&r.LaborCost, &r.PartsCost, &r.TotalCost, &r.EstimatedCost, &r.StartDate, &r.EndDate,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create persiste una nueva orden.
func (r *RepairRepo) Create(ctx context.Context, repair *entity.Repair) error {
	query := `
		INSERT INTO repairs (` + repairColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		repair.ID, repair.VehicleID, repair.CustomerID, repair.TechnicianID, repair.Status, repair.Description,
		repair.LaborCost, repair.PartsCost, repair.TotalCost, repair.EstimatedCost, repair.StartDate, repair.EndDate,
		repair.CreatedAt, repair.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert repair: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID. Devuelve nil, nil si no existe.
func (r *RepairRepo) GetByID(ctx context.Context, id string) (*entity.Repair, error) {
	rep, err := scanRepair(r.q.QueryRow(ctx, `SELECT `+repairColumns+` FROM repairs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repair: %w", err)
	}
	return rep, nil
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
// Es el primer lock de toda operación del ledger.
func (r *RepairRepo) GetForUpdate(ctx context.Context, id string) (*entity.Repair, error) {
	rep, err := scanRepair(r.q.QueryRow(ctx, `SELECT `+repairColumns+` FROM repairs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repair for update: %w", err)
	}
	return rep, nil
}

// Update persiste los campos editables. parts_cost y total_cost quedan fuera.
func (r *RepairRepo) Update(ctx context.Context, repair *entity.Repair) error {
	query := `
		UPDATE repairs SET status = $2, technician_id = $3, description = $4, estimated_cost = $5,
			labor_cost = $6, start_date = $7, end_date = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		repair.ID, repair.Status, repair.TechnicianID, repair.Description, repair.EstimatedCost,
		repair.LaborCost, repair.StartDate, repair.EndDate, repair.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update repair: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCosts persiste los totales derivados.
func (r *RepairRepo) UpdateCosts(ctx context.Context, repairID string, partsCost, totalCost decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE repairs SET parts_cost = $2, total_cost = $3, updated_at = now() WHERE id = $1`,
		repairID, partsCost, totalCost,
	)
	if err != nil {
		return fmt.Errorf("update repair costs: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista órdenes (más recientes primero) con filtro opcional por estado.
func (r *RepairRepo) List(ctx context.Context, filter repository.RepairFilter) ([]*entity.Repair, error) {
	query := `
		SELECT ` + repairColumns + ` FROM repairs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, filter.Status, limitOrAll(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list repairs: %w", err)
	}
	defer rows.Close()
	var list []*entity.Repair
	for rows.Next() {
		rep, err := scanRepair(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repair: %w", err)
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}
