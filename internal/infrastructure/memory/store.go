// Package memory implementa los puertos de persistencia en memoria.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado:
// Commit reemplaza el estado, Rollback la descarta.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

type state struct {
	parts      map[string]entity.Part
	categories map[string]entity.Category
	repairs    map[string]entity.Repair
	lines      map[string]entity.RepairPart
	movements  []entity.StockMovement
}

func newState() *state {
	return &state{
		parts:      make(map[string]entity.Part),
		categories: make(map[string]entity.Category),
		repairs:    make(map[string]entity.Repair),
		lines:      make(map[string]entity.RepairPart),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.parts {
		c.parts[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.repairs {
		c.repairs[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	return c
}

// Store guarda el estado completo y actúa como TxRunner.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; si fn no falla, la copia pasa a ser el estado.
func (s *Store) Run(ctx context.Context, fn func(
	repairRepo repository.RepairRepository,
	lineRepo repository.RepairPartRepository,
	partRepo repository.PartRepository,
	stockRepo repository.StockRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	v := &view{tx: tx}
	if err := fn(&repairRepo{v}, &lineRepo{v}, &partRepo{v}, &stockRepo{v}); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// PartRepository devuelve el repositorio de repuestos fuera de transacción.
func (s *Store) PartRepository() repository.PartRepository { return &partRepo{&view{store: s}} }

// RepairRepository devuelve el repositorio de reparaciones fuera de transacción.
func (s *Store) RepairRepository() repository.RepairRepository { return &repairRepo{&view{store: s}} }

// RepairPartRepository devuelve el repositorio de líneas fuera de transacción.
func (s *Store) RepairPartRepository() repository.RepairPartRepository {
	return &lineRepo{&view{store: s}}
}

// CategoryRepository devuelve el repositorio de categorías.
func (s *Store) CategoryRepository() repository.CategoryRepository {
	return &categoryRepo{&view{store: s}}
}

// StockMovementRepository devuelve el historial de movimientos.
func (s *Store) StockMovementRepository() repository.StockMovementRepository {
	return &movementRepo{&view{store: s}}
}

// view resuelve contra el estado de la transacción o, fuera de ella, contra el estado vigente con lock.
type view struct {
	store *Store
	tx    *state
}

func (v *view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

// ──────────────────────────────────────────────────────────────────────────────
// Repuestos
// ──────────────────────────────────────────────────────────────────────────────

type partRepo struct{ v *view }

func (r *partRepo) Create(_ context.Context, part *entity.Part) error {
	return r.v.do(func(st *state) error {
		for _, p := range st.parts {
			if p.Code == part.Code {
				return domain.ErrDuplicate
			}
		}
		st.parts[part.ID] = *part
		return nil
	})
}

func (r *partRepo) GetByID(_ context.Context, id string) (*entity.Part, error) {
	var out *entity.Part
	_ = r.v.do(func(st *state) error {
		if p, ok := st.parts[id]; ok {
			out = &p
		}
		return nil
	})
	return out, nil
}

func (r *partRepo) GetByCode(_ context.Context, code string) (*entity.Part, error) {
	var out *entity.Part
	_ = r.v.do(func(st *state) error {
		for _, p := range st.parts {
			if p.Code == code {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la transacción ya tiene acceso exclusivo.
func (r *partRepo) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	return r.GetByID(ctx, id)
}

func (r *partRepo) Update(_ context.Context, part *entity.Part) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.parts[part.ID]
		if !ok {
			return domain.ErrNotFound
		}
		stock := cur.StockQuantity
		cur = *part
		cur.StockQuantity = stock
		st.parts[part.ID] = cur
		return nil
	})
}

func (r *partRepo) UpdateCost(_ context.Context, partID string, cost decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.parts[partID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Cost = cost
		st.parts[partID] = cur
		return nil
	})
}

func (r *partRepo) List(_ context.Context, filter repository.PartFilter) ([]*entity.Part, error) {
	var out []*entity.Part
	_ = r.v.do(func(st *state) error {
		for _, p := range st.parts {
			if filter.LowStock && !p.IsLowStock() {
				continue
			}
			if filter.ActiveOnly && !p.IsActive {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *partRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.parts[id]; !ok {
			return domain.ErrNotFound
		}
		for _, l := range st.lines {
			if l.PartID == id {
				return domain.ErrPartReferenced
			}
		}
		delete(st.parts, id)
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock (solo dentro de Run)
// ──────────────────────────────────────────────────────────────────────────────

type stockRepo struct{ v *view }

func (r *stockRepo) Reserve(_ context.Context, partID string, quantity int, ref repository.StockRef) (int, error) {
	var remaining int
	err := r.v.do(func(st *state) error {
		p, ok := st.parts[partID]
		if !ok {
			return domain.ErrNotFound
		}
		if p.StockQuantity < quantity {
			return &domain.InsufficientStockError{PartID: p.ID, PartName: p.Name, Requested: quantity, Available: p.StockQuantity}
		}
		p.StockQuantity -= quantity
		st.parts[partID] = p
		st.addMovement(partID, entity.StockMovementReserve, -quantity, ref)
		remaining = p.StockQuantity
		return nil
	})
	return remaining, err
}

func (r *stockRepo) Release(_ context.Context, partID string, quantity int, ref repository.StockRef) (int, error) {
	return r.increment(partID, quantity, entity.StockMovementRelease, ref)
}

func (r *stockRepo) Receive(_ context.Context, partID string, quantity int, ref repository.StockRef) (int, error) {
	return r.increment(partID, quantity, entity.StockMovementReceipt, ref)
}

func (r *stockRepo) increment(partID string, quantity int, movType string, ref repository.StockRef) (int, error) {
	var remaining int
	err := r.v.do(func(st *state) error {
		p, ok := st.parts[partID]
		if !ok {
			return domain.ErrNotFound
		}
		p.StockQuantity += quantity
		st.parts[partID] = p
		st.addMovement(partID, movType, quantity, ref)
		remaining = p.StockQuantity
		return nil
	})
	return remaining, err
}

func (st *state) addMovement(partID, movType string, quantity int, ref repository.StockRef) {
	st.movements = append(st.movements, entity.StockMovement{
		ID:        uuid.New().String(),
		PartID:    partID,
		Type:      movType,
		Quantity:  quantity,
		Reference: ref.Reference,
		CreatedBy: ref.UserID,
		CreatedAt: time.Now(),
	})
}

type movementRepo struct{ v *view }

func (r *movementRepo) ListByPart(_ context.Context, partID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	_ = r.v.do(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.PartID == partID {
				out = append(out, &m)
			}
		}
		return nil
	})
	return paginate(out, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reparaciones y líneas
// ──────────────────────────────────────────────────────────────────────────────

type repairRepo struct{ v *view }

func (r *repairRepo) Create(_ context.Context, repair *entity.Repair) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.repairs[repair.ID]; ok {
			return domain.ErrDuplicate
		}
		st.repairs[repair.ID] = *repair
		return nil
	})
}

func (r *repairRepo) GetByID(_ context.Context, id string) (*entity.Repair, error) {
	var out *entity.Repair
	_ = r.v.do(func(st *state) error {
		if rep, ok := st.repairs[id]; ok {
			out = &rep
		}
		return nil
	})
	return out, nil
}

func (r *repairRepo) GetForUpdate(ctx context.Context, id string) (*entity.Repair, error) {
	return r.GetByID(ctx, id)
}

// Update conserva parts_cost y total_cost vigentes.
func (r *repairRepo) Update(_ context.Context, repair *entity.Repair) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.repairs[repair.ID]
		if !ok {
			return domain.ErrNotFound
		}
		next := *repair
		next.PartsCost = cur.PartsCost
		next.TotalCost = cur.TotalCost
		next.CreatedAt = cur.CreatedAt
		st.repairs[repair.ID] = next
		return nil
	})
}

func (r *repairRepo) UpdateCosts(_ context.Context, repairID string, partsCost, totalCost decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.repairs[repairID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.PartsCost = partsCost
		cur.TotalCost = totalCost
		st.repairs[repairID] = cur
		return nil
	})
}

func (r *repairRepo) List(_ context.Context, filter repository.RepairFilter) ([]*entity.Repair, error) {
	var out []*entity.Repair
	_ = r.v.do(func(st *state) error {
		for _, rep := range st.repairs {
			if filter.Status != "" && rep.Status != filter.Status {
				continue
			}
			rep := rep
			out = append(out, &rep)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Limit, filter.Offset), nil
}

type lineRepo struct{ v *view }

func (r *lineRepo) Create(_ context.Context, line *entity.RepairPart) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.repairs[line.RepairID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.parts[line.PartID]; !ok {
			return domain.ErrNotFound
		}
		st.lines[line.ID] = *line
		return nil
	})
}

func (r *lineRepo) GetByID(_ context.Context, id string) (*entity.RepairPart, error) {
	var out *entity.RepairPart
	_ = r.v.do(func(st *state) error {
		if l, ok := st.lines[id]; ok {
			l.PartName = st.parts[l.PartID].Name
			out = &l
		}
		return nil
	})
	return out, nil
}

func (r *lineRepo) ListByRepair(_ context.Context, repairID string) ([]*entity.RepairPart, error) {
	out := []*entity.RepairPart{}
	_ = r.v.do(func(st *state) error {
		for _, l := range st.lines {
			if l.RepairID == repairID {
				l := l
				l.PartName = st.parts[l.PartID].Name
				out = append(out, &l)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *lineRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.lines[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.lines, id)
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

type categoryRepo struct{ v *view }

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.v.do(func(st *state) error {
		for _, cur := range st.categories {
			if cur.Code == c.Code {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	_ = r.v.do(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, nil
}

func (r *categoryRepo) GetByCode(_ context.Context, code string) (*entity.Category, error) {
	var out *entity.Category
	_ = r.v.do(func(st *state) error {
		for _, c := range st.categories {
			if c.Code == code {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, nil
}

func (r *categoryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	var out []*entity.Category
	_ = r.v.do(func(st *state) error {
		for _, c := range st.categories {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
