package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// PartUseCase casos de uso del catálogo de repuestos. El stock solo cambia vía movimientos.
type PartUseCase struct {
	repo         repository.PartRepository
	categoryRepo repository.CategoryRepository
	movementRepo repository.StockMovementRepository
	txRunner     ledger.TxRunner
}

// NewPartUseCase construye el caso de uso.
func NewPartUseCase(
	repo repository.PartRepository,
	categoryRepo repository.CategoryRepository,
	movementRepo repository.StockMovementRepository,
	txRunner ledger.TxRunner,
) *PartUseCase {
	return &PartUseCase{repo: repo, categoryRepo: categoryRepo, movementRepo: movementRepo, txRunner: txRunner}
}

// Create crea un repuesto con stock 0; InitialStock se registra como recepción en la misma transacción.
func (uc *PartUseCase) Create(ctx context.Context, userID string, in dto.CreatePartRequest) (*dto.PartResponse, error) {
	if err := domain.CheckAmount(in.Price); err != nil {
		return nil, err
	}
	if err := domain.CheckAmount(in.Cost); err != nil {
		return nil, err
	}
	if in.InitialStock < 0 || in.MinQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	part := &entity.Part{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		CategoryID:  emptyToNil(in.CategoryID),
		Price:       in.Price,
		Cost:        in.Cost,
		MinQuantity: in.MinQuantity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.txRunner.Run(ctx, func(
		_ repository.RepairRepository,
		_ repository.RepairPartRepository,
		partRepo repository.PartRepository,
		stockRepo repository.StockRepository,
	) error {
		if err := partRepo.Create(ctx, part); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		remaining, err := stockRepo.Receive(ctx, part.ID, in.InitialStock, repository.StockRef{
			Reference: "stock inicial",
			UserID:    userID,
		})
		if err != nil {
			return err
		}
		part.StockQuantity = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := dto.ToPartResponse(part)
	return &out, nil
}

// GetByID obtiene un repuesto por ID (nil si no existe).
func (uc *PartUseCase) GetByID(ctx context.Context, id string) (*dto.PartResponse, error) {
	part, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, nil
	}
	out := dto.ToPartResponse(part)
	return &out, nil
}

// Update actualiza datos del catálogo. No permite modificar el stock.
// Lee y escribe con la fila bloqueada: una recepción concurrente no pierde su costo promedio.
// Un cambio de precio no altera líneas ya registradas (guardan su propio precio).
func (uc *PartUseCase) Update(ctx context.Context, id string, in dto.UpdatePartRequest) (*dto.PartResponse, error) {
	if in.Price != nil {
		if err := domain.CheckAmount(*in.Price); err != nil {
			return nil, err
		}
	}
	if in.Cost != nil {
		if err := domain.CheckAmount(*in.Cost); err != nil {
			return nil, err
		}
	}
	if in.MinQuantity != nil && *in.MinQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	var updated *entity.Part
	err := uc.txRunner.Run(ctx, func(
		_ repository.RepairRepository,
		_ repository.RepairPartRepository,
		partRepo repository.PartRepository,
		_ repository.StockRepository,
	) error {
		part, err := partRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if part == nil {
			return nil
		}
		if in.Name != nil {
			part.Name = *in.Name
		}
		if in.CategoryID != nil {
			part.CategoryID = emptyToNil(in.CategoryID)
		}
		if in.Price != nil {
			part.Price = *in.Price
		}
		if in.Cost != nil {
			part.Cost = *in.Cost
		}
		if in.MinQuantity != nil {
			part.MinQuantity = *in.MinQuantity
		}
		if in.IsActive != nil {
			part.IsActive = *in.IsActive
		}
		part.UpdatedAt = time.Now()
		if err := partRepo.Update(ctx, part); err != nil {
			return err
		}
		updated = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}
	out := dto.ToPartResponse(updated)
	return &out, nil
}

// List lista repuestos con paginación; lowStock filtra los que están en o bajo el punto de reorden.
func (uc *PartUseCase) List(ctx context.Context, lowStock bool, page dto.PageRequest) (*dto.PartListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.PartFilter{LowStock: lowStock, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.PartResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToPartResponse(p))
	}
	return &dto.PartListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}

// Delete elimina un repuesto; falla con ErrPartReferenced si alguna reparación lo usa.
func (uc *PartUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// ListMovements devuelve el historial de stock del repuesto.
func (uc *PartUseCase) ListMovements(ctx context.Context, partID string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	page.DefaultPage()
	part, err := uc.repo.GetByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.movementRepo.ListByPart(ctx, partID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.ToStockMovementResponse(m))
	}
	return out, nil
}

func (uc *PartUseCase) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil || *categoryID == "" {
		return nil
	}
	cat, err := uc.categoryRepo.GetByID(ctx, *categoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return domain.ErrNotFound
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
