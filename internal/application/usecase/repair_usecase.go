package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repair"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// RepairUseCase apertura y consultas de órdenes de reparación.
// Las mutaciones que afectan costos o stock viven en ledger.RepairLedgerUseCase.
type RepairUseCase struct {
	repo     repository.RepairRepository
	lineRepo repository.RepairPartRepository
}

// NewRepairUseCase construye el caso de uso.
func NewRepairUseCase(repo repository.RepairRepository, lineRepo repository.RepairPartRepository) *RepairUseCase {
	return &RepairUseCase{repo: repo, lineRepo: lineRepo}
}

// Create abre una orden en estado pending, sin repuestos.
func (uc *RepairUseCase) Create(ctx context.Context, in dto.CreateRepairRequest) (*dto.RepairResponse, error) {
	labor := decimal.Zero
	if in.LaborCost != nil {
		labor = *in.LaborCost
	}
	estimated := decimal.Zero
	if in.EstimatedCost != nil {
		estimated = *in.EstimatedCost
	}
	if err := domain.CheckAmount(labor); err != nil {
		return nil, err
	}
	if err := domain.CheckAmount(estimated); err != nil {
		return nil, err
	}
	now := time.Now()
	partsCost, totalCost := repair.Rollup(labor, nil)
	r := &entity.Repair{
		ID:            uuid.New().String(),
		VehicleID:     in.VehicleID,
		CustomerID:    in.CustomerID,
		TechnicianID:  emptyToNil(in.TechnicianID),
		Status:        entity.RepairStatusPending,
		Description:   in.Description,
		LaborCost:     labor,
		PartsCost:     partsCost,
		TotalCost:     totalCost,
		EstimatedCost: estimated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	out := dto.ToRepairResponse(r)
	return &out, nil
}

// GetByID devuelve la orden con sus líneas (nil si no existe).
func (uc *RepairUseCase) GetByID(ctx context.Context, id string) (*dto.RepairDetailResponse, error) {
	r, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	lines, err := uc.lineRepo.ListByRepair(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.RepairDetailResponse{
		RepairResponse: dto.ToRepairResponse(r),
		Parts:          dto.ToRepairPartResponses(lines),
	}, nil
}

// ListParts devuelve las líneas de la orden; ErrNotFound si la orden no existe.
func (uc *RepairUseCase) ListParts(ctx context.Context, repairID string) ([]dto.RepairPartResponse, error) {
	r, err := uc.repo.GetByID(ctx, repairID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.lineRepo.ListByRepair(ctx, repairID)
	if err != nil {
		return nil, err
	}
	return dto.ToRepairPartResponses(lines), nil
}

// List lista órdenes, opcionalmente filtradas por estado.
func (uc *RepairUseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.RepairListResponse, error) {
	if status != "" && !repair.IsValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.RepairFilter{Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.RepairResponse, 0, len(list))
	for _, r := range list {
		items = append(items, dto.ToRepairResponse(r))
	}
	return &dto.RepairListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}
