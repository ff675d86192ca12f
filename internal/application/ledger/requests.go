package ledger

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/application/dto"
)

// AttachPartFromRequest adapta el request HTTP al caso de uso AttachPart.
func (uc *RepairLedgerUseCase) AttachPartFromRequest(ctx context.Context, userID, repairID string, in dto.AttachPartRequest) (*dto.RepairPartResponse, error) {
	line, err := uc.AttachPart(ctx, AttachPartInput{
		RepairID: repairID,
		PartID:   in.PartID,
		Quantity: in.Quantity,
		UserID:   userID,
	})
	if err != nil {
		return nil, err
	}
	out := dto.ToRepairPartResponse(line)
	return &out, nil
}

// UpdateRepairFromRequest adapta el PATCH HTTP al caso de uso UpdateRepair.
func (uc *RepairLedgerUseCase) UpdateRepairFromRequest(ctx context.Context, repairID string, in dto.UpdateRepairRequest) (*dto.RepairResponse, error) {
	r, err := uc.UpdateRepair(ctx, UpdateRepairInput{
		RepairID:      repairID,
		Status:        in.Status,
		TechnicianID:  in.TechnicianID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Description:   in.Description,
		EstimatedCost: in.EstimatedCost,
		LaborCost:     in.LaborCost,
	})
	if err != nil {
		return nil, err
	}
	out := dto.ToRepairResponse(r)
	return &out, nil
}

// ReceiveStockFromRequest adapta el request HTTP al caso de uso ReceiveStock.
func (uc *RepairLedgerUseCase) ReceiveStockFromRequest(ctx context.Context, userID, partID string, in dto.ReceiveStockRequest) (*dto.PartResponse, error) {
	p, err := uc.ReceiveStock(ctx, ReceiveStockInput{
		PartID:    partID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Reference: in.Reference,
		UserID:    userID,
	})
	if err != nil {
		return nil, err
	}
	out := dto.ToPartResponse(p)
	return &out, nil
}
