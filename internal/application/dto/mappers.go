package dto

import "github.com/jhoicas/Taller-api/internal/domain/entity"

// ToRepairResponse convierte la entidad en su DTO de salida.
func ToRepairResponse(r *entity.Repair) RepairResponse {
	return RepairResponse{
		ID:            r.ID,
		VehicleID:     r.VehicleID,
		CustomerID:    r.CustomerID,
		TechnicianID:  r.TechnicianID,
		Status:        r.Status,
		Description:   r.Description,
		LaborCost:     r.LaborCost,
		PartsCost:     r.PartsCost,
		TotalCost:     r.TotalCost,
		EstimatedCost: r.EstimatedCost,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToRepairPartResponse convierte una línea en su DTO de salida.
func ToRepairPartResponse(l *entity.RepairPart) RepairPartResponse {
	return RepairPartResponse{
		ID:         l.ID,
		RepairID:   l.RepairID,
		PartID:     l.PartID,
		PartName:   l.PartName,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
		TotalPrice: l.TotalPrice,
		CreatedAt:  l.CreatedAt,
	}
}

// ToRepairPartResponses convierte una lista de líneas.
func ToRepairPartResponses(lines []*entity.RepairPart) []RepairPartResponse {
	out := make([]RepairPartResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, ToRepairPartResponse(l))
	}
	return out
}

// ToPartResponse convierte un repuesto en su DTO de salida.
func ToPartResponse(p *entity.Part) PartResponse {
	return PartResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		CategoryID:    p.CategoryID,
		Price:         p.Price,
		Cost:          p.Cost,
		StockQuantity: p.StockQuantity,
		MinQuantity:   p.MinQuantity,
		LowStock:      p.IsLowStock(),
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToStockMovementResponse convierte un movimiento en su DTO de salida.
func ToStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:        m.ID,
		PartID:    m.PartID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Reference: m.Reference,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

// ToCategoryResponse convierte una categoría en su DTO de salida.
func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Code: c.Code, Name: c.Name, CreatedAt: c.CreatedAt}
}
