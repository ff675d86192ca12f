package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRepairRequest body para POST /api/repairs.
type CreateRepairRequest struct {
	VehicleID     string           `json:"vehicle_id" validate:"required"`
	CustomerID    string           `json:"customer_id" validate:"required"`
	TechnicianID  *string          `json:"technician_id,omitempty"`
	Description   string           `json:"description" validate:"max=2000"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost,omitempty"`
	LaborCost     *decimal.Decimal `json:"labor_cost,omitempty"`
}

// UpdateRepairRequest body para PATCH /api/repairs/:id (solo campos permitidos; el resto se ignora).
type UpdateRepairRequest struct {
	Status        *string          `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	TechnicianID  *string          `json:"technician_id,omitempty"`
	StartDate     *time.Time       `json:"start_date,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost,omitempty"`
	LaborCost     *decimal.Decimal `json:"labor_cost,omitempty"`
}

// AttachPartRequest body para POST /api/repairs/:id/parts.
type AttachPartRequest struct {
	PartID   string `json:"part_id" validate:"required,uuid"`
	Quantity int    `json:"quantity"`
}

// RepairResponse salida de una orden de reparación.
type RepairResponse struct {
	ID            string          `json:"id"`
	VehicleID     string          `json:"vehicle_id"`
	CustomerID    string          `json:"customer_id"`
	TechnicianID  *string         `json:"technician_id"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	PartsCost     decimal.Decimal `json:"parts_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	StartDate     *time.Time      `json:"start_date"`
	EndDate       *time.Time      `json:"end_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RepairDetailResponse reparación con sus líneas de repuestos.
type RepairDetailResponse struct {
	RepairResponse
	Parts []RepairPartResponse `json:"parts"`
}

// RepairListResponse lista paginada de reparaciones.
type RepairListResponse struct {
	Items []RepairResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// RepairPartResponse salida de una línea repuesto-reparación.
type RepairPartResponse struct {
	ID         string          `json:"id"`
	RepairID   string          `json:"repair_id"`
	PartID     string          `json:"part_id"`
	PartName   string          `json:"part_name,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}
