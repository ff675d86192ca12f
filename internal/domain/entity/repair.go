package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de reparación.
const (
	RepairStatusPending    = "pending"
	RepairStatusInProgress = "in_progress"
	RepairStatusCompleted  = "completed"
	RepairStatusCancelled  = "cancelled"
)

// Repair representa una orden de reparación abierta para un vehículo/cliente.
// PartsCost y TotalCost son derivados: solo los escribe el recálculo del ledger.
type Repair struct {
	ID            string
	VehicleID     string
	CustomerID    string
	TechnicianID  *string
	Status        string
	Description   string
	LaborCost     decimal.Decimal // mano de obra (ingresada por el operador)
	PartsCost     decimal.Decimal // Σ total_price de las líneas
	TotalCost     decimal.Decimal // LaborCost + PartsCost
	EstimatedCost decimal.Decimal // informativo, no derivado
	StartDate     *time.Time
	EndDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
