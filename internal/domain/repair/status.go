package repair

import (
	"fmt"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// transitions es la tabla de transiciones permitidas (estado actual -> destinos).
// completed y cancelled son terminales.
var transitions = map[string][]string{
	entity.RepairStatusPending:    {entity.RepairStatusInProgress, entity.RepairStatusCancelled},
	entity.RepairStatusInProgress: {entity.RepairStatusCompleted, entity.RepairStatusCancelled},
	entity.RepairStatusCompleted:  {},
	entity.RepairStatusCancelled:  {},
}

// IsValidStatus indica si el estado pertenece al enum.
func IsValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// IsTerminal indica si el estado ya no admite cambios que afecten costos.
func IsTerminal(status string) bool {
	return status == entity.RepairStatusCompleted || status == entity.RepairStatusCancelled
}

// CanTransition indica si from -> to está permitido. Asignar el mismo estado no es una transición.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition valida el cambio de estado y devuelve error de dominio si no aplica.
func Transition(from, to string) error {
	if !IsValidStatus(to) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, to)
	}
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}
