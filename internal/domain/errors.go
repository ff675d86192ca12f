package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrConflictRetryable: la BD abortó la transacción por contención (deadlock, serialización,
	// lock_timeout). Es el único error donde reintentar la misma petición es seguro.
	ErrConflictRetryable = errors.New("conflicto de concurrencia, reintente")
)

// Variantes de ErrInvalidInput con motivo legible; errors.Is(err, ErrInvalidInput) sigue siendo true.
var (
	ErrInvalidQuantity   = fmt.Errorf("%w: la cantidad debe ser mayor que cero", ErrInvalidInput)
	ErrEmptyUpdate       = fmt.Errorf("%w: ningún campo reconocido para actualizar", ErrInvalidInput)
	ErrRepairClosed      = fmt.Errorf("%w: la orden de reparación está cerrada", ErrInvalidInput)
	ErrInvalidTransition = fmt.Errorf("%w: transición de estado no permitida", ErrInvalidInput)
	ErrInvalidStatus     = fmt.Errorf("%w: estado desconocido", ErrInvalidInput)
	ErrPartInactive      = fmt.Errorf("%w: el repuesto está inactivo", ErrInvalidInput)
	ErrNegativeAmount    = fmt.Errorf("%w: los montos no pueden ser negativos", ErrInvalidInput)
	ErrAmountScale       = fmt.Errorf("%w: los montos admiten a lo sumo dos decimales", ErrInvalidInput)
	ErrPartReferenced    = fmt.Errorf("%w: el repuesto está asociado a reparaciones", ErrConflict)
)

// InsufficientStockError detalla el faltante para mostrarlo al usuario.
// errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	PartID    string
	PartName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: solicitado %d, disponible %d", e.PartName, e.Requested, e.Available)
}

// Is permite comparar contra ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Reason devuelve el texto posterior al prefijo de ErrInvalidInput (para respuestas HTTP).
func Reason(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	prefix := ErrInvalidInput.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
