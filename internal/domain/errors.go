package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrUnknownReservation  = errors.New("reserva desconocida")
	ErrIllegalTransition   = errors.New("transición de estado no permitida")
	ErrPreconditionNotMet  = errors.New("precondición no cumplida")
	ErrOrderCreationFailed = errors.New("no se pudo crear el pedido")
	ErrIntegrity           = errors.New("inconsistencia en el libro de inventario")
)

// Invalid construye un error de validación con el detalle del campo.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// OrderCreationError indica que la creación de un pedido falló y se revirtieron sus reservas.
// errors.Is coincide tanto con ErrOrderCreationFailed como con la causa (Reason).
type OrderCreationError struct {
	Reason error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrOrderCreationFailed.Error(), e.Reason)
}

func (e *OrderCreationError) Unwrap() []error {
	return []error{ErrOrderCreationFailed, e.Reason}
}

// IntegrityError se reporta cuando el saldo cacheado de un material no coincide
// con el recálculo a partir de los asientos del libro.
type IntegrityError struct {
	MaterialTypeID string
	CachedOnHand   decimal.Decimal
	CachedReserved decimal.Decimal
	LedgerOnHand   decimal.Decimal
	LedgerReserved decimal.Decimal
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: material %s (existencia %s/%s, reservado %s/%s)",
		ErrIntegrity.Error(), e.MaterialTypeID,
		e.CachedOnHand, e.LedgerOnHand, e.CachedReserved, e.LedgerReserved)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
