package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva de material.
const (
	ReservationActive   = "ACTIVA"
	ReservationReleased = "LIBERADA"
	ReservationConsumed = "CONSUMIDA"
)

// Reservation separa cantidad de un material para una línea de pedido.
// Mientras está ACTIVA descuenta del disponible pero no de la existencia física.
type Reservation struct {
	ID             string
	MaterialTypeID string
	OrderID        string
	OrderLineID    string
	Quantity       decimal.Decimal
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive indica si la reserva aún retiene material.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}
