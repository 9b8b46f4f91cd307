package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de evento de dominio.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderArchived      = "order.archived"
	TaskCreated        = "task.created"
	TaskStatusChanged  = "task.status_changed"
	TaskAssigned       = "task.assigned"
	InventoryReceived  = "inventory.received"
	InventoryReserved  = "inventory.reserved"
	InventoryReleased  = "inventory.released"
	InventoryConsumed  = "inventory.consumed"
)

// Event sobre de un evento de dominio. Se publica después del commit de la transacción que lo origina.
type Event struct {
	ID             string           `json:"event_id"`
	Type           string           `json:"type"`
	OrderID        string           `json:"order_id,omitempty"`
	TaskID         string           `json:"task_id,omitempty"`
	MaterialTypeID string           `json:"material_type_id,omitempty"`
	ReservationID  string           `json:"reservation_id,omitempty"`
	UserID         string           `json:"user_id,omitempty"`
	From           string           `json:"from,omitempty"`
	To             string           `json:"to,omitempty"`
	Quantity       *decimal.Decimal `json:"quantity,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// New crea un evento con ID y fecha.
func New(typ string, at time.Time) Event {
	return Event{ID: uuid.New().String(), Type: typ, OccurredAt: at}
}

// Key clave de particionado: el pedido si existe, si no el material o la tarea.
func (e Event) Key() string {
	switch {
	case e.OrderID != "":
		return e.OrderID
	case e.MaterialTypeID != "":
		return e.MaterialTypeID
	default:
		return e.TaskID
	}
}
