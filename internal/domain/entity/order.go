package entity

import (
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderStatus estado de un pedido (EstadoPedido).
type OrderStatus string

const (
	OrderPending      OrderStatus = "PENDIENTE"
	OrderInProgress   OrderStatus = "EN_PROCESO"
	OrderInProduction OrderStatus = "EN_PRODUCCION"
	OrderCompleted    OrderStatus = "COMPLETADO"
	OrderDelivered    OrderStatus = "ENTREGADO"
	OrderCancelled    OrderStatus = "CANCELADO"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderPending:      "Pendiente",
	OrderInProgress:   "En proceso",
	OrderInProduction: "En producción",
	OrderCompleted:    "Completado",
	OrderDelivered:    "Entregado",
	OrderCancelled:    "Cancelado",
}

// Secuencia principal del ciclo de vida; la cancelación se maneja aparte.
var orderNext = map[OrderStatus]OrderStatus{
	OrderPending:      OrderInProgress,
	OrderInProgress:   OrderInProduction,
	OrderInProduction: OrderCompleted,
	OrderCompleted:    OrderDelivered,
}

// ParseOrderStatus valida un estado recibido como texto.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := orderStatusLabels[st]; !ok {
		return "", domain.Invalid("estado de pedido desconocido: %q", s)
	}
	return st, nil
}

// Label devuelve la descripción para mostrar.
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Next devuelve el siguiente estado de la secuencia principal, si existe.
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := orderNext[s]
	return n, ok
}

// Cancellable indica si desde este estado se puede cancelar (estados no terminales).
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderInProgress || s == OrderInProduction
}

// Closed indica un estado terminal a efectos de archivo.
func (s OrderStatus) Closed() bool {
	return s == OrderCompleted || s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo valida una arista del grafo de estados del pedido.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderCancelled {
		return s.Cancellable()
	}
	n, ok := s.Next()
	return ok && n == target
}

// OrderLine línea de un pedido. UnitPrice es una copia del precio del producto al crear el pedido.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal cantidad × precio unitario.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Validate reglas de la línea antes de reservar material.
func (l OrderLine) Validate() error {
	if l.ProductID == "" {
		return domain.Invalid("product_id es requerido")
	}
	if l.Quantity <= 0 {
		return domain.Invalid("quantity debe ser mayor a cero")
	}
	if l.UnitPrice.IsNegative() {
		return domain.Invalid("unit_price no puede ser negativo")
	}
	return nil
}

// Order agregado raíz del pedido; es dueño de sus líneas.
type Order struct {
	ID         string
	CustomerID string
	Status     OrderStatus
	Lines      []OrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

// Total suma de los subtotales de las líneas (derivado, nunca almacenado).
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Archived indica si el pedido fue archivado (borrado lógico).
func (o *Order) Archived() bool {
	return o.ArchivedAt != nil
}

// Clone devuelve una copia profunda del pedido.
func (o *Order) Clone() *Order {
	c := *o
	c.Lines = append([]OrderLine(nil), o.Lines...)
	if o.ArchivedAt != nil {
		t := *o.ArchivedAt
		c.ArchivedAt = &t
	}
	return &c
}
