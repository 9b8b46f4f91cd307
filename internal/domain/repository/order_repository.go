package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
)

// OrderFilter criterios de listado de pedidos.
type OrderFilter struct {
	Status          entity.OrderStatus // vacío = todos
	IncludeArchived bool
	Limit           int
	Offset          int
}

// OrderRepository define el puerto de persistencia del agregado Order (cabecera + líneas).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, at time.Time) error
	Archive(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
}
