package repository

import (
	"context"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia para reservas de material.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error)
	UpdateStatus(ctx context.Context, reservation *entity.Reservation) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error)
}
