package repository

import (
	"context"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
)

// MaterialTypeRepository define el puerto para tipos de material y su saldo cacheado.
type MaterialTypeRepository interface {
	Create(ctx context.Context, material *entity.MaterialType) error
	GetByID(ctx context.Context, id string) (*entity.MaterialType, error)
	// GetForUpdate bloquea la fila del material hasta el fin de la transacción (SELECT FOR UPDATE NOWAIT).
	GetForUpdate(ctx context.Context, id string) (*entity.MaterialType, error)
	List(ctx context.Context) ([]*entity.MaterialType, error)
	// UpdateBalance persiste OnHand y Reserved; solo lo invoca el libro de inventario.
	UpdateBalance(ctx context.Context, material *entity.MaterialType) error
}
