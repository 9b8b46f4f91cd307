package repository

import (
	"context"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
)

// LedgerRepository define el puerto del libro de inventario (solo inserción).
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// ListByMaterial devuelve los asientos de un material en orden de inserción.
	ListByMaterial(ctx context.Context, materialTypeID string) ([]*entity.LedgerEntry, error)
}
