package repository

import (
	"context"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
)

// CatalogRepository define el puerto de persistencia del catálogo (líneas, tallas, productos).
// Los métodos Get* devuelven (nil, nil) si el registro no existe.
type CatalogRepository interface {
	CreateLine(ctx context.Context, line *entity.Line) error
	GetLine(ctx context.Context, id string) (*entity.Line, error)
	ListLines(ctx context.Context) ([]*entity.Line, error)

	CreateSize(ctx context.Context, size *entity.Size) error
	GetSize(ctx context.Context, id string) (*entity.Size, error)
	ListSizes(ctx context.Context) ([]*entity.Size, error)

	CreateProduct(ctx context.Context, product *entity.Product) error
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	ListProducts(ctx context.Context, lineID string, limit, offset int) ([]*entity.Product, error)
}
