package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
)

// UseCase casos de uso del catálogo: líneas, tallas y productos con su ficha técnica.
type UseCase struct {
	catalog   repository.CatalogRepository
	materials repository.MaterialTypeRepository
}

// NewUseCase construye el caso de uso. materials se usa para validar la ficha técnica.
func NewUseCase(catalog repository.CatalogRepository, materials repository.MaterialTypeRepository) *UseCase {
	return &UseCase{catalog: catalog, materials: materials}
}

// CreateLine crea una línea de producto.
func (uc *UseCase) CreateLine(ctx context.Context, in dto.CreateLineRequest) (*dto.LineResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name es requerido")
	}
	now := time.Now()
	line := &entity.Line{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.catalog.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	out := dto.NewLineResponse(line)
	return &out, nil
}

// ListLines lista las líneas ordenadas por nombre.
func (uc *UseCase) ListLines(ctx context.Context) ([]dto.LineResponse, error) {
	list, err := uc.catalog.ListLines(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LineResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.NewLineResponse(l))
	}
	return out, nil
}

// CreateSize crea una talla; el código se normaliza a mayúsculas y es único.
func (uc *UseCase) CreateSize(ctx context.Context, in dto.CreateSizeRequest) (*dto.SizeResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, domain.Invalid("code es requerido")
	}
	now := time.Now()
	size := &entity.Size{
		ID:          uuid.New().String(),
		Code:        code,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.catalog.CreateSize(ctx, size); err != nil {
		return nil, err
	}
	out := dto.NewSizeResponse(size)
	return &out, nil
}

// ListSizes lista las tallas.
func (uc *UseCase) ListSizes(ctx context.Context) ([]dto.SizeResponse, error) {
	list, err := uc.catalog.ListSizes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SizeResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewSizeResponse(s))
	}
	return out, nil
}

// CreateProduct crea un producto. La línea, la talla y cada material de la ficha deben existir.
func (uc *UseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		LineID:    in.LineID,
		SizeID:    in.SizeID,
		Name:      strings.TrimSpace(in.Name),
		UnitPrice: in.UnitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, m := range in.Materials {
		product.Materials = append(product.Materials, entity.MaterialRequirement{
			MaterialTypeID:  m.MaterialTypeID,
			QuantityPerUnit: m.QuantityPerUnit,
		})
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	line, err := uc.catalog.GetLine(ctx, product.LineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, fmt.Errorf("%w: línea %s", domain.ErrNotFound, product.LineID)
	}
	size, err := uc.catalog.GetSize(ctx, product.SizeID)
	if err != nil {
		return nil, err
	}
	if size == nil {
		return nil, fmt.Errorf("%w: talla %s", domain.ErrNotFound, product.SizeID)
	}
	for _, m := range product.Materials {
		material, err := uc.materials.GetByID(ctx, m.MaterialTypeID)
		if err != nil {
			return nil, err
		}
		if material == nil {
			return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, m.MaterialTypeID)
		}
	}

	if err := uc.catalog.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// GetProduct obtiene un producto por ID.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// ListProducts lista productos, opcionalmente filtrados por línea.
func (uc *UseCase) ListProducts(ctx context.Context, lineID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.catalog.ListProducts(ctx, lineID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.NewProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
