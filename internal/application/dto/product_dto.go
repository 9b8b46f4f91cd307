package dto

import (
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateLineRequest entrada para crear una línea de producto.
type CreateLineRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description"`
}

// LineResponse salida de una línea.
type LineResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateSizeRequest entrada para crear una talla.
type CreateSizeRequest struct {
	Code        string `json:"code" validate:"required,min=1,max=10"`
	Description string `json:"description"`
}

// SizeResponse salida de una talla.
type SizeResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// MaterialRequirementDTO consumo de material por unidad en la ficha técnica.
type MaterialRequirementDTO struct {
	MaterialTypeID  string          `json:"material_type_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	LineID    string                   `json:"line_id" validate:"required"`
	SizeID    string                   `json:"size_id" validate:"required"`
	Name      string                   `json:"name" validate:"required,min=1,max=200"`
	UnitPrice decimal.Decimal          `json:"unit_price"`
	Materials []MaterialRequirementDTO `json:"materials"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string                   `json:"id"`
	LineID    string                   `json:"line_id"`
	SizeID    string                   `json:"size_id"`
	Name      string                   `json:"name"`
	UnitPrice decimal.Decimal          `json:"unit_price"`
	Materials []MaterialRequirementDTO `json:"materials"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// NewLineResponse convierte la entidad a respuesta.
func NewLineResponse(l *entity.Line) LineResponse {
	return LineResponse{ID: l.ID, Name: l.Name, Description: l.Description, CreatedAt: l.CreatedAt}
}

// NewSizeResponse convierte la entidad a respuesta.
func NewSizeResponse(s *entity.Size) SizeResponse {
	return SizeResponse{ID: s.ID, Code: s.Code, Description: s.Description, CreatedAt: s.CreatedAt}
}

// NewProductResponse convierte la entidad a respuesta.
func NewProductResponse(p *entity.Product) ProductResponse {
	materials := make([]MaterialRequirementDTO, 0, len(p.Materials))
	for _, m := range p.Materials {
		materials = append(materials, MaterialRequirementDTO{
			MaterialTypeID:  m.MaterialTypeID,
			QuantityPerUnit: m.QuantityPerUnit,
		})
	}
	return ProductResponse{
		ID:        p.ID,
		LineID:    p.LineID,
		SizeID:    p.SizeID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Materials: materials,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
