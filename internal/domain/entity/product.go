package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Product representa una prenda del catálogo. Pertenece a una línea y a una talla.
// El precio se copia a cada línea de pedido al crearla; cambios posteriores no afectan pedidos existentes.
type Product struct {
	ID        string
	LineID    string
	SizeID    string
	Name      string
	UnitPrice decimal.Decimal
	Materials []MaterialRequirement // ficha técnica: consumo de material por unidad
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaterialRequirement consumo de un tipo de material por unidad producida.
type MaterialRequirement struct {
	MaterialTypeID  string
	QuantityPerUnit decimal.Decimal
}

// Validate verifica los campos obligatorios del producto.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Invalid("name es requerido")
	}
	if p.LineID == "" || p.SizeID == "" {
		return domain.Invalid("line_id y size_id son requeridos")
	}
	if p.UnitPrice.IsNegative() {
		return domain.Invalid("unit_price no puede ser negativo")
	}
	if !p.UnitPrice.Equal(p.UnitPrice.Round(2)) {
		return domain.Invalid("unit_price admite máximo 2 decimales")
	}
	seen := make(map[string]bool, len(p.Materials))
	for _, m := range p.Materials {
		if m.MaterialTypeID == "" || !m.QuantityPerUnit.IsPositive() {
			return domain.Invalid("cada material requiere material_type_id y quantity_per_unit > 0")
		}
		if !ValidQuantityScale(m.QuantityPerUnit) {
			return domain.Invalid("quantity_per_unit admite máximo %d decimales", QuantityScale)
		}
		if seen[m.MaterialTypeID] {
			return domain.Invalid("material %s repetido en la ficha técnica", m.MaterialTypeID)
		}
		seen[m.MaterialTypeID] = true
	}
	return nil
}

// Clone devuelve una copia profunda del producto.
func (p *Product) Clone() *Product {
	c := *p
	c.Materials = append([]MaterialRequirement(nil), p.Materials...)
	return &c
}
