package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialType representa un tipo de material (tela, botones, hilo...) con su saldo.
// OnHand y Reserved solo se modifican a través del libro de inventario.
type MaterialType struct {
	ID          string
	Name        string
	UnitMeasure string // metros, unidades, conos...
	OnHand      decimal.Decimal
	Reserved    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available cantidad que todavía puede reservarse.
func (m *MaterialType) Available() decimal.Decimal {
	return m.OnHand.Sub(m.Reserved)
}

// QuantityScale decimales que admiten las cantidades de material (NUMERIC(18, 4)).
const QuantityScale = 4

// ValidQuantityScale indica si q cabe en QuantityScale decimales sin redondeo.
func ValidQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Round(QuantityScale))
}
