package inventory

import (
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Balance saldo de un material: existencia física y cantidad reservada.
type Balance struct {
	OnHand   decimal.Decimal
	Reserved decimal.Decimal
}

// Available existencia que no está comprometida en reservas.
func (b Balance) Available() decimal.Decimal {
	return b.OnHand.Sub(b.Reserved)
}

// Apply devuelve el saldo resultante de aplicar un asiento (servicio de dominio).
//
//	ENTRADA:    existencia += q
//	RESERVA:    reservado  += q
//	LIBERACION: reservado  -= q
//	CONSUMO:    existencia -= q, reservado -= q
func Apply(b Balance, e *entity.LedgerEntry) Balance {
	switch e.Type {
	case entity.LedgerEntryReceipt:
		b.OnHand = b.OnHand.Add(e.Quantity)
	case entity.LedgerEntryReserve:
		b.Reserved = b.Reserved.Add(e.Quantity)
	case entity.LedgerEntryRelease:
		b.Reserved = b.Reserved.Sub(e.Quantity)
	case entity.LedgerEntryConsume:
		b.OnHand = b.OnHand.Sub(e.Quantity)
		b.Reserved = b.Reserved.Sub(e.Quantity)
	}
	return b
}

// Fold recalcula el saldo desde cero recorriendo los asientos en orden.
func Fold(entries []*entity.LedgerEntry) Balance {
	b := Balance{OnHand: decimal.Zero, Reserved: decimal.Zero}
	for _, e := range entries {
		b = Apply(b, e)
	}
	return b
}

// Matches compara el saldo cacheado del material con un saldo recalculado.
func Matches(m *entity.MaterialType, b Balance) bool {
	return m.OnHand.Equal(b.OnHand) && m.Reserved.Equal(b.Reserved)
}
