package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del libro de inventario.
const (
	LedgerEntryReceipt = "ENTRADA"    // ingreso de material a bodega
	LedgerEntryReserve = "RESERVA"    // separa material para un pedido
	LedgerEntryRelease = "LIBERACION" // devuelve una reserva al disponible
	LedgerEntryConsume = "CONSUMO"    // convierte una reserva en salida definitiva
)

// LedgerEntry asiento inmutable del libro de inventario. Quantity siempre es positiva;
// el efecto sobre el saldo lo determina Type.
type LedgerEntry struct {
	ID             string
	MaterialTypeID string
	Type           string
	Quantity       decimal.Decimal
	ReservationID  string
	OrderID        string
	OrderLineID    string
	Note           string
	CreatedAt      time.Time
}
