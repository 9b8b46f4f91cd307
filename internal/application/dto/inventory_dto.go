package dto

import (
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateMaterialTypeRequest body para POST /api/materials.
type CreateMaterialTypeRequest struct {
	Name            string          `json:"name"`
	UnitMeasure     string          `json:"unit_measure"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
}

// ReceiveMaterialRequest body para POST /api/materials/:id/receipts.
type ReceiveMaterialRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note,omitempty"`
}

// MaterialTypeResponse material con su saldo.
type MaterialTypeResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitMeasure string          `json:"unit_measure"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LedgerEntryResponse asiento del libro de inventario.
type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReservationID string          `json:"reservation_id,omitempty"`
	OrderID       string          `json:"order_id,omitempty"`
	OrderLineID   string          `json:"order_line_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ReservationResponse reserva de material.
type ReservationResponse struct {
	ID             string          `json:"id"`
	MaterialTypeID string          `json:"material_type_id"`
	OrderID        string          `json:"order_id,omitempty"`
	OrderLineID    string          `json:"order_line_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IntegrityReport resultado de la verificación del libro.
type IntegrityReport struct {
	MaterialTypeID string   `json:"material_type_id,omitempty"`
	Consistent     bool     `json:"consistent"`
	Errors         []string `json:"errors,omitempty"`
}

// NewMaterialTypeResponse convierte la entidad a respuesta.
func NewMaterialTypeResponse(m *entity.MaterialType) MaterialTypeResponse {
	return MaterialTypeResponse{
		ID:          m.ID,
		Name:        m.Name,
		UnitMeasure: m.UnitMeasure,
		OnHand:      m.OnHand,
		Reserved:    m.Reserved,
		Available:   m.Available(),
		UpdatedAt:   m.UpdatedAt,
	}
}

// NewLedgerEntryResponse convierte un asiento a respuesta.
func NewLedgerEntryResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		Type:          e.Type,
		Quantity:      e.Quantity,
		ReservationID: e.ReservationID,
		OrderID:       e.OrderID,
		OrderLineID:   e.OrderLineID,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
	}
}

// NewReservationResponse convierte una reserva a respuesta.
func NewReservationResponse(r *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:             r.ID,
		MaterialTypeID: r.MaterialTypeID,
		OrderID:        r.OrderID,
		OrderLineID:    r.OrderLineID,
		Quantity:       r.Quantity,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
