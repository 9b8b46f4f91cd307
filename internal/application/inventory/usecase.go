package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Confecciones-api/internal/application/events"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// LedgerUseCase libro de inventario: reservas, liberaciones y consumos de material.
// Cada operación bloquea la fila del material (SELECT FOR UPDATE) y agrega un asiento inmutable
// en la misma transacción que actualiza el saldo cacheado.
type LedgerUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	events   events.Publisher
}

// NewLedgerUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewLedgerUseCase(txRunner repository.TxRunner, repos repository.Repos, publisher events.Publisher) *LedgerUseCase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LedgerUseCase{txRunner: txRunner, repos: repos, events: publisher}
}

// Reference pedido y línea que originan una reserva.
type Reference struct {
	OrderID     string
	OrderLineID string
}

// Reserve separa quantity del material si el disponible (existencia - reservado) alcanza.
// La existencia física no cambia hasta Consume.
func (uc *LedgerUseCase) Reserve(ctx context.Context, materialTypeID string, quantity decimal.Decimal, ref Reference) (*entity.Reservation, error) {
	var res *entity.Reservation
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		var err error
		res, err = uc.ReserveInTx(ctx, r, materialTypeID, quantity, ref, time.Now(), &batch)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.events.Publish(ctx, batch...)
	return res, nil
}

// Release devuelve la reserva al disponible. Liberar una reserva ya liberada o consumida no hace nada.
func (uc *LedgerUseCase) Release(ctx context.Context, reservationID string) error {
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		return uc.ReleaseInTx(ctx, r, reservationID, time.Now(), &batch)
	})
	if err != nil {
		return err
	}
	uc.events.Publish(ctx, batch...)
	return nil
}

// Consume convierte una reserva activa en salida definitiva de la existencia.
func (uc *LedgerUseCase) Consume(ctx context.Context, reservationID string) error {
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		return uc.ConsumeInTx(ctx, r, reservationID, time.Now(), &batch)
	})
	if err != nil {
		return err
	}
	uc.events.Publish(ctx, batch...)
	return nil
}

// ReserveInTx ejecuta la reserva con los repositorios del caller (misma transacción).
// Si retorna error el caller debe hacer rollback.
func (uc *LedgerUseCase) ReserveInTx(
	ctx context.Context,
	r repository.Repos,
	materialTypeID string,
	quantity decimal.Decimal,
	ref Reference,
	now time.Time,
	batch *events.Batch,
) (*entity.Reservation, error) {
	if !quantity.IsPositive() {
		return nil, domain.Invalid("la cantidad a reservar debe ser mayor a cero")
	}
	if !entity.ValidQuantityScale(quantity) {
		return nil, domain.Invalid("la cantidad admite máximo %d decimales", entity.QuantityScale)
	}
	material, err := r.Materials.GetForUpdate(ctx, materialTypeID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, materialTypeID)
	}
	if material.Available().LessThan(quantity) {
		return nil, fmt.Errorf("%w: material %s (disponible %s, solicitado %s)",
			domain.ErrInsufficientStock, material.ID, material.Available(), quantity)
	}

	material.Reserved = material.Reserved.Add(quantity)
	material.UpdatedAt = now
	if err := r.Materials.UpdateBalance(ctx, material); err != nil {
		return nil, err
	}

	res := &entity.Reservation{
		ID:             uuid.New().String(),
		MaterialTypeID: material.ID,
		OrderID:        ref.OrderID,
		OrderLineID:    ref.OrderLineID,
		Quantity:       quantity,
		Status:         entity.ReservationActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.Reservations.Create(ctx, res); err != nil {
		return nil, err
	}
	if err := appendEntry(ctx, r, res, entity.LedgerEntryReserve, now); err != nil {
		return nil, err
	}
	batch.Add(reservationEvent(event.InventoryReserved, res, now))
	return res, nil
}

// ReleaseInTx libera la reserva dentro de la transacción del caller.
func (uc *LedgerUseCase) ReleaseInTx(ctx context.Context, r repository.Repos, reservationID string, now time.Time, batch *events.Batch) error {
	res, err := r.Reservations.GetForUpdate(ctx, reservationID)
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownReservation, reservationID)
	}
	if !res.IsActive() {
		return nil
	}
	material, err := uc.lockMaterial(ctx, r, res.MaterialTypeID)
	if err != nil {
		return err
	}
	if material.Reserved.LessThan(res.Quantity) {
		return uc.integrityViolation(ctx, r, material)
	}

	material.Reserved = material.Reserved.Sub(res.Quantity)
	material.UpdatedAt = now
	if err := r.Materials.UpdateBalance(ctx, material); err != nil {
		return err
	}
	res.Status = entity.ReservationReleased
	res.UpdatedAt = now
	if err := r.Reservations.UpdateStatus(ctx, res); err != nil {
		return err
	}
	if err := appendEntry(ctx, r, res, entity.LedgerEntryRelease, now); err != nil {
		return err
	}
	batch.Add(reservationEvent(event.InventoryReleased, res, now))
	return nil
}

// ConsumeInTx consume la reserva dentro de la transacción del caller.
func (uc *LedgerUseCase) ConsumeInTx(ctx context.Context, r repository.Repos, reservationID string, now time.Time, batch *events.Batch) error {
	res, err := r.Reservations.GetForUpdate(ctx, reservationID)
	if err != nil {
		return err
	}
	if res == nil || !res.IsActive() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownReservation, reservationID)
	}
	material, err := uc.lockMaterial(ctx, r, res.MaterialTypeID)
	if err != nil {
		return err
	}
	if material.Reserved.LessThan(res.Quantity) || material.OnHand.LessThan(res.Quantity) {
		return uc.integrityViolation(ctx, r, material)
	}

	material.OnHand = material.OnHand.Sub(res.Quantity)
	material.Reserved = material.Reserved.Sub(res.Quantity)
	material.UpdatedAt = now
	if err := r.Materials.UpdateBalance(ctx, material); err != nil {
		return err
	}
	res.Status = entity.ReservationConsumed
	res.UpdatedAt = now
	if err := r.Reservations.UpdateStatus(ctx, res); err != nil {
		return err
	}
	if err := appendEntry(ctx, r, res, entity.LedgerEntryConsume, now); err != nil {
		return err
	}
	batch.Add(reservationEvent(event.InventoryConsumed, res, now))
	return nil
}

// GetReservation obtiene una reserva por ID.
func (uc *LedgerUseCase) GetReservation(ctx context.Context, id string) (*entity.Reservation, error) {
	res, err := uc.repos.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownReservation, id)
	}
	return res, nil
}

func (uc *LedgerUseCase) lockMaterial(ctx context.Context, r repository.Repos, id string) (*entity.MaterialType, error) {
	material, err := r.Materials.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
	}
	return material, nil
}

// integrityViolation construye el IntegrityError con el recálculo del libro; nunca corrige el saldo.
func (uc *LedgerUseCase) integrityViolation(ctx context.Context, r repository.Repos, material *entity.MaterialType) error {
	entries, err := r.Ledger.ListByMaterial(ctx, material.ID)
	if err != nil {
		return err
	}
	return newIntegrityError(material, entries)
}

func appendEntry(ctx context.Context, r repository.Repos, res *entity.Reservation, typ string, now time.Time) error {
	return r.Ledger.Append(ctx, &entity.LedgerEntry{
		ID:             uuid.New().String(),
		MaterialTypeID: res.MaterialTypeID,
		Type:           typ,
		Quantity:       res.Quantity,
		ReservationID:  res.ID,
		OrderID:        res.OrderID,
		OrderLineID:    res.OrderLineID,
		CreatedAt:      now,
	})
}

func reservationEvent(typ string, res *entity.Reservation, now time.Time) event.Event {
	evt := event.New(typ, now)
	qty := res.Quantity
	evt.OrderID = res.OrderID
	evt.MaterialTypeID = res.MaterialTypeID
	evt.ReservationID = res.ID
	evt.Quantity = &qty
	return evt
}
