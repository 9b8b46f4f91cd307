package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/application/events"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// CreateMaterialType registra un tipo de material. La cantidad inicial entra como asiento ENTRADA
// para que el saldo siempre sea recalculable desde el libro.
func (uc *LedgerUseCase) CreateMaterialType(ctx context.Context, in dto.CreateMaterialTypeRequest) (*entity.MaterialType, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.UnitMeasure) == "" {
		return nil, domain.Invalid("name y unit_measure son requeridos")
	}
	if in.InitialQuantity.IsNegative() {
		return nil, domain.Invalid("initial_quantity no puede ser negativa")
	}
	if !entity.ValidQuantityScale(in.InitialQuantity) {
		return nil, domain.Invalid("initial_quantity admite máximo %d decimales", entity.QuantityScale)
	}
	now := time.Now()
	material := &entity.MaterialType{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		UnitMeasure: strings.TrimSpace(in.UnitMeasure),
		OnHand:      decimal.Zero,
		Reserved:    decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		if err := r.Materials.Create(ctx, material); err != nil {
			return err
		}
		if in.InitialQuantity.IsPositive() {
			return uc.receiveInTx(ctx, r, material.ID, in.InitialQuantity, "saldo inicial", now, &batch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.events.Publish(ctx, batch...)
	return uc.Balance(ctx, material.ID)
}

// Receive registra un ingreso de material a bodega (asiento ENTRADA).
func (uc *LedgerUseCase) Receive(ctx context.Context, materialTypeID string, quantity decimal.Decimal, note string) (*entity.MaterialType, error) {
	if !quantity.IsPositive() {
		return nil, domain.Invalid("la cantidad recibida debe ser mayor a cero")
	}
	if !entity.ValidQuantityScale(quantity) {
		return nil, domain.Invalid("la cantidad admite máximo %d decimales", entity.QuantityScale)
	}
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		return uc.receiveInTx(ctx, r, materialTypeID, quantity, note, time.Now(), &batch)
	})
	if err != nil {
		return nil, err
	}
	uc.events.Publish(ctx, batch...)
	return uc.Balance(ctx, materialTypeID)
}

func (uc *LedgerUseCase) receiveInTx(
	ctx context.Context,
	r repository.Repos,
	materialTypeID string,
	quantity decimal.Decimal,
	note string,
	now time.Time,
	batch *events.Batch,
) error {
	material, err := uc.lockMaterial(ctx, r, materialTypeID)
	if err != nil {
		return err
	}
	material.OnHand = material.OnHand.Add(quantity)
	material.UpdatedAt = now
	if err := r.Materials.UpdateBalance(ctx, material); err != nil {
		return err
	}
	if err := r.Ledger.Append(ctx, &entity.LedgerEntry{
		ID:             uuid.New().String(),
		MaterialTypeID: material.ID,
		Type:           entity.LedgerEntryReceipt,
		Quantity:       quantity,
		Note:           note,
		CreatedAt:      now,
	}); err != nil {
		return err
	}
	evt := event.New(event.InventoryReceived, now)
	evt.MaterialTypeID = material.ID
	evt.Quantity = &quantity
	batch.Add(evt)
	return nil
}

// Balance devuelve el material con su saldo cacheado.
func (uc *LedgerUseCase) Balance(ctx context.Context, materialTypeID string) (*entity.MaterialType, error) {
	material, err := uc.repos.Materials.GetByID(ctx, materialTypeID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, materialTypeID)
	}
	return material, nil
}

// ListMaterials lista los tipos de material con su saldo.
func (uc *LedgerUseCase) ListMaterials(ctx context.Context) ([]*entity.MaterialType, error) {
	return uc.repos.Materials.List(ctx)
}

// Ledger devuelve los asientos de un material en orden de registro.
func (uc *LedgerUseCase) Ledger(ctx context.Context, materialTypeID string) ([]*entity.LedgerEntry, error) {
	if _, err := uc.Balance(ctx, materialTypeID); err != nil {
		return nil, err
	}
	return uc.repos.Ledger.ListByMaterial(ctx, materialTypeID)
}
