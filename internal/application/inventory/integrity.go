package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Confecciones-api/internal/domain/inventory"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

// VerifyIntegrity recalcula el saldo del material desde el libro y lo compara con el cacheado.
// Una diferencia es un error fatal de integridad: se reporta, nunca se corrige en silencio.
func (uc *LedgerUseCase) VerifyIntegrity(ctx context.Context, materialTypeID string) error {
	var verr error
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		material, err := uc.lockMaterial(ctx, r, materialTypeID)
		if err != nil {
			return err
		}
		entries, err := r.Ledger.ListByMaterial(ctx, material.ID)
		if err != nil {
			return err
		}
		if !domaininv.Matches(material, domaininv.Fold(entries)) {
			verr = newIntegrityError(material, entries)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return verr
}

// VerifyAll verifica todos los materiales y agrega los errores de integridad encontrados.
func (uc *LedgerUseCase) VerifyAll(ctx context.Context) error {
	materials, err := uc.repos.Materials.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range materials {
		if err := uc.VerifyIntegrity(ctx, m.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newIntegrityError(material *entity.MaterialType, entries []*entity.LedgerEntry) error {
	folded := domaininv.Fold(entries)
	ierr := &domain.IntegrityError{
		MaterialTypeID: material.ID,
		CachedOnHand:   material.OnHand,
		CachedReserved: material.Reserved,
		LedgerOnHand:   folded.OnHand,
		LedgerReserved: folded.Reserved,
	}
	log.Error().Err(ierr).Str("material_type_id", material.ID).Msg("libro de inventario inconsistente")
	return ierr
}
