package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	"github.com/jhoicas/Confecciones-api/internal/infrastructure/memory"
)

func material(id string, onHand int64) *entity.MaterialType {
	return &entity.MaterialType{ID: id, Name: id, UnitMeasure: "m", OnHand: decimal.NewFromInt(onHand), Reserved: decimal.Zero}
}

func TestRun_ErrorDescartaCambios(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Repos().Materials.Create(ctx, material("tela", 10)))

	boom := errors.New("fallo a mitad de transacción")
	err := store.Run(ctx, func(r repository.Repos) error {
		m, err := r.Materials.GetForUpdate(ctx, "tela")
		require.NoError(t, err)
		m.Reserved = decimal.NewFromInt(4)
		require.NoError(t, r.Materials.UpdateBalance(ctx, m))
		require.NoError(t, r.Ledger.Append(ctx, &entity.LedgerEntry{ID: "e1", MaterialTypeID: "tela", Type: entity.LedgerEntryReserve, Quantity: decimal.NewFromInt(4)}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	m, err := store.Repos().Materials.GetByID(ctx, "tela")
	require.NoError(t, err)
	assert.True(t, m.Reserved.IsZero())
	entries, err := store.Repos().Ledger.ListByMaterial(ctx, "tela")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_CommitPublicaCambios(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	err := store.Run(ctx, func(r repository.Repos) error {
		return r.Materials.Create(ctx, material("hilo", 3))
	})
	require.NoError(t, err)

	m, err := store.Repos().Materials.GetByID(ctx, "hilo")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "3", m.OnHand.String())
}

func TestRun_ContextoCancelado(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := store.Run(ctx, func(repository.Repos) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRepos_LecturasDevuelvenCopias(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Repos().Materials.Create(ctx, material("boton", 100)))

	m, _ := store.Repos().Materials.GetByID(ctx, "boton")
	m.OnHand = decimal.Zero

	again, _ := store.Repos().Materials.GetByID(ctx, "boton")
	assert.Equal(t, "100", again.OnHand.String(), "modificar la copia no altera el almacén")
}

func TestCustomerRepo_TaxIDUnico(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	repo := store.Repos().Customers
	require.NoError(t, repo.Create(ctx, &entity.Customer{ID: "c1", Name: "A", TaxID: "123"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Customer{ID: "c2", Name: "B", TaxID: "123"}), domain.ErrDuplicate)
}

func TestOrderRepo_ListaFiltraYPagina(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	repo := store.Repos().Orders
	now := time.Now()
	for i := 1; i <= 5; i++ {
		status := entity.OrderPending
		if i%2 == 0 {
			status = entity.OrderCancelled
		}
		require.NoError(t, repo.Create(ctx, &entity.Order{ID: fmt.Sprintf("o%d", i), Status: status, CreatedAt: now}))
	}
	require.NoError(t, repo.Archive(ctx, "o4", now))

	list, err := repo.List(ctx, repository.OrderFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o5", list[0].ID, "más recientes primero")
	assert.Equal(t, "o3", list[1].ID, "o4 está archivado")

	list, err = repo.List(ctx, repository.OrderFilter{Status: entity.OrderCancelled, IncludeArchived: true, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.List(ctx, repository.OrderFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}
