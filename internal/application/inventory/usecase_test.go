package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/application/inventory"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	"github.com/jhoicas/Confecciones-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type recorder struct {
	mu   sync.Mutex
	evts []event.Event
}

func (r *recorder) Publish(_ context.Context, evts ...event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evts = append(r.evts, evts...)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.evts))
	for _, e := range r.evts {
		out = append(out, e.Type)
	}
	return out
}

func newLedger(t *testing.T) (*inventory.LedgerUseCase, repository.Repos, *recorder) {
	t.Helper()
	store := memory.NewStore()
	rec := &recorder{}
	return inventory.NewLedgerUseCase(store, store.Repos(), rec), store.Repos(), rec
}

func newMaterial(t *testing.T, uc *inventory.LedgerUseCase, qty string) *entity.MaterialType {
	t.Helper()
	m, err := uc.CreateMaterialType(context.Background(), dto.CreateMaterialTypeRequest{
		Name:            "Tela antifluido",
		UnitMeasure:     "m",
		InitialQuantity: decimal.RequireFromString(qty),
	})
	require.NoError(t, err)
	return m
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Entradas y saldo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMaterialType_SaldoInicialComoEntrada(t *testing.T) {
	uc, _, rec := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "100")

	assert.Equal(t, "100", m.OnHand.String())
	assert.True(t, m.Reserved.IsZero())

	entries, err := uc.Ledger(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.LedgerEntryReceipt, entries[0].Type)
	assert.Equal(t, "saldo inicial", entries[0].Note)
	assert.Equal(t, []string{event.InventoryReceived}, rec.types())
}

func TestCreateMaterialType_Validaciones(t *testing.T) {
	uc, _, _ := newLedger(t)
	_, err := uc.CreateMaterialType(context.Background(), dto.CreateMaterialTypeRequest{Name: "Hilo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateMaterialType(context.Background(), dto.CreateMaterialTypeRequest{
		Name: "Hilo", UnitMeasure: "cono", InitialQuantity: dec("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceive_SumaExistencia(t *testing.T) {
	uc, _, _ := newLedger(t)
	m := newMaterial(t, uc, "10")

	got, err := uc.Receive(context.Background(), m.ID, dec("2.5"), "compra proveedor")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.OnHand.String())

	_, err = uc.Receive(context.Background(), m.ID, decimal.Zero, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Receive(context.Background(), "no-existe", dec("1"), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCantidades_MaximoCuatroDecimales(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "10")

	_, err := uc.Receive(ctx, m.ID, dec("0.00001"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Reserve(ctx, m.ID, dec("1.23456"), inventory.Reference{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateMaterialType(ctx, dto.CreateMaterialTypeRequest{
		Name: "Entretela", UnitMeasure: "m", InitialQuantity: dec("3.14159"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Reserve(ctx, m.ID, dec("1.2345"), inventory.Reference{})
	require.NoError(t, err)
	bal, _ := uc.Balance(ctx, m.ID)
	assert.Equal(t, "10", bal.OnHand.String(), "los intentos rechazados no alteran el saldo")
	assert.Equal(t, "8.7655", bal.Available().String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_DescuentaDisponibleSinTocarExistencia(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "100")

	res, err := uc.Reserve(ctx, m.ID, dec("60"), inventory.Reference{OrderID: "o1", OrderLineID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationActive, res.Status)

	bal, err := uc.Balance(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", bal.OnHand.String())
	assert.Equal(t, "60", bal.Reserved.String())
	assert.Equal(t, "40", bal.Available().String())
}

func TestReserve_SinDisponibleNoCambiaNada(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "100")

	_, err := uc.Reserve(ctx, m.ID, dec("60"), inventory.Reference{})
	require.NoError(t, err)
	_, err = uc.Reserve(ctx, m.ID, dec("50"), inventory.Reference{})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	bal, _ := uc.Balance(ctx, m.ID)
	assert.Equal(t, "60", bal.Reserved.String())
	entries, _ := uc.Ledger(ctx, m.ID)
	assert.Len(t, entries, 2, "el intento fallido no deja asiento")
}

func TestReserve_CantidadNoPositiva(t *testing.T) {
	uc, _, _ := newLedger(t)
	m := newMaterial(t, uc, "1")
	_, err := uc.Reserve(context.Background(), m.ID, decimal.Zero, inventory.Reference{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Reservas concurrentes sobre el mismo material: nunca se reserva más de lo disponible.
func TestReserve_ConcurrentesNoSobreReservan(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "100")

	const workers = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Reserve(ctx, m.ID, dec("10"), inventory.Reference{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, workers-10, rejected)
	bal, _ := uc.Balance(ctx, m.ID)
	assert.Equal(t, "100", bal.Reserved.String())
	assert.NoError(t, uc.VerifyIntegrity(ctx, m.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Liberación y consumo
// ──────────────────────────────────────────────────────────────────────────────

func TestRelease_EsIdempotente(t *testing.T) {
	uc, _, rec := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "100")
	res, err := uc.Reserve(ctx, m.ID, dec("30"), inventory.Reference{})
	require.NoError(t, err)

	require.NoError(t, uc.Release(ctx, res.ID))
	require.NoError(t, uc.Release(ctx, res.ID), "la segunda liberación no hace nada")

	bal, _ := uc.Balance(ctx, m.ID)
	assert.True(t, bal.Reserved.IsZero())
	got, err := uc.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationReleased, got.Status)
	assert.Equal(t, []string{event.InventoryReceived, event.InventoryReserved, event.InventoryReleased}, rec.types())
}

func TestRelease_ReservaDesconocida(t *testing.T) {
	uc, _, _ := newLedger(t)
	assert.ErrorIs(t, uc.Release(context.Background(), "no-existe"), domain.ErrUnknownReservation)
}

func TestConsume_DescuentaExistenciaYReservado(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "100")
	res, err := uc.Reserve(ctx, m.ID, dec("40"), inventory.Reference{})
	require.NoError(t, err)

	require.NoError(t, uc.Consume(ctx, res.ID))
	bal, _ := uc.Balance(ctx, m.ID)
	assert.Equal(t, "60", bal.OnHand.String())
	assert.True(t, bal.Reserved.IsZero())

	assert.ErrorIs(t, uc.Consume(ctx, res.ID), domain.ErrUnknownReservation, "una reserva consumida ya no está activa")
	require.NoError(t, uc.Release(ctx, res.ID), "liberar una reserva consumida no hace nada")

	bal, _ = uc.Balance(ctx, m.ID)
	assert.Equal(t, "60", bal.OnHand.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Integridad del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyIntegrity_LibroConsistente(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "50")
	res, err := uc.Reserve(ctx, m.ID, dec("20"), inventory.Reference{})
	require.NoError(t, err)
	require.NoError(t, uc.Consume(ctx, res.ID))

	assert.NoError(t, uc.VerifyIntegrity(ctx, m.ID))
	assert.NoError(t, uc.VerifyAll(ctx))
}

func TestVerifyIntegrity_DetectaSaldoAlterado(t *testing.T) {
	uc, repos, _ := newLedger(t)
	ctx := context.Background()
	m := newMaterial(t, uc, "50")
	ok := newMaterial(t, uc, "5")

	// Alteración directa del saldo cacheado, sin asiento.
	m.OnHand = dec("70")
	require.NoError(t, repos.Materials.UpdateBalance(ctx, m))

	err := uc.VerifyIntegrity(ctx, m.ID)
	require.ErrorIs(t, err, domain.ErrIntegrity)
	var ierr *domain.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "70", ierr.CachedOnHand.String())
	assert.Equal(t, "50", ierr.LedgerOnHand.String())

	all := uc.VerifyAll(ctx)
	assert.ErrorIs(t, all, domain.ErrIntegrity)
	assert.NoError(t, uc.VerifyIntegrity(ctx, ok.ID))

	bal, _ := uc.Balance(ctx, m.ID)
	assert.Equal(t, "70", bal.OnHand.String(), "la verificación nunca corrige el saldo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Secuencias aleatorias
// ──────────────────────────────────────────────────────────────────────────────

// Para cualquier secuencia de reservas, liberaciones y consumos la existencia nunca es negativa,
// equivale a la inicial menos lo consumido y el libro cuadra con el saldo cacheado.
func TestSecuenciasAleatorias_ExistenciaIgualInicialMenosConsumido(t *testing.T) {
	const (
		seeds = 50
		steps = 60
	)
	initial := dec("100")
	for seed := int64(1); seed <= seeds; seed++ {
		uc, _, _ := newLedger(t)
		ctx := context.Background()
		rnd := rand.New(rand.NewSource(seed))
		m := newMaterial(t, uc, initial.String())

		var ids []string
		active := map[string]decimal.Decimal{}
		consumed := decimal.Zero

		for step := 0; step < steps; step++ {
			switch op := rnd.Intn(3); {
			case op == 0 || len(ids) == 0:
				qty := decimal.New(int64(rnd.Intn(3000)+1), -2) // 0.01 a 30.00
				res, err := uc.Reserve(ctx, m.ID, qty, inventory.Reference{OrderID: "o"})
				if err != nil {
					require.ErrorIs(t, err, domain.ErrInsufficientStock, "semilla %d paso %d", seed, step)
					break
				}
				ids = append(ids, res.ID)
				active[res.ID] = qty
			case op == 1:
				id := ids[rnd.Intn(len(ids))]
				require.NoError(t, uc.Release(ctx, id), "semilla %d paso %d", seed, step)
				delete(active, id)
			default:
				id := ids[rnd.Intn(len(ids))]
				qty, ok := active[id]
				err := uc.Consume(ctx, id)
				if !ok {
					require.ErrorIs(t, err, domain.ErrUnknownReservation, "semilla %d paso %d", seed, step)
					break
				}
				require.NoError(t, err, "semilla %d paso %d", seed, step)
				consumed = consumed.Add(qty)
				delete(active, id)
			}

			reserved := decimal.Zero
			for _, q := range active {
				reserved = reserved.Add(q)
			}
			bal, err := uc.Balance(ctx, m.ID)
			require.NoError(t, err)
			require.False(t, bal.OnHand.IsNegative(), "semilla %d paso %d", seed, step)
			require.True(t, bal.OnHand.Equal(initial.Sub(consumed)), "semilla %d paso %d: existencia %s", seed, step, bal.OnHand)
			require.True(t, bal.Available().Equal(bal.OnHand.Sub(reserved)), "semilla %d paso %d: disponible %s", seed, step, bal.Available())
			require.False(t, bal.Available().IsNegative(), "semilla %d paso %d", seed, step)
			require.NoError(t, uc.VerifyIntegrity(ctx, m.ID), "semilla %d paso %d", seed, step)
		}
	}
}
