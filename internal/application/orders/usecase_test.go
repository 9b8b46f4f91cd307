package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Confecciones-api/internal/application/catalog"
	"github.com/jhoicas/Confecciones-api/internal/application/customer"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/application/events"
	"github.com/jhoicas/Confecciones-api/internal/application/inventory"
	"github.com/jhoicas/Confecciones-api/internal/application/orders"
	"github.com/jhoicas/Confecciones-api/internal/application/production"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	"github.com/jhoicas/Confecciones-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	ctx      context.Context
	bus      *events.Bus
	ledger   *inventory.LedgerUseCase
	tasks    *production.UseCase
	orders   *orders.UseCase
	catalog  *catalog.UseCase
	customer string
	line     string
	size     string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	bus := events.NewBus()
	ledger := inventory.NewLedgerUseCase(store, repos, bus)
	tasks := production.NewUseCase(store, repos, bus)
	e := &env{
		ctx:     context.Background(),
		bus:     bus,
		ledger:  ledger,
		tasks:   tasks,
		orders:  orders.NewUseCase(store, repos, ledger, tasks, bus),
		catalog: catalog.NewUseCase(repos.Catalog, repos.Materials),
	}

	cust, err := customer.NewUseCase(repos.Customers).Create(e.ctx, dto.CreateCustomerRequest{Name: "Clínica Norte", TaxID: "800111222"})
	require.NoError(t, err)
	e.customer = cust.ID
	line, err := e.catalog.CreateLine(e.ctx, dto.CreateLineRequest{Name: "Dotación médica"})
	require.NoError(t, err)
	e.line = line.ID
	size, err := e.catalog.CreateSize(e.ctx, dto.CreateSizeRequest{Code: "L"})
	require.NoError(t, err)
	e.size = size.ID
	return e
}

func (e *env) material(t *testing.T, name, qty string) string {
	t.Helper()
	m, err := e.ledger.CreateMaterialType(e.ctx, dto.CreateMaterialTypeRequest{
		Name: name, UnitMeasure: "m", InitialQuantity: decimal.RequireFromString(qty),
	})
	require.NoError(t, err)
	return m.ID
}

// product crea un producto; reqs alterna material, cantidad por unidad.
func (e *env) product(t *testing.T, name, price string, reqs ...string) string {
	t.Helper()
	in := dto.CreateProductRequest{LineID: e.line, SizeID: e.size, Name: name, UnitPrice: decimal.RequireFromString(price)}
	for i := 0; i+1 < len(reqs); i += 2 {
		in.Materials = append(in.Materials, dto.MaterialRequirementDTO{
			MaterialTypeID:  reqs[i],
			QuantityPerUnit: decimal.RequireFromString(reqs[i+1]),
		})
	}
	p, err := e.catalog.CreateProduct(e.ctx, in)
	require.NoError(t, err)
	return p.ID
}

func (e *env) available(t *testing.T, materialID string) string {
	t.Helper()
	m, err := e.ledger.Balance(e.ctx, materialID)
	require.NoError(t, err)
	return m.Available().String()
}

func (e *env) orderTasks(t *testing.T, orderID string) []*entity.Task {
	t.Helper()
	list, err := e.tasks.ListByOrder(e.ctx, orderID)
	require.NoError(t, err)
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación de pedidos
// ──────────────────────────────────────────────────────────────────────────────

// 100 de tela: un pedido de 60 reserva, uno de 50 falla sin dejar rastro,
// cancelar el primero libera y el reintento de 50 entra.
func TestCreateOrder_SinDisponibleFallaYCancelarLibera(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "100")
	camisa := e.product(t, "Camisa", "35000", tela, "1")

	first, err := e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{{ProductID: camisa, Quantity: 60}})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, first.Status)
	assert.Equal(t, "40", e.available(t, tela))

	_, err = e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{{ProductID: camisa, Quantity: 50}})
	require.Error(t, err)
	var oce *domain.OrderCreationError
	require.ErrorAs(t, err, &oce)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrOrderCreationFailed)
	assert.Equal(t, "40", e.available(t, tela))

	list, err := e.orders.List(e.ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "el pedido fallido no queda persistido")

	cancelled, err := e.orders.Cancel(e.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, cancelled.Status)
	assert.Equal(t, "100", e.available(t, tela))
	for _, task := range e.orderTasks(t, first.ID) {
		assert.Equal(t, entity.TaskCancelled, task.Status)
	}

	_, err = e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{{ProductID: camisa, Quantity: 50}})
	require.NoError(t, err)
	assert.Equal(t, "50", e.available(t, tela))
}

// Si la segunda línea no alcanza, la reserva de la primera también se revierte.
func TestCreateOrder_TodoONada(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "100")
	boton := e.material(t, "Botón", "10")
	camisa := e.product(t, "Camisa", "35000", tela, "1.5", boton, "6")
	pantalon := e.product(t, "Pantalón", "42000", tela, "2")

	_, err := e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{
		{ProductID: pantalon, Quantity: 10},
		{ProductID: camisa, Quantity: 2},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "100", e.available(t, tela))
	assert.Equal(t, "10", e.available(t, boton))

	entries, err := e.ledger.Ledger(e.ctx, tela)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "solo la entrada inicial")
}

func TestCreateOrder_Validaciones(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "100")
	camisa := e.product(t, "Camisa", "35000", tela, "1")

	_, err := e.orders.CreateOrder(e.ctx, e.customer, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{{ProductID: camisa, Quantity: 0}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{{ProductID: "no-existe", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.orders.CreateOrder(e.ctx, "cliente-fantasma", []orders.LineInput{{ProductID: camisa, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateOrder_CopiaPrecioYCreaUnaTareaPorProducto(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "500")
	camisa := e.product(t, "Camisa", "35000", tela, "1")
	pantalon := e.product(t, "Pantalón", "42000.50", tela, "2")

	order, err := e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{
		{ProductID: camisa, Quantity: 10},
		{ProductID: pantalon, Quantity: 4},
		{ProductID: camisa, Quantity: 5},
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 3)
	assert.Equal(t, "42000.5", order.Lines[1].UnitPrice.String())
	assert.True(t, order.Total().Equal(decimal.RequireFromString("693002")))

	tasks := e.orderTasks(t, order.ID)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, entity.TaskPending, task.Status)
		assert.Equal(t, order.ID, task.OrderID)
	}

	reservations, err := e.orders.Reservations(e.ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, reservations, 3, "una reserva por línea y material")
	assert.Equal(t, "477", e.available(t, tela))
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransitionTo_PendienteACompletadoEsIlegal(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "10")
	camisa := e.product(t, "Camisa", "35000", tela, "1")
	order, err := e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{{ProductID: camisa, Quantity: 1}})
	require.NoError(t, err)

	_, err = e.orders.TransitionTo(e.ctx, order.ID, entity.OrderCompleted)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	got, err := e.orders.Get(e.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, got.Status)
}

// Dos productos, dos tareas: el pedido solo se completa cuando ambas terminan y entonces consume el material.
func TestAdvance_GuardasDeTareasYConsumo(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "100")
	hilo := e.material(t, "Hilo", "20")
	camisa := e.product(t, "Camisa", "35000", tela, "1", hilo, "0.5")
	bata := e.product(t, "Bata", "50000", tela, "2")

	order, err := e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{
		{ProductID: camisa, Quantity: 10},
		{ProductID: bata, Quantity: 5},
	})
	require.NoError(t, err)
	tasks := e.orderTasks(t, order.ID)
	require.Len(t, tasks, 2)

	_, err = e.orders.Advance(e.ctx, order.ID)
	require.NoError(t, err)
	_, err = e.orders.Advance(e.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrPreconditionNotMet, "sin tareas en proceso no pasa a producción")

	_, err = e.tasks.Transition(e.ctx, tasks[0].ID, entity.TaskInProgress)
	require.NoError(t, err)
	got, err := e.orders.Advance(e.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderInProduction, got.Status)

	_, err = e.tasks.Transition(e.ctx, tasks[0].ID, entity.TaskCompleted)
	require.NoError(t, err)
	_, err = e.orders.Advance(e.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrPreconditionNotMet, "falta la segunda tarea")
	assert.Equal(t, "80", e.available(t, tela))

	_, err = e.tasks.Transition(e.ctx, tasks[1].ID, entity.TaskInProgress)
	require.NoError(t, err)
	_, err = e.tasks.Transition(e.ctx, tasks[1].ID, entity.TaskCompleted)
	require.NoError(t, err)
	got, err = e.orders.Advance(e.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, got.Status)

	m, err := e.ledger.Balance(e.ctx, tela)
	require.NoError(t, err)
	assert.Equal(t, "80", m.OnHand.String())
	assert.True(t, m.Reserved.IsZero())
	m, err = e.ledger.Balance(e.ctx, hilo)
	require.NoError(t, err)
	assert.Equal(t, "15", m.OnHand.String())

	reservations, err := e.orders.Reservations(e.ctx, order.ID)
	require.NoError(t, err)
	for _, r := range reservations {
		assert.Equal(t, entity.ReservationConsumed, r.Status)
	}

	_, err = e.orders.Cancel(e.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition, "un pedido completado no se cancela")
	assert.NoError(t, e.ledger.VerifyAll(e.ctx))
}

func TestHandleTaskStatusChanged_AvanzaSolo(t *testing.T) {
	e := newEnv(t)
	e.bus.Subscribe("orders.auto_advance", e.orders.HandleTaskStatusChanged)
	tela := e.material(t, "Tela", "10")
	camisa := e.product(t, "Camisa", "35000", tela, "1")
	order, err := e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{{ProductID: camisa, Quantity: 2}})
	require.NoError(t, err)
	task := e.orderTasks(t, order.ID)[0]

	// En PENDIENTE el cambio de la tarea no mueve el pedido.
	_, err = e.tasks.Transition(e.ctx, task.ID, entity.TaskInProgress)
	require.NoError(t, err)
	got, _ := e.orders.Get(e.ctx, order.ID)
	assert.Equal(t, entity.OrderPending, got.Status)

	_, err = e.orders.TransitionTo(e.ctx, order.ID, entity.OrderInProgress)
	require.NoError(t, err)
	_, err = e.tasks.Transition(e.ctx, task.ID, entity.TaskPaused)
	require.NoError(t, err)
	_, err = e.tasks.Transition(e.ctx, task.ID, entity.TaskInProgress)
	require.NoError(t, err)
	got, _ = e.orders.Get(e.ctx, order.ID)
	assert.Equal(t, entity.OrderInProduction, got.Status)

	_, err = e.tasks.Transition(e.ctx, task.ID, entity.TaskCompleted)
	require.NoError(t, err)
	got, _ = e.orders.Get(e.ctx, order.ID)
	assert.Equal(t, entity.OrderCompleted, got.Status)
	assert.Equal(t, "8", e.available(t, tela))
}

// ──────────────────────────────────────────────────────────────────────────────
// Archivo
// ──────────────────────────────────────────────────────────────────────────────

func TestArchive_SoloPedidosCerradosEIdempotente(t *testing.T) {
	e := newEnv(t)
	tela := e.material(t, "Tela", "10")
	camisa := e.product(t, "Camisa", "35000", tela, "1")
	order, err := e.orders.CreateOrder(e.ctx, e.customer, []orders.LineInput{{ProductID: camisa, Quantity: 1}})
	require.NoError(t, err)

	_, err = e.orders.Archive(e.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = e.orders.Cancel(e.ctx, order.ID)
	require.NoError(t, err)
	archived, err := e.orders.Archive(e.ctx, order.ID)
	require.NoError(t, err)
	require.True(t, archived.Archived())
	first := *archived.ArchivedAt

	tasks, err := e.tasks.ListByOrder(e.ctx, order.ID)
	require.NoError(t, err)
	require.NotEmpty(t, tasks)
	for _, task := range tasks {
		require.NotNil(t, task.ArchivedAt, "las tareas del pedido se archivan con él")
		assert.Equal(t, first, *task.ArchivedAt)
	}

	again, err := e.orders.Archive(e.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *again.ArchivedAt, "archivar dos veces no cambia la fecha")

	list, err := e.orders.List(e.ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = e.orders.List(e.ctx, repository.OrderFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = e.orders.Advance(e.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestGet_PedidoInexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.orders.Get(e.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.orders.Cancel(e.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
