package production_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Confecciones-api/internal/application/catalog"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/application/production"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/jhoicas/Confecciones-api/internal/infrastructure/memory"
)

type recorder struct {
	mu   sync.Mutex
	evts []event.Event
}

func (r *recorder) Publish(_ context.Context, evts ...event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evts = append(r.evts, evts...)
}

func (r *recorder) last() event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evts[len(r.evts)-1]
}

// setup crea el motor de tareas y un producto sin ficha técnica.
func setup(t *testing.T) (*production.UseCase, *recorder, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	cat := catalog.NewUseCase(repos.Catalog, repos.Materials)
	line, err := cat.CreateLine(ctx, dto.CreateLineRequest{Name: "Escolar"})
	require.NoError(t, err)
	size, err := cat.CreateSize(ctx, dto.CreateSizeRequest{Code: "10"})
	require.NoError(t, err)
	product, err := cat.CreateProduct(ctx, dto.CreateProductRequest{
		LineID: line.ID, SizeID: size.ID, Name: "Jardinera", UnitPrice: decimal.NewFromInt(48000),
	})
	require.NoError(t, err)

	rec := &recorder{}
	return production.NewUseCase(store, repos, rec), rec, product.ID
}

func TestCreateTask_QuedaPendiente(t *testing.T) {
	uc, rec, productID := setup(t)
	task, err := uc.CreateTask(context.Background(), "Corte", "corte de tela", productID)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskPending, task.Status)
	assert.Empty(t, task.OrderID)
	assert.Equal(t, event.TaskCreated, rec.last().Type)
}

func TestCreateTask_Validaciones(t *testing.T) {
	uc, _, productID := setup(t)
	ctx := context.Background()

	_, err := uc.CreateTask(ctx, "  ", "", productID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateTask(ctx, "Corte", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateTask(ctx, "Corte", "", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition_EmiteCambioDeEstado(t *testing.T) {
	uc, rec, productID := setup(t)
	ctx := context.Background()
	task, err := uc.CreateTask(ctx, "Confección", "", productID)
	require.NoError(t, err)

	task, err = uc.Transition(ctx, task.ID, entity.TaskInProgress)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskInProgress, task.Status)

	evt := rec.last()
	assert.Equal(t, event.TaskStatusChanged, evt.Type)
	assert.Equal(t, string(entity.TaskPending), evt.From)
	assert.Equal(t, string(entity.TaskInProgress), evt.To)
}

func TestTransition_IlegalNoCambiaNada(t *testing.T) {
	uc, _, productID := setup(t)
	ctx := context.Background()
	task, err := uc.CreateTask(ctx, "Confección", "", productID)
	require.NoError(t, err)

	_, err = uc.Transition(ctx, task.ID, entity.TaskCompleted)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	got, err := uc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskPending, got.Status)

	_, err = uc.Transition(ctx, "no-existe", entity.TaskInProgress)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition_TerminalesNoAdmitenCambios(t *testing.T) {
	uc, _, productID := setup(t)
	ctx := context.Background()
	task, err := uc.CreateTask(ctx, "Bordado", "", productID)
	require.NoError(t, err)
	_, err = uc.Transition(ctx, task.ID, entity.TaskCancelled)
	require.NoError(t, err)

	for _, target := range []entity.TaskStatus{entity.TaskPending, entity.TaskInProgress, entity.TaskCompleted} {
		_, err = uc.Transition(ctx, task.ID, target)
		assert.ErrorIs(t, err, domain.ErrIllegalTransition, target)
	}
}

func TestAssignUser_Idempotente(t *testing.T) {
	uc, _, productID := setup(t)
	ctx := context.Background()
	task, err := uc.CreateTask(ctx, "Corte", "", productID)
	require.NoError(t, err)

	task, err = uc.AssignUser(ctx, task.ID, "operaria-1")
	require.NoError(t, err)
	task, err = uc.AssignUser(ctx, task.ID, "operaria-1")
	require.NoError(t, err)
	require.Len(t, task.Assignments, 1)
	assert.Equal(t, productID, task.Assignments[0].ProductID)

	task, err = uc.AssignUser(ctx, task.ID, "operaria-2")
	require.NoError(t, err)
	assert.Len(t, task.Assignments, 2)

	got, err := uc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, got.Assignments, 2)

	_, err = uc.AssignUser(ctx, task.ID, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
