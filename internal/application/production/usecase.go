// Package production contiene el motor de tareas de producción.
package production

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Confecciones-api/internal/application/events"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
)

// UseCase motor de tareas: creación, máquina de estados y asignaciones.
type UseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	events   events.Publisher
}

// NewUseCase construye el motor de tareas.
func NewUseCase(txRunner repository.TxRunner, repos repository.Repos, publisher events.Publisher) *UseCase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &UseCase{txRunner: txRunner, repos: repos, events: publisher}
}

// NewTask datos para crear una tarea. OrderID va vacío para tareas sueltas.
type NewTask struct {
	Name        string
	Description string
	ProductID   string
	OrderID     string
}

// CreateTask crea una tarea en PENDIENTE ligada a un producto existente.
func (uc *UseCase) CreateTask(ctx context.Context, name, description, productID string) (*entity.Task, error) {
	var task *entity.Task
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		var err error
		task, err = uc.CreateTaskInTx(ctx, r, NewTask{Name: name, Description: description, ProductID: productID}, time.Now(), &batch)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.events.Publish(ctx, batch...)
	return task, nil
}

// CreateTaskInTx crea la tarea con los repositorios del caller.
func (uc *UseCase) CreateTaskInTx(ctx context.Context, r repository.Repos, in NewTask, now time.Time, batch *events.Batch) (*entity.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name es requerido")
	}
	if in.ProductID == "" {
		return nil, domain.Invalid("product_id es requerido")
	}
	product, err := r.Catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	task := &entity.Task{
		ID:          uuid.New().String(),
		OrderID:     in.OrderID,
		ProductID:   product.ID,
		Name:        name,
		Description: in.Description,
		Status:      entity.TaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	evt := event.New(event.TaskCreated, now)
	evt.TaskID = task.ID
	evt.OrderID = task.OrderID
	evt.To = string(task.Status)
	batch.Add(evt)
	return task, nil
}

// Transition mueve la tarea a target si la arista es legal y notifica task.status_changed.
func (uc *UseCase) Transition(ctx context.Context, taskID string, target entity.TaskStatus) (*entity.Task, error) {
	var task *entity.Task
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		var err error
		task, err = uc.TransitionInTx(ctx, r, taskID, target, time.Now(), &batch)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.events.Publish(ctx, batch...)
	return task, nil
}

// TransitionInTx aplica la transición dentro de la transacción del caller.
func (uc *UseCase) TransitionInTx(
	ctx context.Context,
	r repository.Repos,
	taskID string,
	target entity.TaskStatus,
	now time.Time,
	batch *events.Batch,
) (*entity.Task, error) {
	task, err := r.Tasks.GetForUpdate(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: tarea %s", domain.ErrNotFound, taskID)
	}
	if !task.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: tarea %s de %s a %s", domain.ErrIllegalTransition, task.ID, task.Status, target)
	}
	from := task.Status
	if err := r.Tasks.UpdateStatus(ctx, task.ID, target, now); err != nil {
		return nil, err
	}
	task.Status = target
	task.UpdatedAt = now

	evt := event.New(event.TaskStatusChanged, now)
	evt.TaskID = task.ID
	evt.OrderID = task.OrderID
	evt.From = string(from)
	evt.To = string(target)
	batch.Add(evt)
	return task, nil
}

// CancelByOrderInTx cancela las tareas no terminales de un pedido.
func (uc *UseCase) CancelByOrderInTx(ctx context.Context, r repository.Repos, orderID string, now time.Time, batch *events.Batch) error {
	tasks, err := r.Tasks.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.Status.Terminal() {
			continue
		}
		if _, err := uc.TransitionInTx(ctx, r, t.ID, entity.TaskCancelled, now, batch); err != nil {
			return err
		}
	}
	return nil
}

// AssignUser agrega el par (usuario, producto de la tarea). Si ya estaba asignado no hace nada.
func (uc *UseCase) AssignUser(ctx context.Context, taskID, userID string) (*entity.Task, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.Invalid("user_id es requerido")
	}
	var task *entity.Task
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		var err error
		task, err = r.Tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: tarea %s", domain.ErrNotFound, taskID)
		}
		if task.HasAssignment(userID) {
			return nil
		}
		assignment := entity.TaskAssignment{UserID: userID, ProductID: task.ProductID}
		if err := r.Tasks.AddAssignment(ctx, task.ID, assignment); err != nil {
			return err
		}
		task.Assignments = append(task.Assignments, assignment)

		evt := event.New(event.TaskAssigned, time.Now())
		evt.TaskID = task.ID
		evt.OrderID = task.OrderID
		evt.UserID = userID
		batch.Add(evt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.events.Publish(ctx, batch...)
	return task, nil
}

// Get obtiene una tarea por ID.
func (uc *UseCase) Get(ctx context.Context, taskID string) (*entity.Task, error) {
	task, err := uc.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: tarea %s", domain.ErrNotFound, taskID)
	}
	return task, nil
}

// ListByOrder lista las tareas de un pedido.
func (uc *UseCase) ListByOrder(ctx context.Context, orderID string) ([]*entity.Task, error) {
	return uc.repos.Tasks.ListByOrder(ctx, orderID)
}
