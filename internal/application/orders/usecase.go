// Package orders contiene el motor de pedidos: agregado, máquina de estados y reservas de material.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Confecciones-api/internal/application/events"
	"github.com/jhoicas/Confecciones-api/internal/application/inventory"
	"github.com/jhoicas/Confecciones-api/internal/application/production"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// UseCase motor de pedidos. Compone el libro de inventario y el motor de tareas
// dentro de una sola transacción por operación.
type UseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	ledger   *inventory.LedgerUseCase
	tasks    *production.UseCase
	events   events.Publisher
}

// NewUseCase construye el motor de pedidos.
func NewUseCase(
	txRunner repository.TxRunner,
	repos repository.Repos,
	ledger *inventory.LedgerUseCase,
	tasks *production.UseCase,
	publisher events.Publisher,
) *UseCase {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &UseCase{txRunner: txRunner, repos: repos, ledger: ledger, tasks: tasks, events: publisher}
}

// LineInput línea solicitada; el precio unitario se copia del catálogo.
type LineInput struct {
	ProductID string
	Quantity  int
}

type requirement struct {
	materialTypeID string
	lineID         string
	quantity       decimal.Decimal
}

// CreateOrder crea el pedido con todas sus reservas o no crea nada.
// Cualquier fallo revierte la transacción completa y se reporta como *domain.OrderCreationError.
func (uc *UseCase) CreateOrder(ctx context.Context, customerID string, lines []LineInput) (*entity.Order, error) {
	if len(lines) == 0 {
		return nil, &domain.OrderCreationError{Reason: domain.Invalid("el pedido requiere al menos una línea")}
	}
	now := time.Now()
	order := &entity.Order{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Status:     entity.OrderPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		order.Lines = nil

		customer, err := r.Customers.GetByID(ctx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
		}

		products := make(map[string]*entity.Product, len(lines))
		var productOrder []string
		var reqs []requirement
		for i, in := range lines {
			if in.Quantity <= 0 {
				return domain.Invalid("línea %d: quantity debe ser mayor a cero", i+1)
			}
			product, ok := products[in.ProductID]
			if !ok {
				product, err = r.Catalog.GetProduct(ctx, in.ProductID)
				if err != nil {
					return err
				}
				if product == nil {
					return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
				}
				products[product.ID] = product
				productOrder = append(productOrder, product.ID)
			}
			line := entity.OrderLine{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  in.Quantity,
				UnitPrice: product.UnitPrice.Round(2),
			}
			if err := line.Validate(); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
			units := decimal.NewFromInt(int64(in.Quantity))
			for _, m := range product.Materials {
				reqs = append(reqs, requirement{
					materialTypeID: m.MaterialTypeID,
					lineID:         line.ID,
					quantity:       m.QuantityPerUnit.Mul(units),
				})
			}
		}

		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}
		created := event.New(event.OrderCreated, now)
		created.OrderID = order.ID
		created.To = string(order.Status)
		batch.Add(created)

		// Orden global ascendente por material para evitar interbloqueos entre pedidos concurrentes.
		sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].materialTypeID < reqs[j].materialTypeID })
		for _, req := range reqs {
			ref := inventory.Reference{OrderID: order.ID, OrderLineID: req.lineID}
			if _, err := uc.ledger.ReserveInTx(ctx, r, req.materialTypeID, req.quantity, ref, now, &batch); err != nil {
				return err
			}
		}

		for _, productID := range productOrder {
			product := products[productID]
			units := 0
			for _, l := range order.Lines {
				if l.ProductID == productID {
					units += l.Quantity
				}
			}
			_, err := uc.tasks.CreateTaskInTx(ctx, r, production.NewTask{
				Name:        "Producción " + product.Name,
				Description: fmt.Sprintf("Pedido %s: %d unidades", order.ID, units),
				ProductID:   productID,
				OrderID:     order.ID,
			}, now, &batch)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("creación de pedido revertida")
		return nil, &domain.OrderCreationError{Reason: err}
	}
	uc.events.Publish(ctx, batch...)
	log.Info().Str("order_id", order.ID).Int("lines", len(order.Lines)).Str("total", order.Total().String()).Msg("pedido creado")
	return order, nil
}

// Advance mueve el pedido al siguiente estado si se cumplen sus guardas.
func (uc *UseCase) Advance(ctx context.Context, orderID string) (*entity.Order, error) {
	return uc.mutate(ctx, orderID, func(r repository.Repos, order *entity.Order, now time.Time, batch *events.Batch) error {
		next, ok := order.Status.Next()
		if !ok {
			return fmt.Errorf("%w: el pedido %s en %s no tiene estado siguiente", domain.ErrIllegalTransition, order.ID, order.Status)
		}
		return uc.transitionInTx(ctx, r, order, next, now, batch)
	})
}

// TransitionTo lleva el pedido a target; solo se admite la siguiente arista o la cancelación.
func (uc *UseCase) TransitionTo(ctx context.Context, orderID string, target entity.OrderStatus) (*entity.Order, error) {
	if target == entity.OrderCancelled {
		return uc.Cancel(ctx, orderID)
	}
	return uc.mutate(ctx, orderID, func(r repository.Repos, order *entity.Order, now time.Time, batch *events.Batch) error {
		if !order.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: pedido %s de %s a %s", domain.ErrIllegalTransition, order.ID, order.Status, target)
		}
		return uc.transitionInTx(ctx, r, order, target, now, batch)
	})
}

// Cancel libera las reservas activas, cancela las tareas abiertas y marca el pedido CANCELADO.
func (uc *UseCase) Cancel(ctx context.Context, orderID string) (*entity.Order, error) {
	return uc.mutate(ctx, orderID, func(r repository.Repos, order *entity.Order, now time.Time, batch *events.Batch) error {
		if order.Archived() || !order.Status.Cancellable() {
			return fmt.Errorf("%w: no se puede cancelar el pedido %s en %s", domain.ErrIllegalTransition, order.ID, order.Status)
		}
		reservations, err := r.Reservations.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if !res.IsActive() {
				continue
			}
			if err := uc.ledger.ReleaseInTx(ctx, r, res.ID, now, batch); err != nil {
				return err
			}
		}
		if err := uc.tasks.CancelByOrderInTx(ctx, r, order.ID, now, batch); err != nil {
			return err
		}
		return uc.setStatus(ctx, r, order, entity.OrderCancelled, now, batch)
	})
}

// Archive borra lógicamente un pedido cerrado y archiva sus tareas. Archivar dos veces no hace nada.
func (uc *UseCase) Archive(ctx context.Context, orderID string) (*entity.Order, error) {
	return uc.mutate(ctx, orderID, func(r repository.Repos, order *entity.Order, now time.Time, batch *events.Batch) error {
		if order.Archived() {
			return nil
		}
		if !order.Status.Closed() {
			return fmt.Errorf("%w: solo se archivan pedidos cerrados (pedido %s en %s)", domain.ErrIllegalTransition, order.ID, order.Status)
		}
		if err := r.Orders.Archive(ctx, order.ID, now); err != nil {
			return err
		}
		if err := r.Tasks.ArchiveByOrder(ctx, order.ID, now); err != nil {
			return err
		}
		order.ArchivedAt = &now
		order.UpdatedAt = now
		evt := event.New(event.OrderArchived, now)
		evt.OrderID = order.ID
		batch.Add(evt)
		return nil
	})
}

// Get obtiene un pedido (incluye archivados).
func (uc *UseCase) Get(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := uc.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, orderID)
	}
	return order, nil
}

// List lista pedidos no archivados, del más reciente al más antiguo.
func (uc *UseCase) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.repos.Orders.List(ctx, filter)
}

// Reservations lista las reservas de material de un pedido.
func (uc *UseCase) Reservations(ctx context.Context, orderID string) ([]*entity.Reservation, error) {
	if _, err := uc.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return uc.repos.Reservations.ListByOrder(ctx, orderID)
}

// HandleTaskStatusChanged avanza el pedido cuando el cambio de una tarea satisface la guarda
// del siguiente estado. Las guardas no cumplidas se ignoran.
func (uc *UseCase) HandleTaskStatusChanged(ctx context.Context, evt event.Event) error {
	if evt.Type != event.TaskStatusChanged || evt.OrderID == "" {
		return nil
	}
	var from entity.OrderStatus
	switch entity.TaskStatus(evt.To) {
	case entity.TaskInProgress:
		from = entity.OrderInProgress
	case entity.TaskCompleted:
		from = entity.OrderInProduction
	default:
		return nil
	}

	var err error
	for attempt := 1; attempt <= autoAdvanceAttempts; attempt++ {
		err = uc.advanceFrom(ctx, evt.OrderID, from)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return err
}

const autoAdvanceAttempts = 3

func (uc *UseCase) advanceFrom(ctx context.Context, orderID string, from entity.OrderStatus) error {
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		order, err := r.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil || order.Archived() || order.Status != from {
			return nil
		}
		next, _ := from.Next()
		err = uc.transitionInTx(ctx, r, order, next, time.Now(), &batch)
		if errors.Is(err, domain.ErrPreconditionNotMet) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	uc.events.Publish(ctx, batch...)
	return nil
}

type mutation func(r repository.Repos, order *entity.Order, now time.Time, batch *events.Batch) error

// mutate bloquea el pedido, aplica fn y publica los eventos tras el commit.
func (uc *UseCase) mutate(ctx context.Context, orderID string, fn mutation) (*entity.Order, error) {
	var order *entity.Order
	var batch events.Batch
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		batch = nil
		var err error
		order, err = r.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, orderID)
		}
		return fn(r, order, time.Now(), &batch)
	})
	if err != nil {
		return nil, err
	}
	uc.events.Publish(ctx, batch...)
	return order, nil
}

// transitionInTx evalúa las guardas de la arista y aplica el cambio de estado.
func (uc *UseCase) transitionInTx(
	ctx context.Context,
	r repository.Repos,
	order *entity.Order,
	target entity.OrderStatus,
	now time.Time,
	batch *events.Batch,
) error {
	if order.Archived() {
		return fmt.Errorf("%w: el pedido %s está archivado", domain.ErrIllegalTransition, order.ID)
	}
	switch target {
	case entity.OrderInProduction:
		tasks, err := r.Tasks.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if !anyTask(tasks, entity.TaskInProgress) {
			return fmt.Errorf("%w: el pedido %s no tiene tareas en proceso", domain.ErrPreconditionNotMet, order.ID)
		}
	case entity.OrderCompleted:
		tasks, err := r.Tasks.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if !allTasks(tasks, entity.TaskCompleted) {
			return fmt.Errorf("%w: el pedido %s tiene tareas sin completar", domain.ErrPreconditionNotMet, order.ID)
		}
		reservations, err := r.Reservations.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if !res.IsActive() {
				continue
			}
			if err := uc.ledger.ConsumeInTx(ctx, r, res.ID, now, batch); err != nil {
				return err
			}
		}
	}
	return uc.setStatus(ctx, r, order, target, now, batch)
}

func (uc *UseCase) setStatus(
	ctx context.Context,
	r repository.Repos,
	order *entity.Order,
	target entity.OrderStatus,
	now time.Time,
	batch *events.Batch,
) error {
	if err := r.Orders.UpdateStatus(ctx, order.ID, target, now); err != nil {
		return err
	}
	evt := event.New(event.OrderStatusChanged, now)
	evt.OrderID = order.ID
	evt.From = string(order.Status)
	evt.To = string(target)
	batch.Add(evt)

	order.Status = target
	order.UpdatedAt = now
	return nil
}

func anyTask(tasks []*entity.Task, status entity.TaskStatus) bool {
	for _, t := range tasks {
		if t.Status == status {
			return true
		}
	}
	return false
}

func allTasks(tasks []*entity.Task, status entity.TaskStatus) bool {
	for _, t := range tasks {
		if t.Status != status {
			return false
		}
	}
	return true
}
