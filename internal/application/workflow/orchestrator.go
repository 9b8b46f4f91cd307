// Package workflow coordina pedidos, tareas e inventario desde la creación hasta la entrega.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Confecciones-api/internal/application/events"
	"github.com/jhoicas/Confecciones-api/internal/application/orders"
	"github.com/jhoicas/Confecciones-api/internal/application/production"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/rs/zerolog/log"
)

// Orchestrator flujo pedido → producción → entrega con acciones de compensación.
type Orchestrator struct {
	orders *orders.UseCase
	tasks  *production.UseCase
	bus    *events.Bus
}

// New construye el orquestador. Con autoAdvance el motor de pedidos escucha task.status_changed
// y avanza el pedido solo; sin él, el orquestador avanza explícitamente tras cada paso.
func New(orderEngine *orders.UseCase, taskEngine *production.UseCase, bus *events.Bus, autoAdvance bool) *Orchestrator {
	o := &Orchestrator{orders: orderEngine, tasks: taskEngine, bus: bus}
	if autoAdvance {
		bus.Subscribe("orders.auto_advance", orderEngine.HandleTaskStatusChanged)
	}
	return o
}

// Attach suscribe un consumidor adicional de eventos (métricas, exportación).
func (o *Orchestrator) Attach(name string, h events.Handler) {
	o.bus.Subscribe(name, h)
}

// PlaceOrder crea el pedido reservando material; todo o nada.
func (o *Orchestrator) PlaceOrder(ctx context.Context, customerID string, lines []orders.LineInput) (*entity.Order, error) {
	return o.orders.CreateOrder(ctx, customerID, lines)
}

// StartProduction pasa el pedido a EN_PROCESO y arranca sus tareas pendientes.
// Si un paso falla después de salir de PENDIENTE, el pedido se cancela y se libera el material.
func (o *Orchestrator) StartProduction(ctx context.Context, orderID string) (*entity.Order, error) {
	if _, err := o.orders.TransitionTo(ctx, orderID, entity.OrderInProgress); err != nil {
		return nil, err
	}
	tasks, err := o.tasks.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, o.compensate(ctx, orderID, err)
	}
	for _, t := range tasks {
		if t.Status != entity.TaskPending {
			continue
		}
		if _, err := o.tasks.Transition(ctx, t.ID, entity.TaskInProgress); err != nil {
			return nil, o.compensate(ctx, orderID, err)
		}
	}
	order, err := o.orders.Get(ctx, orderID)
	if err != nil {
		return nil, o.compensate(ctx, orderID, err)
	}
	if order.Status == entity.OrderInProgress {
		if order, err = o.orders.Advance(ctx, orderID); err != nil {
			return nil, o.compensate(ctx, orderID, err)
		}
	}
	return order, nil
}

// CompleteTask marca la tarea COMPLETADA. Si era la última del pedido, el pedido queda COMPLETADO.
func (o *Orchestrator) CompleteTask(ctx context.Context, taskID string) (*entity.Task, error) {
	task, err := o.tasks.Transition(ctx, taskID, entity.TaskCompleted)
	if err != nil {
		return nil, err
	}
	if task.OrderID == "" {
		return task, nil
	}
	order, err := o.orders.Get(ctx, task.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == entity.OrderInProduction {
		if _, err := o.orders.Advance(ctx, order.ID); err != nil && !errors.Is(err, domain.ErrPreconditionNotMet) {
			return nil, err
		}
	}
	return task, nil
}

// Deliver confirma la entrega de un pedido COMPLETADO.
func (o *Orchestrator) Deliver(ctx context.Context, orderID string) (*entity.Order, error) {
	return o.orders.TransitionTo(ctx, orderID, entity.OrderDelivered)
}

func (o *Orchestrator) compensate(ctx context.Context, orderID string, cause error) error {
	log.Warn().Err(cause).Str("order_id", orderID).Msg("falló el inicio de producción, cancelando pedido")
	if _, err := o.orders.Cancel(ctx, orderID); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("no se pudo compensar el pedido")
		return fmt.Errorf("iniciar producción del pedido %s: %w", orderID, errors.Join(cause, err))
	}
	return fmt.Errorf("iniciar producción del pedido %s: %w", orderID, cause)
}
