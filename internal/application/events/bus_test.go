package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Confecciones-api/internal/application/events"
	"github.com/jhoicas/Confecciones-api/internal/domain/event"
)

func TestBus_EntregaEnOrdenDeSuscripcion(t *testing.T) {
	bus := events.NewBus()
	var got []string
	bus.Subscribe("a", func(_ context.Context, evt event.Event) error {
		got = append(got, "a:"+evt.Type)
		return errors.New("falla a")
	})
	bus.Subscribe("b", func(_ context.Context, evt event.Event) error {
		got = append(got, "b:"+evt.Type)
		return nil
	})

	now := time.Now()
	bus.Publish(context.Background(), event.New(event.OrderCreated, now), event.New(event.TaskCreated, now))

	assert.Equal(t, []string{
		"a:" + event.OrderCreated,
		"b:" + event.OrderCreated,
		"a:" + event.TaskCreated,
		"b:" + event.TaskCreated,
	}, got)
}

func TestBatch_Add(t *testing.T) {
	var b events.Batch
	b.Add(event.New(event.OrderArchived, time.Now()))
	assert.Len(t, b, 1)
	events.Nop{}.Publish(context.Background(), b...)
}

func TestEvent_KeyPrefierePedido(t *testing.T) {
	evt := event.New(event.InventoryReserved, time.Now())
	evt.TaskID = "t1"
	assert.Equal(t, "t1", evt.Key())
	evt.MaterialTypeID = "m1"
	assert.Equal(t, "m1", evt.Key())
	evt.OrderID = "o1"
	assert.Equal(t, "o1", evt.Key())
}

// Un handler que publica durante la entrega no adelanta sus eventos a los demás suscriptores.
func TestBus_EventosAnidadosSeEntreganDespuesDeSuCausa(t *testing.T) {
	bus := events.NewBus()
	var got []string
	bus.Subscribe("reactor", func(ctx context.Context, evt event.Event) error {
		if evt.Type == event.TaskStatusChanged {
			bus.Publish(ctx, event.New(event.OrderStatusChanged, time.Now()))
		}
		return nil
	})
	bus.Subscribe("export", func(_ context.Context, evt event.Event) error {
		got = append(got, evt.Type)
		return nil
	})

	bus.Publish(context.Background(), event.New(event.TaskStatusChanged, time.Now()))

	assert.Equal(t, []string{event.TaskStatusChanged, event.OrderStatusChanged}, got)
}

func TestBus_PublicacionesIndependientesNoCompartenCola(t *testing.T) {
	bus := events.NewBus()
	count := 0
	bus.Subscribe("contador", func(context.Context, event.Event) error {
		count++
		return nil
	})

	bus.Publish(context.Background(), event.New(event.OrderCreated, time.Now()))
	assert.Equal(t, 1, count, "al retornar Publish el evento ya fue entregado")
	bus.Publish(context.Background())
	assert.Equal(t, 1, count)
}
