package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	confkafka "github.com/jhoicas/Confecciones-api/internal/infrastructure/kafka"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_UsaPedidoComoClave(t *testing.T) {
	w := &fakeWriter{}
	p := confkafka.NewPublisher(w, time.Second)

	evt := event.New(event.OrderStatusChanged, time.Now())
	evt.OrderID = "pedido-1"
	evt.From = "PENDIENTE"
	evt.To = "EN_PROCESO"

	require.NoError(t, p.Handle(context.Background(), evt))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "pedido-1", string(w.msgs[0].Key))
	require.Len(t, w.msgs[0].Headers, 1)
	assert.Equal(t, event.OrderStatusChanged, string(w.msgs[0].Headers[0].Value))

	var decoded event.Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, "EN_PROCESO", decoded.To)
}

func TestPublisher_SinPedidoUsaMaterial(t *testing.T) {
	w := &fakeWriter{}
	p := confkafka.NewPublisher(w, 0)

	evt := event.New(event.InventoryReceived, time.Now())
	evt.MaterialTypeID = "tela-1"

	require.NoError(t, p.Handle(context.Background(), evt))
	assert.Equal(t, "tela-1", string(w.msgs[0].Key))
}

func TestPublisher_PropagaErrorDelWriter(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := confkafka.NewPublisher(w, time.Second)

	err := p.Handle(context.Background(), event.New(event.TaskCreated, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker caído")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
