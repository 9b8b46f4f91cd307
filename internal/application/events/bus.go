package events

import (
	"context"
	"sync"

	"github.com/jhoicas/Confecciones-api/internal/domain/event"
	"github.com/rs/zerolog/log"
)

// Handler consume un evento de dominio. Un error no detiene la entrega a los demás handlers.
type Handler func(ctx context.Context, evt event.Event) error

// Publisher contrato mínimo que usan los casos de uso para emitir eventos tras el commit.
type Publisher interface {
	Publish(ctx context.Context, evts ...event.Event)
}

// Bus reparte eventos de forma síncrona, en el orden de suscripción.
type Bus struct {
	mu       sync.RWMutex
	handlers []named
}

type named struct {
	name string
	fn   Handler
}

// NewBus construye un bus sin suscriptores.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registra un handler; name identifica al suscriptor en los logs.
func (b *Bus) Subscribe(name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, named{name: name, fn: fn})
}

// Publish entrega cada evento a todos los suscriptores antes de pasar al siguiente.
// Los eventos que un handler publica con el ctx recibido se encolan al final de la
// entrega en curso, de modo que los efectos nunca se observan antes que su causa.
func (b *Bus) Publish(ctx context.Context, evts ...event.Event) {
	if len(evts) == 0 {
		return
	}
	if q, ok := ctx.Value(queueKey{}).(*queue); ok {
		q.push(evts...)
		return
	}

	b.mu.RLock()
	handlers := append([]named(nil), b.handlers...)
	b.mu.RUnlock()

	q := &queue{}
	q.push(evts...)
	ctx = context.WithValue(ctx, queueKey{}, q)
	for {
		evt, ok := q.pop()
		if !ok {
			return
		}
		for _, h := range handlers {
			if err := h.fn(ctx, evt); err != nil {
				log.Error().Err(err).
					Str("subscriber", h.name).
					Str("event_type", evt.Type).
					Str("event_id", evt.ID).
					Msg("handler de evento falló")
			}
		}
	}
}

type queueKey struct{}

// queue cola FIFO de una entrega en curso.
type queue struct {
	mu      sync.Mutex
	pending []event.Event
}

func (q *queue) push(evts ...event.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, evts...)
}

func (q *queue) pop() (event.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return event.Event{}, false
	}
	evt := q.pending[0]
	q.pending = q.pending[1:]
	return evt, true
}

// Nop descarta los eventos; útil cuando un caso de uso se usa sin bus.
type Nop struct{}

func (Nop) Publish(context.Context, ...event.Event) {}
