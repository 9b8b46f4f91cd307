package events

import "github.com/jhoicas/Confecciones-api/internal/domain/event"

// Batch acumula los eventos generados dentro de una transacción para publicarlos tras el commit.
type Batch []event.Event

// Add agrega un evento al lote.
func (b *Batch) Add(evt event.Event) {
	*b = append(*b, evt)
}
