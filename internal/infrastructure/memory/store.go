// Package memory implementa los puertos de persistencia en memoria.
// Cada transacción trabaja sobre una copia del estado y la publica al confirmar;
// las transacciones se serializan con un único mutex (aislamiento serializable).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	lines        map[string]*entity.Line
	sizes        map[string]*entity.Size
	products     map[string]*entity.Product
	customers    map[string]*entity.Customer
	materials    map[string]*entity.MaterialType
	ledger       []*entity.LedgerEntry // asientos inmutables, se comparten entre copias
	reservations map[string]*entity.Reservation
	orders       map[string]*entity.Order
	orderSeq     []string // orden de creación para listados estables
	tasks        map[string]*entity.Task
	taskSeq      []string
}

func newState() *state {
	return &state{
		lines:        map[string]*entity.Line{},
		sizes:        map[string]*entity.Size{},
		products:     map[string]*entity.Product{},
		customers:    map[string]*entity.Customer{},
		materials:    map[string]*entity.MaterialType{},
		reservations: map[string]*entity.Reservation{},
		orders:       map[string]*entity.Order{},
		tasks:        map[string]*entity.Task{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.lines {
		cp := *v
		c.lines[k] = &cp
	}
	for k, v := range s.sizes {
		cp := *v
		c.sizes[k] = &cp
	}
	for k, v := range s.products {
		c.products[k] = v.Clone()
	}
	for k, v := range s.customers {
		cp := *v
		c.customers[k] = &cp
	}
	for k, v := range s.materials {
		cp := *v
		c.materials[k] = &cp
	}
	for k, v := range s.reservations {
		cp := *v
		c.reservations[k] = &cp
	}
	for k, v := range s.orders {
		c.orders[k] = v.Clone()
	}
	for k, v := range s.tasks {
		c.tasks[k] = v.Clone()
	}
	c.ledger = append([]*entity.LedgerEntry(nil), s.ledger...)
	c.orderSeq = append([]string(nil), s.orderSeq...)
	c.taskSeq = append([]string(nil), s.taskSeq...)
	return c
}

// Store almacén en memoria. Útil en desarrollo (STORAGE_DRIVER=memory) y en pruebas.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// view da acceso al estado: st != nil dentro de una transacción; si no, cada llamada toma el mutex.
type view struct {
	store *Store
	st    *state
}

func (v view) with(fn func(st *state)) {
	if v.st != nil {
		fn(v.st)
		return
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	fn(v.store.data)
}

func (s *Store) repos(v view) repository.Repos {
	return repository.Repos{
		Catalog:      &CatalogRepo{v: v},
		Customers:    &CustomerRepo{v: v},
		Materials:    &MaterialTypeRepo{v: v},
		Ledger:       &LedgerRepo{v: v},
		Reservations: &ReservationRepo{v: v},
		Orders:       &OrderRepo{v: v},
		Tasks:        &TaskRepo{v: v},
	}
}

// Repos devuelve repositorios fuera de transacción (cada operación es atómica por sí sola).
func (s *Store) Repos() repository.Repos {
	return s.repos(view{store: s})
}

// Run ejecuta fn sobre una copia del estado; si fn retorna nil la copia pasa a ser el estado vigente.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(s.repos(view{store: s, st: work})); err != nil {
		return err
	}
	s.data = work
	return nil
}

// page aplica limit/offset sobre un listado ya ordenado.
func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
