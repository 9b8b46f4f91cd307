package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
)

var (
	_ repository.CatalogRepository      = (*CatalogRepo)(nil)
	_ repository.CustomerRepository     = (*CustomerRepo)(nil)
	_ repository.MaterialTypeRepository = (*MaterialTypeRepo)(nil)
	_ repository.LedgerRepository       = (*LedgerRepo)(nil)
	_ repository.ReservationRepository  = (*ReservationRepo)(nil)
	_ repository.OrderRepository        = (*OrderRepo)(nil)
	_ repository.TaskRepository         = (*TaskRepo)(nil)
)

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

// CatalogRepo catálogo en memoria.
type CatalogRepo struct{ v view }

func (r *CatalogRepo) CreateLine(_ context.Context, line *entity.Line) error {
	var err error
	r.v.with(func(st *state) {
		for _, l := range st.lines {
			if l.ID == line.ID || strings.EqualFold(l.Name, line.Name) {
				err = domain.ErrDuplicate
				return
			}
		}
		cp := *line
		st.lines[line.ID] = &cp
	})
	return err
}

func (r *CatalogRepo) GetLine(_ context.Context, id string) (*entity.Line, error) {
	var out *entity.Line
	r.v.with(func(st *state) {
		if l, ok := st.lines[id]; ok {
			cp := *l
			out = &cp
		}
	})
	return out, nil
}

func (r *CatalogRepo) ListLines(_ context.Context) ([]*entity.Line, error) {
	var out []*entity.Line
	r.v.with(func(st *state) {
		for _, l := range st.lines {
			cp := *l
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CatalogRepo) CreateSize(_ context.Context, size *entity.Size) error {
	var err error
	r.v.with(func(st *state) {
		for _, s := range st.sizes {
			if s.ID == size.ID || s.Code == size.Code {
				err = domain.ErrDuplicate
				return
			}
		}
		cp := *size
		st.sizes[size.ID] = &cp
	})
	return err
}

func (r *CatalogRepo) GetSize(_ context.Context, id string) (*entity.Size, error) {
	var out *entity.Size
	r.v.with(func(st *state) {
		if s, ok := st.sizes[id]; ok {
			cp := *s
			out = &cp
		}
	})
	return out, nil
}

func (r *CatalogRepo) ListSizes(_ context.Context) ([]*entity.Size, error) {
	var out []*entity.Size
	r.v.with(func(st *state) {
		for _, s := range st.sizes {
			cp := *s
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *CatalogRepo) CreateProduct(_ context.Context, product *entity.Product) error {
	var err error
	r.v.with(func(st *state) {
		if _, ok := st.products[product.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.products[product.ID] = product.Clone()
	})
	return err
}

func (r *CatalogRepo) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.with(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = p.Clone()
		}
	})
	return out, nil
}

func (r *CatalogRepo) ListProducts(_ context.Context, lineID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.v.with(func(st *state) {
		for _, p := range st.products {
			if lineID != "" && p.LineID != lineID {
				continue
			}
			out = append(out, p.Clone())
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

// CustomerRepo clientes en memoria.
type CustomerRepo struct{ v view }

func (r *CustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	var err error
	r.v.with(func(st *state) {
		for _, c := range st.customers {
			if c.ID == customer.ID || c.TaxID == customer.TaxID {
				err = domain.ErrDuplicate
				return
			}
		}
		cp := *customer
		st.customers[customer.ID] = &cp
	})
	return err
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	r.v.with(func(st *state) {
		if c, ok := st.customers[id]; ok {
			cp := *c
			out = &cp
		}
	})
	return out, nil
}

func (r *CustomerRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	var out *entity.Customer
	r.v.with(func(st *state) {
		for _, c := range st.customers {
			if c.TaxID == taxID {
				cp := *c
				out = &cp
				return
			}
		}
	})
	return out, nil
}

func (r *CustomerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	r.v.with(func(st *state) {
		for _, c := range st.customers {
			cp := *c
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Materiales, libro y reservas
// ──────────────────────────────────────────────────────────────────────────────

// MaterialTypeRepo materiales en memoria.
type MaterialTypeRepo struct{ v view }

func (r *MaterialTypeRepo) Create(_ context.Context, material *entity.MaterialType) error {
	var err error
	r.v.with(func(st *state) {
		if _, ok := st.materials[material.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		cp := *material
		st.materials[material.ID] = &cp
	})
	return err
}

func (r *MaterialTypeRepo) GetByID(_ context.Context, id string) (*entity.MaterialType, error) {
	var out *entity.MaterialType
	r.v.with(func(st *state) {
		if m, ok := st.materials[id]; ok {
			cp := *m
			out = &cp
		}
	})
	return out, nil
}

// GetForUpdate en memoria la transacción ya es exclusiva; equivale a GetByID.
func (r *MaterialTypeRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaterialType, error) {
	return r.GetByID(ctx, id)
}

func (r *MaterialTypeRepo) List(_ context.Context) ([]*entity.MaterialType, error) {
	var out []*entity.MaterialType
	r.v.with(func(st *state) {
		for _, m := range st.materials {
			cp := *m
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MaterialTypeRepo) UpdateBalance(_ context.Context, material *entity.MaterialType) error {
	var err error
	r.v.with(func(st *state) {
		m, ok := st.materials[material.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		m.OnHand = material.OnHand
		m.Reserved = material.Reserved
		m.UpdatedAt = material.UpdatedAt
	})
	return err
}

// LedgerRepo libro de inventario en memoria.
type LedgerRepo struct{ v view }

func (r *LedgerRepo) Append(_ context.Context, entry *entity.LedgerEntry) error {
	cp := *entry
	r.v.with(func(st *state) {
		st.ledger = append(st.ledger, &cp)
	})
	return nil
}

func (r *LedgerRepo) ListByMaterial(_ context.Context, materialTypeID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	r.v.with(func(st *state) {
		for _, e := range st.ledger {
			if e.MaterialTypeID == materialTypeID {
				cp := *e
				out = append(out, &cp)
			}
		}
	})
	return out, nil
}

// ReservationRepo reservas en memoria.
type ReservationRepo struct{ v view }

func (r *ReservationRepo) Create(_ context.Context, reservation *entity.Reservation) error {
	var err error
	r.v.with(func(st *state) {
		if _, ok := st.reservations[reservation.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		cp := *reservation
		st.reservations[reservation.ID] = &cp
	})
	return err
}

func (r *ReservationRepo) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	var out *entity.Reservation
	r.v.with(func(st *state) {
		if res, ok := st.reservations[id]; ok {
			cp := *res
			out = &cp
		}
	})
	return out, nil
}

func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *ReservationRepo) UpdateStatus(_ context.Context, reservation *entity.Reservation) error {
	var err error
	r.v.with(func(st *state) {
		res, ok := st.reservations[reservation.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		res.Status = reservation.Status
		res.UpdatedAt = reservation.UpdatedAt
	})
	return err
}

func (r *ReservationRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	r.v.with(func(st *state) {
		for _, res := range st.reservations {
			if res.OrderID == orderID {
				cp := *res
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].MaterialTypeID != out[j].MaterialTypeID {
			return out[i].MaterialTypeID < out[j].MaterialTypeID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos y tareas
// ──────────────────────────────────────────────────────────────────────────────

// OrderRepo pedidos en memoria.
type OrderRepo struct{ v view }

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	var err error
	r.v.with(func(st *state) {
		if _, ok := st.orders[order.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.orders[order.ID] = order.Clone()
		st.orderSeq = append(st.orderSeq, order.ID)
	})
	return err
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	r.v.with(func(st *state) {
		if o, ok := st.orders[id]; ok {
			out = o.Clone()
		}
	})
	return out, nil
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id string, status entity.OrderStatus, at time.Time) error {
	var err error
	r.v.with(func(st *state) {
		o, ok := st.orders[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		o.Status = status
		o.UpdatedAt = at
	})
	return err
}

func (r *OrderRepo) Archive(_ context.Context, id string, at time.Time) error {
	var err error
	r.v.with(func(st *state) {
		o, ok := st.orders[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		o.ArchivedAt = &at
		o.UpdatedAt = at
	})
	return err
}

func (r *OrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	r.v.with(func(st *state) {
		// más recientes primero
		for i := len(st.orderSeq) - 1; i >= 0; i-- {
			o := st.orders[st.orderSeq[i]]
			if o.Archived() && !filter.IncludeArchived {
				continue
			}
			if filter.Status != "" && o.Status != filter.Status {
				continue
			}
			out = append(out, o.Clone())
		}
	})
	return page(out, filter.Limit, filter.Offset), nil
}

// TaskRepo tareas en memoria.
type TaskRepo struct{ v view }

func (r *TaskRepo) Create(_ context.Context, task *entity.Task) error {
	var err error
	r.v.with(func(st *state) {
		if _, ok := st.tasks[task.ID]; ok {
			err = domain.ErrDuplicate
			return
		}
		st.tasks[task.ID] = task.Clone()
		st.taskSeq = append(st.taskSeq, task.ID)
	})
	return err
}

func (r *TaskRepo) GetByID(_ context.Context, id string) (*entity.Task, error) {
	var out *entity.Task
	r.v.with(func(st *state) {
		if t, ok := st.tasks[id]; ok {
			out = t.Clone()
		}
	})
	return out, nil
}

func (r *TaskRepo) GetForUpdate(ctx context.Context, id string) (*entity.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *TaskRepo) UpdateStatus(_ context.Context, id string, status entity.TaskStatus, at time.Time) error {
	var err error
	r.v.with(func(st *state) {
		t, ok := st.tasks[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		t.Status = status
		t.UpdatedAt = at
	})
	return err
}

func (r *TaskRepo) AddAssignment(_ context.Context, taskID string, assignment entity.TaskAssignment) error {
	var err error
	r.v.with(func(st *state) {
		t, ok := st.tasks[taskID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		if t.HasAssignment(assignment.UserID) {
			return
		}
		t.Assignments = append(t.Assignments, assignment)
	})
	return err
}

func (r *TaskRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Task, error) {
	var out []*entity.Task
	r.v.with(func(st *state) {
		for _, id := range st.taskSeq {
			if t := st.tasks[id]; t.OrderID == orderID {
				out = append(out, t.Clone())
			}
		}
	})
	return out, nil
}

func (r *TaskRepo) ArchiveByOrder(_ context.Context, orderID string, at time.Time) error {
	r.v.with(func(st *state) {
		for _, t := range st.tasks {
			if t.OrderID == orderID && t.ArchivedAt == nil {
				ts := at
				t.ArchivedAt = &ts
				t.UpdatedAt = at
			}
		}
	})
	return nil
}
