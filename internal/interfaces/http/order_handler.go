package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/application/orders"
	"github.com/jhoicas/Confecciones-api/internal/application/production"
	"github.com/jhoicas/Confecciones-api/internal/application/workflow"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
)

// OrderHandler maneja las peticiones HTTP de pedidos.
type OrderHandler struct {
	orders   *orders.UseCase
	tasks    *production.UseCase
	workflow *workflow.Orchestrator
}

// NewOrderHandler construye el handler.
func NewOrderHandler(o *orders.UseCase, t *production.UseCase, wf *workflow.Orchestrator) *OrderHandler {
	return &OrderHandler{orders: o, tasks: t, workflow: wf}
}

// Create POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]orders.LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, orders.LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := h.workflow.PlaceOrder(c.UserContext(), in.CustomerID, lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// GetByID GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// List GET /api/orders?status=PENDIENTE&include_archived=false&limit=20&offset=0
func (h *OrderHandler) List(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		IncludeArchived: c.QueryBool("include_archived", false),
		Limit:           c.QueryInt("limit", 20),
		Offset:          c.QueryInt("offset", 0),
	}
	if s := c.Query("status"); s != "" {
		status, err := entity.ParseOrderStatus(s)
		if err != nil {
			return writeError(c, err)
		}
		filter.Status = status
	}
	list, err := h.orders.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, dto.NewOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	})
}

// Advance POST /api/orders/:id/advance
func (h *OrderHandler) Advance(c *fiber.Ctx) error {
	return h.respond(c, func(id string) (*entity.Order, error) { return h.orders.Advance(c.UserContext(), id) })
}

// Transition POST /api/orders/:id/transition {"status": "EN_PROCESO"}
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	target, err := entity.ParseOrderStatus(in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return h.respond(c, func(id string) (*entity.Order, error) { return h.orders.TransitionTo(c.UserContext(), id, target) })
}

// Cancel POST /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return h.respond(c, func(id string) (*entity.Order, error) { return h.orders.Cancel(c.UserContext(), id) })
}

// Archive POST /api/orders/:id/archive
func (h *OrderHandler) Archive(c *fiber.Ctx) error {
	return h.respond(c, func(id string) (*entity.Order, error) { return h.orders.Archive(c.UserContext(), id) })
}

// Start POST /api/orders/:id/start
func (h *OrderHandler) Start(c *fiber.Ctx) error {
	return h.respond(c, func(id string) (*entity.Order, error) { return h.workflow.StartProduction(c.UserContext(), id) })
}

// Deliver POST /api/orders/:id/deliver
func (h *OrderHandler) Deliver(c *fiber.Ctx) error {
	return h.respond(c, func(id string) (*entity.Order, error) { return h.workflow.Deliver(c.UserContext(), id) })
}

// Reservations GET /api/orders/:id/reservations
func (h *OrderHandler) Reservations(c *fiber.Ctx) error {
	list, err := h.orders.Reservations(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.NewReservationResponse(r))
	}
	return c.JSON(out)
}

// Tasks GET /api/orders/:id/tasks
func (h *OrderHandler) Tasks(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.orders.Get(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	list, err := h.tasks.ListByOrder(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.TaskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.NewTaskResponse(t))
	}
	return c.JSON(out)
}

func (h *OrderHandler) respond(c *fiber.Ctx, op func(id string) (*entity.Order, error)) error {
	order, err := op(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}
