package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/Confecciones-api/internal/application/catalog"
	"github.com/jhoicas/Confecciones-api/internal/application/customer"
	"github.com/jhoicas/Confecciones-api/internal/application/inventory"
	"github.com/jhoicas/Confecciones-api/internal/application/orders"
	"github.com/jhoicas/Confecciones-api/internal/application/production"
	"github.com/jhoicas/Confecciones-api/internal/application/workflow"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC  *catalog.UseCase
	CustomerUC *customer.UseCase
	LedgerUC   *inventory.LedgerUseCase
	OrderUC    *orders.UseCase
	TaskUC     *production.UseCase
	Workflow   *workflow.Orchestrator
	Metrics    http.Handler // nil = sin /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	api.Post("/lines", catalogHandler.CreateLine)
	api.Get("/lines", catalogHandler.ListLines)
	api.Post("/sizes", catalogHandler.CreateSize)
	api.Get("/sizes", catalogHandler.ListSizes)
	products := api.Group("/products")
	products.Post("/", catalogHandler.CreateProduct)
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)

	// Clientes
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Libro de inventario
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	materials := api.Group("/materials")
	materials.Post("/", inventoryHandler.CreateMaterial)
	materials.Get("/", inventoryHandler.ListMaterials)
	materials.Get("/integrity", inventoryHandler.VerifyAll)
	materials.Get("/:id", inventoryHandler.GetMaterial)
	materials.Post("/:id/receipts", inventoryHandler.Receive)
	materials.Get("/:id/ledger", inventoryHandler.Ledger)
	materials.Get("/:id/integrity", inventoryHandler.VerifyMaterial)
	reservations := api.Group("/reservations")
	reservations.Get("/:id", inventoryHandler.GetReservation)
	reservations.Post("/:id/release", inventoryHandler.Release)
	reservations.Post("/:id/consume", inventoryHandler.Consume)

	// Pedidos
	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.TaskUC, deps.Workflow)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/advance", orderHandler.Advance)
	ordersGroup.Post("/:id/transition", orderHandler.Transition)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
	ordersGroup.Post("/:id/archive", orderHandler.Archive)
	ordersGroup.Post("/:id/start", orderHandler.Start)
	ordersGroup.Post("/:id/deliver", orderHandler.Deliver)
	ordersGroup.Get("/:id/reservations", orderHandler.Reservations)
	ordersGroup.Get("/:id/tasks", orderHandler.Tasks)

	// Tareas de producción
	tasks := api.Group("/tasks")
	taskHandler := NewTaskHandler(deps.TaskUC, deps.Workflow)
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/:id", taskHandler.GetByID)
	tasks.Post("/:id/transition", taskHandler.Transition)
	tasks.Post("/:id/assignments", taskHandler.Assign)
}
