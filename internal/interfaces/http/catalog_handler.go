package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Confecciones-api/internal/application/catalog"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
)

// CatalogHandler maneja las peticiones HTTP del catálogo: líneas, tallas y productos.
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// CreateLine POST /api/lines
func (h *CatalogHandler) CreateLine(c *fiber.Ctx) error {
	var in dto.CreateLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateLine(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListLines GET /api/lines
func (h *CatalogHandler) ListLines(c *fiber.Ctx) error {
	list, err := h.uc.ListLines(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// CreateSize POST /api/sizes
func (h *CatalogHandler) CreateSize(c *fiber.Ctx) error {
	var in dto.CreateSizeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateSize(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSizes GET /api/sizes
func (h *CatalogHandler) ListSizes(c *fiber.Ctx) error {
	list, err := h.uc.ListSizes(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// CreateProduct POST /api/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateProduct(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetProduct GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	out, err := h.uc.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListProducts GET /api/products?line_id=&limit=20&offset=0
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de paginación inválidos"})
	}
	out, err := h.uc.ListProducts(c.UserContext(), c.Query("line_id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
