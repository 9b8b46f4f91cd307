package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/application/inventory"
	"github.com/jhoicas/Confecciones-api/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario.
type InventoryHandler struct {
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// CreateMaterial POST /api/materials
func (h *InventoryHandler) CreateMaterial(c *fiber.Ctx) error {
	var in dto.CreateMaterialTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.uc.CreateMaterialType(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMaterialTypeResponse(m))
}

// ListMaterials GET /api/materials
func (h *InventoryHandler) ListMaterials(c *fiber.Ctx) error {
	list, err := h.uc.ListMaterials(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MaterialTypeResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMaterialTypeResponse(m))
	}
	return c.JSON(out)
}

// GetMaterial GET /api/materials/:id
func (h *InventoryHandler) GetMaterial(c *fiber.Ctx) error {
	m, err := h.uc.Balance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMaterialTypeResponse(m))
}

// Receive POST /api/materials/:id/receipts
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.uc.Receive(c.UserContext(), c.Params("id"), in.Quantity, in.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMaterialTypeResponse(m))
}

// Ledger GET /api/materials/:id/ledger
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	entries, err := h.uc.Ledger(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewLedgerEntryResponse(e))
	}
	return c.JSON(out)
}

// VerifyMaterial GET /api/materials/:id/integrity
func (h *InventoryHandler) VerifyMaterial(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.integrityReport(c, id, h.uc.VerifyIntegrity(c.UserContext(), id))
}

// VerifyAll GET /api/materials/integrity
func (h *InventoryHandler) VerifyAll(c *fiber.Ctx) error {
	return h.integrityReport(c, "", h.uc.VerifyAll(c.UserContext()))
}

// integrityReport responde 200 si el libro cuadra y 500 con el detalle si no.
func (h *InventoryHandler) integrityReport(c *fiber.Ctx, materialID string, err error) error {
	if err == nil {
		return c.JSON(dto.IntegrityReport{MaterialTypeID: materialID, Consistent: true})
	}
	if !errors.Is(err, domain.ErrIntegrity) {
		return writeError(c, err)
	}
	report := dto.IntegrityReport{MaterialTypeID: materialID}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			report.Errors = append(report.Errors, e.Error())
		}
	} else {
		report.Errors = []string{err.Error()}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(report)
}

// GetReservation GET /api/reservations/:id
func (h *InventoryHandler) GetReservation(c *fiber.Ctx) error {
	res, err := h.uc.GetReservation(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewReservationResponse(res))
}

// Release POST /api/reservations/:id/release (idempotente)
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	return h.reservationOp(c, h.uc.Release)
}

// Consume POST /api/reservations/:id/consume
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	return h.reservationOp(c, h.uc.Consume)
}

func (h *InventoryHandler) reservationOp(c *fiber.Ctx, op func(ctx context.Context, id string) error) error {
	id := c.Params("id")
	if err := op(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return h.GetReservation(c)
}
