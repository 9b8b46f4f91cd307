package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/rs/zerolog/log"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: la primera coincidencia con errors.Is gana.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrUnknownReservation, fiber.StatusNotFound, "UNKNOWN_RESERVATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrIllegalTransition, fiber.StatusConflict, "ILLEGAL_TRANSITION"},
	{domain.ErrPreconditionNotMet, fiber.StatusPreconditionFailed, "PRECONDITION_NOT_MET"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrIntegrity, fiber.StatusInternalServerError, "INTEGRITY"},
}

func classify(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError traduce un error de dominio a dto.ErrorResponse con su código HTTP.
// La creación fallida de un pedido responde 409 con el código de la causa.
func writeError(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	var oce *domain.OrderCreationError
	if errors.As(err, &oce) {
		status = fiber.StatusConflict
		if _, reason := classify(oce.Reason); reason != "INTERNAL" {
			code = reason
		} else {
			code = "ORDER_CREATION_FAILED"
		}
	}
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
