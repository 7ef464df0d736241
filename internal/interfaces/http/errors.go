package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/domain"
)

var kindStatus = map[string]int{
	domain.KindValidation:        fiber.StatusBadRequest,
	domain.KindNotFound:          fiber.StatusNotFound,
	domain.KindConflict:          fiber.StatusConflict,
	domain.KindUnauthorized:      fiber.StatusUnauthorized,
	domain.KindForbidden:         fiber.StatusForbidden,
	domain.KindInsufficientStock: fiber.StatusConflict,
	domain.KindPersistence:       fiber.StatusInternalServerError,
}

// writeError traduce un error de dominio a status + ErrorResponse.
// Los errores de persistencia nunca exponen el texto del almacén.
func writeError(c *fiber.Ctx, err error) error {
	kind := domain.Kind(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	msg := err.Error()
	if kind == domain.KindPersistence {
		msg = "no se pudo completar la operación, intente más tarde"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: kind, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: domain.KindUnauthorized, Message: "token inválido"})
}
