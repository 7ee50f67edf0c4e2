package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/facturapan/fehka-api/internal/application/dto"
	"github.com/facturapan/fehka-api/internal/domain"
)

// respondError mapea los errores de dominio a respuestas HTTP. Los errores de
// facturación llevan semántica propia: validación completa con todas las
// violaciones, conflicto de contador reintetable, rechazo remoto con el
// mensaje de HKA tal cual.
func respondError(c *fiber.Ctx, err error) error {
	if ve, ok := domain.IsValidationError(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:       "VALIDATION",
			Message:    "datos inválidos",
			Violations: ve.Violations,
		})
	}
	if re, ok := domain.IsRemoteServiceError(err); ok {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Code:    "HKA_REJECTED",
			Message: re.Message,
		})
	}
	var ce *domain.ConfigurationError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "NOT_CONFIGURED",
			Message: ce.Error(),
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_SUBMITTED", Message: "el documento ya fue enviado a HKA"})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		// 409 reintetable: otro envío tiene tomado el contador de numeración.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SEQUENCE_BUSY", Message: "el contador de numeración está en uso, reintente"})
	case errors.Is(err, domain.ErrNotConfigured):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_CONFIGURED", Message: "la compañía no tiene configuración HKA"})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
