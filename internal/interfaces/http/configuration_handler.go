package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturapan/fehka-api/internal/application/billing"
	"github.com/facturapan/fehka-api/internal/application/dto"
)

// ConfigurationHandler maneja la configuración HKA y las sucursales (solo admin).
type ConfigurationHandler struct {
	uc *billing.ConfigurationUseCase
}

// NewConfigurationHandler construye el handler.
func NewConfigurationHandler(uc *billing.ConfigurationUseCase) *ConfigurationHandler {
	return &ConfigurationHandler{uc: uc}
}

// Get devuelve la configuración de la compañía (sin tokens).
// GET /api/configuration
func (h *ConfigurationHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.uc.GetConfiguration(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

// Create crea el conjunto de configuración HKA y lo asigna a la compañía.
// POST /api/configuration
func (h *ConfigurationHandler) Create(c *fiber.Ctx) error {
	var in dto.ConfigurationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.TokenEmpresa == "" || in.TokenPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token_empresa y token_password son requeridos"})
	}
	cfg, err := h.uc.CreateConfiguration(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

// Update edita credenciales, endpoint y ambiente. El contador no se toca.
// PUT /api/configuration
func (h *ConfigurationHandler) Update(c *fiber.Ctx) error {
	var in dto.ConfigurationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	cfg, err := h.uc.UpdateConfiguration(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

// CreateBranch crea una sucursal.
// POST /api/branches
func (h *ConfigurationHandler) CreateBranch(c *fiber.Ctx) error {
	var in dto.BranchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}
	branch, err := h.uc.CreateBranch(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(branch)
}

// ListBranches lista las sucursales de la compañía.
// GET /api/branches
func (h *ConfigurationHandler) ListBranches(c *fiber.Ctx) error {
	branches, err := h.uc.ListBranches(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(branches)
}
