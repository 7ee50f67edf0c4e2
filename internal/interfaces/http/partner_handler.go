package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturapan/fehka-api/internal/application/billing"
	"github.com/facturapan/fehka-api/internal/application/dto"
	"github.com/facturapan/fehka-api/pkg/fe"
)

// PartnerHandler maneja los receptores y la verificación de RUC.
type PartnerHandler struct {
	partnerUC *billing.PartnerUseCase
	verifyUC  *billing.VerifyRUCUseCase
}

// NewPartnerHandler construye el handler.
func NewPartnerHandler(partnerUC *billing.PartnerUseCase, verifyUC *billing.VerifyRUCUseCase) *PartnerHandler {
	return &PartnerHandler{partnerUC: partnerUC, verifyUC: verifyUC}
}

// Create crea un receptor.
// POST /api/partners
func (h *PartnerHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	var in dto.CreatePartnerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" && in.TipoClienteFE != fe.ClienteConsumidorFinal {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}
	partner, err := h.partnerUC.Create(c.Context(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(partner)
}

// Update edita un receptor (editar el RUC invalida la verificación previa).
// PUT /api/partners/:id
func (h *PartnerHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	id := c.Params("id")
	var in dto.CreatePartnerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	partner, err := h.partnerUC.Update(c.Context(), companyID, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(partner)
}

// GetByID obtiene un receptor.
// GET /api/partners/:id
func (h *PartnerHandler) GetByID(c *fiber.Ctx) error {
	partner, err := h.partnerUC.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(partner)
}

// List lista los receptores de la compañía.
// GET /api/partners?limit=&offset=
func (h *PartnerHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	partners, err := h.partnerUC.List(c.Context(), GetCompanyID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(partners)
}

// VerifyRUC verifica el RUC del receptor contra el padrón de HKA.
// POST /api/partners/:id/verify-ruc
func (h *PartnerHandler) VerifyRUC(c *fiber.Ctx) error {
	result, err := h.verifyUC.Verify(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.VerifyRUCResponse{
		PartnerID:   result.PartnerID,
		RUC:         result.RUC,
		DV:          result.DV,
		RazonSocial: result.RazonSocial,
		VerifiedAt:  result.VerifiedAt,
	})
}
