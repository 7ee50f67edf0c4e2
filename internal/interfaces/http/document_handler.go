package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturapan/fehka-api/internal/application/billing"
	"github.com/facturapan/fehka-api/internal/application/dto"
)

// DocumentHandler maneja el ciclo de vida HTTP de los documentos fiscales:
// creación, consulta, envío a HKA, anulación y artefactos (CAFE/XML).
type DocumentHandler struct {
	createUC *billing.CreateDocumentUseCase
	submitUC *billing.SubmitDocumentUseCase
	cancelUC *billing.CancelDocumentUseCase
	cafeUC   *billing.GetCAFEUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(
	createUC *billing.CreateDocumentUseCase,
	submitUC *billing.SubmitDocumentUseCase,
	cancelUC *billing.CancelDocumentUseCase,
	cafeUC *billing.GetCAFEUseCase,
) *DocumentHandler {
	return &DocumentHandler{createUC: createUC, submitUC: submitUC, cancelUC: cancelUC, cafeUC: cafeUC}
}

// Create crea un documento fiscal en borrador.
// POST /api/documents
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.createUC.Create(c.Context(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// GetByID obtiene el documento completo con líneas y pagos.
// GET /api/documents/:id
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	doc, err := h.createUC.Get(c.Context(), companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// List lista los documentos de la compañía, sin líneas ni binarios.
// GET /api/documents?limit=&offset=
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	docs, err := h.createUC.List(c.Context(), companyID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(docs)
}

// Submit envía el documento a HKA (asigna número fiscal si no tiene).
// POST /api/documents/:id/submit
func (h *DocumentHandler) Submit(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	result, err := h.submitUC.Submit(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SubmitDocumentResponse{
		DocumentID:            result.DocumentID,
		Status:                result.Status,
		NumeroDocumentoFiscal: result.NumeroDocumentoFiscal,
		CUFE:                  result.CUFE,
		QR:                    result.QR,
		ProtocoloAutorizacion: result.ProtocoloAutorizacion,
		FechaRecepcionDGI:     result.FechaRecepcionDGI,
		Mensaje:               result.Mensaje,
		Warnings:              result.Warnings,
	})
}

// Cancel anula un documento enviado con el motivo dado.
// POST /api/documents/:id/cancel
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.CancelDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.cancelUC.Cancel(c.Context(), id, in.Motivo); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "cancelled", "document_id": id})
}

// FetchArtifacts descarga los artefactos faltantes (PDF/XML) de HKA.
// POST /api/documents/:id/artifacts
func (h *DocumentHandler) FetchArtifacts(c *fiber.Ctx) error {
	id := c.Params("id")
	warnings, err := h.submitUC.FetchArtifacts(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"document_id": id, "warnings": warnings})
}

// GetCAFE devuelve el PDF del CAFE (el oficial de HKA o uno generado localmente).
// GET /api/documents/:id/cafe
func (h *DocumentHandler) GetCAFE(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	id := c.Params("id")
	pdf, err := h.cafeUC.GetCAFE(c.Context(), companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="cafe-`+id+`.pdf"`)
	return c.Send(pdf)
}

// GetXML devuelve el XML firmado del documento.
// GET /api/documents/:id/xml
func (h *DocumentHandler) GetXML(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	id := c.Params("id")
	data, err := h.cafeUC.GetXML(c.Context(), companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	if len(data) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_AVAILABLE", Message: "el XML aún no fue descargado de HKA"})
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.Send(data)
}
