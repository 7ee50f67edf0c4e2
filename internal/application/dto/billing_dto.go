package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDocumentRequest body para POST /api/documents. Crea el documento en
// estado draft; el envío a HKA es una operación separada.
type CreateDocumentRequest struct {
	PartnerID           string `json:"partner_id" validate:"required,uuid"`
	BranchID            string `json:"branch_id,omitempty"`
	POSCode             string `json:"pos_code,omitempty"`
	OrderRef            string `json:"order_ref,omitempty"`
	TipoDocumento       string `json:"tipo_documento" validate:"required"`
	NaturalezaOperacion string `json:"naturaleza_operacion,omitempty"`
	FechaEmision        string `json:"fecha_emision,omitempty"` // RFC3339; hoy si va vacío
	RefDocumentID       string `json:"ref_document_id,omitempty"`

	Lines    []DocumentLineRequest    `json:"lines" validate:"required,min=1"`
	Payments []DocumentPaymentRequest `json:"payments,omitempty"`
}

// DocumentLineRequest línea del documento.
type DocumentLineRequest struct {
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent,omitempty"`
	TaxRate         decimal.Decimal `json:"tax_rate,omitempty"` // porcentaje ITBMS: 7, 10, 15 o 0
	// IsGlobalDiscount marca la línea como descuento global (no se emite
	// como ítem; va al bloque de descuentos del payload).
	IsGlobalDiscount bool `json:"is_global_discount,omitempty"`
}

// DocumentPaymentRequest entrada del desglose de pagos. Un monto negativo
// representa vuelto entregado.
type DocumentPaymentRequest struct {
	MethodCode string          `json:"method_code"`
	Amount     decimal.Decimal `json:"amount"`
}

// DocumentResponse documento con detalle para GET /api/documents/:id.
type DocumentResponse struct {
	ID                    string          `json:"id"`
	CompanyID             string          `json:"company_id"`
	PartnerID             string          `json:"partner_id"`
	TipoDocumento         string          `json:"tipo_documento"`
	NaturalezaOperacion   string          `json:"naturaleza_operacion"`
	FechaEmision          time.Time       `json:"fecha_emision"`
	NumeroDocumentoFiscal string          `json:"numero_documento_fiscal,omitempty"`
	Status                string          `json:"status"`
	CUFE                  string          `json:"cufe,omitempty"`
	ProtocoloAutorizacion string          `json:"protocolo_autorizacion,omitempty"`
	FechaRecepcionDGI     string          `json:"fecha_recepcion_dgi,omitempty"`
	QR                    string          `json:"qr,omitempty"`
	HKAMessage            string          `json:"hka_message,omitempty"`
	NetTotal              decimal.Decimal `json:"net_total"`
	TaxTotal              decimal.Decimal `json:"tax_total"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
	HasPDF                bool            `json:"has_pdf"`
	HasXML                bool            `json:"has_xml"`

	Lines    []DocumentLineResponse    `json:"lines,omitempty"`
	Payments []DocumentPaymentResponse `json:"payments,omitempty"`
}

// DocumentLineResponse línea de detalle en la respuesta.
type DocumentLineResponse struct {
	Sequence         int             `json:"sequence"`
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	IsGlobalDiscount bool            `json:"is_global_discount"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Total            decimal.Decimal `json:"total"`
}

// DocumentPaymentResponse entrada de pago en la respuesta.
type DocumentPaymentResponse struct {
	MethodCode string          `json:"method_code"`
	Amount     decimal.Decimal `json:"amount"`
}

// SubmitDocumentResponse resultado del envío a HKA para
// POST /api/documents/:id/submit.
type SubmitDocumentResponse struct {
	DocumentID            string   `json:"document_id"`
	Status                string   `json:"status"`
	NumeroDocumentoFiscal string   `json:"numero_documento_fiscal"`
	CUFE                  string   `json:"cufe,omitempty"`
	QR                    string   `json:"qr,omitempty"`
	ProtocoloAutorizacion string   `json:"protocolo_autorizacion,omitempty"`
	FechaRecepcionDGI     string   `json:"fecha_recepcion_dgi,omitempty"`
	Mensaje               string   `json:"mensaje,omitempty"`
	Warnings              []string `json:"warnings,omitempty"`
}

// CancelDocumentRequest body para POST /api/documents/:id/cancel.
type CancelDocumentRequest struct {
	Motivo string `json:"motivo" validate:"required,min=15,max=1000"`
}

// VerifyRUCResponse resultado de POST /api/partners/:id/verify-ruc.
type VerifyRUCResponse struct {
	PartnerID   string    `json:"partner_id"`
	RUC         string    `json:"ruc"`
	DV          string    `json:"dv"`
	RazonSocial string    `json:"razon_social,omitempty"`
	VerifiedAt  time.Time `json:"verified_at"`
}

// CreatePartnerRequest body para POST /api/partners.
type CreatePartnerRequest struct {
	Name              string `json:"name" validate:"required"`
	TipoClienteFE     string `json:"tipo_cliente_fe" validate:"required"`
	TipoContribuyente string `json:"tipo_contribuyente,omitempty"`
	RUC               string `json:"ruc,omitempty"`
	DV                string `json:"dv,omitempty"`
	Direccion         string `json:"direccion,omitempty"`
	CodigoUbicacion   string `json:"codigo_ubicacion,omitempty"`
	Email             string `json:"email,omitempty"`
	Telefono          string `json:"telefono,omitempty"`
	CountryCode       string `json:"country_code,omitempty"`
	CountryName       string `json:"country_name,omitempty"`
}

// PartnerResponse receptor en respuestas.
type PartnerResponse struct {
	ID                  string     `json:"id"`
	CompanyID           string     `json:"company_id"`
	Name                string     `json:"name"`
	TipoClienteFE       string     `json:"tipo_cliente_fe"`
	TipoContribuyente   string     `json:"tipo_contribuyente,omitempty"`
	RUC                 string     `json:"ruc,omitempty"`
	DV                  string     `json:"dv,omitempty"`
	RUCVerified         bool       `json:"ruc_verified"`
	RUCVerificationDate *time.Time `json:"ruc_verification_date,omitempty"`
	Direccion           string     `json:"direccion,omitempty"`
	CodigoUbicacion     string     `json:"codigo_ubicacion,omitempty"`
	Email               string     `json:"email,omitempty"`
	Telefono            string     `json:"telefono,omitempty"`
	CountryCode         string     `json:"country_code,omitempty"`
	CountryName         string     `json:"country_name,omitempty"`
}

// ConfigurationRequest body para crear/actualizar un conjunto de
// configuración HKA.
type ConfigurationRequest struct {
	Name                 string `json:"name" validate:"required"`
	Active               bool   `json:"active"`
	TokenEmpresa         string `json:"token_empresa" validate:"required"`
	TokenPassword        string `json:"token_password" validate:"required"`
	WSDLURL              string `json:"wsdl_url,omitempty"`
	TestMode             bool   `json:"test_mode"`
	DefaultTipoDocumento string `json:"default_tipo_documento,omitempty"`
	NextNumber           string `json:"next_number,omitempty"` // 10 dígitos; "0000000001" por defecto
}

// ConfigurationResponse conjunto de configuración en respuestas. Los tokens
// nunca se devuelven.
type ConfigurationResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Active               bool   `json:"active"`
	WSDLURL              string `json:"wsdl_url"`
	TestMode             bool   `json:"test_mode"`
	DefaultTipoDocumento string `json:"default_tipo_documento,omitempty"`
	NextNumber           string `json:"next_number"`
}

// BranchRequest body para crear/actualizar una sucursal.
type BranchRequest struct {
	Name    string `json:"name" validate:"required"`
	Code    string `json:"code" validate:"required,len=4"`
	POSCode string `json:"pos_code" validate:"required,len=3"`
	Active  bool   `json:"active"`
}

// BranchResponse sucursal en respuestas.
type BranchResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	POSCode   string `json:"pos_code"`
	Active    bool   `json:"active"`
}
