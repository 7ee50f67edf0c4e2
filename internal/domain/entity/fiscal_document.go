package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida fiscal de un documento.
// Un documento pasa a Sent solo cuando la DGI lo aceptó Y el número fiscal
// quedó asignado de forma durable; ante cualquier falla previa vuelve a Draft
// (conservando el número ya consumido) con el mensaje de error adjunto.
const (
	StatusDraft     = "draft"     // Borrador, reintetable
	StatusSent      = "sent"      // Aceptado por la DGI (CUFE asignado)
	StatusCancelled = "cancelled" // Anulado ante la DGI
)

// Límites del motivo de anulación exigidos por HKA.
const (
	MotivoAnulacionMin = 15
	MotivoAnulacionMax = 1000
)

// FiscalDocument es la entidad central: una factura o nota de crédito/débito
// sujeta a reporte ante la DGI vía HKA. Solo el orquestador de envío muta su
// estado y sus artefactos legales.
type FiscalDocument struct {
	ID        string
	CompanyID string
	PartnerID string

	// BranchID es opcional: si está vacío se usa la sucursal por defecto de la
	// compañía. POSCode análogo (punto de facturación de 3 dígitos).
	BranchID string
	POSCode  string

	// OrderRef referencia opcional a la orden POS que originó el documento.
	// Se resuelve una sola vez al construir el documento; nil si no aplica.
	OrderRef *string

	TipoDocumento         string // catálogo fe.DocType* ("01".."09")
	NaturalezaOperacion   string // catálogo fe.NatOp* ("01".."04")
	FechaEmision          time.Time
	NumeroDocumentoFiscal string // 10 dígitos; asignado a lo sumo una vez, nunca reusado

	Status string // StatusDraft | StatusSent | StatusCancelled

	// Referencia al documento original (obligatoria para notas de crédito y
	// débito no genéricas; el referenciado debe estar Sent y con CUFE).
	RefDocumentID string

	// Artefactos legales: inmutables una vez poblados tras la aceptación.
	CUFE                  string
	ProtocoloAutorizacion string
	FechaRecepcionDGI     string // tal cual la devuelve HKA
	QR                    string
	PDF                   []byte // CAFE en PDF descargado de HKA
	XML                   []byte // XML firmado descargado de HKA

	// Mensaje de auditoría: último error, advertencia o confirmación.
	HKAMessage string

	// MotivoAnulacion texto libre [15,1000] exigido antes de anular.
	MotivoAnulacion string

	NetTotal   decimal.Decimal // total neto sin impuesto
	TaxTotal   decimal.Decimal // ITBMS total
	GrandTotal decimal.Decimal // total autoritativo del documento

	Lines    []*DocumentLine
	Payments []*DocumentPayment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasArtifacts indica si ambos artefactos binarios (PDF y XML) están presentes.
func (d *FiscalDocument) HasArtifacts() bool {
	return len(d.PDF) > 0 && len(d.XML) > 0
}

// DocumentLine es una línea de detalle del documento. Las líneas marcadas como
// descuento global no se emiten como ítems: se agregan al bloque de
// descuentos/bonificaciones del payload.
type DocumentLine struct {
	ID         string
	DocumentID string
	Sequence   int

	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal // descuento por unidad, en porcentaje
	TaxRate         decimal.Decimal // tasa ITBMS en porcentaje (7, 10, 15 o 0)

	// IsGlobalDiscount marca la línea como portadora de descuento global.
	IsGlobalDiscount bool

	Subtotal decimal.Decimal // neto de la línea
	Total    decimal.Decimal // neto + ITBMS
}

// DocumentPayment es una entrada del desglose de pagos. Un monto negativo
// representa vuelto entregado al cliente.
type DocumentPayment struct {
	ID         string
	DocumentID string
	MethodCode string // catálogo fe.Pago* ("01".."09", "99")
	Amount     decimal.Decimal
}
