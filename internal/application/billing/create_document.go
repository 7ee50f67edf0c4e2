package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/facturapan/fehka-api/internal/application/dto"
	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
	"github.com/facturapan/fehka-api/pkg/fe"
)

// CreateDocumentUseCase crea documentos fiscales en borrador y los consulta.
// La creación calcula los totales de cada línea y del documento con aritmética
// decimal y persiste cabecera, líneas y pagos en una sola transacción.
type CreateDocumentUseCase struct {
	txRunner TxRunner
	docs     repository.DocumentRepository
	partners repository.PartnerRepository
	log      zerolog.Logger
}

// NewCreateDocumentUseCase construye el caso de uso.
func NewCreateDocumentUseCase(
	txRunner TxRunner,
	docs repository.DocumentRepository,
	partners repository.PartnerRepository,
	log zerolog.Logger,
) *CreateDocumentUseCase {
	return &CreateDocumentUseCase{
		txRunner: txRunner,
		docs:     docs,
		partners: partners,
		log:      log,
	}
}

// Create valida la solicitud, arma la entidad con sus totales y la persiste
// en estado draft. El número fiscal NO se asigna aquí: eso ocurre recién al
// enviar, para no quemar números de documentos que nunca se emiten.
func (uc *CreateDocumentUseCase) Create(ctx context.Context, companyID string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	doc, err := uc.buildDocument(ctx, companyID, in)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(docRepo repository.DocumentRepository, _ repository.PartnerRepository) error {
		return docRepo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("company_id", companyID).
		Str("tipo_documento", doc.TipoDocumento).
		Str("grand_total", doc.GrandTotal.StringFixed(2)).
		Msg("documento fiscal creado en borrador")

	return ToDocumentResponse(doc), nil
}

// Get devuelve el documento completo con líneas y pagos.
func (uc *CreateDocumentUseCase) Get(ctx context.Context, companyID, documentID string) (*dto.DocumentResponse, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return ToDocumentResponse(doc), nil
}

// List devuelve documentos de la compañía paginados, sin líneas ni binarios.
func (uc *CreateDocumentUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.DocumentResponse, error) {
	docs, err := uc.docs.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, *ToDocumentResponse(d))
	}
	return out, nil
}

func (uc *CreateDocumentUseCase) buildDocument(ctx context.Context, companyID string, in dto.CreateDocumentRequest) (*entity.FiscalDocument, error) {
	ve := &domain.ValidationError{}

	if !fe.ValidDocTypes[in.TipoDocumento] {
		ve.Add("tipo_documento %q no es un tipo de documento fiscal válido", in.TipoDocumento)
	}
	naturaleza := in.NaturalezaOperacion
	if naturaleza == "" {
		naturaleza = fe.NatOpVenta
	}
	if !fe.ValidNaturalezaOperacion[naturaleza] {
		ve.Add("naturaleza_operacion %q no es válida", naturaleza)
	}
	if fe.RequiresReference(in.TipoDocumento) && in.RefDocumentID == "" {
		ve.Add("ref_document_id es obligatorio para notas de crédito/débito referenciadas")
	}
	if in.POSCode != "" && !fe.ValidPOSCode(in.POSCode) {
		ve.Add("pos_code debe ser de 3 dígitos")
	}

	fechaEmision := time.Now()
	if in.FechaEmision != "" {
		t, err := time.Parse(time.RFC3339, in.FechaEmision)
		if err != nil {
			ve.Add("fecha_emision no es una fecha RFC3339 válida")
		} else {
			fechaEmision = t
		}
	}

	partner, err := uc.partners.GetByID(ctx, in.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		ve.Add("partner_id %s no existe", in.PartnerID)
	} else if partner.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	doc := &entity.FiscalDocument{
		ID:                  uuid.NewString(),
		CompanyID:           companyID,
		PartnerID:           in.PartnerID,
		BranchID:            in.BranchID,
		POSCode:             in.POSCode,
		TipoDocumento:       in.TipoDocumento,
		NaturalezaOperacion: naturaleza,
		FechaEmision:        fechaEmision,
		Status:              entity.StatusDraft,
		RefDocumentID:       in.RefDocumentID,
	}
	if in.OrderRef != "" {
		ref := in.OrderRef
		doc.OrderRef = &ref
	}

	billable := 0
	for i, lr := range in.Lines {
		line, lineVE := buildLine(i, lr)
		if lineVE != nil {
			ve.Violations = append(ve.Violations, lineVE.Violations...)
			continue
		}
		if !line.IsGlobalDiscount && line.Quantity.GreaterThan(decimal.Zero) {
			billable++
		}
		doc.Lines = append(doc.Lines, line)
	}
	if billable == 0 {
		ve.Add("el documento debe tener al menos una línea facturable")
	}

	for _, pr := range in.Payments {
		if !fe.ValidPaymentMethods[pr.MethodCode] {
			ve.Add("método de pago %q no es válido", pr.MethodCode)
			continue
		}
		doc.Payments = append(doc.Payments, &entity.DocumentPayment{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			MethodCode: pr.MethodCode,
			Amount:     pr.Amount,
		})
	}

	if ve.HasViolations() {
		return nil, ve
	}

	computeTotals(doc)
	for _, l := range doc.Lines {
		l.DocumentID = doc.ID
	}
	return doc, nil
}

// buildLine valida una línea y calcula su subtotal y total con descuento
// unitario (precio * descuento% / 100, redondeado a 3 decimales) e ITBMS.
func buildLine(idx int, lr dto.DocumentLineRequest) (*entity.DocumentLine, *domain.ValidationError) {
	ve := &domain.ValidationError{}

	if lr.Description == "" {
		ve.Add("línea %d: description es obligatoria", idx+1)
	}
	if lr.Quantity.LessThan(decimal.Zero) {
		ve.Add("línea %d: quantity no puede ser negativa", idx+1)
	}
	if lr.UnitPrice.LessThan(decimal.Zero) && !lr.IsGlobalDiscount {
		ve.Add("línea %d: unit_price no puede ser negativo", idx+1)
	}
	if lr.DiscountPercent.LessThan(decimal.Zero) || lr.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		ve.Add("línea %d: discount_percent debe estar entre 0 y 100", idx+1)
	}
	if fe.TasaITBMSCode(lr.TaxRate) == fe.ITBMSExento && !lr.TaxRate.IsZero() {
		ve.Add("línea %d: tax_rate %s no es una tasa ITBMS soportada", idx+1, lr.TaxRate.String())
	}
	if ve.HasViolations() {
		return nil, ve
	}

	descuentoUnit := lr.UnitPrice.Mul(lr.DiscountPercent).Div(decimal.NewFromInt(100)).Round(3)
	subtotal := lr.UnitPrice.Sub(descuentoUnit).Mul(lr.Quantity).Round(2)
	itbms := subtotal.Mul(lr.TaxRate).Div(decimal.NewFromInt(100)).Round(2)

	return &entity.DocumentLine{
		ID:               uuid.NewString(),
		Sequence:         idx + 1,
		Description:      lr.Description,
		Quantity:         lr.Quantity,
		UnitPrice:        lr.UnitPrice,
		DiscountPercent:  lr.DiscountPercent,
		TaxRate:          lr.TaxRate,
		IsGlobalDiscount: lr.IsGlobalDiscount,
		Subtotal:         subtotal,
		Total:            subtotal.Add(itbms),
	}, nil
}

// computeTotals acumula los netos de las líneas facturables, resta los
// descuentos globales y fija los totales del documento redondeados a 2
// decimales. GrandTotal es el total autoritativo contra el que luego se
// reconcilia el payload.
func computeTotals(doc *entity.FiscalDocument) {
	net := decimal.Zero
	tax := decimal.Zero
	for _, l := range doc.Lines {
		if l.IsGlobalDiscount {
			net = net.Sub(l.Subtotal.Abs())
			continue
		}
		if !l.Quantity.GreaterThan(decimal.Zero) {
			continue
		}
		net = net.Add(l.Subtotal)
		tax = tax.Add(l.Total.Sub(l.Subtotal))
	}
	doc.NetTotal = net.Round(2)
	doc.TaxTotal = tax.Round(2)
	doc.GrandTotal = net.Add(tax).Round(2)
}

// ToDocumentResponse mapea la entidad al DTO de salida. Los binarios no se
// serializan: solo banderas de presencia.
func ToDocumentResponse(doc *entity.FiscalDocument) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:                    doc.ID,
		CompanyID:             doc.CompanyID,
		PartnerID:             doc.PartnerID,
		TipoDocumento:         doc.TipoDocumento,
		NaturalezaOperacion:   doc.NaturalezaOperacion,
		FechaEmision:          doc.FechaEmision,
		NumeroDocumentoFiscal: doc.NumeroDocumentoFiscal,
		Status:                doc.Status,
		CUFE:                  doc.CUFE,
		ProtocoloAutorizacion: doc.ProtocoloAutorizacion,
		FechaRecepcionDGI:     doc.FechaRecepcionDGI,
		QR:                    doc.QR,
		HKAMessage:            doc.HKAMessage,
		NetTotal:              doc.NetTotal,
		TaxTotal:              doc.TaxTotal,
		GrandTotal:            doc.GrandTotal,
		HasPDF:                len(doc.PDF) > 0,
		HasXML:                len(doc.XML) > 0,
	}
	for _, l := range doc.Lines {
		resp.Lines = append(resp.Lines, dto.DocumentLineResponse{
			Sequence:         l.Sequence,
			Description:      l.Description,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			DiscountPercent:  l.DiscountPercent,
			TaxRate:          l.TaxRate,
			IsGlobalDiscount: l.IsGlobalDiscount,
			Subtotal:         l.Subtotal,
			Total:            l.Total,
		})
	}
	for _, p := range doc.Payments {
		resp.Payments = append(resp.Payments, dto.DocumentPaymentResponse{
			MethodCode: p.MethodCode,
			Amount:     p.Amount,
		})
	}
	return resp
}
