package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
	"github.com/facturapan/fehka-api/pkg/fe"
)

// SubmitDocumentUseCase orquesta el ciclo de envío de un documento fiscal:
//
//	draft → validar → asignar número → Enviar → {sent | draft(error)}
//
// La aceptación legal se persiste como paso confirmado propio (MarkSent)
// antes de intentar la descarga de artefactos: un fallo posterior de descarga
// jamás revierte un envío ya aceptado. El rechazo remoto o cualquier
// excepción previa regresa el documento a draft con el mensaje adjunto,
// conservando el número fiscal ya consumido.
//
// El caller garantiza un solo envío en vuelo por documento: el orquestador no
// serializa llamadas concurrentes sobre el mismo ID.
type SubmitDocumentUseCase struct {
	docs       repository.DocumentRepository
	partners   repository.PartnerRepository
	companies  repository.CompanyRepository
	branches   repository.BranchRepository
	configs    repository.ConfigurationRepository
	allocator  *SequenceAllocator
	builder    *PayloadBuilder
	newService ServiceFactory
	log        zerolog.Logger
}

// NewSubmitDocumentUseCase construye el orquestador con sus dependencias.
func NewSubmitDocumentUseCase(
	docs repository.DocumentRepository,
	partners repository.PartnerRepository,
	companies repository.CompanyRepository,
	branches repository.BranchRepository,
	configs repository.ConfigurationRepository,
	allocator *SequenceAllocator,
	builder *PayloadBuilder,
	newService ServiceFactory,
	log zerolog.Logger,
) *SubmitDocumentUseCase {
	return &SubmitDocumentUseCase{
		docs:       docs,
		partners:   partners,
		companies:  companies,
		branches:   branches,
		configs:    configs,
		allocator:  allocator,
		builder:    builder,
		newService: newService,
		log:        log.With().Str("component", "submit-document").Logger(),
	}
}

// SubmissionResult es el resultado explícito del envío: la transición de
// estado viene codificada aquí, no inferida de si se propagó un error.
type SubmissionResult struct {
	DocumentID            string
	Status                string
	NumeroDocumentoFiscal string
	CUFE                  string
	QR                    string
	ProtocoloAutorizacion string
	FechaRecepcionDGI     string
	// FechaRecepcion es el parseo informativo de FechaRecepcionDGI; cero si
	// el valor crudo no es interpretable.
	FechaRecepcion time.Time
	Mensaje        string
	// Warnings advertencias no fatales (descarga de artefactos fallida).
	Warnings []string
}

// submissionContext datos resueltos una vez al inicio del envío.
type submissionContext struct {
	doc        *entity.FiscalDocument
	partner    *entity.Partner
	config     *entity.HKAConfiguration
	branchCode string
	posCode    string
	refDoc     *entity.FiscalDocument
}

// Submit envía el documento a HKA. Ver el diagrama de estados del tipo.
func (uc *SubmitDocumentUseCase) Submit(ctx context.Context, documentID string) (*SubmissionResult, error) {
	sc, err := uc.resolve(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc := sc.doc

	// 1. Un documento aceptado no se reenvía jamás.
	if doc.Status == entity.StatusSent {
		return nil, domain.ErrAlreadySubmitted
	}
	if doc.Status == entity.StatusCancelled {
		verr := &domain.ValidationError{}
		verr.Add("el documento %s está anulado y no puede reenviarse", doc.ID)
		return nil, verr
	}

	// 2. Validación completa antes de cualquier efecto: todas las
	// violaciones a la vez, no solo la primera.
	if err := uc.validate(sc); err != nil {
		return nil, err
	}

	// 3. Asignar número fiscal si aún no tiene; persistir de inmediato. El
	// número queda consumido aunque el resto del envío falle.
	if doc.NumeroDocumentoFiscal == "" {
		number, err := uc.allocator.Allocate(ctx, sc.config.ID)
		if err != nil {
			return nil, err
		}
		if err := uc.docs.SetFiscalNumber(ctx, doc.ID, number); err != nil {
			return nil, fmt.Errorf("persistir número fiscal: %w", err)
		}
		doc.NumeroDocumentoFiscal = number
	}

	// 4. Construir el payload y llamar a Enviar.
	documento, err := uc.builder.BuildSubmission(SubmissionInput{
		Doc:        doc,
		Partner:    sc.partner,
		BranchCode: sc.branchCode,
		POSCode:    sc.posCode,
		RefDoc:     sc.refDoc,
	})
	if err != nil {
		return nil, err
	}

	svc := uc.newService(sc.config.WSDLURL)
	creds := hka.Credentials{TokenEmpresa: sc.config.TokenEmpresa, TokenPassword: sc.config.TokenPassword}

	resp, err := svc.Enviar(ctx, creds, documento)
	if err != nil {
		// Rechazo o fallo de transporte: de vuelta a draft con el mensaje,
		// reintetable. El número fiscal se conserva.
		msg := err.Error()
		if re, ok := domain.IsRemoteServiceError(err); ok {
			msg = re.Message
		}
		if perr := uc.docs.RevertToDraft(ctx, doc.ID, msg); perr != nil {
			uc.log.Error().Err(perr).Str("document_id", doc.ID).Msg("no se pudo persistir el regreso a draft")
		}
		uc.log.Warn().Err(err).Str("document_id", doc.ID).Msg("envío rechazado")
		return nil, err
	}

	// 5. Aceptado: persistir los artefactos legales como paso confirmado.
	doc.Status = entity.StatusSent
	doc.CUFE = resp.CUFE
	doc.QR = resp.QR
	doc.ProtocoloAutorizacion = resp.NroProtocoloAutorizacion
	doc.FechaRecepcionDGI = resp.FechaRecepcionDGI
	doc.HKAMessage = resp.Mensaje
	if err := uc.docs.MarkSent(ctx, doc); err != nil {
		// El documento está legalmente aceptado: no hay vuelta atrás posible.
		// Se reporta el fallo de persistencia sin tocar el estado remoto.
		return nil, fmt.Errorf("documento aceptado por HKA pero no persistido (CUFE %s): %w", resp.CUFE, err)
	}

	result := &SubmissionResult{
		DocumentID:            doc.ID,
		Status:                entity.StatusSent,
		NumeroDocumentoFiscal: doc.NumeroDocumentoFiscal,
		CUFE:                  resp.CUFE,
		QR:                    resp.QR,
		ProtocoloAutorizacion: resp.NroProtocoloAutorizacion,
		FechaRecepcionDGI:     resp.FechaRecepcionDGI,
		Mensaje:               resp.Mensaje,
	}
	if t, ok := parseFechaRecepcion(resp.FechaRecepcionDGI); ok {
		result.FechaRecepcion = t
	}

	// 6. Descarga de artefactos: mejor esfuerzo, nunca revierte el envío.
	result.Warnings = uc.fetchAndStoreArtifacts(ctx, sc, svc, creds)

	uc.log.Info().Str("document_id", doc.ID).Str("cufe", resp.CUFE).
		Str("numero", doc.NumeroDocumentoFiscal).Msg("documento fiscal aceptado")
	return result, nil
}

// resolve carga el documento y sus colaboradores, y resuelve sucursal, punto
// de facturación y documento referenciado.
func (uc *SubmitDocumentUseCase) resolve(ctx context.Context, documentID string) (*submissionContext, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}

	partner, err := uc.partners.GetByID(ctx, doc.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, fmt.Errorf("receptor %s: %w", doc.PartnerID, domain.ErrNotFound)
	}

	company, err := uc.companies.GetByID(ctx, doc.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("compañía %s: %w", doc.CompanyID, domain.ErrNotFound)
	}

	config, err := uc.configs.GetByCompany(ctx, doc.CompanyID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, &domain.ConfigurationError{Field: "hka_configuration", Message: "la compañía no tiene configuración HKA asignada"}
	}
	if config.TokenEmpresa == "" || config.TokenPassword == "" {
		return nil, &domain.ConfigurationError{Field: "tokens", Message: "tokens HKA no configurados"}
	}
	if config.WSDLURL == "" {
		return nil, &domain.ConfigurationError{Field: "wsdl_url", Message: "endpoint HKA no configurado"}
	}

	// Sucursal y punto: los explícitos del documento, o los de la compañía.
	branchCode, posCode := company.BranchCode, company.POSCode
	if doc.BranchID != "" {
		branch, err := uc.branches.GetByID(ctx, doc.BranchID)
		if err != nil {
			return nil, err
		}
		if branch == nil {
			return nil, fmt.Errorf("sucursal %s: %w", doc.BranchID, domain.ErrNotFound)
		}
		branchCode = branch.Code
		if branch.POSCode != "" {
			posCode = branch.POSCode
		}
	}
	if doc.POSCode != "" {
		posCode = doc.POSCode
	}

	sc := &submissionContext{
		doc:        doc,
		partner:    partner,
		config:     config,
		branchCode: branchCode,
		posCode:    posCode,
	}

	if fe.RequiresReference(doc.TipoDocumento) && doc.RefDocumentID != "" {
		refDoc, err := uc.docs.GetByID(ctx, doc.RefDocumentID)
		if err != nil {
			return nil, err
		}
		sc.refDoc = refDoc
	}
	return sc, nil
}

// validate acumula todas las violaciones del documento antes de cualquier
// efecto secundario.
func (uc *SubmitDocumentUseCase) validate(sc *submissionContext) error {
	doc, partner := sc.doc, sc.partner
	verr := &domain.ValidationError{}

	if !fe.ValidDocTypes[doc.TipoDocumento] {
		verr.Add("tipo de documento inválido: %q", doc.TipoDocumento)
	}
	if !fe.ValidNaturalezaOperacion[doc.NaturalezaOperacion] {
		verr.Add("naturaleza de operación inválida: %q", doc.NaturalezaOperacion)
	}
	if doc.FechaEmision.IsZero() {
		verr.Add("fecha de emisión requerida")
	}

	billable := 0
	for _, l := range doc.Lines {
		if !l.IsGlobalDiscount && !l.Quantity.IsZero() {
			billable++
		}
	}
	if billable == 0 {
		verr.Add("el documento no tiene líneas facturables")
	}

	if !fe.ValidBranchCode(sc.branchCode) {
		verr.Add("código de sucursal inválido: %q (4 dígitos)", sc.branchCode)
	}
	if !fe.ValidPOSCode(sc.posCode) {
		verr.Add("punto de facturación inválido: %q (3 dígitos)", sc.posCode)
	}

	switch partner.TipoClienteFE {
	case fe.ClienteContribuyente, fe.ClienteGobierno:
		if partner.RUC == "" {
			verr.Add("el receptor contribuyente requiere RUC")
		}
		if !partner.RUCVerified {
			verr.Add("el RUC del receptor no está verificado contra HKA")
		}
		if partner.CodigoUbicacion == "" {
			verr.Add("el receptor contribuyente requiere código de ubicación")
		}
	case fe.ClienteConsumidorFinal:
		// Datos mínimos; los defaults vienen de la configuración.
	case fe.ClienteExtranjero:
		if partner.CountryName == "" && partner.CountryCode == "" {
			verr.Add("el receptor extranjero requiere país")
		}
	default:
		verr.Add("tipo de cliente FE inválido: %q", partner.TipoClienteFE)
	}

	if fe.RequiresReference(doc.TipoDocumento) {
		if doc.RefDocumentID == "" {
			verr.Add("la nota requiere referencia al documento fiscal original")
		} else if sc.refDoc == nil {
			verr.Add("el documento referenciado %s no existe", doc.RefDocumentID)
		} else {
			if sc.refDoc.Status != entity.StatusSent {
				verr.Add("el documento referenciado %s no está en estado enviado", sc.refDoc.ID)
			}
			if sc.refDoc.CUFE == "" {
				verr.Add("el documento referenciado %s no tiene CUFE", sc.refDoc.ID)
			}
		}
	}

	for _, p := range doc.Payments {
		if !fe.ValidPaymentMethods[p.MethodCode] {
			verr.Add("forma de pago inválida: %q", p.MethodCode)
		}
	}

	if verr.HasViolations() {
		return verr
	}
	return nil
}
