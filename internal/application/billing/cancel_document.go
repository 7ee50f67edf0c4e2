package billing

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
)

// CancelDocumentUseCase anula un documento ya aceptado ante HKA:
//
//	sent → request_cancel(motivo) → cancelled
//
// Solo alcanzable desde sent. Si la anulación remota falla el documento
// permanece sent, sin mutación parcial alguna.
type CancelDocumentUseCase struct {
	docs       repository.DocumentRepository
	companies  repository.CompanyRepository
	branches   repository.BranchRepository
	configs    repository.ConfigurationRepository
	builder    *PayloadBuilder
	newService ServiceFactory
	log        zerolog.Logger
}

// NewCancelDocumentUseCase construye el caso de uso.
func NewCancelDocumentUseCase(
	docs repository.DocumentRepository,
	companies repository.CompanyRepository,
	branches repository.BranchRepository,
	configs repository.ConfigurationRepository,
	builder *PayloadBuilder,
	newService ServiceFactory,
	log zerolog.Logger,
) *CancelDocumentUseCase {
	return &CancelDocumentUseCase{
		docs:       docs,
		companies:  companies,
		branches:   branches,
		configs:    configs,
		builder:    builder,
		newService: newService,
		log:        log.With().Str("component", "cancel-document").Logger(),
	}
}

// Cancel anula el documento con el motivo dado. El motivo es obligatorio y
// debe medir entre 15 y 1000 caracteres.
func (uc *CancelDocumentUseCase) Cancel(ctx context.Context, documentID, motivo string) error {
	if err := validateMotivo(motivo); err != nil {
		return err
	}

	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}
	if doc.Status != entity.StatusSent {
		verr := &domain.ValidationError{}
		verr.Add("solo se pueden anular documentos enviados (estado actual: %s)", doc.Status)
		return verr
	}

	company, err := uc.companies.GetByID(ctx, doc.CompanyID)
	if err != nil {
		return err
	}
	if company == nil {
		return domain.ErrNotFound
	}

	config, err := uc.configs.GetByCompany(ctx, doc.CompanyID)
	if err != nil {
		return err
	}
	if config == nil {
		return &domain.ConfigurationError{Field: "hka_configuration", Message: "la compañía no tiene configuración HKA asignada"}
	}

	branchCode, posCode := company.BranchCode, company.POSCode
	if doc.BranchID != "" {
		branch, err := uc.branches.GetByID(ctx, doc.BranchID)
		if err != nil {
			return err
		}
		if branch != nil {
			branchCode = branch.Code
			if branch.POSCode != "" {
				posCode = branch.POSCode
			}
		}
	}
	if doc.POSCode != "" {
		posCode = doc.POSCode
	}

	datos := uc.builder.BuildDatosDocumento(doc, branchCode, posCode)
	svc := uc.newService(config.WSDLURL)
	creds := hka.Credentials{TokenEmpresa: config.TokenEmpresa, TokenPassword: config.TokenPassword}

	resp, err := svc.AnulacionDocumento(ctx, creds, motivo, datos)
	if err != nil {
		// Sin mutación: el documento sigue enviado y el error se propaga.
		uc.log.Warn().Err(err).Str("document_id", doc.ID).Msg("anulación rechazada")
		return err
	}

	if err := uc.docs.MarkCancelled(ctx, doc.ID, motivo, resp.Mensaje); err != nil {
		return err
	}
	uc.log.Info().Str("document_id", doc.ID).Str("numero", doc.NumeroDocumentoFiscal).Msg("documento anulado")
	return nil
}

// validateMotivo valida la longitud del motivo de anulación [15,1000].
func validateMotivo(motivo string) error {
	n := utf8.RuneCountInString(motivo)
	if n >= entity.MotivoAnulacionMin && n <= entity.MotivoAnulacionMax {
		return nil
	}
	verr := &domain.ValidationError{}
	verr.Add("el motivo de anulación debe tener entre %d y %d caracteres (tiene %d)",
		entity.MotivoAnulacionMin, entity.MotivoAnulacionMax, n)
	return verr
}
