package billing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
)

// GetCAFEUseCase resuelve la representación PDF del CAFE de un documento.
// Preferimos siempre la copia oficial descargada de HKA; si todavía no está
// disponible se genera una representación local equivalente.
type GetCAFEUseCase struct {
	docs      repository.DocumentRepository
	partners  repository.PartnerRepository
	companies repository.CompanyRepository
	generator CAFEPDFGenerator
	log       zerolog.Logger
}

// NewGetCAFEUseCase construye el caso de uso.
func NewGetCAFEUseCase(
	docs repository.DocumentRepository,
	partners repository.PartnerRepository,
	companies repository.CompanyRepository,
	generator CAFEPDFGenerator,
	log zerolog.Logger,
) *GetCAFEUseCase {
	return &GetCAFEUseCase{
		docs:      docs,
		partners:  partners,
		companies: companies,
		generator: generator,
		log:       log,
	}
}

// GetCAFE devuelve los bytes del PDF del CAFE. Solo aplica a documentos ya
// aceptados por la DGI: un borrador no tiene CAFE.
func (uc *GetCAFEUseCase) GetCAFE(ctx context.Context, companyID, documentID string) ([]byte, error) {
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
	if doc.Status == entity.StatusDraft {
		return nil, domain.NewValidationError("el documento no ha sido enviado: no existe CAFE")
	}
	if len(doc.PDF) > 0 {
		return doc.PDF, nil
	}

	partner, err := uc.partners.GetByID(ctx, doc.PartnerID)
	if err != nil {
		return nil, err
	}
	company, err := uc.companies.GetByID(ctx, doc.CompanyID)
	if err != nil {
		return nil, err
	}
	if partner == nil || company == nil {
		return nil, domain.ErrNotFound
	}

	uc.log.Debug().Str("document_id", documentID).Msg("PDF oficial no disponible, generando CAFE local")
	return uc.generator.GenerateCAFE(ctx, doc, company, partner)
}

// GetXML devuelve el XML firmado descargado de HKA; nil si aún no se descargó.
func (uc *GetCAFEUseCase) GetXML(ctx context.Context, companyID, documentID string) ([]byte, error) {
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
	return doc.XML, nil
}
