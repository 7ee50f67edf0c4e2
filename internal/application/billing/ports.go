package billing

import (
	"context"

	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
	"github.com/facturapan/fehka-api/internal/infrastructure/hka"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los repos
// de facturación. Lo usa la creación de documentos para persistir cabecera,
// líneas y pagos como una unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		partnerRepo repository.PartnerRepository,
	) error) error
}

// ServiceFactory construye un cliente HKA para el endpoint del conjunto de
// configuración resuelto. Se invoca por llamada: el endpoint puede variar por
// alcance y nunca se cachea.
type ServiceFactory func(endpoint string) hka.Service

// CAFEPDFGenerator genera localmente el PDF del CAFE a partir del documento.
// Es el respaldo mientras el PDF oficial de HKA no está disponible.
type CAFEPDFGenerator interface {
	GenerateCAFE(ctx context.Context, doc *entity.FiscalDocument, company *entity.Company, partner *entity.Partner) ([]byte, error)
}
