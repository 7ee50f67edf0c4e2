package repository

import (
	"context"

	"github.com/facturapan/fehka-api/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para FiscalDocument.
// Las transiciones de estado son escrituras dirigidas: cada método persiste
// exactamente los campos de su paso del flujo, de modo que la aceptación
// legal (MarkSent) queda confirmada independiente de la descarga posterior
// de artefactos.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.FiscalDocument) error
	// GetByID devuelve el documento completo con líneas y pagos; nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error)

	// SetFiscalNumber persiste el número fiscal recién asignado. Se invoca de
	// inmediato tras la asignación: el número queda consumido aunque el envío
	// posterior falle.
	SetFiscalNumber(ctx context.Context, id, fiscalNumber string) error

	// MarkSent persiste status=sent junto con los artefactos legales
	// (CUFE, protocolo, fecha de recepción, QR) como un paso confirmado.
	MarkSent(ctx context.Context, doc *entity.FiscalDocument) error

	// RevertToDraft regresa el documento a draft con el mensaje de error
	// adjunto, dejándolo reintetable.
	RevertToDraft(ctx context.Context, id, message string) error

	// MarkCancelled persiste status=cancelled con el motivo y el mensaje de
	// confirmación de HKA.
	MarkCancelled(ctx context.Context, id, motivo, message string) error

	// SaveArtifacts persiste las copias binarias PDF/XML (nil = sin cambio)
	// y el mensaje de advertencia si alguna descarga falló.
	SaveArtifacts(ctx context.Context, id string, pdf, xml []byte, message string) error

	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.FiscalDocument, error)
}
