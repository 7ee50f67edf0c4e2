package repository

import (
	"context"
	"time"

	"github.com/facturapan/fehka-api/internal/domain/entity"
)

// PartnerRepository define el puerto de persistencia para receptores.
type PartnerRepository interface {
	Create(ctx context.Context, p *entity.Partner) error
	// GetByID devuelve nil, nil si el receptor no existe.
	GetByID(ctx context.Context, id string) (*entity.Partner, error)
	Update(ctx context.Context, p *entity.Partner) error
	// SetRUCVerification persiste el resultado de la verificación de RUC
	// (dígito verificador devuelto por HKA y marca temporal).
	SetRUCVerification(ctx context.Context, id, dv string, verifiedAt time.Time) error
	// ClearRUCVerification invalida la verificación (el RUC fue editado).
	ClearRUCVerification(ctx context.Context, id string) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Partner, error)
}
