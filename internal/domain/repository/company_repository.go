package repository

import (
	"context"

	"github.com/facturapan/fehka-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para compañías emisoras.
type CompanyRepository interface {
	Create(ctx context.Context, c *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	Update(ctx context.Context, c *entity.Company) error
}

// BranchRepository define el puerto de persistencia para sucursales.
type BranchRepository interface {
	Create(ctx context.Context, b *entity.Branch) error
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Branch, error)
	Update(ctx context.Context, b *entity.Branch) error
}
