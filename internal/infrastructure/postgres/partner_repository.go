package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
)

var _ repository.PartnerRepository = (*PartnerRepo)(nil)

// PartnerRepo implementación de PartnerRepository (usable con pool o tx).
type PartnerRepo struct {
	q Querier
}

// NewPartnerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartnerRepository(q Querier) *PartnerRepo {
	return &PartnerRepo{q: q}
}

// Create persiste un receptor.
func (r *PartnerRepo) Create(ctx context.Context, p *entity.Partner) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	query := `
		INSERT INTO partners (id, company_id, name, tipo_cliente_fe, tipo_contribuyente,
			ruc, dv, ruc_verified, ruc_verification_date, direccion, codigo_ubicacion,
			email, telefono, country_code, country_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.Name, p.TipoClienteFE, nullIfEmpty(p.TipoContribuyente),
		nullIfEmpty(p.RUC), nullIfEmpty(p.DV), p.RUCVerified, p.RUCVerificationDate,
		nullIfEmpty(p.Direccion), nullIfEmpty(p.CodigoUbicacion),
		nullIfEmpty(p.Email), nullIfEmpty(p.Telefono),
		nullIfEmpty(p.CountryCode), nullIfEmpty(p.CountryName),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

// GetByID devuelve nil, nil si el receptor no existe.
func (r *PartnerRepo) GetByID(ctx context.Context, id string) (*entity.Partner, error) {
	query := `
		SELECT id, company_id, name, tipo_cliente_fe, COALESCE(tipo_contribuyente, ''),
		       COALESCE(ruc, ''), COALESCE(dv, ''), ruc_verified, ruc_verification_date,
		       COALESCE(direccion, ''), COALESCE(codigo_ubicacion, ''),
		       COALESCE(email, ''), COALESCE(telefono, ''),
		       COALESCE(country_code, ''), COALESCE(country_name, ''),
		       created_at, updated_at
		FROM partners WHERE id = $1`
	var p entity.Partner
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.TipoClienteFE, &p.TipoContribuyente,
		&p.RUC, &p.DV, &p.RUCVerified, &p.RUCVerificationDate,
		&p.Direccion, &p.CodigoUbicacion,
		&p.Email, &p.Telefono,
		&p.CountryCode, &p.CountryName,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return &p, nil
}

// Update actualiza los campos editables del receptor. No toca la verificación
// de RUC: eso es trabajo de SetRUCVerification / ClearRUCVerification.
func (r *PartnerRepo) Update(ctx context.Context, p *entity.Partner) error {
	p.UpdatedAt = time.Now()
	query := `
		UPDATE partners
		SET name               = $2,
		    tipo_cliente_fe    = $3,
		    tipo_contribuyente = $4,
		    ruc                = $5,
		    dv                 = $6,
		    direccion          = $7,
		    codigo_ubicacion   = $8,
		    email              = $9,
		    telefono           = $10,
		    country_code       = $11,
		    country_name       = $12,
		    updated_at         = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.TipoClienteFE, nullIfEmpty(p.TipoContribuyente),
		nullIfEmpty(p.RUC), nullIfEmpty(p.DV),
		nullIfEmpty(p.Direccion), nullIfEmpty(p.CodigoUbicacion),
		nullIfEmpty(p.Email), nullIfEmpty(p.Telefono),
		nullIfEmpty(p.CountryCode), nullIfEmpty(p.CountryName),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetRUCVerification persiste el DV verificado y la marca temporal.
func (r *PartnerRepo) SetRUCVerification(ctx context.Context, id, dv string, verifiedAt time.Time) error {
	query := `
		UPDATE partners
		SET dv = $2, ruc_verified = TRUE, ruc_verification_date = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, dv, verifiedAt, time.Now())
	if err != nil {
		return fmt.Errorf("set ruc verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearRUCVerification invalida la verificación tras editar el RUC.
func (r *PartnerRepo) ClearRUCVerification(ctx context.Context, id string) error {
	query := `
		UPDATE partners
		SET ruc_verified = FALSE, ruc_verification_date = NULL, updated_at = $2
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("clear ruc verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista receptores de la compañía ordenados por nombre.
func (r *PartnerRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Partner, error) {
	query := `
		SELECT id, company_id, name, tipo_cliente_fe, COALESCE(tipo_contribuyente, ''),
		       COALESCE(ruc, ''), COALESCE(dv, ''), ruc_verified, ruc_verification_date,
		       COALESCE(direccion, ''), COALESCE(codigo_ubicacion, ''),
		       COALESCE(email, ''), COALESCE(telefono, ''),
		       COALESCE(country_code, ''), COALESCE(country_name, ''),
		       created_at, updated_at
		FROM partners
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()
	var list []*entity.Partner
	for rows.Next() {
		var p entity.Partner
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.Name, &p.TipoClienteFE, &p.TipoContribuyente,
			&p.RUC, &p.DV, &p.RUCVerified, &p.RUCVerificationDate,
			&p.Direccion, &p.CodigoUbicacion,
			&p.Email, &p.Telefono,
			&p.CountryCode, &p.CountryName,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
