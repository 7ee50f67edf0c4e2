package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturapan/fehka-api/internal/domain"
	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
	"github.com/facturapan/fehka-api/pkg/fe"
)

var _ repository.ConfigurationRepository = (*ConfigurationRepo)(nil)

// ConfigurationRepo implementación de ConfigurationRepository. A diferencia de
// los demás adaptadores requiere el pool completo: AllocateNextNumber abre su
// propia transacción para que el avance del contador quede confirmado de forma
// independiente del resto del flujo de envío.
type ConfigurationRepo struct {
	pool *pgxpool.Pool
}

// NewConfigurationRepository construye el adaptador sobre el pool.
func NewConfigurationRepository(pool *pgxpool.Pool) *ConfigurationRepo {
	return &ConfigurationRepo{pool: pool}
}

// Create persiste un conjunto de configuración HKA.
func (r *ConfigurationRepo) Create(ctx context.Context, cfg *entity.HKAConfiguration) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	now := time.Now()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	if cfg.NextNumber == "" {
		cfg.NextNumber = fe.PadFiscalNumber(1)
	}
	query := `
		INSERT INTO hka_configurations (id, name, active, token_empresa, token_password,
			wsdl_url, test_mode, default_tipo_documento, next_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, query,
		cfg.ID, cfg.Name, cfg.Active, cfg.TokenEmpresa, cfg.TokenPassword,
		cfg.WSDLURL, cfg.TestMode, nullIfEmpty(cfg.DefaultTipoDocumento), cfg.NextNumber,
		cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert hka configuration: %w", err)
	}
	return nil
}

const configurationColumns = `
	id, name, active, token_empresa, token_password, wsdl_url, test_mode,
	COALESCE(default_tipo_documento, ''), next_number, created_at, updated_at`

func scanConfiguration(row pgx.Row) (*entity.HKAConfiguration, error) {
	var cfg entity.HKAConfiguration
	err := row.Scan(
		&cfg.ID, &cfg.Name, &cfg.Active, &cfg.TokenEmpresa, &cfg.TokenPassword,
		&cfg.WSDLURL, &cfg.TestMode, &cfg.DefaultTipoDocumento, &cfg.NextNumber,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetByID devuelve nil, nil si el conjunto no existe.
func (r *ConfigurationRepo) GetByID(ctx context.Context, id string) (*entity.HKAConfiguration, error) {
	query := `SELECT ` + configurationColumns + ` FROM hka_configurations WHERE id = $1`
	cfg, err := scanConfiguration(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hka configuration: %w", err)
	}
	return cfg, nil
}

// GetByCompany resuelve el conjunto asignado a la compañía. nil, nil si la
// compañía no tiene configuración.
func (r *ConfigurationRepo) GetByCompany(ctx context.Context, companyID string) (*entity.HKAConfiguration, error) {
	query := `
		SELECT ` + configurationColumns + `
		FROM hka_configurations c
		JOIN companies co ON co.hka_configuration_id = c.id
		WHERE co.id = $1`
	cfg, err := scanConfiguration(r.pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hka configuration by company: %w", err)
	}
	return cfg, nil
}

// Update actualiza el conjunto de configuración. No toca next_number: el
// contador solo avanza a través de AllocateNextNumber.
func (r *ConfigurationRepo) Update(ctx context.Context, cfg *entity.HKAConfiguration) error {
	cfg.UpdatedAt = time.Now()
	query := `
		UPDATE hka_configurations
		SET name                   = $2,
		    active                 = $3,
		    token_empresa          = $4,
		    token_password         = $5,
		    wsdl_url               = $6,
		    test_mode              = $7,
		    default_tipo_documento = $8,
		    updated_at             = $9
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		cfg.ID, cfg.Name, cfg.Active, cfg.TokenEmpresa, cfg.TokenPassword,
		cfg.WSDLURL, cfg.TestMode, nullIfEmpty(cfg.DefaultTipoDocumento), cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update hka configuration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AllocateNextNumber asigna el siguiente número fiscal del contador del
// conjunto. Toma la fila con FOR UPDATE NOWAIT en una transacción propia y
// confirma el avance de inmediato: el número devuelto queda consumido aunque
// el envío posterior falle (los huecos son aceptables, la reutilización no).
//
// Errores: domain.ErrConcurrencyConflict si otra sesión tiene la fila,
// domain.ErrNotConfigured si el conjunto no existe,
// domain.ErrInvalidCounter si el valor persistido está corrupto.
func (r *ConfigurationRepo) AllocateNextNumber(ctx context.Context, configID string) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin counter transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx,
		`SELECT next_number FROM hka_configurations WHERE id = $1 FOR UPDATE NOWAIT`,
		configID,
	).Scan(&current)
	if err != nil {
		if isLockNotAvailable(err) {
			return "", domain.ErrConcurrencyConflict
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotConfigured
		}
		return "", fmt.Errorf("lock counter row: %w", err)
	}

	if !fe.ValidFiscalNumber(current) {
		return "", fmt.Errorf("%w: next_number=%q", domain.ErrInvalidCounter, current)
	}
	n, err := strconv.ParseInt(current, 10, 64)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("%w: next_number=%q", domain.ErrInvalidCounter, current)
	}

	next := fe.PadFiscalNumber(n + 1)
	if _, err := tx.Exec(ctx,
		`UPDATE hka_configurations SET next_number = $2, updated_at = $3 WHERE id = $1`,
		configID, next, time.Now(),
	); err != nil {
		return "", fmt.Errorf("advance counter: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit counter: %w", err)
	}
	return current, nil
}
