package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo catálogo de ubicaciones de Panamá sobre PostgreSQL. Los upserts
// los usa el comando de siembra; la emisión solo consulta ExistsUbicacion.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador del catálogo.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// UpsertProvincia inserta o actualiza una provincia por código.
func (r *LocationRepo) UpsertProvincia(ctx context.Context, p *entity.Provincia) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO provincias (id, code, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Code, p.Name); err != nil {
		return fmt.Errorf("upsert provincia: %w", err)
	}
	// Recuperar el ID canónico (puede existir de una siembra anterior).
	err := r.q.QueryRow(ctx, `SELECT id FROM provincias WHERE code = $1`, p.Code).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("resolve provincia id: %w", err)
	}
	return nil
}

// UpsertDistrito inserta o actualiza un distrito por (provincia, código).
func (r *LocationRepo) UpsertDistrito(ctx context.Context, d *entity.Distrito) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `
		INSERT INTO distritos (id, provincia_id, code, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provincia_id, code) DO UPDATE SET name = EXCLUDED.name`
	if _, err := r.q.Exec(ctx, query, d.ID, d.ProvinciaID, d.Code, d.Name); err != nil {
		return fmt.Errorf("upsert distrito: %w", err)
	}
	err := r.q.QueryRow(ctx,
		`SELECT id FROM distritos WHERE provincia_id = $1 AND code = $2`,
		d.ProvinciaID, d.Code,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("resolve distrito id: %w", err)
	}
	return nil
}

// UpsertCorregimiento inserta o actualiza un corregimiento por (distrito, código).
func (r *LocationRepo) UpsertCorregimiento(ctx context.Context, c *entity.Corregimiento) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO corregimientos (id, distrito_id, code, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (distrito_id, code) DO UPDATE SET name = EXCLUDED.name`
	if _, err := r.q.Exec(ctx, query, c.ID, c.DistritoID, c.Code, c.Name); err != nil {
		return fmt.Errorf("upsert corregimiento: %w", err)
	}
	err := r.q.QueryRow(ctx,
		`SELECT id FROM corregimientos WHERE distrito_id = $1 AND code = $2`,
		c.DistritoID, c.Code,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("resolve corregimiento id: %w", err)
	}
	return nil
}

// ExistsUbicacion verifica que el código "provincia-distrito-corregimiento"
// exista en el catálogo.
func (r *LocationRepo) ExistsUbicacion(ctx context.Context, codigo string) (bool, error) {
	parts := strings.Split(codigo, "-")
	if len(parts) != 3 {
		return false, nil
	}
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM corregimientos c
			JOIN distritos d ON d.id = c.distrito_id
			JOIN provincias p ON p.id = d.provincia_id
			WHERE p.code = $1 AND d.code = $2 AND c.code = $3
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, parts[0], parts[1], parts[2]).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists ubicacion: %w", err)
	}
	return exists, nil
}
