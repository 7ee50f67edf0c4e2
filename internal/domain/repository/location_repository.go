package repository

import (
	"context"

	"github.com/facturapan/fehka-api/internal/domain/entity"
)

// LocationRepository define el puerto para el catálogo de ubicaciones de
// Panamá (provincia/distrito/corregimiento). Los Upsert los usa el comando
// de siembra; ExistsUbicacion valida el codigoUbicacion de un receptor.
type LocationRepository interface {
	UpsertProvincia(ctx context.Context, p *entity.Provincia) error
	UpsertDistrito(ctx context.Context, d *entity.Distrito) error
	UpsertCorregimiento(ctx context.Context, c *entity.Corregimiento) error
	// ExistsUbicacion verifica que el código "prov-dist-corr" exista en el catálogo.
	ExistsUbicacion(ctx context.Context, codigo string) (bool, error)
}
