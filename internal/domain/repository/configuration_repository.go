package repository

import (
	"context"

	"github.com/facturapan/fehka-api/internal/domain/entity"
)

// ConfigurationRepository define el puerto de persistencia para los conjuntos
// de configuración HKA, incluido el contador de numeración fiscal.
type ConfigurationRepository interface {
	Create(ctx context.Context, cfg *entity.HKAConfiguration) error
	GetByID(ctx context.Context, id string) (*entity.HKAConfiguration, error)
	// GetByCompany resuelve el conjunto de configuración activo de la
	// compañía; nil, nil si la compañía no tiene configuración asignada.
	GetByCompany(ctx context.Context, companyID string) (*entity.HKAConfiguration, error)
	Update(ctx context.Context, cfg *entity.HKAConfiguration) error

	// AllocateNextNumber toma el bloqueo exclusivo no bloqueante de la fila
	// del contador, devuelve el valor actual (el número asignado) y persiste
	// el siguiente, confirmando en su propia transacción. Errores:
	// domain.ErrConcurrencyConflict si la fila está tomada,
	// domain.ErrNotConfigured si no existe contador,
	// domain.ErrInvalidCounter si el valor persistido está corrupto.
	AllocateNextNumber(ctx context.Context, configID string) (string, error)
}
