package billing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/facturapan/fehka-api/internal/domain/repository"
)

// SequenceAllocator asigna números fiscales estrictamente crecientes por
// conjunto de configuración. La exclusión mutua vive en el repositorio
// (bloqueo de fila no bloqueante, transacción propia): una asignación
// confirmada nunca se revierte, aunque el envío posterior falle. Los huecos
// resultantes son aceptables; la reutilización no.
type SequenceAllocator struct {
	configs repository.ConfigurationRepository
	log     zerolog.Logger
}

// NewSequenceAllocator construye el asignador.
func NewSequenceAllocator(configs repository.ConfigurationRepository, log zerolog.Logger) *SequenceAllocator {
	return &SequenceAllocator{
		configs: configs,
		log:     log.With().Str("component", "sequence-allocator").Logger(),
	}
}

// Allocate devuelve el siguiente número fiscal del conjunto. Propaga
// domain.ErrConcurrencyConflict tal cual: el caller decide si reintenta la
// operación completa, revalidando el estado del documento.
func (a *SequenceAllocator) Allocate(ctx context.Context, configID string) (string, error) {
	number, err := a.configs.AllocateNextNumber(ctx, configID)
	if err != nil {
		a.log.Warn().Err(err).Str("config_id", configID).Msg("asignación de número fiscal fallida")
		return "", err
	}
	a.log.Info().Str("config_id", configID).Str("numero", number).Msg("número fiscal asignado")
	return number, nil
}
