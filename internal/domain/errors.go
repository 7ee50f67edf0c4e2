package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// ErrAlreadySubmitted: el documento ya fue enviado y aceptado por la DGI.
	// Es un mal uso del flujo, no un estado reintentable.
	ErrAlreadySubmitted = errors.New("el documento ya fue enviado a HKA")

	// ErrConcurrencyConflict: otro proceso tiene tomado el contador de numeración.
	// El llamador decide si reintenta la operación completa.
	ErrConcurrencyConflict = errors.New("el contador de numeración fiscal está en uso")

	// ErrNotConfigured: el alcance no tiene contador ni credenciales configurados.
	ErrNotConfigured = errors.New("configuración HKA no encontrada para la compañía")

	// ErrInvalidCounter: el contador persistido no es un número fiscal válido
	// (no numérico o con ancho distinto de 10). Error fatal de configuración.
	ErrInvalidCounter = errors.New("el próximo número fiscal configurado no es válido")
)

// ValidationError acumula todas las violaciones de datos de un documento.
// La validación es completa: se reportan todos los campos faltantes o
// malformados de una vez, no solo el primero.
type ValidationError struct {
	Violations []string
}

// NewValidationError crea un ValidationError con las violaciones dadas.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Add agrega una violación al acumulador.
func (e *ValidationError) Add(format string, args ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// HasViolations indica si hay al menos una violación registrada.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "datos inválidos"
	}
	return "datos inválidos: " + strings.Join(e.Violations, "; ")
}

// RemoteServiceError normaliza fallas de transporte y rechazos del servicio HKA.
// Code es el código devuelto por HKA (0 si la falla fue de transporte).
type RemoteServiceError struct {
	Op      string // operación HKA: Enviar, AnulacionDocumento, DescargaPDF...
	Code    int
	Message string
	Err     error // causa de transporte, si existe
}

func (e *RemoteServiceError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("HKA %s: código %d: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("HKA %s: %s", e.Op, e.Message)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// ConfigurationError señala configuración faltante o corrupta (credenciales,
// endpoint, contador). No es reintetable hasta que un operador la corrija.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuración HKA inválida (%s): %s", e.Field, e.Message)
	}
	return "configuración HKA inválida: " + e.Message
}

// IsValidationError extrae un *ValidationError de la cadena de errores.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsRemoteServiceError extrae un *RemoteServiceError de la cadena de errores.
func IsRemoteServiceError(err error) (*RemoteServiceError, bool) {
	var re *RemoteServiceError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
