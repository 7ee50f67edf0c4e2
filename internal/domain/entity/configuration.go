package entity

import "time"

// HKAConfiguration es un conjunto nombrado de configuración HKA: credenciales,
// endpoint, ambiente y el contador de numeración fiscal del alcance. Una o
// varias compañías apuntan al mismo conjunto; el contador es compartido por
// todas ellas.
type HKAConfiguration struct {
	ID     string
	Name   string
	Active bool

	TokenEmpresa  string
	TokenPassword string
	WSDLURL       string
	TestMode      bool

	// DefaultTipoDocumento tipo de documento por defecto al crear ("01".."09").
	DefaultTipoDocumento string

	// NextNumber es el próximo número fiscal a emitir (10 dígitos, solo
	// dígitos, > 0). Se lee y avanza únicamente a través del asignador con
	// bloqueo exclusivo; el avance se confirma en su propia transacción y
	// nunca se revierte, aunque el envío posterior falle.
	NextNumber string

	CreatedAt time.Time
	UpdatedAt time.Time
}
