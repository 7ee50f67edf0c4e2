package entity

import "time"

// Partner es el receptor de un documento fiscal. La clasificación
// TipoClienteFE decide explícitamente la forma del bloque cliente del payload;
// nunca se infiere de la presencia o ausencia de otros campos.
type Partner struct {
	ID        string
	CompanyID string

	Name string // razón social

	// TipoClienteFE: "01" contribuyente, "02" consumidor final,
	// "03" gobierno, "04" extranjero (catálogo fe.Cliente*).
	TipoClienteFE string

	// TipoContribuyente: "1" natural, "2" jurídico.
	TipoContribuyente string

	RUC string // Registro Único de Contribuyente ("CF" para consumidor final)
	DV  string // dígito verificador, poblado al verificar el RUC

	// Verificación del RUC contra HKA. Editar el RUC la invalida.
	RUCVerified        bool
	RUCVerificationDate *time.Time

	Direccion string
	// CodigoUbicacion: provincia-distrito-corregimiento (ej. "8-8-7").
	CodigoUbicacion string
	Email           string
	Telefono        string
	CountryCode     string // ISO-3166 alfa-2; "PA" para Panamá
	CountryName     string // texto libre, usado en el bloque extranjero

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsForeign indica si el receptor es extranjero (fuera de Panamá).
func (p *Partner) IsForeign() bool {
	return p.CountryCode != "" && p.CountryCode != "PA"
}
