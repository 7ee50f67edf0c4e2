package entity

import "time"

// Company es la compañía emisora. Apunta a su conjunto de configuración HKA
// y define los códigos de emisión por defecto cuando el documento no trae
// sucursal o punto de facturación explícitos.
type Company struct {
	ID   string
	Name string
	RUC  string
	DV   string

	// HKAConfigurationID referencia el conjunto de configuración (tokens,
	// endpoint, contador de numeración) que usa esta compañía.
	HKAConfigurationID string

	// BranchCode sucursal por defecto (4 dígitos); POSCode punto de
	// facturación por defecto (3 dígitos).
	BranchCode string
	POSCode    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Branch es una sucursal física de la compañía con su código HKA de 4 dígitos
// y el punto de facturación por defecto de 3 dígitos.
type Branch struct {
	ID        string
	CompanyID string
	Name      string
	Code      string // 4 dígitos
	POSCode   string // 3 dígitos, punto de facturación por defecto
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
