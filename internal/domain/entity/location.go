package entity

// División administrativa de Panamá usada para el codigoUbicacion del receptor
// (provincia-distrito-corregimiento). Se siembra desde el catálogo oficial.

// Provincia de Panamá.
type Provincia struct {
	ID   string
	Code string
	Name string
}

// Distrito pertenece a una provincia.
type Distrito struct {
	ID          string
	ProvinciaID string
	Code        string
	Name        string
}

// Corregimiento pertenece a un distrito.
type Corregimiento struct {
	ID         string
	DistritoID string
	Code       string
	Name       string
}
