package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin      = "admin"
	RoleFacturador = "facturador"
)

// User usuario de la aplicación (autenticación JWT).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string // RoleAdmin | RoleFacturador
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
