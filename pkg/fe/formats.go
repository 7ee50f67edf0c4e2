package fe

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Anchos fijos exigidos por la DGI para los códigos de emisión.
const (
	FiscalNumberWidth = 10 // numeroDocumentoFiscal: 10 dígitos con ceros a la izquierda
	BranchCodeWidth   = 4  // codigoSucursalEmisor
	POSCodeWidth      = 3  // puntoFacturacionFiscal
)

// IsDigits indica si s es no vacío y contiene solo dígitos decimales.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidFiscalNumber valida el formato de un número de documento fiscal (10 dígitos).
func ValidFiscalNumber(n string) bool {
	return len(n) == FiscalNumberWidth && IsDigits(n)
}

// ValidBranchCode valida el código de sucursal (4 dígitos).
func ValidBranchCode(c string) bool {
	return len(c) == BranchCodeWidth && IsDigits(c)
}

// ValidPOSCode valida el punto de facturación (3 dígitos).
func ValidPOSCode(c string) bool {
	return len(c) == POSCodeWidth && IsDigits(c)
}

// PadFiscalNumber formatea n como número fiscal de 10 dígitos.
func PadFiscalNumber(n int64) string {
	return fmt.Sprintf("%0*d", FiscalNumberWidth, n)
}

// Amount2 formatea un monto monetario con 2 decimales fijos (formato de la DGI).
func Amount2(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// Amount3 formatea cantidades y precios unitarios con 3 decimales fijos.
func Amount3(d decimal.Decimal) string {
	return d.Round(3).StringFixed(3)
}

// AmountInt formatea un contador entero del payload (ej. nroItems).
func AmountInt(n int) string {
	return fmt.Sprintf("%d", n)
}

// TasaITBMSCode mapea una tasa porcentual de ITBMS a su código DGI.
// Cualquier tasa distinta de 7, 10 o 15 (incluida la ausencia de impuesto)
// se reporta como exenta.
func TasaITBMSCode(rate decimal.Decimal) string {
	switch {
	case rate.Equal(decimal.NewFromInt(7)):
		return ITBMS7
	case rate.Equal(decimal.NewFromInt(10)):
		return ITBMS10
	case rate.Equal(decimal.NewFromInt(15)):
		return ITBMS15
	default:
		return ITBMSExento
	}
}

// TasaITBMSPercent devuelve la tasa porcentual asociada a un código ITBMS.
func TasaITBMSPercent(code string) decimal.Decimal {
	switch code {
	case ITBMS7:
		return decimal.NewFromInt(7)
	case ITBMS10:
		return decimal.NewFromInt(10)
	case ITBMS15:
		return decimal.NewFromInt(15)
	default:
		return decimal.Zero
	}
}
