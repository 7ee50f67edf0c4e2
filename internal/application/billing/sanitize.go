package billing

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Límites de longitud de los campos de texto libre del payload HKA.
const (
	maxDescripcionItem = 50
	maxDescDescuento   = 30

	fallbackItem      = "Articulo"
	fallbackDescuento = "Descuento"
)

// Anotaciones entre corchetes o paréntesis (códigos internos, notas de POS).
var bracketedRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

// foldAccents descompone a NFD, elimina las marcas diacríticas y recompone.
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitizeText normaliza un texto libre para los campos del payload: elimina
// anotaciones entre corchetes, pliega acentos, conserva solo alfanuméricos,
// espacios, puntos y guiones, colapsa espacios y trunca a maxLen. Si el
// resultado queda vacío devuelve fallback.
func sanitizeText(s string, maxLen int, fallback string) string {
	s = bracketedRe.ReplaceAllString(s, " ")

	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == ' ', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	s = strings.Join(strings.Fields(b.String()), " ")
	if len(s) > maxLen {
		s = strings.TrimSpace(s[:maxLen])
	}
	if s == "" {
		return fallback
	}
	return s
}
