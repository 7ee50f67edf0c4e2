package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"texto limpio pasa tal cual", "Cafe molido 500g", maxDescripcionItem, "Cafe molido 500g"},
		{"acentos plegados", "Azúcar añejada", maxDescripcionItem, "Azucar anejada"},
		{"anotaciones entre corchetes eliminadas", "[PROMO] Cerveza nacional", maxDescripcionItem, "Cerveza nacional"},
		{"anotaciones entre parentesis eliminadas", "Pollo asado (combo familiar)", maxDescripcionItem, "Pollo asado"},
		{"simbolos reemplazados por espacio", "Refresco 2L @ $1.50 ¡oferta!", maxDescripcionItem, "Refresco 2L 1.50 oferta"},
		{"espacios colapsados", "  Arroz   5lb  ", maxDescripcionItem, "Arroz 5lb"},
		{"truncado al maximo", "Descripcion extremadamente larga de un producto que no cabe en el campo", maxDescripcionItem, "Descripcion extremadamente larga de un producto qu"},
		{"vacio usa fallback", "", maxDescripcionItem, "Articulo"},
		{"solo simbolos usa fallback", "@#$%&!", maxDescripcionItem, "Articulo"},
		{"solo anotacion usa fallback", "[INTERNAL-SKU-99]", maxDescripcionItem, "Articulo"},
		{"guiones y puntos se conservan", "Camisa t-shirt talla M. azul", maxDescripcionItem, "Camisa t-shirt talla M. azul"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeText(tc.in, tc.max, fallbackItem))
		})
	}
}

func TestSanitizeText_FallbackDescuento(t *testing.T) {
	assert.Equal(t, "Descuento", sanitizeText("(interno)", maxDescDescuento, fallbackDescuento))
}
