package lector

import (
	"strconv"
	"strings"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// ParseNumero convierte el texto de una celda a número con la convención
// regional: el punto separa miles y la coma los decimales
// ("46.709.214" -> 46709214, "1.234,56" -> 1234.56). Los valores que no
// parsean devuelven ok=false; en sumas aportan cero, en lecturas puntuales
// significan "sin valor". Nunca es un error.
func ParseNumero(texto string) (float64, bool) {
	s := strings.TrimSpace(texto)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")

	// Las celdas numéricas llegan de excelize en forma canónica, con el
	// punto como decimal. Solo cuando eso no parsea, o hay una coma, se
	// aplica la convención regional.
	if !strings.Contains(s, ",") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumeroDeCelda obtiene el valor numérico de una celda etiquetada: los
// números pasan directo, el texto se parsea, fechas y vacíos no valen.
func NumeroDeCelda(c model.Celda) (float64, bool) {
	switch c.Tipo {
	case model.CeldaNumero:
		return c.Numero, true
	case model.CeldaTexto:
		return ParseNumero(c.Texto)
	default:
		return 0, false
	}
}
