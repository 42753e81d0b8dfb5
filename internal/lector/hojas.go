package lector

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// ErrNoEncontrado archivo, hoja, columna o fila no encontrados. Quien llama
// decide si la ausencia corta la corrida o solo deja el concepto sin valor.
var ErrNoEncontrado = errors.New("no encontrado")

// PatronMes encabezado tipo mes: abreviatura de tres letras seguida
// opcionalmente de guion/espacio y 2 a 4 dígitos ("dic-25", "ene 2026").
var PatronMes = regexp.MustCompile(`^(ene|feb|mar|abr|may|jun|jul|ago|sep|oct|nov|dic)[\s\-]*\d{2,4}$`)

// LeerCelda lee una celda y la etiqueta como vacía, número, fecha o texto.
// Las fechas se reconocen por valor serial numérico + formato de fecha en
// el estilo de la celda (así las escriben los archivos del Coordinador y
// las plantillas de clientes).
func LeerCelda(wb *excelize.File, hoja, eje string) model.Celda {
	raw, err := wb.GetCellValue(hoja, eje, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Celda{}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Celda{}
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if esFormatoFecha(wb, hoja, eje) {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				return model.CeldaDeFecha(t)
			}
		}
		return model.CeldaNum(f)
	}
	return model.CeldaTxt(raw)
}

// FilasCrudas lee las filas de una hoja con los valores sin formato.
// Una celda numérica con formato de miles se rinde como "46,709,214",
// que ParseNumero no puede interpretar; el valor crudo mantiene el
// número tal como está guardado.
func FilasCrudas(wb *excelize.File, hoja string) ([][]string, error) {
	return wb.GetRows(hoja, excelize.Options{RawCellValue: true})
}

// esFormatoFecha revisa si el formato numérico de la celda es de fecha
func esFormatoFecha(wb *excelize.File, hoja, eje string) bool {
	idx, err := wb.GetCellStyle(hoja, eje)
	if err != nil {
		return false
	}
	estilo, err := wb.GetStyle(idx)
	if err != nil || estilo == nil {
		return false
	}
	// Formatos de fecha incorporados de Excel
	switch {
	case estilo.NumFmt >= 14 && estilo.NumFmt <= 22:
		return true
	case estilo.NumFmt >= 45 && estilo.NumFmt <= 47:
		return true
	}
	if estilo.CustomNumFmt != nil {
		fmt := strings.ToLower(*estilo.CustomNumFmt)
		return strings.Contains(fmt, "y") && (strings.Contains(fmt, "m") || strings.Contains(fmt, "d"))
	}
	return false
}

// normalizar minúsculas y sin espacios, para comparar nombres de hoja y
// encabezados con tolerancia al formato
func normalizar(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
}

// ResolverHoja busca la hoja cuyo nombre contiene todos los substrings
// requeridos y alguna codificación del período (año completo, año corto,
// mes abreviado o combinaciones). Los nombres de hoja del Coordinador
// codifican el período de forma inconsistente entre meses y versiones.
//
// Gana la primera coincidencia en el orden natural del libro; si hay más
// de una el desempate es arbitrario (los libros bien formados traen una).
func ResolverHoja(wb *excelize.File, requeridos []string, p model.Periodo) (string, error) {
	codificaciones := p.Codificaciones()

	for _, nombre := range wb.GetSheetList() {
		norm := normalizar(nombre)

		todos := true
		for _, req := range requeridos {
			if !strings.Contains(norm, normalizar(req)) {
				todos = false
				break
			}
		}
		if !todos {
			continue
		}

		for _, cod := range codificaciones {
			if strings.Contains(norm, strings.ToLower(cod)) {
				return nombre, nil
			}
		}
	}
	return "", ErrNoEncontrado
}

// BuscarHojaExacta busca una hoja por nombre, insensible a mayúsculas
func BuscarHojaExacta(wb *excelize.File, nombre string) (string, error) {
	objetivo := normalizar(nombre)
	for _, h := range wb.GetSheetList() {
		if normalizar(h) == objetivo {
			return h, nil
		}
	}
	return "", ErrNoEncontrado
}

// DetectarFilaEncabezados recorre las primeras maxFilas filas y devuelve el
// índice (base 0) de la primera cuyas celdas contienen todas las claves
// como substring, insensible a mayúsculas. -1 si ninguna califica.
func DetectarFilaEncabezados(filas [][]string, claves []string, maxFilas int) int {
	if maxFilas > len(filas) {
		maxFilas = len(filas)
	}
	for i := 0; i < maxFilas; i++ {
		pendientes := make(map[string]struct{}, len(claves))
		for _, k := range claves {
			pendientes[strings.ToLower(k)] = struct{}{}
		}
		for _, celda := range filas[i] {
			v := strings.ToLower(celda)
			for k := range pendientes {
				if strings.Contains(v, k) {
					delete(pendientes, k)
				}
			}
		}
		if len(pendientes) == 0 {
			return i
		}
	}
	return -1
}

// EsEncabezadoMes indica si la celda encabeza la columna del período: fecha
// con el mismo año/mes, o texto que empieza con "abr-25" o "abr-2025".
func EsEncabezadoMes(c model.Celda, p model.Periodo) bool {
	switch c.Tipo {
	case model.CeldaFecha:
		return c.Fecha.Year() == p.Anyo && int(c.Fecha.Month()) == p.Mes
	case model.CeldaTexto:
		v := normalizar(c.Texto)
		return strings.HasPrefix(v, strings.ToLower(p.EncabezadoMesCorto())) ||
			strings.HasPrefix(v, strings.ToLower(p.EncabezadoMesLargo()))
	default:
		return false
	}
}

// EsColumnaTipoMes indica si la celda parece encabezar una columna de mes
// cualquiera (fecha, o texto "abrev-dígitos"). Lo usa el escritor de
// plantillas para elegir qué columna clonar al crear el mes nuevo.
func EsColumnaTipoMes(c model.Celda) bool {
	switch c.Tipo {
	case model.CeldaFecha:
		return true
	case model.CeldaTexto:
		return PatronMes.MatchString(normalizar(c.Texto))
	default:
		return false
	}
}
