// Package plantilla escribe los valores extraídos en la hoja Resultado
// de la plantilla del cliente, creando la columna del mes si no existe
// y respetando el formato del resto del libro.
package plantilla

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/lector"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// ErrPlantilla la plantilla destino no tiene la estructura esperada.
// El mensaje envuelto nombra el elemento que falta.
var ErrPlantilla = errors.New("plantilla inválida")

// Par un concepto con su valor listo para escribir
type Par struct {
	Concepto string
	Valor    float64
}

// Filas a revisar al buscar encabezados de mes y el ancla TOTAL INGRESOS
const (
	maxFilasEncabezado = 15
	maxFilasAncla      = 100
)

// Columnas donde viven los textos de concepto, en orden de prioridad
var columnasConcepto = []int{2, 1, 3, 4}

// EscribirTodos escribe todos los pares en la columna del período de la
// hoja Resultado. La columna se resuelve o crea una sola vez aunque se
// escriban varios conceptos. Si alguna fila de concepto no aparece se
// aborta sin guardar, así el archivo queda intacto. El guardado ocurre
// una única vez al final.
func EscribirTodos(ruta string, p model.Periodo, pares []Par) error {
	wb, err := excelize.OpenFile(ruta)
	if err != nil {
		return fmt.Errorf("abrir plantilla %s: %w", ruta, err)
	}
	defer wb.Close()

	hoja, err := lector.BuscarHojaExacta(wb, "Resultado")
	if err != nil {
		return fmt.Errorf("%w: hoja Resultado no existe en %s", ErrPlantilla, ruta)
	}

	filas, err := wb.GetRows(hoja)
	if err != nil {
		return fmt.Errorf("leer hoja %s: %w", hoja, err)
	}

	colMes, err := resolverColumnaMes(wb, hoja, filas, p)
	if err != nil {
		return err
	}

	for _, par := range pares {
		filaConcepto := buscarFilaConcepto(filas, par.Concepto)
		if filaConcepto < 0 {
			return fmt.Errorf("%w: concepto %q no aparece en la hoja Resultado", ErrPlantilla, par.Concepto)
		}
		celda, err := excelize.CoordinatesToCellName(colMes, filaConcepto)
		if err != nil {
			return err
		}
		if err := wb.SetCellValue(hoja, celda, par.Valor); err != nil {
			return fmt.Errorf("escribir %s en %s: %w", par.Concepto, celda, err)
		}
		log.Printf("[INFO] %s -> %s = %.2f", par.Concepto, celda, par.Valor)
	}

	if err := wb.Save(); err != nil {
		return fmt.Errorf("guardar plantilla %s: %w", ruta, err)
	}
	return nil
}

// resolverColumnaMes busca la columna del período en las primeras filas
// y la crea si no existe. Correr de nuevo el mismo período encuentra la
// columna ya creada, no la duplica.
func resolverColumnaMes(wb *excelize.File, hoja string, filas [][]string, p model.Periodo) (int, error) {
	limite := limiteColumnas(filas)

	for fila := 1; fila <= maxFilasEncabezado; fila++ {
		for col := 1; col <= limite; col++ {
			celda, _ := excelize.CoordinatesToCellName(col, fila)
			if lector.EsEncabezadoMes(lector.LeerCelda(wb, hoja, celda), p) {
				return col, nil
			}
		}
	}
	return crearColumnaMes(wb, hoja, filas, p)
}

// crearColumnaMes inserta la columna del período clonando el formato de
// la columna de mes más a la derecha. Se copian solo estilos, nunca
// valores, para no arrastrar números viejos de otro mes.
func crearColumnaMes(wb *excelize.File, hoja string, filas [][]string, p model.Periodo) (int, error) {
	limite := limiteColumnas(filas)

	filaEnc, colClon := -1, -1
	for fila := 1; fila <= maxFilasEncabezado; fila++ {
		for col := 1; col <= limite; col++ {
			celda, _ := excelize.CoordinatesToCellName(col, fila)
			if lector.EsColumnaTipoMes(lector.LeerCelda(wb, hoja, celda)) && col > colClon {
				filaEnc, colClon = fila, col
			}
		}
	}

	if colClon < 0 {
		return crearColumnaTrasAncla(wb, hoja, filas, p)
	}

	nueva := colClon + 1
	nombreNueva, _ := excelize.ColumnNumberToName(nueva)
	if err := wb.InsertCols(hoja, nombreNueva, 1); err != nil {
		return 0, fmt.Errorf("insertar columna %s: %w", nombreNueva, err)
	}

	for fila := 1; fila <= len(filas); fila++ {
		origen, _ := excelize.CoordinatesToCellName(colClon, fila)
		destino, _ := excelize.CoordinatesToCellName(nueva, fila)
		estilo, err := wb.GetCellStyle(hoja, origen)
		if err != nil {
			continue
		}
		_ = wb.SetCellStyle(hoja, destino, destino, estilo)
	}

	encabezado, _ := excelize.CoordinatesToCellName(nueva, filaEnc)
	fecha := time.Date(p.Anyo, time.Month(p.Mes), 1, 0, 0, 0, 0, time.UTC)
	if err := wb.SetCellValue(hoja, encabezado, fecha); err != nil {
		return 0, fmt.Errorf("encabezado de mes %s: %w", encabezado, err)
	}
	log.Printf("[INFO] Columna %s creada para %s clonando formato de la columna %d", nombreNueva, p, colClon)
	return nueva, nil
}

// crearColumnaTrasAncla plantilla sin ninguna columna de mes: se inserta
// justo después del ancla TOTAL INGRESOS, que solo se acepta en las
// columnas A o B, o en la columna B si no hay ancla. El encabezado va
// en la primera fila con contenido.
func crearColumnaTrasAncla(wb *excelize.File, hoja string, filas [][]string, p model.Periodo) (int, error) {
	filaEnc := -1
	for i := 0; i < len(filas) && i < maxFilasEncabezado; i++ {
		for _, celda := range filas[i] {
			if strings.TrimSpace(celda) != "" {
				filaEnc = i + 1
				break
			}
		}
		if filaEnc > 0 {
			break
		}
	}
	if filaEnc < 0 {
		return 0, fmt.Errorf("%w: hoja Resultado vacía, sin fila de encabezados", ErrPlantilla)
	}

	nueva := 2
	for i := 0; i < len(filas) && i < maxFilasAncla; i++ {
		fila := filas[i]
		colAncla := -1
		for j := 0; j < 2 && j < len(fila); j++ {
			if strings.Contains(strings.ToUpper(fila[j]), "TOTAL INGRESOS") {
				colAncla = j + 1
				break
			}
		}
		if colAncla > 0 {
			nueva = colAncla + 1
			break
		}
	}

	nombreNueva, _ := excelize.ColumnNumberToName(nueva)
	if err := wb.InsertCols(hoja, nombreNueva, 1); err != nil {
		return 0, fmt.Errorf("insertar columna %s: %w", nombreNueva, err)
	}

	encabezado, _ := excelize.CoordinatesToCellName(nueva, filaEnc)
	fecha := time.Date(p.Anyo, time.Month(p.Mes), 1, 0, 0, 0, 0, time.UTC)
	if err := wb.SetCellValue(hoja, encabezado, fecha); err != nil {
		return 0, err
	}
	formato := "mmm-yy"
	estilo, err := wb.NewStyle(&excelize.Style{CustomNumFmt: &formato})
	if err == nil {
		_ = wb.SetCellStyle(hoja, encabezado, encabezado, estilo)
	}
	return nueva, nil
}

// buscarFilaConcepto recorre las columnas B, A, C y D buscando la celda
// del concepto, probando sus variantes y descartando las coincidencias
// excluidas. Devuelve la fila base 1, o -1.
func buscarFilaConcepto(filas [][]string, concepto string) int {
	for _, texto := range lector.TextosBusqueda(concepto) {
		objetivo := strings.ToUpper(texto)
		for _, col := range columnasConcepto {
			for i, fila := range filas {
				if col-1 >= len(fila) {
					continue
				}
				v := strings.ToUpper(strings.TrimSpace(fila[col-1]))
				if v == "" || !strings.Contains(v, objetivo) {
					continue
				}
				if !lector.CeldaValidaParaConcepto(v, concepto) {
					continue
				}
				return i + 1
			}
		}
	}
	return -1
}

// limiteColumnas ancho a revisar: lo ocupado más un margen para celdas
// con estilo pero sin valor
func limiteColumnas(filas [][]string) int {
	ancho := 0
	for _, fila := range filas {
		if len(fila) > ancho {
			ancho = len(fila)
		}
	}
	return ancho + 30
}
