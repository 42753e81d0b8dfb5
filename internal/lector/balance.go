package lector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// FiltroBalance filtros de fila sobre la tabla de balance. Campos vacíos
// no filtran. Se aplican en orden empresa, barra, medidor.
type FiltroBalance struct {
	Empresa string
	Barra   string
	Medidor string
}

// LectorBalance mantiene abierto el Balance_{aa}{mm}D.xlsm durante toda
// la corrida. Varios conceptos leen de la misma tabla, abrir el libro
// una sola vez evita pagar la carga del xlsm (pesa decenas de MB) por
// concepto.
type LectorBalance struct {
	wb    *excelize.File
	ruta  string
	hoja  string
	filas [][]string
	datos int // primera fila de datos, base 0
	cols  map[string]int
}

// Índices de columna por nombre lógico
const (
	colBarra   = "barra"
	colMonet   = "monetario"
	colEmpresa = "empresa"
	colFisico  = "fisico_kwh"
	colMedidor = "medidor"
)

// AbrirBalance abre el libro, resuelve la hoja Balance Valorizado y deja
// mapeadas las columnas. La columna monetario es obligatoria, sin ella
// la corrida completa no tiene sentido.
func AbrirBalance(ruta string) (*LectorBalance, error) {
	wb, err := excelize.OpenFile(ruta)
	if err != nil {
		return nil, fmt.Errorf("abrir balance %s: %w", filepath.Base(ruta), err)
	}

	hoja, err := BuscarHojaExacta(wb, "Balance Valorizado")
	if err != nil {
		// Algunos meses traen sufijos en el nombre de la hoja
		for _, h := range wb.GetSheetList() {
			n := normalizar(h)
			if strings.Contains(n, "balance") && strings.Contains(n, "valorizado") {
				hoja = h
				err = nil
				break
			}
		}
	}
	if err != nil {
		wb.Close()
		return nil, fmt.Errorf("hoja Balance Valorizado: %w", ErrNoEncontrado)
	}

	filas, err := FilasCrudas(wb, hoja)
	if err != nil {
		wb.Close()
		return nil, fmt.Errorf("leer hoja %s: %w", hoja, err)
	}

	idxEnc := DetectarFilaEncabezados(filas, []string{"barra", "monetario"}, 20)
	if idxEnc < 0 {
		wb.Close()
		return nil, fmt.Errorf("fila de encabezados en %s: %w", hoja, ErrNoEncontrado)
	}

	cols := mapearColumnasBalance(filas[idxEnc])
	if _, ok := cols[colMonet]; !ok {
		wb.Close()
		return nil, fmt.Errorf("columna monetario ausente en %s", hoja)
	}

	return &LectorBalance{
		wb:    wb,
		ruta:  ruta,
		hoja:  hoja,
		filas: filas,
		datos: idxEnc + 1,
		cols:  cols,
	}, nil
}

func mapearColumnasBalance(encabezados []string) map[string]int {
	cols := make(map[string]int)
	for i, enc := range encabezados {
		n := normalizarEncabezado(enc)
		switch {
		case n == "barra":
			cols[colBarra] = i
		case strings.Contains(n, "monetario"):
			if _, ya := cols[colMonet]; !ya {
				cols[colMonet] = i
			}
		case strings.Contains(n, "nombre_corto_empresa") || n == "empresa":
			cols[colEmpresa] = i
		case strings.Contains(n, "fisico") && strings.Contains(n, "kwh"):
			cols[colFisico] = i
		case strings.Contains(n, "medidor"):
			cols[colMedidor] = i
		}
	}
	return cols
}

// normalizarEncabezado minúsculas, espacios a guion bajo y sin tildes
func normalizarEncabezado(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	reemplazos := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")
	return reemplazos.Replace(s)
}

// Cerrar libera el libro. Seguro de llamar más de una vez.
func (l *LectorBalance) Cerrar() error {
	if l.wb == nil {
		return nil
	}
	err := l.wb.Close()
	l.wb = nil
	return err
}

// Ruta ruta del libro abierto
func (l *LectorBalance) Ruta() string { return l.ruta }

// Hoja nombre real de la hoja Balance Valorizado
func (l *LectorBalance) Hoja() string { return l.hoja }

// SumarMonetario suma la columna monetario de las filas que pasan el
// filtro. Valores no numéricos aportan 0.
func (l *LectorBalance) SumarMonetario(f FiltroBalance) (float64, error) {
	return l.sumar(colMonet, f)
}

// SumarFisicoKWh suma la columna física en kWh de las filas filtradas
func (l *LectorBalance) SumarFisicoKWh(f FiltroBalance) (float64, error) {
	return l.sumar(colFisico, f)
}

func (l *LectorBalance) sumar(col string, f FiltroBalance) (float64, error) {
	idxVal, ok := l.cols[col]
	if !ok {
		return 0, fmt.Errorf("columna %s: %w", col, ErrNoEncontrado)
	}
	if f.Empresa != "" {
		if _, ok := l.cols[colEmpresa]; !ok {
			return 0, fmt.Errorf("columna de empresa ausente, no se puede filtrar por %q", f.Empresa)
		}
	}

	var total float64
	for i := l.datos; i < len(l.filas); i++ {
		fila := l.filas[i]
		if !l.pasaFiltro(fila, f) {
			continue
		}
		if idxVal >= len(fila) {
			continue
		}
		if v, ok := ParseNumero(fila[idxVal]); ok {
			total += v
		}
	}
	return total, nil
}

// SumarVentaContratos suma la columna VENTA[CLP] de la hoja Contratos
// del mismo libro, filtrando por empresa y barra. Devuelve nil si el
// libro no trae hoja Contratos o columna de venta, lo cual es normal
// en meses antiguos.
func (l *LectorBalance) SumarVentaContratos(f FiltroBalance) (*float64, string, error) {
	hoja, err := BuscarHojaExacta(l.wb, "Contratos")
	if err != nil {
		return nil, "", nil
	}
	filas, err := FilasCrudas(l.wb, hoja)
	if err != nil {
		return nil, "", fmt.Errorf("leer hoja %s: %w", hoja, err)
	}

	idxEnc := DetectarFilaEncabezados(filas, []string{"venta"}, 20)
	if idxEnc < 0 {
		return nil, "", nil
	}

	idxVenta, idxEmpresa, idxBarra := -1, -1, -1
	for i, enc := range filas[idxEnc] {
		n := normalizarEncabezado(enc)
		switch {
		case strings.Contains(n, "venta") && strings.Contains(n, "clp"):
			idxVenta = i
		case strings.Contains(n, "empresa"):
			idxEmpresa = i
		case n == "barra":
			idxBarra = i
		}
	}
	if idxVenta < 0 {
		return nil, "", nil
	}

	coincide := func(idx int, fila []string, filtro string) bool {
		if filtro == "" {
			return true
		}
		if idx < 0 || idx >= len(fila) {
			return false
		}
		return model.NormalizarNombre(fila[idx]) == model.NormalizarNombre(filtro)
	}

	var total float64
	for i := idxEnc + 1; i < len(filas); i++ {
		fila := filas[i]
		if !coincide(idxEmpresa, fila, f.Empresa) || !coincide(idxBarra, fila, f.Barra) {
			continue
		}
		if idxVenta >= len(fila) {
			continue
		}
		if v, ok := ParseNumero(fila[idxVenta]); ok {
			total += v
		}
	}
	return &total, hoja, nil
}

func (l *LectorBalance) pasaFiltro(fila []string, f FiltroBalance) bool {
	coincide := func(col, filtro string) bool {
		if filtro == "" {
			return true
		}
		idx, ok := l.cols[col]
		if !ok || idx >= len(fila) {
			return false
		}
		return model.NormalizarNombre(fila[idx]) == model.NormalizarNombre(filtro)
	}
	return coincide(colEmpresa, f.Empresa) &&
		coincide(colBarra, f.Barra) &&
		coincide(colMedidor, f.Medidor)
}
