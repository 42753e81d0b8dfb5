package lector

import (
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// Extractor corre las reglas de extracción de cada concepto sobre los
// libros ya descargados de un período. El balance llega abierto porque
// varios conceptos leen de él.
type Extractor struct {
	Periodo     model.Periodo
	Filtros     FiltroBalance
	CarpetaBase string
	Balance     *LectorBalance
}

// estrategia un intento de extracción. Valor nil significa que la
// estrategia no aplicó y se prueba la siguiente de la cadena.
type estrategia func() (valor *float64, archivo, hoja string, err error)

// extraer recorre la cadena y se queda con el primer valor presente.
// ErrNoEncontrado dentro de una estrategia pasa a la siguiente, otros
// errores cortan.
func (e *Extractor) extraer(concepto string, cadena []estrategia) (model.ResultadoExtraccion, error) {
	res := model.ResultadoExtraccion{Concepto: concepto}
	for _, est := range cadena {
		valor, archivo, hoja, err := est()
		if err != nil {
			if errors.Is(err, ErrNoEncontrado) {
				continue
			}
			return res, err
		}
		if valor != nil {
			res.Valor = valor
			res.Archivo = archivo
			res.Hoja = hoja
			return res, nil
		}
	}
	return res, nil
}

// Todos extrae los siete conceptos del informe en su orden canónico.
// Las ausencias quedan registradas en el resultado, no son error.
func (e *Extractor) Todos() ([]model.ResultadoExtraccion, error) {
	extractores := []func() (model.ResultadoExtraccion, error){
		e.PotenciaFirme,
		e.ITPotencia,
		e.Potencia,
		e.Energia,
		e.SSCC,
		e.CompraVentaGM,
		e.Importacion,
	}
	resultados := make([]model.ResultadoExtraccion, 0, len(extractores))
	for _, fn := range extractores {
		r, err := fn()
		if err != nil {
			return nil, err
		}
		if r.Encontrado() {
			log.Printf("[INFO] %s: %.2f (%s / %s)", r.Concepto, *r.Valor, filepath.Base(r.Archivo), r.Hoja)
		} else {
			log.Printf("[WARNING] %s: sin valor para %s", r.Concepto, e.Periodo)
		}
		resultados = append(resultados, r)
	}
	return resultados, nil
}

// PotenciaFirme lee el total por empresa del Anexo 02.b Potencia. Si el
// anexo no está publicado cae a la suma monetario del balance, filtrada
// igual que el informe principal (sin medidor).
func (e *Extractor) PotenciaFirme() (model.ResultadoExtraccion, error) {
	return e.extraer(ConceptoPotenciaFirme, []estrategia{
		func() (*float64, string, string, error) {
			return e.leerAnexoEmpresaTotal(nil, ConceptoPotenciaFirme)
		},
		func() (*float64, string, string, error) {
			total, err := e.Balance.SumarMonetario(FiltroBalance{
				Empresa: e.Filtros.Empresa,
				Barra:   e.Filtros.Barra,
			})
			if err != nil {
				return nil, "", "", err
			}
			log.Printf("[INFO] Anexo Potencia no encontrado, usando Balance Valorizado: %.2f", total)
			return &total, e.Balance.Ruta(), e.Balance.Hoja(), nil
		},
	})
}

// ITPotencia hoja "02.IT POTENCIA {Mes}-{AA} def" del anexo
func (e *Extractor) ITPotencia() (model.ResultadoExtraccion, error) {
	return e.extraer(ConceptoITPotencia, []estrategia{
		func() (*float64, string, string, error) {
			return e.leerAnexoEmpresaTotal([]string{"it", "potencia"}, ConceptoITPotencia)
		},
	})
}

// Potencia hoja "01.BALANCE POTENCIA {Mes}-{AA} def" del anexo. Las
// exclusiones evitan tomar la fila del concepto FIRME.
func (e *Extractor) Potencia() (model.ResultadoExtraccion, error) {
	return e.extraer(ConceptoPotencia, []estrategia{
		func() (*float64, string, string, error) {
			return e.leerAnexoEmpresaTotal([]string{"balance", "potencia"}, ConceptoPotencia)
		},
	})
}

// Energia suma monetario del balance con todos los filtros, incluido el
// medidor cuando viene.
func (e *Extractor) Energia() (model.ResultadoExtraccion, error) {
	return e.extraer(ConceptoEnergia, []estrategia{
		func() (*float64, string, string, error) {
			total, err := e.Balance.SumarMonetario(e.Filtros)
			if err != nil {
				return nil, "", "", err
			}
			return &total, e.Balance.Ruta(), e.Balance.Hoja(), nil
		},
	})
}

// SSCC cuadros de pago de servicios complementarios: hoja CPI_, filtro
// Nemotecnico Deudor igual a la empresa, suma de Monto. Sin empresa el
// concepto no aplica.
func (e *Extractor) SSCC() (model.ResultadoExtraccion, error) {
	if e.Filtros.Empresa == "" {
		return model.ResultadoExtraccion{Concepto: ConceptoSSCC}, nil
	}
	return e.extraer(ConceptoSSCC, []estrategia{e.leerCuadrosPagoSSCC})
}

// CompraVentaGM hoja Contratos del balance, columna VENTA[CLP]
func (e *Extractor) CompraVentaGM() (model.ResultadoExtraccion, error) {
	return e.extraer(ConceptoCompraVentaGM, []estrategia{
		func() (*float64, string, string, error) {
			total, hoja, err := e.Balance.SumarVentaContratos(FiltroBalance{
				Empresa: e.Filtros.Empresa,
				Barra:   e.Filtros.Barra,
			})
			if err != nil {
				return nil, "", "", err
			}
			return total, e.Balance.Ruta(), hoja, nil
		},
	})
}

// Importacion valor absoluto de la suma física en kWh pasada a MWh
func (e *Extractor) Importacion() (model.ResultadoExtraccion, error) {
	return e.extraer(ConceptoImportacion, []estrategia{
		func() (*float64, string, string, error) {
			total, err := e.Balance.SumarFisicoKWh(e.Filtros)
			if err != nil {
				if errors.Is(err, ErrNoEncontrado) {
					log.Printf("[WARNING] columna fisico_kwh ausente en %s", e.Balance.Hoja())
					return nil, "", "", nil
				}
				return nil, "", "", err
			}
			mwh := math.Abs(total) / 1000.0
			return &mwh, e.Balance.Ruta(), e.Balance.Hoja(), nil
		},
	})
}

// leerAnexoEmpresaTotal abre el Anexo de Potencia, resuelve la hoja y
// busca la fila de la empresa en una tabla Empresa | ... | TOTAL. Con
// requeridosHoja nil se prueban todas las hojas en orden natural. Si la
// fila no aparece se intenta el barrido por texto del concepto.
func (e *Extractor) leerAnexoEmpresaTotal(requeridosHoja []string, concepto string) (*float64, string, string, error) {
	ruta, err := BuscarArchivo(e.Periodo, model.TipoPotencia, e.CarpetaBase)
	if err != nil {
		return nil, "", "", err
	}
	wb, err := excelize.OpenFile(ruta)
	if err != nil {
		return nil, "", "", fmt.Errorf("abrir anexo %s: %w", filepath.Base(ruta), err)
	}
	defer wb.Close()

	var hojas []string
	if requeridosHoja == nil {
		hojas = wb.GetSheetList()
	} else {
		hoja, err := ResolverHoja(wb, requeridosHoja, e.Periodo)
		if err != nil {
			return nil, "", "", err
		}
		hojas = []string{hoja}
	}

	for _, hoja := range hojas {
		filas, err := FilasCrudas(wb, hoja)
		if err != nil {
			continue
		}
		if v := buscarFilaEmpresaTotal(filas, e.Filtros.Empresa); v != nil {
			return v, ruta, hoja, nil
		}
		if requeridosHoja != nil {
			if v := buscarValorPorTexto(filas, concepto); v != nil {
				return v, ruta, hoja, nil
			}
		}
	}
	return nil, "", "", nil
}

// leerCuadrosPagoSSCC localiza el libro CUADROS_PAGO y suma Monto en la
// primera hoja CPI_ para el deudor igual a la empresa
func (e *Extractor) leerCuadrosPagoSSCC() (*float64, string, string, error) {
	ruta, err := BuscarArchivo(e.Periodo, model.TipoSSCC, e.CarpetaBase)
	if err != nil {
		return nil, "", "", err
	}
	wb, err := excelize.OpenFile(ruta)
	if err != nil {
		return nil, "", "", fmt.Errorf("abrir cuadros SSCC %s: %w", filepath.Base(ruta), err)
	}
	defer wb.Close()

	var hoja string
	for _, h := range wb.GetSheetList() {
		if strings.HasPrefix(strings.ToUpper(h), "CPI_") {
			hoja = h
			break
		}
	}
	if hoja == "" {
		return nil, "", "", nil
	}

	filas, err := FilasCrudas(wb, hoja)
	if err != nil {
		return nil, "", "", fmt.Errorf("leer hoja %s: %w", hoja, err)
	}
	idxEnc := DetectarFilaEncabezados(filas, []string{"deudor", "monto"}, 20)
	if idxEnc < 0 {
		return nil, "", "", nil
	}

	idxDeudor, idxMonto := -1, -1
	for i, enc := range filas[idxEnc] {
		n := normalizarEncabezado(enc)
		switch {
		case strings.Contains(n, "nemotecnico") && strings.Contains(n, "deudor"):
			idxDeudor = i
		case strings.Contains(n, "monto"):
			if idxMonto < 0 {
				idxMonto = i
			}
		}
	}
	if idxDeudor < 0 || idxMonto < 0 {
		return nil, "", "", nil
	}

	empresa := model.NormalizarNombre(e.Filtros.Empresa)
	var total float64
	for i := idxEnc + 1; i < len(filas); i++ {
		fila := filas[i]
		if idxDeudor >= len(fila) || model.NormalizarNombre(fila[idxDeudor]) != empresa {
			continue
		}
		if idxMonto >= len(fila) {
			continue
		}
		if v, ok := ParseNumero(fila[idxMonto]); ok {
			total += v
		}
	}
	return &total, ruta, hoja, nil
}

// buscarFilaEmpresaTotal busca una tabla cuyo encabezado es la celda
// literal USUARIOS o EMPRESA, empata la fila de la empresa con
// comparación normalizada en ambos sentidos y devuelve el valor de la
// columna TOTAL más a la derecha (o el último número de la fila si no
// hay columna TOTAL).
func buscarFilaEmpresaTotal(filas [][]string, empresa string) *float64 {
	if empresa == "" {
		return nil
	}
	for i, fila := range filas {
		colEmp := primeraNoVacia(fila)
		if colEmp < 0 {
			continue
		}
		marca := strings.ToUpper(strings.TrimSpace(fila[colEmp]))
		if marca != "USUARIOS" && marca != "EMPRESA" {
			continue
		}

		colTotal := -1
		for j := colEmp + 1; j < len(fila); j++ {
			if strings.EqualFold(strings.TrimSpace(fila[j]), "TOTAL") {
				colTotal = j
			}
		}

		for k := i + 1; k < len(filas); k++ {
			datos := filas[k]
			if colEmp >= len(datos) || !empresasCoinciden(datos[colEmp], empresa) {
				continue
			}
			if colTotal >= 0 && colTotal < len(datos) {
				if v, ok := ParseNumero(datos[colTotal]); ok {
					return &v
				}
			}
			// Sin columna TOTAL: último número de la fila
			for j := len(datos) - 1; j > colEmp; j-- {
				if v, ok := ParseNumero(datos[j]); ok {
					return &v
				}
			}
		}
	}
	return nil
}

// buscarValorPorTexto barre la hoja buscando una celda con alguna
// variante del concepto (respetando exclusiones) y toma el primer
// número a su derecha.
func buscarValorPorTexto(filas [][]string, concepto string) *float64 {
	for _, texto := range TextosBusqueda(concepto) {
		objetivo := strings.ToUpper(texto)
		for _, fila := range filas {
			for j, celda := range fila {
				v := strings.ToUpper(strings.TrimSpace(celda))
				if v == "" || !strings.Contains(v, objetivo) {
					continue
				}
				if !CeldaValidaParaConcepto(v, concepto) {
					continue
				}
				for k := j + 1; k < len(fila); k++ {
					if num, ok := ParseNumero(fila[k]); ok {
						return &num
					}
				}
			}
		}
	}
	return nil
}

// empresasCoinciden comparación normalizada con tolerancia a
// abreviaciones: basta que un nombre contenga al otro
func empresasCoinciden(celda, filtro string) bool {
	a := model.NormalizarNombre(celda)
	b := model.NormalizarNombre(filtro)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func primeraNoVacia(fila []string) int {
	for i, c := range fila {
		if strings.TrimSpace(c) != "" {
			return i
		}
	}
	return -1
}
