package lector

import "strings"

// Nombres canónicos de los conceptos del informe, tal como aparecen en
// la hoja Resultado de las plantillas de clientes.
const (
	ConceptoPotenciaFirme = "TOTAL INGRESOS POR POTENCIA FIRME CLP"
	ConceptoITPotencia    = "INGRESOS POR IT POTENCIA"
	ConceptoPotencia      = "INGRESOS POR POTENCIA"
	ConceptoEnergia       = "TOTAL INGRESOS POR ENERGIA CLP"
	ConceptoSSCC          = "TOTAL INGRESOS POR SSCC CLP"
	ConceptoCompraVentaGM = "Compra Venta Energia GM Holdings CLP"
	ConceptoImportacion   = "IMPORTACION MWh"
)

// VariantesConceptos nombres alternativos vistos en plantillas reales.
// Las plantillas de cada cliente escriben el mismo concepto con
// redacciones distintas.
var VariantesConceptos = map[string][]string{
	ConceptoITPotencia: {
		"IT POTENCIA",
		"INGRESOS IT POTENCIA",
		"02. IT POTENCIA",
		"INGRESOS POR IT",
		"IT Potencia",
		"Ingresos por IT Potencia",
		"IT/POTENCIA",
		"IT-POTENCIA",
		"POR IT POTENCIA",
		"ASIGNACION IT POTENCIA",
	},
	ConceptoPotencia: {
		"INGRESOS POTENCIA",
		"01. INGRESOS POR POTENCIA",
		"Ingresos por Potencia",
		"POR POTENCIA",
	},
}

// ExcluirAlBuscar al buscar un concepto se descartan celdas que además
// contengan estos textos. Evita confundir INGRESOS POR POTENCIA con
// TOTAL INGRESOS POR POTENCIA FIRME CLP, que son conceptos distintos.
var ExcluirAlBuscar = map[string][]string{
	ConceptoPotencia: {"FIRME"},
}

// TextosBusqueda el nombre canónico seguido de sus variantes, en orden
// de prioridad
func TextosBusqueda(concepto string) []string {
	textos := []string{concepto}
	return append(textos, VariantesConceptos[concepto]...)
}

// CeldaValidaParaConcepto indica si una celda que coincidió con una
// variante puede aceptarse, es decir no contiene ningún texto excluido
// para ese concepto.
func CeldaValidaParaConcepto(texto, concepto string) bool {
	mayus := strings.ToUpper(texto)
	for _, ex := range ExcluirAlBuscar[concepto] {
		if strings.Contains(mayus, strings.ToUpper(ex)) {
			return false
		}
	}
	return true
}
