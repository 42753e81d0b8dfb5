package model

import (
	"fmt"
	"strings"
)

// MesesNombre nombre completo de cada mes (1-12), como aparece en las rutas PLABACOM
var MesesNombre = map[int]string{
	1:  "Enero",
	2:  "Febrero",
	3:  "Marzo",
	4:  "Abril",
	5:  "Mayo",
	6:  "Junio",
	7:  "Julio",
	8:  "Agosto",
	9:  "Septiembre",
	10: "Octubre",
	11: "Noviembre",
	12: "Diciembre",
}

// MesesAbrev abreviatura de tres letras usada en nombres de hoja y encabezados (ene-26, dic-25)
var MesesAbrev = map[int]string{
	1:  "ene",
	2:  "feb",
	3:  "mar",
	4:  "abr",
	5:  "may",
	6:  "jun",
	7:  "jul",
	8:  "ago",
	9:  "sep",
	10: "oct",
	11: "nov",
	12: "dic",
}

// Periodo un ciclo de informe (año, mes)
type Periodo struct {
	Anyo int `json:"anyo"`
	Mes  int `json:"mes"`
}

// Validar verifica que el mes esté en rango
func (p Periodo) Validar() error {
	if p.Mes < 1 || p.Mes > 12 {
		return fmt.Errorf("mes inválido: %d (debe estar entre 1 y 12)", p.Mes)
	}
	if p.Anyo < 2000 || p.Anyo > 2100 {
		return fmt.Errorf("año inválido: %d", p.Anyo)
	}
	return nil
}

// AnyoAbrev año en dos dígitos ("2025" -> "25")
func (p Periodo) AnyoAbrev() string {
	s := fmt.Sprintf("%d", p.Anyo)
	return s[len(s)-2:]
}

// MesStr mes con cero a la izquierda ("01".."12")
func (p Periodo) MesStr() string {
	return fmt.Sprintf("%02d", p.Mes)
}

// NombreMes nombre completo del mes
func (p Periodo) NombreMes() string {
	return MesesNombre[p.Mes]
}

// AbrevMes abreviatura de tres letras
func (p Periodo) AbrevMes() string {
	return MesesAbrev[p.Mes]
}

// EncabezadoMesCorto encabezado de columna "abr-25"
func (p Periodo) EncabezadoMesCorto() string {
	return fmt.Sprintf("%s-%s", p.AbrevMes(), p.AnyoAbrev())
}

// EncabezadoMesLargo encabezado de columna "abr-2025"
func (p Periodo) EncabezadoMesLargo() string {
	return fmt.Sprintf("%s-%d", p.AbrevMes(), p.Anyo)
}

// Codificaciones todas las formas en que año/mes aparecen codificados en
// nombres de hoja de los archivos del Coordinador. La comparación se hace
// en minúsculas y sin espacios.
func (p Periodo) Codificaciones() []string {
	return []string{
		fmt.Sprintf("%d", p.Anyo),
		p.AnyoAbrev(),
		p.AbrevMes(),
		fmt.Sprintf("%s-%s", p.AbrevMes(), p.AnyoAbrev()),
		fmt.Sprintf("%s%s", p.AbrevMes(), p.AnyoAbrev()),
	}
}

func (p Periodo) String() string {
	return fmt.Sprintf("%s %d", p.NombreMes(), p.Anyo)
}

// TipoArchivo tipo de archivo ZIP publicado por el regulador
type TipoArchivo string

const (
	TipoEnergiaResultados   TipoArchivo = "energia_resultados"
	TipoEnergiaAntecedentes TipoArchivo = "energia_antecedentes"
	TipoSSCC                TipoArchivo = "sscc"
	TipoPotencia            TipoArchivo = "potencia"
)

// DescripcionesTipo descripción mostrada por tipo de archivo
var DescripcionesTipo = map[TipoArchivo]string{
	TipoEnergiaResultados:   "01 Resultados (Energía)",
	TipoEnergiaAntecedentes: "02 Antecedentes de Cálculo",
	TipoSSCC:                "Balance SSCC",
	TipoPotencia:            "Balance Psuf (Potencia)",
}

// Descripcion descripción legible del tipo
func (t TipoArchivo) Descripcion() string {
	if d, ok := DescripcionesTipo[t]; ok {
		return d
	}
	return string(t)
}

// Valido indica si el tipo es uno de los conocidos
func (t TipoArchivo) Valido() bool {
	_, ok := DescripcionesTipo[t]
	return ok
}

// NormalizarNombre normaliza un nombre de empresa/barra/medidor para
// comparación: mayúsculas y espacios como guiones bajos.
func NormalizarNombre(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	return strings.ReplaceAll(s, " ", "_")
}
