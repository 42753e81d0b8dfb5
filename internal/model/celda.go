package model

import "time"

// TipoCelda etiqueta del valor de una celda
type TipoCelda int

const (
	CeldaVacia TipoCelda = iota
	CeldaNumero
	CeldaTexto
	CeldaFecha
)

// Celda valor de celda con tipo explícito. Las celdas de los archivos del
// Coordinador pueden venir como fecha, número o texto según quién las
// escribió; toda la lógica de detección decide sobre la etiqueta, no sobre
// el tipo dinámico.
type Celda struct {
	Tipo   TipoCelda
	Numero float64
	Texto  string
	Fecha  time.Time
}

// CeldaNum celda numérica
func CeldaNum(v float64) Celda {
	return Celda{Tipo: CeldaNumero, Numero: v}
}

// CeldaTxt celda de texto
func CeldaTxt(s string) Celda {
	return Celda{Tipo: CeldaTexto, Texto: s}
}

// CeldaDeFecha celda de fecha
func CeldaDeFecha(t time.Time) Celda {
	return Celda{Tipo: CeldaFecha, Fecha: t}
}

// EsVacia indica si la celda no tiene valor
func (c Celda) EsVacia() bool {
	return c.Tipo == CeldaVacia
}

// ResultadoExtraccion resultado de la extracción de un concepto
type ResultadoExtraccion struct {
	Concepto string   `json:"concepto"`
	Valor    *float64 `json:"valor"` // nil = concepto no encontrado
	Archivo  string   `json:"archivo,omitempty"`
	Hoja     string   `json:"hoja,omitempty"`
}

// Encontrado indica si el concepto tiene valor
func (r ResultadoExtraccion) Encontrado() bool {
	return r.Valor != nil
}
