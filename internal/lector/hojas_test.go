package lector

import (
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

func libroConHojas(t *testing.T, nombres ...string) *excelize.File {
	t.Helper()
	wb := excelize.NewFile()
	for i, nombre := range nombres {
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", nombre); err != nil {
				t.Fatalf("renombrar hoja: %v", err)
			}
			continue
		}
		if _, err := wb.NewSheet(nombre); err != nil {
			t.Fatalf("crear hoja %s: %v", nombre, err)
		}
	}
	return wb
}

func TestResolverHoja(t *testing.T) {
	p := model.Periodo{Anyo: 2025, Mes: 4}
	wb := libroConHojas(t,
		"Resumen",
		"02.IT POTENCIA Mar-23 def",
		"02.IT POTENCIA Abr-25 def",
		"01.BALANCE POTENCIA Abr-25 def",
	)
	defer wb.Close()

	hoja, err := ResolverHoja(wb, []string{"it", "potencia"}, p)
	if err != nil {
		t.Fatalf("ResolverHoja: %v", err)
	}
	if hoja != "02.IT POTENCIA Abr-25 def" {
		t.Fatalf("hoja = %q", hoja)
	}

	hoja, err = ResolverHoja(wb, []string{"balance", "potencia"}, p)
	if err != nil {
		t.Fatalf("ResolverHoja balance: %v", err)
	}
	if hoja != "01.BALANCE POTENCIA Abr-25 def" {
		t.Fatalf("hoja balance = %q", hoja)
	}

	if _, err := ResolverHoja(wb, []string{"sscc"}, p); !errors.Is(err, ErrNoEncontrado) {
		t.Fatalf("err = %v, se esperaba ErrNoEncontrado", err)
	}

	// El período equivocado no debe calzar aunque el texto requerido esté
	if _, err := ResolverHoja(wb, []string{"it", "potencia"}, model.Periodo{Anyo: 2024, Mes: 11}); !errors.Is(err, ErrNoEncontrado) {
		t.Fatalf("período equivocado: err = %v", err)
	}
}

func TestBuscarHojaExacta(t *testing.T) {
	wb := libroConHojas(t, "Portada", "BALANCE VALORIZADO")
	defer wb.Close()

	hoja, err := BuscarHojaExacta(wb, "Balance Valorizado")
	if err != nil {
		t.Fatalf("BuscarHojaExacta: %v", err)
	}
	if hoja != "BALANCE VALORIZADO" {
		t.Fatalf("hoja = %q", hoja)
	}
}

func TestDetectarFilaEncabezados(t *testing.T) {
	filas := [][]string{
		{"Balance Valorizado del SEN"},
		{""},
		{"barra", "nombre_corto_empresa", "monetario", "fisico_kwh"},
		{"ALMAGRO_110", "ACME", "100", "5"},
	}
	if got := DetectarFilaEncabezados(filas, []string{"barra", "monetario"}, 15); got != 2 {
		t.Fatalf("fila de encabezados = %d, se esperaba 2", got)
	}
	if got := DetectarFilaEncabezados(filas, []string{"inexistente"}, 15); got != -1 {
		t.Fatalf("clave inexistente = %d, se esperaba -1", got)
	}
}

func TestLeerCeldaTipos(t *testing.T) {
	wb := libroConHojas(t, "Datos")
	defer wb.Close()

	if err := wb.SetCellValue("Datos", "A1", 123.45); err != nil {
		t.Fatalf("A1: %v", err)
	}
	if err := wb.SetCellValue("Datos", "A2", "texto libre"); err != nil {
		t.Fatalf("A2: %v", err)
	}
	if err := wb.SetCellValue("Datos", "A3", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("A3: %v", err)
	}

	if c := LeerCelda(wb, "Datos", "A1"); c.Tipo != model.CeldaNumero || c.Numero != 123.45 {
		t.Fatalf("A1 = %+v", c)
	}
	if c := LeerCelda(wb, "Datos", "A2"); c.Tipo != model.CeldaTexto || c.Texto != "texto libre" {
		t.Fatalf("A2 = %+v", c)
	}
	c := LeerCelda(wb, "Datos", "A3")
	if c.Tipo != model.CeldaFecha {
		t.Fatalf("A3 = %+v, se esperaba fecha", c)
	}
	if c.Fecha.Year() != 2025 || c.Fecha.Month() != 4 {
		t.Fatalf("A3 fecha = %v", c.Fecha)
	}
	if c := LeerCelda(wb, "Datos", "Z99"); !c.EsVacia() {
		t.Fatalf("Z99 = %+v, se esperaba vacía", c)
	}
}

func TestEsEncabezadoMes(t *testing.T) {
	p := model.Periodo{Anyo: 2025, Mes: 4}

	casos := []struct {
		celda model.Celda
		es    bool
	}{
		{model.CeldaDeFecha(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)), true},
		{model.CeldaDeFecha(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)), false},
		{model.CeldaTxt("abr-25"), true},
		{model.CeldaTxt("Abr-2025"), true},
		{model.CeldaTxt("mar-25"), false},
		{model.CeldaNum(45748), false},
		{model.Celda{}, false},
	}
	for _, c := range casos {
		if got := EsEncabezadoMes(c.celda, p); got != c.es {
			t.Fatalf("EsEncabezadoMes(%+v) = %v, se esperaba %v", c.celda, got, c.es)
		}
	}
}

func TestEsColumnaTipoMes(t *testing.T) {
	casos := []struct {
		celda model.Celda
		es    bool
	}{
		{model.CeldaDeFecha(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)), true},
		{model.CeldaTxt("oct-25"), true},
		{model.CeldaTxt("dic 2025"), true},
		{model.CeldaTxt("TOTAL INGRESOS"), false},
		{model.CeldaTxt("octubre"), false},
		{model.Celda{}, false},
	}
	for _, c := range casos {
		if got := EsColumnaTipoMes(c.celda); got != c.es {
			t.Fatalf("EsColumnaTipoMes(%+v) = %v, se esperaba %v", c.celda, got, c.es)
		}
	}
}
