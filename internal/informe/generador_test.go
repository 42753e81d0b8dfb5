package informe

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/descarga"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/lector"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// zipConBalance arma en memoria el ZIP de resultados de energía con un
// libro de balance adentro
func zipConBalance(t *testing.T) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()
	if err := wb.SetSheetName("Sheet1", "Balance Valorizado"); err != nil {
		t.Fatalf("renombrar hoja: %v", err)
	}
	filas := [][]interface{}{
		{"BALANCE DE TRANSFERENCIAS ECONÓMICAS"},
		{},
		{"barra", "nombre_corto_empresa", "monetario", "fisico_kwh", "nombre_medidor"},
		{"RENAICO_066", "VIENTOS_DE_RENAICO", 100000000.0, -1500000.0, "MED_1"},
		{"RENAICO_066", "VIENTOS_DE_RENAICO", 23456789.0, -500000.0, "MED_2"},
		{"ALMAGRO_110", "OTRA_EMPRESA", 555555.0, 2000.0, "MED_3"},
	}
	for i, fila := range filas {
		celda, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := wb.SetSheetRow("Balance Valorizado", celda, &fila); err != nil {
			t.Fatalf("fila %d: %v", i+1, err)
		}
	}
	libro, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("serializar libro: %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("Balance_2512D.xlsm")
	if err != nil {
		t.Fatalf("entrada zip: %v", err)
	}
	if _, err := w.Write(libro.Bytes()); err != nil {
		t.Fatalf("escribir libro: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cerrar zip: %v", err)
	}
	return buf.Bytes()
}

func plantillaPrueba(t *testing.T, dir string) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	if err := wb.SetSheetName("Sheet1", "Resultado"); err != nil {
		t.Fatalf("renombrar hoja: %v", err)
	}
	_ = wb.SetCellValue("Resultado", "B1", "Concepto")
	_ = wb.SetCellValue("Resultado", "C1", "oct-25")
	_ = wb.SetCellValue("Resultado", "D1", "nov-25")
	conceptos := []string{
		"TOTAL INGRESOS POR POTENCIA FIRME CLP",
		"INGRESOS POR IT POTENCIA",
		"INGRESOS POR POTENCIA",
		"TOTAL INGRESOS POR ENERGIA CLP",
		"IMPORTACION MWh",
	}
	for i, c := range conceptos {
		celda, _ := excelize.CoordinatesToCellName(2, i+2)
		_ = wb.SetCellValue("Resultado", celda, c)
	}
	ruta := filepath.Join(dir, "plantilla.xlsx")
	if err := wb.SaveAs(ruta); err != nil {
		t.Fatalf("guardar plantilla: %v", err)
	}
	return ruta
}

// servidorPlabacom sirve el ZIP de energía y responde 403 para el resto,
// como cuando el Coordinador aún no publica esos archivos
func servidorPlabacom(t *testing.T, zipEnergia []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/Energia/") {
			w.Write(zipEnergia)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
}

func TestProcesarConRespaldoDeBalance(t *testing.T) {
	srv := servidorPlabacom(t, zipConBalance(t))
	defer srv.Close()

	dir := t.TempDir()
	carpetaBD := filepath.Join(dir, "bd_data")
	plantilla := plantillaPrueba(t, dir)
	destino := filepath.Join(dir, "informe_generado.xlsx")

	g := &Generador{
		Descargas: descarga.NuevoCliente(srv.URL + "/"),
		CarpetaBD: carpetaBD,
	}

	resumen, err := g.Procesar(context.Background(), Solicitud{
		Anyo:      2025,
		Mes:       12,
		Empresa:   "VIENTOS_DE_RENAICO",
		Plantilla: plantilla,
		Destino:   destino,
	})
	if err != nil {
		t.Fatalf("Procesar: %v", err)
	}

	if len(resumen.Resultados) != 7 {
		t.Fatalf("resultados = %d", len(resumen.Resultados))
	}

	porConcepto := make(map[string]model.ResultadoExtraccion)
	for _, r := range resumen.Resultados {
		porConcepto[r.Concepto] = r
	}

	// Sin anexo de potencia el concepto obligatorio usa el respaldo del
	// balance filtrado por empresa
	firme := porConcepto[lector.ConceptoPotenciaFirme]
	if !firme.Encontrado() || *firme.Valor != 123456789.0 {
		t.Fatalf("potencia firme = %+v", firme)
	}

	// Los conceptos que solo viven en libros no publicados se omiten
	for _, concepto := range []string{lector.ConceptoITPotencia, lector.ConceptoPotencia, lector.ConceptoSSCC} {
		if porConcepto[concepto].Encontrado() {
			t.Fatalf("%s no debía tener valor", concepto)
		}
		for _, escrito := range resumen.Escritos {
			if escrito == concepto {
				t.Fatalf("%s no debía escribirse", concepto)
			}
		}
	}

	// El valor del respaldo queda escrito en la columna nueva de dic-25
	wb, err := excelize.OpenFile(destino)
	if err != nil {
		t.Fatalf("abrir destino: %v", err)
	}
	defer wb.Close()
	enc := lector.LeerCelda(wb, "Resultado", "E1")
	if !lector.EsEncabezadoMes(enc, model.Periodo{Anyo: 2025, Mes: 12}) {
		t.Fatalf("E1 = %+v, se esperaba encabezado de dic 2025", enc)
	}
	v, _ := wb.GetCellValue("Resultado", "E2")
	if v != "123456789" {
		t.Fatalf("E2 = %q", v)
	}
}

func TestProcesarPeriodoNoPublicado(t *testing.T) {
	// Todo responde 403: el balance obligatorio no está y la corrida se
	// aborta sin tocar la plantilla
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	plantilla := plantillaPrueba(t, dir)
	destino := filepath.Join(dir, "informe.xlsx")

	g := &Generador{
		Descargas: descarga.NuevoCliente(srv.URL + "/"),
		CarpetaBD: filepath.Join(dir, "bd_data"),
	}

	_, err := g.Procesar(context.Background(), Solicitud{
		Anyo: 2026, Mes: 1,
		Plantilla: plantilla,
		Destino:   destino,
	})
	if !errors.Is(err, descarga.ErrNoDisponible) {
		t.Fatalf("err = %v, se esperaba ErrNoDisponible", err)
	}
	if _, errStat := excelize.OpenFile(destino); errStat == nil {
		t.Fatal("la plantilla destino no debía crearse")
	}
}

func TestProcesarPeriodoInvalido(t *testing.T) {
	g := &Generador{Descargas: descarga.NuevoCliente("")}
	if _, err := g.Procesar(context.Background(), Solicitud{Anyo: 2025, Mes: 13, Plantilla: "p", Destino: "d"}); err == nil {
		t.Fatal("se esperaba error por mes inválido")
	}
}
