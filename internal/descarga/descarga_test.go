package descarga

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

func zipEnMemoria(t *testing.T, archivos map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for nombre, contenido := range archivos {
		w, err := zw.Create(nombre)
		if err != nil {
			t.Fatalf("entrada %s: %v", nombre, err)
		}
		if _, err := w.Write([]byte(contenido)); err != nil {
			t.Fatalf("escribir %s: %v", nombre, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cerrar zip: %v", err)
	}
	return buf.Bytes()
}

func TestDescargar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("contenido descargado"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	destino := filepath.Join(dir, "archivo.zip")
	c := NuevoCliente(srv.URL + "/")

	if err := c.Descargar(context.Background(), srv.URL+"/x.zip", destino); err != nil {
		t.Fatalf("Descargar: %v", err)
	}
	data, err := os.ReadFile(destino)
	if err != nil {
		t.Fatalf("leer destino: %v", err)
	}
	if string(data) != "contenido descargado" {
		t.Fatalf("contenido = %q", data)
	}
	// No deben quedar temporales
	if _, err := os.Stat(destino + ".part"); !os.IsNotExist(err) {
		t.Fatal("quedó el archivo .part")
	}
}

func TestDescargar403EsNoDisponible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NuevoCliente(srv.URL + "/")
	err := c.Descargar(context.Background(), srv.URL+"/x.zip", filepath.Join(t.TempDir(), "x.zip"))
	if !errors.Is(err, ErrNoDisponible) {
		t.Fatalf("err = %v, se esperaba ErrNoDisponible", err)
	}
}

func TestDescargarOtroErrorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NuevoCliente(srv.URL + "/")
	err := c.Descargar(context.Background(), srv.URL+"/x.zip", filepath.Join(t.TempDir(), "x.zip"))
	if err == nil || errors.Is(err, ErrNoDisponible) {
		t.Fatalf("err = %v, se esperaba error HTTP distinto de no disponible", err)
	}
}

func TestBuscarZipExistente(t *testing.T) {
	dir := t.TempDir()
	p := model.Periodo{Anyo: 2025, Mes: 4}
	nombre := "PLABACOM_2025_4_Abril_Energia_Definitivo_v_1_01 Resultados_2504_BD01.zip"
	if err := os.WriteFile(filepath.Join(dir, nombre), []byte("x"), 0644); err != nil {
		t.Fatalf("crear zip: %v", err)
	}

	got := BuscarZipExistente(p, model.TipoEnergiaResultados, dir)
	if filepath.Base(got) != nombre {
		t.Fatalf("BuscarZipExistente = %q", got)
	}
	if got := BuscarZipExistente(p, model.TipoSSCC, dir); got != "" {
		t.Fatalf("tipo sin zip = %q, se esperaba vacío", got)
	}
	if got := BuscarZipExistente(model.Periodo{Anyo: 2025, Mes: 5}, model.TipoEnergiaResultados, dir); got != "" {
		t.Fatalf("otro período = %q, se esperaba vacío", got)
	}
}

func TestDescargarYDescomprimir(t *testing.T) {
	contenidoZip := zipEnMemoria(t, map[string]string{"Balance_2504D.xlsm": "datos"})
	var solicitudes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		solicitudes++
		if !strings.Contains(r.URL.Path, "PLABACOM/2025/04_Abril/Energia") {
			t.Errorf("ruta inesperada: %s", r.URL.Path)
		}
		w.Write(contenidoZip)
	}))
	defer srv.Close()

	carpetaBD := t.TempDir()
	c := NuevoCliente(srv.URL + "/")
	p := model.Periodo{Anyo: 2025, Mes: 4}

	rutaZip, carpeta, err := c.DescargarYDescomprimir(context.Background(), p, model.TipoEnergiaResultados, carpetaBD)
	if err != nil {
		t.Fatalf("DescargarYDescomprimir: %v", err)
	}
	if _, err := os.Stat(rutaZip); err != nil {
		t.Fatalf("zip descargado: %v", err)
	}
	if _, err := os.Stat(filepath.Join(carpeta, "Balance_2504D.xlsm")); err != nil {
		t.Fatalf("libro extraído: %v", err)
	}

	// La segunda corrida reutiliza el ZIP ya descargado
	if _, _, err := c.DescargarYDescomprimir(context.Background(), p, model.TipoEnergiaResultados, carpetaBD); err != nil {
		t.Fatalf("segunda corrida: %v", err)
	}
	if solicitudes != 1 {
		t.Fatalf("solicitudes HTTP = %d, se esperaba 1", solicitudes)
	}
}
