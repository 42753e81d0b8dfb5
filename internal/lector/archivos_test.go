package lector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

func crearArchivo(t *testing.T, partes ...string) string {
	t.Helper()
	ruta := filepath.Join(partes...)
	if err := os.MkdirAll(filepath.Dir(ruta), 0755); err != nil {
		t.Fatalf("crear carpeta: %v", err)
	}
	if err := os.WriteFile(ruta, []byte("x"), 0644); err != nil {
		t.Fatalf("crear archivo: %v", err)
	}
	return ruta
}

func TestBuscarArchivoCarpetaExacta(t *testing.T) {
	base := t.TempDir()
	p := model.Periodo{Anyo: 2025, Mes: 4}
	esperado := crearArchivo(t, base, "01 Resultados_2504_BD01", "Balance_2504D.xlsm")

	got, err := BuscarArchivo(p, model.TipoEnergiaResultados, base)
	if err != nil {
		t.Fatalf("BuscarArchivo: %v", err)
	}
	if got != esperado {
		t.Fatalf("ruta = %q, se esperaba %q", got, esperado)
	}
}

func TestBuscarArchivoSubcarpetaAnidada(t *testing.T) {
	base := t.TempDir()
	p := model.Periodo{Anyo: 2025, Mes: 4}
	esperado := crearArchivo(t, base, "01 Resultados_2504_BD01", "interna", "mas", "Balance_2504D.xlsm")

	got, err := BuscarArchivo(p, model.TipoEnergiaResultados, base)
	if err != nil {
		t.Fatalf("BuscarArchivo: %v", err)
	}
	if got != esperado {
		t.Fatalf("ruta = %q, se esperaba %q", got, esperado)
	}
}

func TestBuscarArchivoFueraDeCarpetaEsperada(t *testing.T) {
	base := t.TempDir()
	p := model.Periodo{Anyo: 2025, Mes: 4}
	// La carpeta no calza con el glob del período, solo el barrido
	// completo lo encuentra
	esperado := crearArchivo(t, base, "otra_carpeta", "Balance_2504D.xlsm")

	got, err := BuscarArchivo(p, model.TipoEnergiaResultados, base)
	if err != nil {
		t.Fatalf("BuscarArchivo: %v", err)
	}
	if got != esperado {
		t.Fatalf("ruta = %q, se esperaba %q", got, esperado)
	}
}

func TestBuscarArchivoPorPalabrasClave(t *testing.T) {
	base := t.TempDir()
	p := model.Periodo{Anyo: 2025, Mes: 4}
	// Nombre con formato cambiado: ni carpeta ni nombre exacto calzan,
	// pero trae las palabras clave y el token del período
	esperado := crearArchivo(t, base, "Potencia_def", "Anexo Potencia 2504 rev1.xlsx")

	got, err := BuscarArchivo(p, model.TipoPotencia, base)
	if err != nil {
		t.Fatalf("BuscarArchivo: %v", err)
	}
	if got != esperado {
		t.Fatalf("ruta = %q, se esperaba %q", got, esperado)
	}
}

func TestBuscarArchivoNoTomaOtroPeriodo(t *testing.T) {
	base := t.TempDir()
	// Solo queda en disco el anexo de noviembre de una corrida anterior.
	// Para diciembre no debe servir, aunque el nombre calce fragmento a
	// fragmento.
	crearArchivo(t, base, "Balance_Psuf_2511_def", "Anexo 02.b Potencia nov-25.xlsx")

	p := model.Periodo{Anyo: 2025, Mes: 12}
	_, err := BuscarArchivo(p, model.TipoPotencia, base)
	if !errors.Is(err, ErrNoEncontrado) {
		t.Fatalf("err = %v, se esperaba ErrNoEncontrado", err)
	}
}

func TestBuscarArchivoOtroPeriodoConTokenEnNombre(t *testing.T) {
	base := t.TempDir()
	crearArchivo(t, base, "Balance_Psuf_2511_def", "Anexo 02.b Potencia nov-25.xlsx")
	// El anexo de diciembre quedó en una carpeta que no calza con el
	// glob, pero su nombre trae el mes
	esperado := crearArchivo(t, base, "carpeta_suelta", "Anexo 02.b Potencia dic-25.xlsx")

	p := model.Periodo{Anyo: 2025, Mes: 12}
	got, err := BuscarArchivo(p, model.TipoPotencia, base)
	if err != nil {
		t.Fatalf("BuscarArchivo: %v", err)
	}
	if got != esperado {
		t.Fatalf("ruta = %q, se esperaba %q", got, esperado)
	}
}

func TestBuscarArchivoNoEncontrado(t *testing.T) {
	base := t.TempDir()
	p := model.Periodo{Anyo: 2025, Mes: 4}
	crearArchivo(t, base, "cualquiera", "otro_archivo.xlsx")

	_, err := BuscarArchivo(p, model.TipoSSCC, base)
	if !errors.Is(err, ErrNoEncontrado) {
		t.Fatalf("err = %v, se esperaba ErrNoEncontrado", err)
	}
}
