package lector

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// especArchivo describe cómo encontrar el libro de un tipo de documento
// dentro del árbol de descomprimidos. Los nombres de carpeta y archivo
// cambian entre meses y versiones, por eso cada tipo trae un patrón de
// carpeta, fragmentos del nombre esperado y palabras clave de respaldo.
type especArchivo struct {
	carpetaGlob func(p model.Periodo) string
	fragmentos  func(p model.Periodo) []string
	claves      []string
	// Cuando los fragmentos no codifican el período, los pasos que
	// recorren toda la raíz exigen además un token del período en el
	// nombre, para no tomar el mismo documento de otro mes.
	exigeToken bool
}

var especsPorTipo = map[model.TipoArchivo]especArchivo{
	model.TipoEnergiaResultados: {
		carpetaGlob: func(p model.Periodo) string {
			return fmt.Sprintf("*Resultados_%s%s_BD01*", p.AnyoAbrev(), p.MesStr())
		},
		fragmentos: func(p model.Periodo) []string {
			return []string{fmt.Sprintf("Balance_%s%sD.xlsm", p.AnyoAbrev(), p.MesStr())}
		},
		claves: []string{"balance"},
	},
	model.TipoPotencia: {
		carpetaGlob: func(p model.Periodo) string {
			return fmt.Sprintf("*Psuf_%s%s*", p.AnyoAbrev(), p.MesStr())
		},
		// El nombre del anexo cambió varias veces; se acepta cualquier
		// archivo que contenga los tres fragmentos.
		fragmentos: func(p model.Periodo) []string {
			return []string{"Anexo", "02", "Potencia"}
		},
		claves:     []string{"anexo", "potencia"},
		exigeToken: true,
	},
	model.TipoSSCC: {
		carpetaGlob: func(p model.Periodo) string {
			return fmt.Sprintf("*SSCC_%d_%s*", p.Anyo, p.AbrevMes())
		},
		fragmentos: func(p model.Periodo) []string {
			return []string{"CUADROS", "PAGO"}
		},
		claves:     []string{"cuadros", "pago"},
		exigeToken: true,
	},
	model.TipoEnergiaAntecedentes: {
		carpetaGlob: func(p model.Periodo) string {
			return fmt.Sprintf("*Antecedentes*%s%s*", p.AnyoAbrev(), p.MesStr())
		},
		fragmentos: func(p model.Periodo) []string {
			return []string{"Anexo", "02", "Potencia"}
		},
		claves:     []string{"anexo", "potencia"},
		exigeToken: true,
	},
}

// BuscarArchivo localiza el libro de un tipo de documento para el período
// dentro de carpetaBase. Cuatro pasos, cada uno respaldo del anterior:
//
//  1. carpeta por glob del período, archivo esperado directo en ella
//  2. las mismas carpetas, recorrido recursivo
//  3. recorrido recursivo de toda carpetaBase buscando el nombre
//     esperado, más un token del período cuando el nombre no lo trae
//  4. recorrido recursivo aceptando palabras clave + token del período
//
// Devuelve ErrNoEncontrado si los cuatro fallan. Quien llama decide si
// la ausencia aborta la corrida. Solo lectura, sin efectos.
func BuscarArchivo(p model.Periodo, tipo model.TipoArchivo, carpetaBase string) (string, error) {
	espec, ok := especsPorTipo[tipo]
	if !ok {
		return "", fmt.Errorf("tipo de archivo desconocido: %s", tipo)
	}
	fragmentos := espec.fragmentos(p)
	tokens := []string{
		p.AnyoAbrev() + p.MesStr(),
		fmt.Sprintf("%d", p.Anyo),
		strings.ToLower(p.AbrevMes()),
	}

	carpetas, _ := filepath.Glob(filepath.Join(carpetaBase, espec.carpetaGlob(p)))

	// Paso 1: entradas directas de las carpetas candidatas
	for _, dir := range carpetas {
		entradas, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entradas {
			if !e.IsDir() && contieneTodos(e.Name(), fragmentos) {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}

	// Paso 2: recursivo dentro de las carpetas candidatas. La carpeta
	// ya acotó el período, no hace falta token.
	for _, dir := range carpetas {
		if ruta := buscarRecursivo(dir, fragmentos, nil); ruta != "" {
			return ruta, nil
		}
	}

	// Paso 3: recursivo desde la raíz
	tokensPaso3 := tokens
	if !espec.exigeToken {
		tokensPaso3 = nil
	}
	if ruta := buscarRecursivo(carpetaBase, fragmentos, tokensPaso3); ruta != "" {
		return ruta, nil
	}

	// Paso 4: palabras clave + token del período, sin formato exacto
	claves := espec.claves
	var encontrado string
	_ = filepath.WalkDir(carpetaBase, func(ruta string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || encontrado != "" {
			return nil
		}
		nombre := strings.ToLower(d.Name())
		if !esLibroExcel(nombre) {
			return nil
		}
		for _, c := range claves {
			if !strings.Contains(nombre, c) {
				return nil
			}
		}
		if contieneAlguno(nombre, tokens) {
			encontrado = ruta
			return fs.SkipAll
		}
		return nil
	})
	if encontrado != "" {
		return encontrado, nil
	}

	return "", ErrNoEncontrado
}

// buscarRecursivo primer archivo bajo raiz cuyo nombre contiene todos
// los fragmentos. Con tokens no vacío el nombre además debe contener
// alguno de ellos.
func buscarRecursivo(raiz string, fragmentos, tokens []string) string {
	var encontrado string
	_ = filepath.WalkDir(raiz, func(ruta string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !contieneTodos(d.Name(), fragmentos) {
			return nil
		}
		if len(tokens) > 0 && !contieneAlguno(strings.ToLower(d.Name()), tokens) {
			return nil
		}
		encontrado = ruta
		return fs.SkipAll
	})
	return encontrado
}

func contieneAlguno(nombre string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(nombre, t) {
			return true
		}
	}
	return false
}

func contieneTodos(nombre string, fragmentos []string) bool {
	bajo := strings.ToLower(nombre)
	for _, f := range fragmentos {
		if !strings.Contains(bajo, strings.ToLower(f)) {
			return false
		}
	}
	return true
}

func esLibroExcel(nombre string) bool {
	return strings.HasSuffix(nombre, ".xlsx") || strings.HasSuffix(nombre, ".xlsm") ||
		strings.HasSuffix(nombre, ".xls")
}
