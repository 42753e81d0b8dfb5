package descarga

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// NombreCarpetaDescomprimida deriva el nombre de la carpeta de extracción a
// partir del nombre del ZIP. Los nombres locales llevan el prefijo
// PLABACOM_..._v_1_; la carpeta usa solo el fragmento final
// ("01 Resultados_2512_BD01"). Si el patrón no aparece, se usa el nombre
// completo sin extensión.
func NombreCarpetaDescomprimida(rutaZip string) string {
	base := filepath.Base(rutaZip)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.LastIndex(base, "_v_1_"); i >= 0 {
		return base[i+len("_v_1_"):]
	}
	return base
}

// Descomprimir extrae rutaZip en carpetaBase/<nombre derivado>. Si la
// carpeta ya existe con contenido, no vuelve a extraer.
func Descomprimir(rutaZip, carpetaBase string) (string, error) {
	destino := filepath.Join(carpetaBase, NombreCarpetaDescomprimida(rutaZip))

	if entradas, err := os.ReadDir(destino); err == nil && len(entradas) > 0 {
		log.Printf("[OK] El archivo ya está descomprimido: %s", destino)
		return destino, nil
	}

	if err := os.MkdirAll(destino, 0o755); err != nil {
		return "", err
	}

	zr, err := zip.OpenReader(rutaZip)
	if err != nil {
		return "", fmt.Errorf("el archivo no es un ZIP válido: %s: %w", rutaZip, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := extraerEntrada(f, destino); err != nil {
			return "", err
		}
	}

	log.Printf("[OK] Descompresión completada: %s", destino)
	return destino, nil
}

func extraerEntrada(f *zip.File, destino string) error {
	ruta := filepath.Join(destino, filepath.FromSlash(f.Name))
	// Evita rutas que escapen de la carpeta destino
	if !strings.HasPrefix(ruta, filepath.Clean(destino)+string(os.PathSeparator)) {
		return errors.New("entrada de ZIP con ruta inválida: " + f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(ruta, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(ruta), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	w, err := os.Create(ruta)
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = io.Copy(w, rc)
	return err
}
