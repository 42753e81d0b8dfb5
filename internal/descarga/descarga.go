package descarga

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// ErrNoDisponible el Coordinador aún no publica el archivo para ese
// período (HTTP 403 del bucket). Se distingue del resto de las fallas de
// red para que la interfaz lo informe como "no disponible" y no como error.
var ErrNoDisponible = errors.New("el contenido no está disponible para este período (403)")

// Cliente descarga y descomprime los ZIP publicados por el Coordinador.
type Cliente struct {
	URLBase string
	HTTP    *http.Client
}

// NuevoCliente crea un cliente con timeout generoso (los ZIP de resultados
// superan el GB).
func NuevoCliente(urlBase string) *Cliente {
	return &Cliente{
		URLBase: urlBase,
		HTTP:    &http.Client{Timeout: 30 * time.Minute},
	}
}

// Descargar baja url al archivo destino en streaming.
func (c *Cliente) Descargar(ctx context.Context, url, destino string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("error al descargar %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrNoDisponible
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error HTTP %d al descargar %s", resp.StatusCode, url)
	}

	tmp := destino + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("descarga interrumpida: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, destino)
}

// BuscarZipExistente busca un ZIP ya descargado para el período y tipo, sin
// importar la versión ni si dice "Resultados" o "Bases de Datos".
func BuscarZipExistente(p model.Periodo, tipo model.TipoArchivo, carpetaZip string) string {
	patronExtra, ok := patronesTipo[tipo]
	if !ok {
		return ""
	}
	patronBase := fmt.Sprintf("PLABACOM_%d_%d_%s", p.Anyo, p.Mes, p.NombreMes())

	entradas, err := filepath.Glob(filepath.Join(carpetaZip, "*.zip"))
	if err != nil {
		return ""
	}
	for _, ruta := range entradas {
		nombre := filepath.Base(ruta)
		if strings.Contains(nombre, patronBase) && strings.Contains(nombre, patronExtra) {
			return ruta
		}
	}
	return ""
}

// DescargarSiNoExiste descarga el ZIP del tipo indicado si no está ya en la
// carpeta. Devuelve la ruta del ZIP.
func (c *Cliente) DescargarSiNoExiste(ctx context.Context, p model.Periodo, tipo model.TipoArchivo, carpetaZip string) (string, error) {
	if err := os.MkdirAll(carpetaZip, 0o755); err != nil {
		return "", err
	}

	if existente := BuscarZipExistente(p, tipo, carpetaZip); existente != "" {
		log.Printf("[OK] El archivo ya existe (%s): %s", tipo.Descripcion(), filepath.Base(existente))
		return existente, nil
	}

	url, nombreLocal, err := ConstruirURL(c.URLBase, p, tipo)
	if err != nil {
		return "", err
	}
	destino := filepath.Join(carpetaZip, nombreLocal)
	if _, err := os.Stat(destino); err == nil {
		return destino, nil
	}

	log.Printf("Descargando %s: %s", tipo.Descripcion(), nombreLocal)
	if err := c.Descargar(ctx, url, destino); err != nil {
		return "", err
	}
	return destino, nil
}

// DescargarYDescomprimir descarga el ZIP si falta y lo descomprime bajo
// <carpetaBD>/descomprimidos. Devuelve (ruta ZIP, carpeta descomprimida).
func (c *Cliente) DescargarYDescomprimir(ctx context.Context, p model.Periodo, tipo model.TipoArchivo, carpetaBD string) (string, string, error) {
	rutaZip, err := c.DescargarSiNoExiste(ctx, p, tipo, carpetaBD)
	if err != nil {
		return "", "", err
	}

	carpeta, err := Descomprimir(rutaZip, filepath.Join(carpetaBD, "descomprimidos"))
	if err != nil {
		return rutaZip, "", err
	}
	return rutaZip, carpeta, nil
}
