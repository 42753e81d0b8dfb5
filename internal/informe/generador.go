// Package informe orquesta una corrida completa del generador:
// descarga los archivos del período, copia la plantilla al destino,
// extrae los conceptos y los escribe en la hoja Resultado.
package informe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/descarga"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/lector"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/plantilla"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/store"
)

// Solicitud parámetros de una corrida
type Solicitud struct {
	Anyo          int    `json:"anyo"`
	Mes           int    `json:"mes"`
	Empresa       string `json:"empresa"`
	Barra         string `json:"barra"`
	NombreMedidor string `json:"nombre_medidor"`
	Plantilla     string `json:"plantilla"`
	Destino       string `json:"destino"`
}

// Resumen qué se encontró y qué se escribió
type Resumen struct {
	RunID      string                      `json:"run_id"`
	Periodo    model.Periodo               `json:"periodo"`
	Resultados []model.ResultadoExtraccion `json:"resultados"`
	Escritos   []string                    `json:"escritos"`
	Destino    string                      `json:"destino"`
}

// Generador corre informes. No es seguro para corridas concurrentes
// sobre el mismo destino, el servidor serializa con su bandera de
// ocupado.
type Generador struct {
	Descargas *descarga.Cliente
	CarpetaBD string
	Historial *store.Store
}

// Procesar ejecuta la corrida completa para un período. Un 403 del
// balance de energía corta de inmediato: el período aún no está
// publicado y no hay nada que informar. La plantilla destino solo se
// toca cuando las descargas obligatorias ya están en disco.
func (g *Generador) Procesar(ctx context.Context, sol Solicitud) (*Resumen, error) {
	p := model.Periodo{Anyo: sol.Anyo, Mes: sol.Mes}
	if err := p.Validar(); err != nil {
		return nil, err
	}
	if sol.Plantilla == "" || sol.Destino == "" {
		return nil, fmt.Errorf("plantilla y destino son obligatorios")
	}

	runID := uuid.NewString()
	if g.Historial != nil {
		err := g.Historial.CrearRun(store.Run{
			ID:      runID,
			Anyo:    p.Anyo,
			Mes:     p.Mes,
			Empresa: sol.Empresa,
			Barra:   sol.Barra,
			Medidor: sol.NombreMedidor,
			Destino: sol.Destino,
		})
		if err != nil {
			log.Printf("[WARNING] no se pudo registrar la corrida: %v", err)
		}
	}

	resumen, err := g.procesar(ctx, p, sol, runID)
	if g.Historial != nil {
		if err != nil {
			_ = g.Historial.CompletarRun(runID, store.EstadoError, err.Error())
		} else {
			_ = g.Historial.CompletarRun(runID, store.EstadoCompletado, resumenDetalle(resumen))
		}
	}
	return resumen, err
}

func (g *Generador) procesar(ctx context.Context, p model.Periodo, sol Solicitud, runID string) (*Resumen, error) {
	log.Printf("[INFO] Corrida %s para %s", runID, p)

	// Descarga obligatoria: balance de energía
	_, _, err := g.Descargas.DescargarYDescomprimir(ctx, p, model.TipoEnergiaResultados, g.CarpetaBD)
	if err != nil {
		if errors.Is(err, descarga.ErrNoDisponible) {
			return nil, fmt.Errorf("balance de energía de %s: %w", p, descarga.ErrNoDisponible)
		}
		return nil, fmt.Errorf("descargar balance de energía: %w", err)
	}

	// Descargas opcionales: su ausencia degrada conceptos, no la corrida
	for _, tipo := range []model.TipoArchivo{model.TipoSSCC, model.TipoPotencia} {
		if _, _, err := g.Descargas.DescargarYDescomprimir(ctx, p, tipo, g.CarpetaBD); err != nil {
			log.Printf("[WARNING] %s: %v", tipo.Descripcion(), err)
		}
	}

	if err := copiarPlantilla(sol.Plantilla, sol.Destino); err != nil {
		return nil, err
	}

	carpetaExtraidos := filepath.Join(g.CarpetaBD, "descomprimidos")
	rutaBalance, err := lector.BuscarArchivo(p, model.TipoEnergiaResultados, carpetaExtraidos)
	if err != nil {
		return nil, fmt.Errorf("libro de balance de %s: %w", p, err)
	}

	balance, err := lector.AbrirBalance(rutaBalance)
	if err != nil {
		return nil, err
	}
	defer balance.Cerrar()

	ext := &lector.Extractor{
		Periodo: p,
		Filtros: lector.FiltroBalance{
			Empresa: sol.Empresa,
			Barra:   sol.Barra,
			Medidor: sol.NombreMedidor,
		},
		CarpetaBase: carpetaExtraidos,
		Balance:     balance,
	}

	resultados, err := ext.Todos()
	if err != nil {
		return nil, err
	}

	pares, escritos := armarPares(resultados)
	if len(pares) == 0 {
		return nil, fmt.Errorf("ningún concepto con valor para %s", p)
	}

	if err := plantilla.EscribirTodos(sol.Destino, p, pares); err != nil {
		return nil, err
	}

	resumen := &Resumen{
		RunID:      runID,
		Periodo:    p,
		Resultados: resultados,
		Escritos:   escritos,
		Destino:    sol.Destino,
	}
	imprimirResumen(resumen)
	return resumen, nil
}

// armarPares filtra las ausencias. El concepto obligatorio va primero y
// siempre está presente porque su cadena termina en el respaldo del
// balance.
func armarPares(resultados []model.ResultadoExtraccion) ([]plantilla.Par, []string) {
	var pares []plantilla.Par
	var escritos []string
	for _, r := range resultados {
		if !r.Encontrado() {
			continue
		}
		pares = append(pares, plantilla.Par{Concepto: r.Concepto, Valor: *r.Valor})
		escritos = append(escritos, r.Concepto)
	}
	return pares, escritos
}

func resumenDetalle(r *Resumen) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%d conceptos escritos en %s", len(r.Escritos), filepath.Base(r.Destino))
}

func imprimirResumen(r *Resumen) {
	log.Printf("[INFO] %s", strings.Repeat("=", 60))
	log.Printf("[INFO] RESUMEN %s -> %s", r.Periodo, r.Destino)
	for _, res := range r.Resultados {
		if res.Encontrado() {
			log.Printf("[INFO]   %s: %.2f", res.Concepto, *res.Valor)
		} else {
			log.Printf("[INFO]   %s: no encontrado", res.Concepto)
		}
	}
	log.Printf("[INFO] %s", strings.Repeat("=", 60))
}

// copiarPlantilla copia la plantilla del cliente al destino. Si el
// destino ya existe se escribe sobre él, así la corrida de un mes nuevo
// acumula sobre los meses anteriores.
func copiarPlantilla(origen, destino string) error {
	if origen == destino {
		return nil
	}
	if _, err := os.Stat(destino); err == nil {
		log.Printf("[INFO] Destino %s ya existe, se escribirá sobre él", filepath.Base(destino))
		return nil
	}

	src, err := os.Open(origen)
	if err != nil {
		return fmt.Errorf("abrir plantilla %s: %w", origen, err)
	}
	defer src.Close()

	if dir := filepath.Dir(destino); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("crear carpeta destino: %w", err)
		}
	}
	dst, err := os.Create(destino)
	if err != nil {
		return fmt.Errorf("crear destino %s: %w", destino, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copiar plantilla: %w", err)
	}
	return dst.Close()
}
