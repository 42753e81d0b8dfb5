// Package server expone el generador a través de un servidor local con
// un formulario mínimo. Una sola corrida a la vez: la bandera de
// ocupado rechaza solicitudes mientras hay una en curso.
package server

import (
	"context"
	"embed"
	"log"
	"net/http"
	"path/filepath"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/config"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/descarga"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/informe"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/store"
)

//go:embed index.html
var staticFiles embed.FS

// Server servidor HTTP local
type Server struct {
	router    *gin.Engine
	store     *store.Store
	generador *informe.Generador
	ocupado   atomic.Bool
}

// NewServer arma el servidor con sus dependencias
func NewServer(cfg *config.AppConfig) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dbPath := filepath.Join(cfg.Datos.CarpetaBD, "informes.db")
	sqliteStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("no se pudo inicializar la base de datos: %v", err)
	}

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		generador: &informe.Generador{
			Descargas: descarga.NuevoCliente(cfg.Descarga.URLBase),
			CarpetaBD: cfg.Datos.CarpetaBD,
			Historial: sqliteStore,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/informes", s.handleGenerar)
		api.GET("/informes", s.handleHistorial)
		api.GET("/estado", s.handleEstado)
		api.GET("/ultimos-datos", s.handleUltimosDatos)
	}

	s.router.GET("/", func(c *gin.Context) {
		data, err := staticFiles.ReadFile("index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "index.html no disponible")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
}

// handleGenerar lanza una corrida. 409 si ya hay una en curso.
func (s *Server) handleGenerar(c *gin.Context) {
	var sol informe.Solicitud
	if err := c.ShouldBindJSON(&sol); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "solicitud inválida: " + err.Error()})
		return
	}

	if !s.ocupado.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "ya hay una corrida en curso"})
		return
	}
	defer s.ocupado.Store(false)

	resumen, err := s.generador.Procesar(context.Background(), sol)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	_ = config.GuardarUltimosDatos(config.UltimosDatos{
		Anyo:          sol.Anyo,
		Mes:           sol.Mes,
		Empresa:       sol.Empresa,
		Barra:         sol.Barra,
		NombreMedidor: sol.NombreMedidor,
		Plantilla:     sol.Plantilla,
		Destino:       sol.Destino,
	})

	c.JSON(http.StatusOK, resumen)
}

func (s *Server) handleHistorial(c *gin.Context) {
	runs, err := s.store.ListarRuns(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleEstado(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ocupado": s.ocupado.Load()})
}

func (s *Server) handleUltimosDatos(c *gin.Context) {
	c.JSON(http.StatusOK, config.CargarUltimosDatos())
}

// Run inicia el servidor en la dirección dada
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close libera los recursos del servidor
func (s *Server) Close() error {
	return s.store.Close()
}
