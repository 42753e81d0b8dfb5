package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/config"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/server"
	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/util"
)

var (
	port    = flag.Int("port", 0, "puerto del servidor (config.toml tiene prioridad si define port)")
	devMode = flag.Bool("dev", false, "modo desarrollo")
	bdDir   = flag.String("bd", "", "carpeta de trabajo (sobrescribe la configuración)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Generador de Informe Eléctrico")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("no se pudo cargar la configuración, se usan valores por defecto: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *bdDir != "" {
		cfg.Datos.CarpetaBD = *bdDir
	}

	carpetaBD, err := config.EnsureCarpetaBD(cfg)
	if err != nil {
		log.Fatalf("no se pudo crear la carpeta de trabajo: %v", err)
	}
	fmt.Printf("Carpeta de trabajo: %s\n", carpetaBD)

	srv := server.NewServer(cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("Servidor escuchando en el puerto %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("el servidor no pudo iniciar: %v", err)
		}
	}()

	if !cfg.Server.DevMode {
		fmt.Printf("Abriendo navegador: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("No se pudo abrir el navegador, ingrese manualmente a: %s\n", url)
		}
	} else {
		fmt.Printf("Modo desarrollo: visite %s\n", url)
	}

	fmt.Println("\nCtrl+C para detener el servicio...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nCerrando servicio...")
	if err := srv.Close(); err != nil {
		log.Printf("error al cerrar: %v", err)
	}
}
