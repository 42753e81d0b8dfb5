package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig configuración de la aplicación
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Datos     DatosConfig     `toml:"datos"`
	Descarga  DescargaConfig  `toml:"descarga"`
	Plantilla PlantillaConfig `toml:"plantilla"`
}

// ServerConfig configuración del servidor local
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DatosConfig rutas de trabajo
type DatosConfig struct {
	CarpetaBD string `toml:"carpeta_bd"`
}

// DescargaConfig origen de los archivos del Coordinador
type DescargaConfig struct {
	URLBase string `toml:"url_base"`
}

// PlantillaConfig plantilla del cliente
type PlantillaConfig struct {
	Ruta string `toml:"ruta"`
}

// LoadConfigInfo metadatos de la carga
type LoadConfigInfo struct {
	PortSpecified bool
}

// DefaultConfig configuración por defecto
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20280,
			DevMode: false,
		},
		Datos: DatosConfig{
			CarpetaBD: "bd_data",
		},
		Descarga: DescargaConfig{
			URLBase: "https://cen-plabacom.s3.amazonaws.com/",
		},
		Plantilla: PlantillaConfig{
			Ruta: "",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir directorio del ejecutable
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo carga config.toml desde el directorio del
// ejecutable y devuelve metadatos de la carga. Sin archivo se usan los
// valores por defecto.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	// Variables de entorno para pruebas y corridas locales
	if v := os.Getenv("INFORMEELEC_URL_BASE"); v != "" {
		config.Descarga.URLBase = v
	}
	if v := os.Getenv("INFORMEELEC_PLANTILLA"); v != "" {
		config.Plantilla.Ruta = v
	}

	return config, info, nil
}

// EnsureCarpetaBD crea la carpeta de trabajo y su subcarpeta de
// descomprimidos si no existen. Devuelve la ruta absoluta.
func EnsureCarpetaBD(cfg *AppConfig) (string, error) {
	ruta := cfg.Datos.CarpetaBD
	if !filepath.IsAbs(ruta) {
		exeDir, err := GetExeDir()
		if err == nil {
			ruta = filepath.Join(exeDir, ruta)
		}
	}
	if err := os.MkdirAll(filepath.Join(ruta, "descomprimidos"), 0755); err != nil {
		return "", err
	}
	cfg.Datos.CarpetaBD = ruta
	return ruta, nil
}

// LoadConfig carga config.toml ignorando los metadatos
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}
