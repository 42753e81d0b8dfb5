package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// UltimosDatos últimos valores ingresados por el usuario. Solo sirven
// para precargar el formulario, su ausencia no es error.
type UltimosDatos struct {
	Anyo          int    `json:"anyo"`
	Mes           int    `json:"mes"`
	Empresa       string `json:"empresa"`
	Barra         string `json:"barra"`
	NombreMedidor string `json:"nombre_medidor"`
	Plantilla     string `json:"plantilla"`
	Destino       string `json:"destino"`
}

const archivoUltimos = "config_ultimos_datos.json"

func rutaUltimos() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, archivoUltimos)
}

// CargarUltimosDatos lee el archivo de últimos datos. Devuelve un valor
// vacío si no existe o está corrupto.
func CargarUltimosDatos() UltimosDatos {
	var u UltimosDatos
	data, err := os.ReadFile(rutaUltimos())
	if err != nil {
		return u
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return UltimosDatos{}
	}
	return u
}

// GuardarUltimosDatos persiste los últimos datos junto al ejecutable
func GuardarUltimosDatos(u UltimosDatos) error {
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rutaUltimos(), data, 0o644)
}
