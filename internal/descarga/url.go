package descarga

import (
	"fmt"
	"net/url"

	"github.com/fopazoecoingen/automatizacion-cordinador-electrico/internal/model"
)

// URLBasePorDefecto bucket público del Coordinador
const URLBasePorDefecto = "https://cen-plabacom.s3.amazonaws.com/"

// ConstruirURL construye la URL del ZIP según año, mes y tipo de archivo,
// junto con el nombre con que se guarda localmente.
//
// Estructura S3: PLABACOM/{año}/{mes}_{NombreMes}/{Area}/Definitivo/v_1/{archivo}.zip
// Cada tipo tiene su propio esquema de nombre, heredado de las publicaciones
// históricas del Coordinador (no son uniformes entre tipos).
func ConstruirURL(urlBase string, p model.Periodo, tipo model.TipoArchivo) (string, string, error) {
	if urlBase == "" {
		urlBase = URLBasePorDefecto
	}
	base := fmt.Sprintf("PLABACOM/%d/%s_%s", p.Anyo, p.MesStr(), p.NombreMes())

	var area, nombreArchivo, nombreLocal string
	switch tipo {
	case model.TipoEnergiaResultados:
		area = "Energia"
		nombreArchivo = fmt.Sprintf("01 Resultados_%s%s_BD01.zip", p.AnyoAbrev(), p.MesStr())
		nombreLocal = fmt.Sprintf("PLABACOM_%d_%d_%s_Energia_Definitivo_v_1_%s", p.Anyo, p.Mes, p.NombreMes(), nombreArchivo)
	case model.TipoEnergiaAntecedentes:
		area = "Energia"
		nombreArchivo = fmt.Sprintf("02 Antecedentes de Cálculo_%s%s_BD01.zip", p.AnyoAbrev(), p.MesStr())
		nombreLocal = fmt.Sprintf("PLABACOM_%d_%d_%s_Energia_Antecedentes_%s%s_BD01.zip", p.Anyo, p.Mes, p.NombreMes(), p.AnyoAbrev(), p.MesStr())
	case model.TipoSSCC:
		area = "SSCC"
		nombreArchivo = fmt.Sprintf("Balance_SSCC_%d_%s_def.zip", p.Anyo, p.AbrevMes())
		nombreLocal = fmt.Sprintf("PLABACOM_%d_%d_%s_SSCC_%s", p.Anyo, p.Mes, p.NombreMes(), nombreArchivo)
	case model.TipoPotencia:
		area = "Potencia"
		nombreArchivo = fmt.Sprintf("Balance_Psuf_%s%s_def.zip", p.AnyoAbrev(), p.MesStr())
		nombreLocal = fmt.Sprintf("PLABACOM_%d_%d_%s_Potencia_%s", p.Anyo, p.Mes, p.NombreMes(), nombreArchivo)
	default:
		return "", "", fmt.Errorf("tipo de archivo no soportado: %s", tipo)
	}

	// Solo el nombre del archivo lleva escape (ahí están los espacios);
	// las barras de la ruta se dejan tal cual.
	ruta := fmt.Sprintf("%s/%s/Definitivo/v_1/%s", base, area, url.PathEscape(nombreArchivo))
	return urlBase + ruta, nombreLocal, nil
}

// patronesTipo fragmento que distingue cada tipo dentro del nombre local
var patronesTipo = map[model.TipoArchivo]string{
	model.TipoEnergiaResultados:   "Energia_Definitivo",
	model.TipoEnergiaAntecedentes: "Antecedentes",
	model.TipoSSCC:                "SSCC",
	model.TipoPotencia:            "Potencia",
}
