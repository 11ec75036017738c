package specimen

import (
	"fungarium/internal/field"
)

// Section - именованная группа полей формы.
type Section struct {
	Name   string             `json:"name"`
	Fields []field.Definition `json:"fields"`
}

func num(f float64) *float64 { return &f }

func attr(key, label string, t field.Type, c field.Category) field.Definition {
	return field.Definition{Key: key, Label: label, Type: t, Category: c, Visible: true}
}

// HabitoOptions - допустимые значения атрибута habito.
var HabitoOptions = []string{"Solitario", "Gregario", "Cespitoso", "Fasciculado", "Disperso"}

// sections - фиксированные атрибуты записи, сгруппированные для показа. Порядок задан жёстко.
var sections = func() []Section {
	s := field.TypeString
	b := field.TypeBoolean
	n := field.TypeNumber

	codigo := attr("codigo", "Código", s, field.CategoryIdentification)
	codigo.Required = true
	codigo.Placeholder = "FG-0001"

	fecha := attr("fecha_colecta", "Fecha de colecta", field.TypeDate, field.CategoryIdentification)

	muestraADN := attr("muestra_adn", "Muestra de ADN", b, field.CategorySample)
	muestraADN.Description = "Se tomó muestra de ADN"
	muestraSeca := attr("muestra_seca", "Muestra seca", b, field.CategorySample)
	muestraSeca.Description = "Ejemplar deshidratado"
	enCultivo := attr("en_cultivo", "En cultivo", b, field.CategorySample)
	enCultivo.Description = "Aislado en cultivo"
	foto := attr("fotografiado", "Fotografiado", b, field.CategorySample)
	foto.Description = "Tiene fotografías"

	habito := attr("habito", "Hábito", field.TypeEnum, field.CategoryEcology)
	habito.EnumOptions = HabitoOptions

	measure := func(key, label string) field.Definition {
		d := attr(key, label, n, field.CategoryMeasurements)
		d.Min = num(0)
		d.Placeholder = "mm"
		return d
	}

	lat := attr("latitud", "Latitud", n, field.CategoryLocation)
	lat.Min, lat.Max = num(-90), num(90)
	lon := attr("longitud", "Longitud", n, field.CategoryLocation)
	lon.Min, lon.Max = num(-180), num(180)
	alt := attr("altitud", "Altitud (m s.n.m.)", n, field.CategoryLocation)
	alt.Min, alt.Max = num(-500), num(9000)

	return []Section{
		{Name: "Identificación", Fields: []field.Definition{
			codigo,
			attr("numero_coleccion", "Número de colección", s, field.CategoryIdentification),
			attr("genero", "Género", s, field.CategoryIdentification),
			attr("especie", "Especie", s, field.CategoryIdentification),
			attr("nombre_comun", "Nombre común", s, field.CategoryIdentification),
			attr("familia", "Familia", s, field.CategoryIdentification),
			attr("determinador", "Determinador", s, field.CategoryIdentification),
			fecha,
			attr("colector", "Colector", s, field.CategoryIdentification),
		}},
		{Name: "Estado de la muestra", Fields: []field.Definition{muestraADN, muestraSeca, enCultivo, foto}},
		{Name: "Ecología", Fields: []field.Definition{
			attr("sustrato", "Sustrato", s, field.CategoryEcology),
			attr("habitat", "Hábitat", s, field.CategoryEcology),
			habito,
			attr("tipo_vegetacion", "Tipo de vegetación", s, field.CategoryEcology),
		}},
		{Name: "Morfología", Fields: []field.Definition{
			attr("forma_pileo", "Forma del píleo", s, field.CategoryMorphology),
			attr("color_pileo", "Color del píleo", s, field.CategoryMorphology),
			attr("himenio", "Himenio", s, field.CategoryMorphology),
			attr("estipite", "Estípite", s, field.CategoryMorphology),
			attr("olor", "Olor", s, field.CategoryMorphology),
			attr("sabor", "Sabor", s, field.CategoryMorphology),
		}},
		{Name: "Medidas", Fields: []field.Definition{
			measure("diametro_pileo", "Diámetro del píleo"),
			measure("altura_estipite", "Altura del estípite"),
			measure("grosor_estipite", "Grosor del estípite"),
		}},
		{Name: "Ubicación", Fields: []field.Definition{
			attr("pais", "País", s, field.CategoryLocation),
			attr("estado", "Estado", s, field.CategoryLocation),
			attr("municipio", "Municipio", s, field.CategoryLocation),
			attr("localidad", "Localidad", s, field.CategoryLocation),
		}},
		{Name: "Coordenadas", Fields: []field.Definition{lat, lon, alt}},
		{Name: "Esporas", Fields: []field.Definition{
			attr("esporada_color", "Color de esporada", s, field.CategorySpores),
			attr("tamano_esporas", "Tamaño de esporas", s, field.CategorySpores),
		}},
		{Name: "Notas", Fields: []field.Definition{attr("notas", "Notas", s, field.CategoryOther)}},
	}
}()

// системные ключи: хранятся, но не редактируются через формы
var systemKeys = map[string]bool{
	"id": true, "imagenes": true, "created_at": true, "updated_at": true, "version": true,
}

var fixedDefs = func() map[string]field.Definition {
	m := map[string]field.Definition{}
	for _, s := range sections {
		for _, d := range s.Fields {
			m[d.Key] = d
		}
	}
	return m
}()

// Sections - копия жёстко заданных секций.
func Sections() []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = Section{Name: s.Name, Fields: append([]field.Definition(nil), s.Fields...)}
	}
	return out
}

// IsFixed - ключ занят атрибутом записи (редактируемым или системным).
func IsFixed(key string) bool {
	if systemKeys[key] {
		return true
	}
	_, ok := fixedDefs[key]
	return ok
}

func IsSystem(key string) bool { return systemKeys[key] }

// FixedDefinition - описание редактируемого фиксированного атрибута.
func FixedDefinition(key string) (field.Definition, bool) {
	d, ok := fixedDefs[key]
	return d, ok
}
