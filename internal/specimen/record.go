// Package specimen - запись коллекции: фиксированные атрибуты, типизированная таблица
// динамических значений и операции над записями.
package specimen

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"fungarium/internal/field"
)

type Record struct {
	ID string `json:"id"`

	// Identificación
	Codigo          string `json:"codigo"`
	NumeroColeccion string `json:"numero_coleccion"`
	Genero          string `json:"genero"`
	Especie         string `json:"especie"`
	NombreComun     string `json:"nombre_comun"`
	Familia         string `json:"familia"`
	Determinador    string `json:"determinador"`
	FechaColecta    string `json:"fecha_colecta"` // YYYY-MM-DD
	Colector        string `json:"colector"`

	// Estado de la muestra
	MuestraADN   bool `json:"muestra_adn"`
	MuestraSeca  bool `json:"muestra_seca"`
	EnCultivo    bool `json:"en_cultivo"`
	Fotografiado bool `json:"fotografiado"`

	// Ecología
	Sustrato       string `json:"sustrato"`
	Habitat        string `json:"habitat"`
	Habito         string `json:"habito"`
	TipoVegetacion string `json:"tipo_vegetacion"`

	// Morfología
	FormaPileo string `json:"forma_pileo"`
	ColorPileo string `json:"color_pileo"`
	Himenio    string `json:"himenio"`
	Estipite   string `json:"estipite"`
	Olor       string `json:"olor"`
	Sabor      string `json:"sabor"`

	// Medidas, mm
	DiametroPileo  *float64 `json:"diametro_pileo"`
	AlturaEstipite *float64 `json:"altura_estipite"`
	GrosorEstipite *float64 `json:"grosor_estipite"`

	// Ubicación
	Pais      string `json:"pais"`
	Estado    string `json:"estado"`
	Municipio string `json:"municipio"`
	Localidad string `json:"localidad"`

	// Coordenadas
	Latitud  *float64 `json:"latitud"`
	Longitud *float64 `json:"longitud"`
	Altitud  *float64 `json:"altitud"`

	// Esporas
	EsporadaColor string `json:"esporada_color"`
	TamanoEsporas string `json:"tamano_esporas"`

	Notas string `json:"notas"`

	Imagenes  []string  `json:"imagenes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`

	// Extra - значения динамических полей по ключу.
	Extra map[string]field.Value `json:"-"`
}

var (
	timeType = reflect.TypeOf(time.Time{})

	// ключ (json-тег) → индекс поля структуры
	attrIndex, attrKeys = func() (map[string]int, []string) {
		t := reflect.TypeOf(Record{})
		idx := make(map[string]int, t.NumField())
		var keys []string
		for i := 0; i < t.NumField(); i++ {
			tag := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
			if tag == "" || tag == "-" {
				continue
			}
			idx[tag] = i
			keys = append(keys, tag)
		}
		return idx, keys
	}()
)

// Get - значение атрибута или динамического поля. nil и false в ok, если значения нет.
func (r *Record) Get(key string) (any, bool) {
	if i, ok := attrIndex[key]; ok {
		return attrValue(reflect.ValueOf(r).Elem().Field(i)), true
	}
	v, ok := r.Extra[key]
	if !ok || v.IsNull() {
		return nil, false
	}
	return v.Data, true
}

func attrValue(fv reflect.Value) any {
	switch {
	case fv.Kind() == reflect.Pointer:
		if fv.IsNil() {
			return nil
		}
		return fv.Elem().Interface()
	case fv.Type() == timeType:
		t := fv.Interface().(time.Time)
		if t.IsZero() {
			return nil
		}
		return t
	}
	return fv.Interface()
}

// Set присваивает уже приведённое значение. Для фиксированного атрибута значение
// приводится к типу поля структуры; false, если это невозможно.
func (r *Record) Set(key string, v any) bool {
	i, ok := attrIndex[key]
	if !ok {
		if r.Extra == nil {
			r.Extra = map[string]field.Value{}
		}
		if field.IsEmpty(v) {
			delete(r.Extra, key)
			return true
		}
		if tv, isValue := v.(field.Value); isValue {
			r.Extra[key] = tv
		} else {
			r.Extra[key] = field.Untyped(v)
		}
		return true
	}
	if !setAttr(reflect.ValueOf(r).Elem().Field(i), v) {
		return false
	}
	// старое значение, не ложившееся в атрибут, больше не нужно
	delete(r.Extra, key)
	return true
}

func setAttr(fv reflect.Value, v any) bool {
	if tv, isValue := v.(field.Value); isValue {
		v = tv.Data
	}
	switch {
	case fv.Type() == timeType:
		switch t := v.(type) {
		case nil:
			fv.Set(reflect.ValueOf(time.Time{}))
		case time.Time:
			fv.Set(reflect.ValueOf(t))
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return false
			}
			fv.Set(reflect.ValueOf(parsed))
		default:
			return false
		}
		return true
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(field.Text(v))
	case reflect.Bool:
		switch t := v.(type) {
		case nil:
			fv.SetBool(false)
		case bool:
			fv.SetBool(t)
		case string:
			if t != "true" && t != "false" {
				return false
			}
			fv.SetBool(t == "true")
		default:
			return false
		}
	case reflect.Pointer:
		if field.IsEmpty(v) {
			fv.Set(reflect.Zero(fv.Type()))
			return true
		}
		n, ok := field.ToNumber(v)
		if !ok {
			return false
		}
		fv.Set(reflect.ValueOf(&n))
	case reflect.Int64:
		n, ok := field.ToNumber(v)
		if !ok && v != nil {
			return false
		}
		fv.SetInt(int64(n))
	case reflect.Slice:
		var out []string
		switch t := v.(type) {
		case nil:
		case []string:
			out = append(out, t...)
		case []any:
			for _, x := range t {
				s, ok := x.(string)
				if !ok {
					return false
				}
				out = append(out, s)
			}
		default:
			return false
		}
		fv.Set(reflect.ValueOf(out))
	default:
		return false
	}
	return true
}

// Flat - плоское представление записи: атрибуты и непустые динамические значения.
func (r *Record) Flat() map[string]any {
	rv := reflect.ValueOf(r).Elem()
	out := make(map[string]any, len(attrKeys)+len(r.Extra))
	for _, key := range attrKeys {
		v := attrValue(rv.Field(attrIndex[key]))
		if t, ok := v.(time.Time); ok {
			v = t.UTC().Format(time.RFC3339Nano)
		}
		out[key] = v
	}
	if out["imagenes"] == nil || len(r.Imagenes) == 0 {
		out["imagenes"] = []string{}
	}
	for k, v := range r.Extra {
		if v.IsNull() {
			continue
		}
		out[k] = v.Stored()
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Flat())
}

// Clone - копия без общих map/slice.
func (r Record) Clone() Record {
	c := r
	c.Imagenes = append([]string(nil), r.Imagenes...)
	c.Extra = make(map[string]field.Value, len(r.Extra))
	for k, v := range r.Extra {
		c.Extra[k] = v
	}
	return c
}
