package domain

import "regexp"

// Formatos de id de rol aceptados en los tags.
const (
	ULIDPattern      = `[0-9A-HJKMNP-TV-Z]{26}`
	SnowflakePattern = `[0-9]{17,20}`
)

// Mapping es la tabla emoji → rol de un mensaje publicado. No se modifica.
type Mapping map[string]string

// Decoder reconstruye el Mapping desde el texto de un mensaje publicado.
type Decoder struct {
	re *regexp.Regexp
}

// NewDecoder compila el patrón de tags para un formato de id de rol.
func NewDecoder(roleIDPattern string) Decoder {
	return Decoder{re: regexp.MustCompile(`(?i):([a-z0-9_-]+):\[]\((` + roleIDPattern + `)\)`)}
}

// Decode: el último tag gana si un emoji aparece dos veces.
func (d Decoder) Decode(content string) Mapping {
	out := Mapping{}
	for _, m := range d.re.FindAllStringSubmatch(content, -1) {
		out[m[1]] = m[2]
	}
	return out
}
