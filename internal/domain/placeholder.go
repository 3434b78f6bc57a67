package domain

import "regexp"

// {ROLE:<nombre>}: el keyword no distingue mayúsculas, el nombre se guarda tal cual.
var rePlaceholder = regexp.MustCompile(`(?i)\{ROLE:([ a-z0-9_-]+)}`)

// Placeholder es un token {ROLE:...} encontrado en el texto (offsets en bytes).
type Placeholder struct {
	Start int
	End   int
	Name  string
}

// ParsePlaceholders devuelve los placeholders en orden, sin solaparse.
// Vacío = no es un mensaje de setup.
func ParsePlaceholders(text string) []Placeholder {
	locs := rePlaceholder.FindAllStringSubmatchIndex(text, -1)
	out := make([]Placeholder, 0, len(locs))
	for _, l := range locs {
		out = append(out, Placeholder{Start: l[0], End: l[1], Name: text[l[2]:l[3]]})
	}
	return out
}

// HasPlaceholders es el atajo para los chequeos de "aplica o no".
func HasPlaceholders(text string) bool {
	return rePlaceholder.MatchString(text)
}
