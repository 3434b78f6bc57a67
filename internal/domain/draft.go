package domain

import (
	"fmt"
	"strings"
)

// MaxMessageLength es el tope de caracteres de un mensaje en la plataforma.
const MaxMessageLength = 2000

// Draft es un mensaje de setup todavía abierto a reacciones.
// Content es el texto tal como se respondió; nunca se reescribe en el lugar.
type Draft struct {
	OwnerID  string
	ServerID string
	Content  string
	Matches  []Placeholder
}

func NewDraft(ownerID, serverID, content string) Draft {
	return Draft{
		OwnerID:  ownerID,
		ServerID: serverID,
		Content:  content,
		Matches:  ParsePlaceholders(content),
	}
}

// Tag es la representación final de un binding emoji → rol dentro del mensaje.
func Tag(emojiID, roleID, roleName string) string {
	return fmt.Sprintf(":%s:[](%s) __%s__", emojiID, roleID, roleName)
}

// Rewrite reemplaza el i-ésimo placeholder con el i-ésimo emoji. Los nombres que
// no resuelven quedan como están (recién la publicación los rechaza). Siempre
// parte de d.Content.
func (d Draft) Rewrite(emojiIDs []string, roles RoleLookup) string {
	content := d.Content
	offset := 0
	for i, emojiID := range emojiIDs {
		if i >= len(d.Matches) {
			break
		}
		m := d.Matches[i]
		role, ok := roles[m.Name]
		if !ok {
			continue
		}
		start, end := m.Start+offset, m.End+offset
		tag := Tag(emojiID, role.ID, role.Name)
		offset += len(tag) - (end - start)
		content = content[:start] + tag + content[end:]
	}
	return Truncate(content, MaxMessageLength)
}

// Unresolved devuelve el primer placeholder cuyo nombre no existe en roles.
func (d Draft) Unresolved(roles RoleLookup) (string, bool) {
	for _, m := range d.Matches {
		if _, ok := roles[m.Name]; !ok {
			return m.Name, true
		}
	}
	return "", false
}

// Truncate corta s a max caracteres (runas), sin partir una runa.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// IsSetupContent: el texto del bot todavía parece un draft (placeholders o tags).
func IsSetupContent(text string) bool {
	return HasPlaceholders(text) || strings.Contains(text, ":[](")
}
