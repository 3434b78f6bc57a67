package discord

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	kemoji "github.com/kyokomi/emoji/v2"
	"github.com/yuin/goldmark-emoji/definition"
)

// tabla de shortnames estilo GitHub (:white_check_mark:, :crab:, ...)
var emojiTable = definition.Github()

// unicode → aliases (:crab:, ...), para los tags
var emojiAliases = kemoji.RevCodeMap()

// un alias solo sirve de key si entra en la gramática del tag
var reTagKey = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Checkmark resuelve el shortname del check a su unicode.
func Checkmark(shortName string) (string, error) {
	name := strings.Trim(strings.TrimSpace(shortName), ":")
	e, ok := emojiTable.Get(name)
	if !ok || !e.IsUnicode() {
		return "", fmt.Errorf("emoji %q desconocido", shortName)
	}
	return string(e.Unicode), nil
}

// emojiKey es el id que va en los tags.
//   - custom ("nombre:123…", lo que da Emoji.APIName): el snowflake
//   - unicode: el primer alias válido (🦀 → crab); si no hay, code points en
//     hex separados por "-", sin el selector FE0F
func emojiKey(raw string) string {
	if i := strings.LastIndexByte(raw, ':'); i >= 0 {
		return raw[i+1:]
	}
	bare := strings.ReplaceAll(raw, "\ufe0f", "")
	if alias, ok := aliasOf(bare+"\ufe0f", bare, raw); ok {
		return alias
	}

	parts := make([]string, 0, 4)
	for _, r := range bare {
		parts = append(parts, strconv.FormatInt(int64(r), 16))
	}
	return strings.Join(parts, "-")
}

func aliasOf(candidates ...string) (string, bool) {
	for _, c := range candidates {
		for _, a := range emojiAliases[c] {
			name := strings.Trim(a, ":")
			if reTagKey.MatchString(name) {
				return name, true
			}
		}
	}
	return "", false
}
