package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make normaliza un nombre a slug URL-safe: minúsculas, sin tildes, guiones.
// Ej: "Camiseta Oficial UNAL" → "camiseta-oficial-unal".
func Make(name string) string {
	// Descomponer y quitar marcas diacríticas (tildes, diéresis)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(t, name)
	if err != nil {
		clean = name
	}

	clean = strings.ToLower(clean)

	var b strings.Builder
	b.Grow(len(clean))
	lastDash := true // evita guion inicial
	for _, r := range clean {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
