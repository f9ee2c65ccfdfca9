// Package encoding provides text conversion utilities for game content paths.
package encoding

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCIIFold converts s to plain ASCII. Accents are stripped ("Nová Sosnovka"
// becomes "Nova Sosnovka") and other scripts are transliterated
// ("Черногорск" becomes "Chernogorsk"). Runs of whitespace collapse to a
// single space.
func ASCIIFold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(unidecode.Unidecode(stripped)), " ")
}

// NormalizeGamePath converts a path to the backslash-separated form used
// inside game content ("altis_signs/data/a.paa" -> "altis_signs\data\a.paa").
func NormalizeGamePath(path string) string {
	return strings.ReplaceAll(path, "/", `\`)
}
