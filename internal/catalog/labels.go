package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelCasers = map[string]cases.Caser{
	"en": cases.Title(language.English),
	"es": cases.Title(language.Spanish),
	"de": cases.Title(language.German),
	"fr": cases.Title(language.French),
}

// labelWords translates the vocabulary of provider placement keys per
// supported storefront locale. Words without an entry stay in English,
// so a new provider key degrades to its English reading instead of
// breaking the label.
var labelWords = map[string]map[string]string{
	"es": {
		"front": "delantero", "back": "trasero",
		"left": "izquierda", "right": "derecha",
		"sleeve": "manga", "pocket": "bolsillo",
		"inside": "interior", "outside": "exterior",
	},
	"de": {
		"front": "vorne", "back": "hinten",
		"left": "links", "right": "rechts",
		"sleeve": "ärmel", "pocket": "tasche",
		"inside": "innen", "outside": "außen",
	},
	"fr": {
		"front": "devant", "back": "dos",
		"left": "gauche", "right": "droite",
		"sleeve": "manche", "pocket": "poche",
		"inside": "intérieur", "outside": "extérieur",
	},
}

// Label turns a placement key into an English display label, e.g.
// "sleeve_left" becomes "Sleeve Left".
func Label(placementKey string) string {
	return LabelIn("en", placementKey)
}

// LabelIn renders a placement key as a display label in the given
// storefront locale. Unsupported locales fall back to English.
func LabelIn(locale, placementKey string) string {
	cleaned := strings.TrimSpace(placementKey)
	if cleaned == "" {
		return ""
	}
	words := strings.Split(cleaned, "_")
	if dict, ok := labelWords[locale]; ok {
		for i, w := range words {
			if translated, ok := dict[w]; ok {
				words[i] = translated
			}
		}
	}
	caser, ok := labelCasers[locale]
	if !ok {
		caser = labelCasers["en"]
	}
	return caser.String(strings.Join(words, " "))
}
