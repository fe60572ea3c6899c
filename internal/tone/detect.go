package tone

import (
	"strings"

	"github.com/repofit/repofit-backend/internal/model"
)

// Stopword lists for the three-way language heuristic. Frequencies of
// these words decide between English and Spanish; diacritics and
// inverted punctuation weigh toward Spanish.
var (
	englishStopwords = map[string]struct{}{
		"the": {}, "and": {}, "for": {}, "with": {}, "you": {},
		"our": {}, "are": {}, "will": {}, "team": {}, "work": {},
		"that": {}, "this": {}, "have": {}, "from": {},
	}
	spanishStopwords = map[string]struct{}{
		"el": {}, "la": {}, "los": {}, "las": {}, "de": {}, "del": {},
		"que": {}, "en": {}, "con": {}, "para": {}, "una": {}, "por": {},
		"nuestro": {}, "equipo": {}, "trabajo": {},
	}
	spanishMarks = []rune{'á', 'é', 'í', 'ó', 'ú', 'ñ', '¿', '¡'}
)

// detectLanguage is a cheap heuristic, used only to decide whether the
// English-only content-classification call is worth making.
func detectLanguage(text string) model.Language {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return model.LangOther
	}

	var en, es int
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?()\"'")
		if _, ok := englishStopwords[w]; ok {
			en++
		}
		if _, ok := spanishStopwords[w]; ok {
			es++
		}
	}

	marks := 0
	for _, r := range text {
		for _, m := range spanishMarks {
			if r == m {
				marks++
				break
			}
		}
	}
	// Diacritics are strong evidence; a handful outweighs stopword ties.
	es += marks * 2

	total := len(words)
	switch {
	case es > en && es*20 >= total: // at least ~5% Spanish evidence
		return model.LangSpanish
	case en >= es && en*20 >= total:
		return model.LangEnglish
	default:
		return model.LangOther
	}
}
