package textutil

import (
	"strings"
	"unicode"

	"review_compare/internal/domain"
)

// marathiMarkers are common Marathi words that Hindi text does not use.
var marathiMarkers = map[string]struct{}{
	"आहे": {}, "मी": {}, "झाला": {}, "होता": {}, "वाटला": {}, "केला": {}, "बद्दल": {},
}

var marathiSources = []string{"marathi.gizbot", "marathi.news"}

// HasDevanagari reports whether s contains any Devanagari code point.
func HasDevanagari(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Devanagari, r) {
			return true
		}
	}
	return false
}

// CountDevanagari counts Devanagari code points in s.
func CountDevanagari(s string) int {
	n := 0
	for _, r := range s {
		if unicode.Is(unicode.Devanagari, r) {
			n++
		}
	}
	return n
}

// DetectLanguage classifies text by script. Devanagari text is Marathi when it
// carries a Marathi marker word or came from a Marathi edition URL, else Hindi.
func DetectLanguage(text, sourceURL string) domain.Language {
	if !HasDevanagari(text) {
		return domain.LangEnglish
	}
	u := strings.ToLower(sourceURL)
	for _, s := range marathiSources {
		if strings.Contains(u, s) {
			return domain.LangMarathi
		}
	}
	for _, w := range strings.FieldsFunc(text, notWordRune) {
		if _, ok := marathiMarkers[w]; ok {
			return domain.LangMarathi
		}
	}
	return domain.LangHindi
}

// notWordRune splits on anything but letters and combining marks; Devanagari
// vowel signs are marks, so words stay whole.
func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsMark(r)
}

// ParseLanguage maps a dataset label to a Language; unknown or empty labels are regional.
func ParseLanguage(s string) domain.Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hindi", "hi":
		return domain.LangHindi
	case "marathi", "mr":
		return domain.LangMarathi
	case "english", "en":
		return domain.LangEnglish
	default:
		return domain.LangRegional
	}
}
