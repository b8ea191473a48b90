// Package textutil holds the text helpers shared by the extractor, scorer and review sources.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns NFC text with whitespace runs collapsed to one space.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Fold is the matching form used for keyword lookups: NFC and lower case.
// Devanagari has no case, so only Latin text is affected by the lowering.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// Key folds an identifier (product name, aspect) for map and cache keys.
func Key(s string) string {
	return Fold(Normalize(s))
}

var (
	reURL      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	reEmail    = regexp.MustCompile(`\S+@\S+`)
	reSpace    = regexp.MustCompile(`\s+`)
	rePunctRun = regexp.MustCompile(`[!?।॥.]{3,}`)
)

// Clean strips URLs and e-mail addresses, collapses whitespace and
// shortens runs of three or more sentence marks to their first two.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = reURL.ReplaceAllString(s, "")
	s = reEmail.ReplaceAllString(s, "")
	s = reSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return rePunctRun.ReplaceAllStringFunc(s, func(run string) string {
		r := []rune(run)
		return string(r[:2])
	})
}

func isSentenceMark(r rune) bool {
	switch r {
	case '।', '॥', '.', '!', '?':
		return true
	}
	return false
}

// Sentences splits on Devanagari danda/double danda and . ! ?, dropping empty pieces.
func Sentences(s string) []string {
	parts := strings.FieldsFunc(s, isSentenceMark)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
