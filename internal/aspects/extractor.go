package aspects

import (
	"strings"

	"review_compare/internal/textutil"
)

type Extractor struct{ table *Table }

func NewExtractor(t *Table) *Extractor {
	if t == nil {
		t = DefaultTable()
	}
	return &Extractor{table: t}
}

func (e *Extractor) Table() *Table { return e.table }

// Extract returns the aspects mentioned in text, in table order, each once.
// The result is never empty: unmatched text yields [Overall].
func (e *Extractor) Extract(text string) []string {
	folded := textutil.Fold(text)
	var found []string
	for _, a := range e.table.aspects {
		if containsAny(folded, a.Keywords) {
			found = append(found, a.Name)
		}
	}
	if len(found) == 0 {
		return []string{Overall}
	}
	return found
}

// Sentences returns the sentences of text that mention one of aspect's keywords.
func (e *Extractor) Sentences(text, aspect string) []string {
	i, ok := e.table.index[aspect]
	if !ok {
		return nil
	}
	kws := e.table.aspects[i].Keywords
	var out []string
	for _, s := range textutil.Sentences(text) {
		if containsAny(textutil.Fold(s), kws) {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(folded string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}
