// Package aspects maps review text to the product aspects it talks about,
// using a multilingual keyword table.
package aspects

import (
	"errors"
	"fmt"
	"strings"

	"review_compare/internal/textutil"
)

// Overall is the aspect assigned to text that matches no keyword.
const Overall = "overall"

type Aspect struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Table is an ordered, read-only keyword table. Build it once and share it.
type Table struct {
	aspects []Aspect // keywords stored folded
	index   map[string]int
}

func NewTable(in []Aspect) (*Table, error) {
	t := &Table{index: make(map[string]int, len(in))}
	for _, a := range in {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return nil, errors.New("aspect with empty name")
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate aspect %q", name)
		}
		kws := make([]string, 0, len(a.Keywords))
		for _, k := range a.Keywords {
			if f := textutil.Fold(strings.TrimSpace(k)); f != "" {
				kws = append(kws, f)
			}
		}
		t.index[name] = len(t.aspects)
		t.aspects = append(t.aspects, Aspect{Name: name, Keywords: kws})
	}
	return t, nil
}

// Names lists aspect names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.aspects))
	for i, a := range t.aspects {
		out[i] = a.Name
	}
	return out
}

func (t *Table) Keywords(name string) []string {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return append([]string(nil), t.aspects[i].Keywords...)
}
