package aspects

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Aspects []Aspect `yaml:"aspects"`
}

// LoadTable reads keyword overrides from a YAML file and merges them onto the
// defaults: an entry named like a default aspect replaces its keywords, other
// entries are appended in file order. An empty path returns the defaults.
func LoadTable(path string) (*Table, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(filepath.Clean(clean))
	if err != nil {
		return nil, fmt.Errorf("read aspect table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse aspect table: %w", err)
	}
	return NewTable(merge(DefaultAspects(), f.Aspects))
}

func merge(base, overrides []Aspect) []Aspect {
	out := append([]Aspect(nil), base...)
	pos := make(map[string]int, len(out))
	for i, a := range out {
		pos[a.Name] = i
	}
	for _, o := range overrides {
		name := strings.TrimSpace(o.Name)
		if i, ok := pos[name]; ok {
			out[i].Keywords = o.Keywords
			continue
		}
		pos[name] = len(out)
		out = append(out, Aspect{Name: name, Keywords: o.Keywords})
	}
	return out
}
