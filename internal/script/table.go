package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
)

// Table is a phrase substitution mapping. Longer phrases win over shorter
// ones starting at the same position.
type Table struct {
	name     string
	size     int
	replacer *strings.Replacer
}

// NewTable builds a table from phrase pairs. Empty keys are ignored.
func NewTable(name string, pairs map[string]string) *Table {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		if k != "" {
			keys = append(keys, k)
		}
	}
	// strings.Replacer prefers earlier arguments on ties, so order longest first.
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	oldnew := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		oldnew = append(oldnew, k, pairs[k])
	}
	if strings.TrimSpace(name) == "" {
		name = "table"
	}
	return &Table{name: name, size: len(keys), replacer: strings.NewReplacer(oldnew...)}
}

func (t *Table) Name() string { return t.name }

// Len reports the number of phrases in the table.
func (t *Table) Len() int { return t.size }

func (t *Table) Map(text string) string {
	if t == nil || t.size == 0 || text == "" {
		return text
	}
	return t.replacer.Replace(text)
}

// LoadTable reads a substitution table from a TOML or JSON file holding a
// flat string-to-string map (optionally nested under a "phrases" key).
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping table: %w", err)
	}
	var doc struct {
		Phrases map[string]string `json:"phrases" toml:"phrases"`
	}
	var flat map[string]string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil || len(doc.Phrases) == 0 {
			if err := json.Unmarshal(data, &flat); err != nil {
				return nil, fmt.Errorf("parse mapping table %s: %w", path, err)
			}
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil || len(doc.Phrases) == 0 {
			if err := toml.Unmarshal(data, &flat); err != nil {
				return nil, fmt.Errorf("parse mapping table %s: %w", path, err)
			}
		}
	default:
		return nil, fmt.Errorf("mapping table %s: unsupported extension (use .toml or .json)", path)
	}

	pairs := doc.Phrases
	if len(pairs) == 0 {
		pairs = flat
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewTable(name, pairs), nil
}
