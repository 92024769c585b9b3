// Package i18n holds the listing's translation tables.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is used for unknown locales and missing keys
const DefaultLocale = "en_US"

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	loadOnce sync.Once
	tables   map[string]map[string]string
	loadErr  error
)

// Translator resolves flattened keys such as "SortDropdown.title"
type Translator struct {
	locale   string
	table    map[string]string
	fallback map[string]string
}

// Get returns the translator for locale, falling back to en_US
func Get(locale string) *Translator {
	all := mustLoad()
	fallback := all[DefaultLocale]

	table, ok := all[normalize(locale)]
	if !ok {
		return &Translator{locale: DefaultLocale, table: fallback, fallback: fallback}
	}
	return &Translator{locale: normalize(locale), table: table, fallback: fallback}
}

// Locales lists the embedded locales
func Locales() []string {
	all := mustLoad()
	out := make([]string, 0, len(all))
	for l := range all {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Locale returns the resolved locale
func (t *Translator) Locale() string {
	return t.locale
}

// T returns the string for key. Unknown keys resolve to the key itself.
func (t *Translator) T(key string) string {
	if v, ok := t.table[key]; ok {
		return v
	}
	if v, ok := t.fallback[key]; ok {
		return v
	}
	return key
}

// Format returns T(key) with {name} placeholders replaced from vars
func (t *Translator) Format(key string, vars map[string]string) string {
	out := t.T(key)
	if len(vars) == 0 {
		return out
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(out)
}

// Table returns a copy of the full table, fallback keys included
func (t *Translator) Table() map[string]string {
	out := make(map[string]string, len(t.fallback))
	for k, v := range t.fallback {
		out[k] = v
	}
	for k, v := range t.table {
		out[k] = v
	}
	return out
}

func normalize(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(locale), "-", "_")
}

func mustLoad() map[string]map[string]string {
	loadOnce.Do(func() {
		tables, loadErr = load()
	})
	if loadErr != nil {
		panic(loadErr)
	}
	return tables
}

func load() (map[string]map[string]string, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	out := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		data, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		table := map[string]string{}
		flatten("", raw, table)
		out[strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))] = table
	}
	if _, ok := out[DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %s is missing", DefaultLocale)
	}
	return out, nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
