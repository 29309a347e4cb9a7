// Package i18n resolves translation strings with locale fallback.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Translator holds per-locale dictionaries of namespace -> key -> value.
// Dictionaries are loaded once and read-only afterwards.
type Translator struct {
	fallback string
	tables   map[string]map[string]map[string]string
	matcher  language.Matcher
	locales  []string
}

// Load reads every <locale>.yml dictionary under dir. fallback must be one
// of the loaded locales; lookups that miss in the requested locale resolve
// against it.
func Load(dir, fallback string) (*Translator, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read translation dir: %w", err)
	}

	t := &Translator{
		fallback: fallback,
		tables:   make(map[string]map[string]map[string]string),
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".yaml")) {
			continue
		}
		locale := strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")

		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read dictionary %s: %w", name, err)
		}
		var table map[string]map[string]string
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("parse dictionary %s: %w", name, err)
		}
		t.tables[locale] = table
	}

	if _, ok := t.tables[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %q has no dictionary", fallback)
	}

	for locale := range t.tables {
		t.locales = append(t.locales, locale)
	}
	sort.Strings(t.locales)

	tags := make([]language.Tag, 0, len(t.locales)+1)
	// The fallback locale must come first so it wins when nothing matches.
	tags = append(tags, language.Make(fallback))
	for _, locale := range t.locales {
		if locale != fallback {
			tags = append(tags, language.Make(locale))
		}
	}
	t.matcher = language.NewMatcher(tags)

	return t, nil
}

// Locales returns the loaded locales, sorted.
func (t *Translator) Locales() []string {
	return t.locales
}

// Has reports whether a dictionary exists for the locale.
func (t *Translator) Has(locale string) bool {
	_, ok := t.tables[locale]
	return ok
}

// Lookup resolves namespace/key in the given locale, falling back to the
// fallback locale and finally to the key itself.
func (t *Translator) Lookup(locale, namespace, key string) string {
	if v, ok := t.lookup(locale, namespace, key); ok {
		return v
	}
	if v, ok := t.lookup(t.fallback, namespace, key); ok {
		return v
	}
	return key
}

func (t *Translator) lookup(locale, namespace, key string) (string, bool) {
	table, ok := t.tables[locale]
	if !ok {
		return "", false
	}
	ns, ok := table[namespace]
	if !ok {
		return "", false
	}
	v, ok := ns[key]
	return v, ok
}

// Namespace returns the resolved dictionary for a namespace: every key of
// the fallback namespace, overlaid with the locale's own entries.
func (t *Translator) Namespace(locale, namespace string) map[string]string {
	out := make(map[string]string)
	for k, v := range t.tables[t.fallback][namespace] {
		out[k] = v
	}
	if locale != t.fallback {
		for k, v := range t.tables[locale][namespace] {
			out[k] = v
		}
	}
	return out
}

// Negotiate picks the best supported locale for an Accept-Language header.
// Returns the fallback locale when nothing matches.
func (t *Translator) Negotiate(acceptLanguage string) string {
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return t.fallback
	}
	_, index, conf := t.matcher.Match(desired...)
	if conf == language.No {
		return t.fallback
	}
	// Matcher tag order: fallback first, then the remaining locales sorted.
	ordered := make([]string, 0, len(t.locales))
	ordered = append(ordered, t.fallback)
	for _, locale := range t.locales {
		if locale != t.fallback {
			ordered = append(ordered, locale)
		}
	}
	if index < 0 || index >= len(ordered) {
		return t.fallback
	}
	return ordered[index]
}
