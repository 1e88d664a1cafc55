// Package rules holds the static classification tables: the commissary to
// CPI category correspondence and the essential/non-essential keyword
// lists. Tables are loaded once from embedded YAML and are read-only.
package rules

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/francescacollu/prison-inflation/internal"
)

//go:embed tables.yaml
var tablesYAML []byte

// DefaultCPIType is the comparison series for categories with no mapping.
const DefaultCPIType = "CPI-U"

type categoryException struct {
	NonEssentialFirst bool     `yaml:"non_essential_first"`
	Essential         []string `yaml:"essential"`
	NonEssential      []string `yaml:"non_essential"`
	EssentialHints    []string `yaml:"essential_hints"`
	Default           string   `yaml:"default"`
}

type tablesFile struct {
	CPIToCommissary             map[string][]string          `yaml:"cpi_to_commissary"`
	EssentialCategories         []string                     `yaml:"essential_categories"`
	NonEssentialCategories      []string                     `yaml:"non_essential_categories"`
	EssentialKeywords           []string                     `yaml:"essential_keywords"`
	NonEssentialKeywords        []string                     `yaml:"non_essential_keywords"`
	CategoryExceptions          map[string]categoryException `yaml:"category_exceptions"`
	EssentialFallbackCategories []string                     `yaml:"essential_fallback_categories"`
}

type Tables struct {
	commissaryToCPI        map[string]string
	essentialCategories    map[string]struct{}
	nonEssentialCategories map[string]struct{}
	essentialKeywords      []string
	nonEssentialKeywords   []string
	exceptions             map[string]categoryException
	essentialFallbacks     map[string]struct{}
}

// Load parses the embedded rule tables.
func Load() (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(tablesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse rule tables: %w", err)
	}

	t := &Tables{
		commissaryToCPI:        map[string]string{},
		essentialCategories:    toSet(f.EssentialCategories),
		nonEssentialCategories: toSet(f.NonEssentialCategories),
		essentialKeywords:      f.EssentialKeywords,
		nonEssentialKeywords:   f.NonEssentialKeywords,
		exceptions:             f.CategoryExceptions,
		essentialFallbacks:     toSet(f.EssentialFallbackCategories),
	}
	for cpiCategory, commissaryCategories := range f.CPIToCommissary {
		for _, c := range commissaryCategories {
			t.commissaryToCPI[strings.ToUpper(c)] = cpiCategory
		}
	}
	return t, nil
}

// CPICategory maps a commissary category to its CPI comparison series,
// falling back to the all-items index when unmapped.
func (t *Tables) CPICategory(commissaryCategory string) string {
	if cpi, ok := t.commissaryToCPI[strings.ToUpper(strings.TrimSpace(commissaryCategory))]; ok {
		return cpi
	}
	return DefaultCPIType
}

// CPITypes lists the distinct CPI categories in the mapping, sorted.
func (t *Tables) CPITypes() []string {
	seen := map[string]struct{}{}
	for _, cpi := range t.commissaryToCPI {
		seen[cpi] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for cpi := range seen {
		out = append(out, cpi)
	}
	sort.Strings(out)
	return out
}

// Classify tags an item as essential or non-essential. Precedence:
// category-exception keyword lists, then the generic non-essential
// override, then the category default, then generic essential keywords,
// then generic non-essential keywords, then the final default.
func (t *Tables) Classify(itemName, category string) internal.EssentialStatus {
	name := strings.ToLower(itemName)
	cat := strings.ToUpper(strings.TrimSpace(category))

	if exc, ok := t.exceptions[cat]; ok {
		return classifyException(name, exc)
	}

	if _, ok := t.essentialCategories[cat]; ok {
		if containsAny(name, t.nonEssentialKeywords) {
			return internal.NonEssential
		}
		return internal.Essential
	}

	if _, ok := t.nonEssentialCategories[cat]; ok {
		return internal.NonEssential
	}

	// Ambiguous category: decide on item-name keywords alone.
	if containsAny(name, t.essentialKeywords) {
		if containsAny(name, t.nonEssentialKeywords) {
			return internal.NonEssential
		}
		return internal.Essential
	}
	if containsAny(name, t.nonEssentialKeywords) {
		return internal.NonEssential
	}

	if _, ok := t.essentialFallbacks[cat]; ok {
		return internal.Essential
	}
	return internal.NonEssential
}

func classifyException(name string, exc categoryException) internal.EssentialStatus {
	if exc.NonEssentialFirst {
		if containsAny(name, exc.NonEssential) {
			return internal.NonEssential
		}
		if containsAny(name, exc.Essential) {
			return internal.Essential
		}
	} else {
		if containsAny(name, exc.Essential) {
			return internal.Essential
		}
		if containsAny(name, exc.NonEssential) {
			return internal.NonEssential
		}
	}
	if containsAny(name, exc.EssentialHints) {
		return internal.Essential
	}
	if exc.Default == string(internal.Essential) {
		return internal.Essential
	}
	return internal.NonEssential
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToUpper(v)] = struct{}{}
	}
	return out
}
