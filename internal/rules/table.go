// Package rules holds the immutable rule table that maps raw room labels to
// categories and categories to design loads.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// LoadRule design load attached to a category.
// UniformPSF is nil when the code gives no uniform value.
type LoadRule struct {
	UniformPSF *float64 `json:"uniform_psf" yaml:"uniform_psf"`
	CodeRef    string   `json:"code_ref" yaml:"code_ref"`
}

// Table is read-only after construction and safe for concurrent use.
type Table struct {
	// normalized label -> category
	abbreviations map[string]string
	// normalized category -> load rule
	loads map[string]LoadRule
}

// Normalize trims and upper-cases a label or category key.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NewTable validates and copies the supplied maps. Every problem found is
// reported, not only the first.
func NewTable(abbreviations map[string]string, loads map[string]LoadRule) (*Table, error) {
	t := &Table{
		abbreviations: make(map[string]string, len(abbreviations)),
		loads:         make(map[string]LoadRule, len(loads)),
	}
	var errs *multierror.Error

	for _, label := range sortedKeys(abbreviations) {
		category := strings.TrimSpace(abbreviations[label])
		key := Normalize(label)
		switch {
		case key == "":
			errs = multierror.Append(errs, fmt.Errorf("abbrev: blank label"))
			continue
		case category == "":
			errs = multierror.Append(errs, fmt.Errorf("abbrev %q: blank category", label))
			continue
		}
		if prev, dup := t.abbreviations[key]; dup {
			errs = multierror.Append(errs, fmt.Errorf("abbrev %q: duplicates %s after normalization (already -> %s)", label, key, prev))
			continue
		}
		t.abbreviations[key] = category
	}

	for _, category := range sortedKeys(loads) {
		rule := loads[category]
		key := Normalize(category)
		if key == "" {
			errs = multierror.Append(errs, fmt.Errorf("mappings: blank category"))
			continue
		}
		if _, dup := t.loads[key]; dup {
			errs = multierror.Append(errs, fmt.Errorf("mappings %q: duplicates %s after normalization", category, key))
			continue
		}
		if strings.TrimSpace(rule.CodeRef) == "" {
			errs = multierror.Append(errs, fmt.Errorf("mappings %q: code_ref is required", category))
			continue
		}
		if rule.UniformPSF != nil && *rule.UniformPSF < 0 {
			errs = multierror.Append(errs, fmt.Errorf("mappings %q: uniform_psf must be >= 0, got %v", category, *rule.UniformPSF))
			continue
		}
		t.loads[key] = copyRule(rule)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return t, nil
}

// CategoryOf returns the category mapped to label, if any.
func (t *Table) CategoryOf(label string) (string, bool) {
	c, ok := t.abbreviations[Normalize(label)]
	return c, ok
}

// LoadOf returns the load rule for category, if any.
func (t *Table) LoadOf(category string) (LoadRule, bool) {
	r, ok := t.loads[Normalize(category)]
	if !ok {
		return LoadRule{}, false
	}
	return copyRule(r), true
}

// Abbreviations number of label mappings.
func (t *Table) Abbreviations() int { return len(t.abbreviations) }

// Categories number of categories with a load rule.
func (t *Table) Categories() int { return len(t.loads) }

// Unloaded lists categories referenced by a label but lacking a load rule,
// sorted. Rooms carrying these labels always need review.
func (t *Table) Unloaded() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range t.abbreviations {
		if _, ok := t.loads[Normalize(c)]; ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func copyRule(r LoadRule) LoadRule {
	if r.UniformPSF != nil {
		v := *r.UniformPSF
		r.UniformPSF = &v
	}
	return r
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
