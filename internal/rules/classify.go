package rules

// Classification result of classifying one raw label. Nil fields mean the
// label or its category is not covered by the table; that is an expected
// outcome, not an error.
type Classification struct {
	Category *string
	Load     *LoadRule
}

// Classify maps a raw label to its category and load rule.
func Classify(t *Table, rawLabel string) Classification {
	var out Classification
	category, ok := t.CategoryOf(rawLabel)
	if !ok {
		return out
	}
	out.Category = &category
	if rule, ok := t.LoadOf(category); ok {
		out.Load = &rule
	}
	return out
}
