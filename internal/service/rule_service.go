package service

import (
	"context"

	"loadmap/internal/rules"
)

// RuleReloader rebuilds the active table from its source.
type RuleReloader interface {
	TableSource
	Reload(ctx context.Context) (*rules.Table, error)
}

// RuleService label lookups and table reloads.
type RuleService struct {
	provider RuleReloader
}

func NewRuleService(provider RuleReloader) *RuleService {
	return &RuleService{provider: provider}
}

// LabelMapping GET /rules/map response
type LabelMapping struct {
	InputLabel string          `json:"input_label"`
	Category   *string         `json:"category"`
	Mapping    *rules.LoadRule `json:"mapping"`
}

// MapLabel classifies a single label. Unknown labels map to nulls.
func (s *RuleService) MapLabel(label string) LabelMapping {
	c := rules.Classify(s.provider.Table(), label)
	return LabelMapping{InputLabel: label, Category: c.Category, Mapping: c.Load}
}

// RuleStats counts describing a table.
type RuleStats struct {
	Abbreviations      int      `json:"abbreviations"`
	Categories         int      `json:"categories"`
	UnloadedCategories []string `json:"unloaded_categories"`
}

func statsOf(t *rules.Table) RuleStats {
	return RuleStats{
		Abbreviations:      t.Abbreviations(),
		Categories:         t.Categories(),
		UnloadedCategories: t.Unloaded(),
	}
}

// Stats describes the active table.
func (s *RuleService) Stats() RuleStats {
	return statsOf(s.provider.Table())
}

// Reload swaps in a freshly built table; the old one stays active on error.
func (s *RuleService) Reload(ctx context.Context) (*RuleStats, error) {
	t, err := s.provider.Reload(ctx)
	if err != nil {
		return nil, err
	}
	st := statsOf(t)
	return &st, nil
}
