package rules

import (
	"context"

	"github.com/go-resty/resty/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Provider hands out the active table. Reload builds a complete new table
// and swaps it in one step, so readers never see a partial table.
type Provider struct {
	source  string
	client  *resty.Client
	current atomic.Pointer[Table]
	logger  *zap.Logger
}

// NewProvider builds the initial table from source; a failure is fatal to the caller.
func NewProvider(ctx context.Context, source string, client *resty.Client, logger *zap.Logger) (*Provider, error) {
	t, err := Load(ctx, client, source)
	if err != nil {
		return nil, err
	}
	p := &Provider{source: source, client: client, logger: logger}
	p.current.Store(t)
	logger.Info("Rule table loaded",
		zap.String("source", source),
		zap.Int("abbreviations", t.Abbreviations()),
		zap.Int("categories", t.Categories()),
		zap.Strings("unloaded_categories", t.Unloaded()),
	)
	return p, nil
}

// NewStaticProvider wraps a prebuilt table. Reload is a no-op.
func NewStaticProvider(t *Table) *Provider {
	p := &Provider{logger: zap.NewNop()}
	p.current.Store(t)
	return p
}

// Table returns the active table.
func (p *Provider) Table() *Table {
	return p.current.Load()
}

// Source where the table is loaded from; empty for static providers.
func (p *Provider) Source() string { return p.source }

// Reload rebuilds from the source. On error the previous table stays active.
func (p *Provider) Reload(ctx context.Context) (*Table, error) {
	if p.source == "" {
		return p.Table(), nil
	}
	t, err := Load(ctx, p.client, p.source)
	if err != nil {
		p.logger.Error("Rule table reload failed, keeping previous table", zap.String("source", p.source), zap.Error(err))
		return nil, err
	}
	p.current.Store(t)
	p.logger.Info("Rule table reloaded",
		zap.String("source", p.source),
		zap.Int("abbreviations", t.Abbreviations()),
		zap.Int("categories", t.Categories()),
	)
	return t, nil
}
