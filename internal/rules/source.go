package rules

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"
)

// document on-disk shape of a rule source
type document struct {
	Abbrev   map[string]string   `yaml:"abbrev"`
	Mappings map[string]LoadRule `yaml:"mappings"`
}

// Parse decodes a YAML (or JSON) rule document. Unknown keys are rejected.
func Parse(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	if doc.Abbrev == nil {
		return nil, errors.New("missing abbrev section")
	}
	if doc.Mappings == nil {
		return nil, errors.New("missing mappings section")
	}
	return NewTable(doc.Abbrev, doc.Mappings)
}

// LoadFile builds a table from a local file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}
	t, err := Parse(data)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}
	return t, nil
}

// NewHTTPClient client used for remote rule sources.
func NewHTTPClient() *resty.Client {
	return resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/yaml, application/json, text/plain")
}

// LoadURL builds a table from an http(s) URL.
func LoadURL(ctx context.Context, client *resty.Client, url string) (*Table, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &ConfigError{Source: url, Err: err}
	}
	if resp.IsError() {
		return nil, &ConfigError{Source: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}
	t, err := Parse(resp.Body())
	if err != nil {
		return nil, &ConfigError{Source: url, Err: err}
	}
	return t, nil
}

// Load dispatches on the source: http(s) URLs are fetched, anything else is a path.
func Load(ctx context.Context, client *resty.Client, source string) (*Table, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &ConfigError{Source: "<unset>", Err: errors.New("no rule source configured")}
	}
	if isURL(source) {
		if client == nil {
			client = NewHTTPClient()
		}
		return LoadURL(ctx, client, source)
	}
	return LoadFile(source)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
