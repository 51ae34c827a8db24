// Package seriesfile reads a daily series and an insight list from a local
// JSON or YAML document and serves them as a data source.
package seriesfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aristath/wellness/internal/domain"
)

// Document is the on-disk layout: the upstream timeseries payload plus an
// optional insight list.
type Document struct {
	Series   domain.TimeSeries `json:"series"`
	Insights []domain.Insight  `json:"insights"`
}

// yamlDocument decodes insights generically so they can pass through the
// JSON codecs of domain.Insight.
type yamlDocument struct {
	Series   domain.TimeSeries        `yaml:"series"`
	Insights []map[string]interface{} `yaml:"insights"`
}

// Parse decodes data as YAML when format is "yaml" or "yml", JSON otherwise.
func Parse(data []byte, format string) (*Document, error) {
	var doc Document
	switch strings.ToLower(format) {
	case "yaml", "yml":
		var raw yamlDocument
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		doc.Series = raw.Series
		if len(raw.Insights) > 0 {
			encoded, err := json.Marshal(raw.Insights)
			if err != nil {
				return nil, fmt.Errorf("failed to convert insights: %w", err)
			}
			if err := json.Unmarshal(encoded, &doc.Insights); err != nil {
				return nil, fmt.Errorf("failed to parse insights: %w", err)
			}
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	if err := doc.Series.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads path, choosing the decoder from its extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Source serves a loaded document.
type Source struct {
	doc *Document
}

// NewSource wraps doc as a data source.
func NewSource(doc *Document) *Source {
	return &Source{doc: doc}
}

// TimeSeries returns the last rangeDays days of the document's series.
func (s *Source) TimeSeries(_ context.Context, rangeDays int) (domain.TimeSeries, error) {
	return s.doc.Series.Tail(rangeDays), nil
}

// Insights returns every insight in the document regardless of range.
func (s *Source) Insights(_ context.Context, _ int) ([]domain.Insight, error) {
	return s.doc.Insights, nil
}
