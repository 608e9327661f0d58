package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/pipeline"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"gopkg.in/yaml.v3"
)

// readSource returns raw, or the content of the file it names when it starts
// with '@'.
func readSource(raw string) ([]byte, error) {
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s': %w", path, err)
		}
		return data, nil
	}
	return []byte(raw), nil
}

// ParseDocument decodes a JSON or YAML mapping, given inline or as @path.
// An empty document is an empty map.
func ParseDocument(raw string) (value.Map, error) {
	src, err := readSource(raw)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc == nil {
		return value.Map{}, nil
	}
	m, err := value.MapFromGo(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	return m, nil
}

type batchItem struct {
	Data       map[string]any `yaml:"data"`
	Parameters map[string]any `yaml:"parameters"`
}

// ParseBatch decodes a list of {data, parameters} items, given inline or as
// @path.
func ParseBatch(raw string) ([]pipeline.Input, error) {
	src, err := readSource(raw)
	if err != nil {
		return nil, err
	}
	var items []batchItem
	if err := yaml.Unmarshal(src, &items); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}

	inputs := make([]pipeline.Input, len(items))
	for i, item := range items {
		data, err := value.MapFromGo(item.Data)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: data: %w", i, err)
		}
		params, err := value.MapFromGo(item.Parameters)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: parameters: %w", i, err)
		}
		inputs[i] = pipeline.Input{Data: data, Parameters: params}
	}
	return inputs, nil
}
