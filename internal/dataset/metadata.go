package dataset

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Metadata describes a dataset's columns beyond what the file encodes.
type Metadata struct {
	TargetFeature       string   `yaml:"target_feature"`
	ProblemType         string   `yaml:"problem_type"`
	CategoricalFeatures []string `yaml:"categorical_features"`
}

// IsCategorical reports whether name is listed as categorical.
func (m Metadata) IsCategorical(name string) bool {
	return slices.Contains(m.CategoricalFeatures, name)
}

// readMetadata parses path. A missing file yields empty metadata.
func readMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Metadata{}, nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	return m, nil
}
