package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPages is used when a filter file does not set n_pages.
const DefaultPages = 1

// Filters is the user-supplied search customization for one portal and category.
type Filters struct {
	Filters map[string]any `yaml:"filters"`
	NPages  int            `yaml:"n_pages"`
}

// FilterFiles reads {dir}/{portal}/{category}.yaml. The file must exist; JSON
// content is accepted since it is valid YAML.
type FilterFiles struct {
	Dir string
}

func NewFilterFiles(dir string) *FilterFiles {
	return &FilterFiles{Dir: dir}
}

func (f *FilterFiles) Path(portal, category string) string {
	return filepath.Join(f.Dir, strings.ToLower(portal), strings.ToLower(category)+".yaml")
}

func (f *FilterFiles) Load(portal, category string) (*Filters, error) {
	path := f.Path(portal, category)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("filter file %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("read filter file %s: %w", path, err)
	}
	return ParseFilters(data)
}

func ParseFilters(data []byte) (*Filters, error) {
	var flt Filters
	if err := yaml.Unmarshal(data, &flt); err != nil {
		return nil, fmt.Errorf("parse filters: %w", err)
	}
	if flt.Filters == nil {
		flt.Filters = map[string]any{}
	}
	if flt.NPages <= 0 {
		flt.NPages = DefaultPages
	}
	return &flt, nil
}
