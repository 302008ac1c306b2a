// Package targets reads the list of pages to check from disk.
package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/pagemonitor/internal/domain"
)

// Load reads the endpoint list at path. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON. The document must be a list. A
// missing, unreadable or malformed file is reported as
// domain.ErrConfiguration. Entries are not validated here; the monitor does
// that before any check runs.
func Load(path string) ([]domain.EndpointSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", domain.ErrConfiguration, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(path, b)
	default:
		return decodeJSON(path, b)
	}
}

func decodeJSON(path string, b []byte) ([]domain.EndpointSpec, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
	}
	if _, ok := doc.([]any); !ok {
		return nil, fmt.Errorf("%w: %s must contain a list", domain.ErrConfiguration, path)
	}

	var out []domain.EndpointSpec
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrConfiguration, path, err)
	}
	return out, nil
}

func decodeYAML(path string, b []byte) ([]domain.EndpointSpec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s must contain a list", domain.ErrConfiguration, path)
	}

	var out []domain.EndpointSpec
	if err := doc.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrConfiguration, path, err)
	}
	return out, nil
}
