// Package catalog loads the list of table titles segmentation anchors on.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/xltables/internal/common"
)

// File is the on-disk catalog document:
//
//	titles:
//	  - DISCOUNT RATE
//	  - WORKING CAPITAL
type File struct {
	Titles []string `yaml:"titles" json:"titles"`
}

// Schema returns the JSON-Schema a catalog document must satisfy.
func Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"titles"},
		"properties": map[string]any{
			"titles": map[string]any{
				"type":        "array",
				"minItems":    1,
				"uniqueItems": true,
				"items": map[string]any{
					"type":      "string",
					"minLength": 1,
					"pattern":   `\S`,
				},
			},
		},
	}
}

// Load reads a YAML or JSON catalog from path.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes and validates a catalog document. ext selects the format
// (".json" or YAML for anything else). Titles are trimmed.
func Parse(data []byte, ext string) ([]string, error) {
	var raw any
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, common.NewAppError("CONFIG_ERROR", "decode catalog json", invalid(err))
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, common.NewAppError("CONFIG_ERROR", "decode catalog yaml", invalid(err))
		}
	}

	// Round trip through JSON so YAML values take the shapes the validator expects.
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", "normalize catalog", invalid(err))
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	// Trim first so uniqueItems sees the titles the locator will match on.
	trimTitles(doc)
	if err := validate(doc); err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", "catalog does not match schema", invalid(err))
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	titles := make([]string, 0, len(f.Titles))
	for _, t := range f.Titles {
		titles = append(titles, strings.TrimSpace(t))
	}
	return titles, nil
}

func trimTitles(doc any) {
	m, ok := doc.(map[string]any)
	if !ok {
		return
	}
	titles, ok := m["titles"].([]any)
	if !ok {
		return
	}
	for i, t := range titles {
		if s, ok := t.(string); ok {
			titles[i] = strings.TrimSpace(s)
		}
	}
}

func validate(doc any) error {
	b, err := json.Marshal(Schema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return schema.Validate(doc)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", common.ErrValidation, err)
}
