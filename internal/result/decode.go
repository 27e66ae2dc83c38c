package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalid is returned when a document does not describe a valid Result.
var ErrInvalid = errors.New("invalid result")

// Schema is the JSON Schema every Result document must satisfy.
var Schema = map[string]any{
	"type":     "object",
	"required": []string{"columns", "rows"},
	"properties": map[string]any{
		"columns": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"name", "type"},
				"properties": map[string]any{
					"name": map[string]any{"type": "string", "minLength": 1},
					"type": map[string]any{"type": "string", "enum": []string{"string", "number", "date"}},
					"unit": map[string]any{"type": []string{"string", "null"}},
				},
			},
		},
		"rows": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
		"total_rows": map[string]any{"type": "integer", "minimum": 0},
		"metadata":   map[string]any{"type": []string{"object", "null"}},
	},
}

type wireResult struct {
	Columns   []wireColumn     `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	TotalRows *int             `json:"total_rows"`
	Metadata  map[string]any   `json:"metadata"`
}

type wireColumn struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
	Unit *string    `json:"unit"`
}

// Validate checks raw JSON against Schema.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(Schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if res.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range res.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, ", "))
}

// Decode validates and parses a Result document, normalizing rows to the
// declared columns.
func Decode(data []byte) (*Result, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var wire wireResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	seen := make(map[string]bool, len(wire.Columns))
	res := &Result{
		Columns:  make([]Column, 0, len(wire.Columns)),
		Rows:     make([]Row, 0, len(wire.Rows)),
		Metadata: wire.Metadata,
	}
	for _, c := range wire.Columns {
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalid, c.Name)
		}
		seen[c.Name] = true
		col := Column{Name: c.Name, Type: c.Type}
		if c.Unit != nil {
			col.Unit = *c.Unit
		}
		res.Columns = append(res.Columns, col)
	}
	for _, r := range wire.Rows {
		res.Rows = append(res.Rows, Row(r))
	}
	if wire.TotalRows != nil {
		res.TotalRows = *wire.TotalRows
	}
	if res.Metadata == nil {
		res.Metadata = map[string]any{}
	}
	res.Normalize()
	return res, nil
}

// Read decodes a Result from r.
func Read(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Load decodes a Result stored in a JSON file.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read result file %q: %w", path, err)
	}
	res, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("result file %q: %w", path, err)
	}
	return res, nil
}
