package data

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/world"
)

// decodeYAML decodes src into out, rejecting unknown fields. An empty
// document leaves out untouched.
func decodeYAML(path string, src []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(src))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &LoadError{Code: ErrCodeParse, Path: path, Message: err.Error()}
	}
	return nil
}

func loadYAML(path string, out any) error {
	b, err := readFile(path)
	if err != nil {
		return err
	}
	return decodeYAML(path, b, out)
}

// LoadItemTable reads an item table: a list of item rows.
func LoadItemTable(path string) ([]world.ItemDef, error) {
	var defs []world.ItemDef
	if err := loadYAML(path, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// LoadLocationTable reads a location table: a list of location rows.
func LoadLocationTable(path string) ([]world.LocationDef, error) {
	var defs []world.LocationDef
	if err := loadYAML(path, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// LoadEntranceTable reads an entrance table: a list of typed entrances.
func LoadEntranceTable(path string) ([]world.EntranceDef, error) {
	var defs []world.EntranceDef
	if err := loadYAML(path, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// LoadSettings reads a settings file: a mapping from setting name to value.
func LoadSettings(path string) (ir.Object, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSettings(path, b)
}

// ParseSettings parses a settings document. Fractional numbers are rejected.
func ParseSettings(path string, src []byte) (ir.Object, error) {
	var raw map[string]any
	if err := decodeYAML(path, src, &raw); err != nil {
		return nil, err
	}
	obj, err := ir.ObjectFromAny(raw)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Path: path, Message: err.Error()}
	}
	return obj, nil
}
