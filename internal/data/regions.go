package data

import (
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/ootlogic/internal/world"
)

// compile strips comments from a JSON logic file and compiles it as CUE.
// JSON is a subset of CUE, and CUE keeps the declaration order of fields,
// which region files rely on.
func compile(path string, src []byte) (cue.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(StripComments(src), cue.Filename(path))
	if err := v.Err(); err != nil {
		return v, fromCUE(ErrCodeParse, path, err)
	}
	// Conflicting duplicate keys only show up on a full walk.
	if err := v.Validate(); err != nil {
		return v, fromCUE(ErrCodeParse, path, err)
	}
	return v, nil
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Path: path, Message: err.Error()}
	}
	return b, nil
}

// LoadRegions reads a region file.
func LoadRegions(path string) ([]world.RegionDesc, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegions(path, b)
}

// ParseRegions parses a region file: a list of region objects whose events,
// locations and exits map names to rule strings.
func ParseRegions(path string, src []byte) ([]world.RegionDesc, error) {
	v, err := compile(path, src)
	if err != nil {
		return nil, err
	}
	if v.Kind() != cue.ListKind {
		return nil, schemaError(path, v.Pos(), "region file must be a list, got %s", v.Kind())
	}
	iter, err := v.List()
	if err != nil {
		return nil, fromCUE(ErrCodeSchema, path, err)
	}
	var out []world.RegionDesc
	for iter.Next() {
		rd, err := decodeRegion(path, iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, nil
}

func decodeRegion(path string, v cue.Value) (world.RegionDesc, error) {
	var rd world.RegionDesc
	if v.Kind() != cue.StructKind {
		return rd, schemaError(path, v.Pos(), "region must be an object, got %s", v.Kind())
	}
	fields, err := v.Fields()
	if err != nil {
		return rd, fromCUE(ErrCodeSchema, path, err)
	}
	for fields.Next() {
		label := fields.Selector().Unquoted()
		fv := fields.Value()
		var err error
		switch label {
		case "region_name":
			rd.Name, err = stringField(path, label, fv)
		case "dungeon":
			rd.Dungeon, err = stringField(path, label, fv)
		case "scene":
			rd.Scene, err = stringField(path, label, fv)
		case "hint":
			rd.Hint, err = stringField(path, label, fv)
		case "alt_hint":
			rd.AltHint, err = stringField(path, label, fv)
		case "savewarp":
			rd.Savewarp, err = stringField(path, label, fv)
		case "provides_time":
			rd.ProvidesTime, err = stringField(path, label, fv)
		case "time_passes":
			rd.TimePasses, err = boolField(path, label, fv)
		case "is_boss_room":
			rd.IsBossRoom, err = boolField(path, label, fv)
		case "events":
			rd.Events, err = ruleEntries(path, label, fv)
		case "locations":
			rd.Locations, err = ruleEntries(path, label, fv)
		case "exits":
			rd.Exits, err = ruleEntries(path, label, fv)
		}
		if err != nil {
			return rd, err
		}
	}
	if rd.Name == "" {
		return rd, schemaError(path, v.Pos(), "region has no region_name")
	}
	return rd, nil
}

func stringField(path, label string, v cue.Value) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", schemaError(path, v.Pos(), "%s must be a string", label)
	}
	return s, nil
}

// boolField accepts booleans and the strings "true"/"false", which older
// region files use.
func boolField(path, label string, v cue.Value) (bool, error) {
	switch v.Kind() {
	case cue.BoolKind:
		return v.Bool()
	case cue.StringKind:
		s, _ := v.String()
		return strings.EqualFold(s, "true"), nil
	}
	return false, schemaError(path, v.Pos(), "%s must be a boolean", label)
}

// ruleEntries reads an object of name: rule pairs in declaration order.
func ruleEntries(path, label string, v cue.Value) ([]world.RuleEntry, error) {
	if v.Kind() != cue.StructKind {
		return nil, schemaError(path, v.Pos(), "%s must be an object", label)
	}
	fields, err := v.Fields()
	if err != nil {
		return nil, fromCUE(ErrCodeSchema, path, err)
	}
	var out []world.RuleEntry
	for fields.Next() {
		name := fields.Selector().Unquoted()
		rule, err := fields.Value().String()
		if err != nil {
			return nil, schemaError(path, fields.Value().Pos(), "%s.%s must be a rule string", label, name)
		}
		out = append(out, world.RuleEntry{Name: name, Rule: rule})
	}
	return out, nil
}

// LoadHelpers reads a macro file: an object mapping "name" or
// "name(param, ...)" to a rule body.
func LoadHelpers(path string) (map[string]string, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseHelpers(path, b)
}

// ParseHelpers parses a macro file.
func ParseHelpers(path string, src []byte) (map[string]string, error) {
	v, err := compile(path, src)
	if err != nil {
		return nil, err
	}
	if v.Kind() != cue.StructKind {
		return nil, schemaError(path, v.Pos(), "helper file must be an object, got %s", v.Kind())
	}
	fields, err := v.Fields()
	if err != nil {
		return nil, fromCUE(ErrCodeSchema, path, err)
	}
	out := make(map[string]string)
	for fields.Next() {
		name := fields.Selector().Unquoted()
		body, err := fields.Value().String()
		if err != nil {
			return nil, schemaError(path, fields.Value().Pos(), "helper %s must be a rule string", name)
		}
		out[name] = body
	}
	return out, nil
}
