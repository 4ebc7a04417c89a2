package store

import (
	"fmt"

	"github.com/roach88/ootlogic/internal/ir"
)

func settingsList(settings []ir.Object) ir.List {
	l := make(ir.List, len(settings))
	for i, s := range settings {
		if s == nil {
			s = ir.Object{}
		}
		l[i] = s
	}
	return l
}

// marshalSettings converts per-world settings to canonical JSON TEXT.
func marshalSettings(settings []ir.Object) (string, error) {
	data, err := ir.MarshalCanonical(settingsList(settings))
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	return string(data), nil
}

// unmarshalSettings parses the settings column back into per-world objects.
func unmarshalSettings(data string) ([]ir.Object, error) {
	if data == "" || data == "[]" {
		return []ir.Object{}, nil
	}
	v, err := ir.ParseJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	l, ok := v.(ir.List)
	if !ok {
		return nil, fmt.Errorf("unmarshal settings: expected a list, got %T", v)
	}
	out := make([]ir.Object, len(l))
	for i, e := range l {
		obj, ok := e.(ir.Object)
		if !ok {
			return nil, fmt.Errorf("unmarshal settings: world %d is %T", i, e)
		}
		out[i] = obj
	}
	return out, nil
}

// settingsHash hashes every world's settings together.
func settingsHash(settings []ir.Object) (string, error) {
	return ir.SettingsHash(ir.Object{"worlds": settingsList(settings)})
}
