package store

import (
	"reflect"
	"testing"

	"github.com/roach88/ootlogic/internal/ir"
)

func TestMarshalSettings_Canonical(t *testing.T) {
	got, err := marshalSettings([]ir.Object{
		{"b": ir.Int(1), "a": ir.Bool(true)},
		nil,
	})
	if err != nil {
		t.Fatalf("marshalSettings() failed: %v", err)
	}
	if want := `[{"a":true,"b":1},{}]`; got != want {
		t.Errorf("marshalSettings() = %s, want %s", got, want)
	}
}

func TestMarshalSettings_RejectsNull(t *testing.T) {
	if _, err := marshalSettings([]ir.Object{{"x": ir.Null{}}}); err == nil {
		t.Error("expected error for null setting")
	}
}

func TestUnmarshalSettings(t *testing.T) {
	want := []ir.Object{
		{"mq_dungeons_specific": ir.Strings("Deku Tree"), "starting_hearts": ir.Int(3)},
	}
	data, err := marshalSettings(want)
	if err != nil {
		t.Fatalf("marshalSettings() failed: %v", err)
	}
	got, err := unmarshalSettings(data)
	if err != nil {
		t.Fatalf("unmarshalSettings() failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unmarshalSettings() = %v, want %v", got, want)
	}
}

func TestUnmarshalSettings_Errors(t *testing.T) {
	tests := []string{`{"a":1}`, `[1]`, `[`}
	for _, data := range tests {
		if _, err := unmarshalSettings(data); err == nil {
			t.Errorf("unmarshalSettings(%s) expected error", data)
		}
	}
}

func TestSettingsHash_OrderIndependentKeys(t *testing.T) {
	a, err := settingsHash([]ir.Object{{"x": ir.Int(1), "y": ir.Int(2)}})
	if err != nil {
		t.Fatalf("settingsHash() failed: %v", err)
	}
	b, err := settingsHash([]ir.Object{{"y": ir.Int(2), "x": ir.Int(1)}})
	if err != nil {
		t.Fatalf("settingsHash() failed: %v", err)
	}
	if a != b {
		t.Errorf("hashes differ: %s vs %s", a, b)
	}

	c, err := settingsHash([]ir.Object{{"x": ir.Int(1)}, {"y": ir.Int(2)}})
	if err != nil {
		t.Fatalf("settingsHash() failed: %v", err)
	}
	if a == c {
		t.Error("different world splits should hash differently")
	}
}
