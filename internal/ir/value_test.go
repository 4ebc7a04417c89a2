package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null{}, false},
		{"nil", nil, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Int(0), false},
		{"nonzero", Int(3), true},
		{"empty string", String(""), false},
		{"string", String("off"), true},
		{"empty list", List{}, false},
		{"list", Strings("a"), true},
		{"empty object", Object{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.v))
		})
	}
}

func TestEqualBoolIntCoercion(t *testing.T) {
	assert.True(t, Equal(Bool(true), Int(1)))
	assert.True(t, Equal(Int(0), Bool(false)))
	assert.False(t, Equal(String("1"), Int(1)))
	assert.True(t, Equal(Null{}, nil))
	assert.True(t, Equal(Strings("a", "b"), Strings("a", "b")))
	assert.False(t, Equal(Strings("a"), Strings("a", "b")))
	assert.True(t, Equal(Object{"k": Int(1)}, Object{"k": Int(1)}))
}

func TestCompare(t *testing.T) {
	c, ok := Compare(Int(2), Int(5))
	require.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = Compare(String("b"), String("a"))
	require.True(t, ok)
	assert.Equal(t, 1, c)

	_, ok = Compare(String("b"), Int(1))
	assert.False(t, ok)
}

func TestContainsAndIndex(t *testing.T) {
	assert.True(t, Contains(Strings("open", "closed"), String("open")))
	assert.False(t, Contains(Strings("open"), String("shut")))
	assert.True(t, Contains(Object{"Deku Tree": Bool(true)}, String("Deku Tree")))
	assert.True(t, Contains(String("dungeons"), String("dung")))

	obj := Object{"Deku Tree": String("mq")}
	assert.Equal(t, String("mq"), Index(obj, String("Deku Tree")))
	assert.Equal(t, Null{}, Index(obj, String("Water Temple")))
	assert.Equal(t, String("b"), Index(Strings("a", "b"), Int(1)))
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"open_forest": "closed",
		"big_poe":     float64(10),
		"flags":       []any{true, nil},
	})
	require.NoError(t, err)

	obj := v.(Object)
	assert.Equal(t, String("closed"), obj["open_forest"])
	assert.Equal(t, Int(10), obj["big_poe"])
	assert.Equal(t, List{Bool(true), Null{}}, obj["flags"])

	_, err = FromAny(2.5)
	assert.Error(t, err)

	back := ToAny(obj)
	assert.Equal(t, int64(10), back.(map[string]any)["big_poe"])
}

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON([]byte(`{"seed": 9007199254740993, "names": ["a"]}`))
	require.NoError(t, err)
	obj := v.(Object)
	assert.Equal(t, Int(9007199254740993), obj["seed"])
	assert.Equal(t, Strings("a"), obj["names"])

	_, err = ParseJSON([]byte(`{"x": 1.5}`))
	assert.Error(t, err)
	_, err = ParseJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestObjectAccessors(t *testing.T) {
	obj := Object{"n": Int(4), "s": String("x"), "b": Bool(true)}
	n, ok := obj.Int("n")
	assert.True(t, ok)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "x", obj.Str("s"))
	assert.Equal(t, "", obj.Str("missing"))
	assert.True(t, obj.Bool("b"))
	assert.False(t, obj.Bool("missing"))

	clone := obj.Clone()
	clone["n"] = Int(5)
	assert.Equal(t, Int(4), obj["n"])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "True", Format(Bool(true)))
	assert.Equal(t, `["a", 1]`, Format(List{String("a"), Int(1)}))
	assert.Equal(t, `{"a": None}`, Format(Object{"a": Null{}}))
}
