package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface over the constrained value types.
// Only Null, String, Int, Bool, List, and Object implement it.
// There is no float type.
type Value interface {
	value()
}

// Null is an absent value. Reading an unknown setting yields Null.
type Null struct{}

func (Null) value() {}

// String is a string value.
type String string

func (String) value() {}

// Int is an integer value. Always int64.
type Int int64

func (Int) value() {}

// Bool is a boolean value.
type Bool bool

func (Bool) value() {}

// List is an ordered list of values.
type List []Value

func (List) value() {}

// Object maps string keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Strings builds a List of String values.
func Strings(ss ...string) List {
	l := make(List, len(ss))
	for i, s := range ss {
		l[i] = String(s)
	}
	return l
}

// Get returns the value stored under key.
func (obj Object) Get(key string) (Value, bool) {
	v, ok := obj[key]
	return v, ok
}

// Has reports whether key is present.
func (obj Object) Has(key string) bool {
	_, ok := obj[key]
	return ok
}

// Bool returns the truthiness of key. Missing keys are false.
func (obj Object) Bool(key string) bool {
	v, ok := obj[key]
	if !ok {
		return false
	}
	return Truthy(v)
}

// Int returns key as an integer and whether it was one.
func (obj Object) Int(key string) (int64, bool) {
	v, ok := obj[key].(Int)
	return int64(v), ok
}

// Str returns key as a string, or "" when it is missing or not a string.
func (obj Object) Str(key string) string {
	v, _ := obj[key].(String)
	return string(v)
}

// Clone returns a shallow copy of the object.
func (obj Object) Clone() Object {
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// SortedKeys returns keys in canonical order (UTF-16 code units).
// Go's sort.Strings orders by UTF-8 bytes, which differs for astral characters.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Truthy follows the logic files' truth rules: false, 0, "", empty lists and
// empty objects and Null are false; everything else is true.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(val)
	case Int:
		return val != 0
	case String:
		return val != ""
	case List:
		return len(val) > 0
	case Object:
		return len(val) > 0
	}
	return false
}

// Equal reports deep equality. Bool and Int compare numerically with each
// other (True == 1), matching the logic files' comparison semantics.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil, Null:
		switch b.(type) {
		case nil, Null:
			return true
		}
		return false
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int, Bool:
		an, _ := numeric(a)
		bn, ok := numeric(b)
		return ok && an == bn
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values. Numbers (Int, Bool) compare numerically and
// strings lexically. ok is false when the values are not comparable.
func Compare(a, b Value) (cmp int, ok bool) {
	if an, aok := numeric(a); aok {
		bn, bok := numeric(b)
		if !bok {
			return 0, false
		}
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		}
		return 0, true
	}
	as, aok := a.(String)
	bs, bok := b.(String)
	if aok && bok {
		return strings.Compare(string(as), string(bs)), true
	}
	return 0, false
}

func numeric(v Value) (int64, bool) {
	switch val := v.(type) {
	case Int:
		return int64(val), true
	case Bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Contains implements membership: list elements, object keys, or substrings.
func Contains(coll, elem Value) bool {
	switch c := coll.(type) {
	case List:
		for _, v := range c {
			if Equal(v, elem) {
				return true
			}
		}
	case Object:
		if s, ok := elem.(String); ok {
			return c.Has(string(s))
		}
	case String:
		if s, ok := elem.(String); ok {
			return strings.Contains(string(c), string(s))
		}
	}
	return false
}

// Index reads key from an Object, or the i-th element of a List.
// Missing entries yield Null.
func Index(coll, key Value) Value {
	switch c := coll.(type) {
	case Object:
		if s, ok := key.(String); ok {
			if v, ok := c[string(s)]; ok {
				return v
			}
		}
	case List:
		if i, ok := key.(Int); ok && i >= 0 && int(i) < len(c) {
			return c[i]
		}
	}
	return Null{}
}

// Format renders a value the way compiled rules print literals.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "None"
	case String:
		return strconv.Quote(string(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Bool:
		if val {
			return "True"
		}
		return "False"
	case List:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Object:
		keys := val.SortedKeys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + Format(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("%v", v)
}
