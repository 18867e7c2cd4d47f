package canon

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the value types allowed in canonical JSON.
// Only String, Int, Bool, Array and Object implement it.
type Value interface {
	canonValue()
}

// String is a canonical string value.
type String string

func (String) canonValue() {}

// Int is a canonical integer value.
type Int int64

func (Int) canonValue() {}

// Bool is a canonical boolean value.
type Bool bool

func (Bool) canonValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) canonValue() {}

// Object maps string keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) canonValue() {}

// Float64Bits encodes a float as the hex form of its IEEE-754 bit pattern.
// NaN payloads are collapsed so every NaN encodes the same way.
func Float64Bits(f float64) String {
	if math.IsNaN(f) {
		f = math.NaN()
	}
	return String(fmt.Sprintf("%016x", math.Float64bits(f)))
}

// Strings converts a string slice to an Array.
func Strings(ss []string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}

// Ints converts an int64 slice to an Array.
func Ints(ns []int64) Array {
	arr := make(Array, len(ns))
	for i, n := range ns {
		arr[i] = Int(n)
	}
	return arr
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string comparison uses UTF-8 bytes, which orders differently above U+FFFF.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
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
