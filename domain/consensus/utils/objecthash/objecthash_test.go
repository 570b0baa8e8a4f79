package objecthash

import (
	"testing"

	"github.com/pkg/errors"
)

func TestSourceString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{name: "string", value: "abc", expected: "s\x00abc"},
		{name: "number", value: 42, expected: "n\x0042"},
		{name: "bool", value: true, expected: "b\x00true"},
		{name: "array", value: Array{"a", 1}, expected: "[\x00s\x00a\x00n\x001\x00]"},
		{
			name:     "object keys are sorted",
			value:    Object{"b": "2", "a": "1"},
			expected: "{\x00a\x00s\x001\x00b\x00s\x002\x00}",
		},
	}

	for _, test := range tests {
		source, err := SourceString(test.value)
		if err != nil {
			t.Fatalf("%s: SourceString: %+v", test.name, err)
		}
		if source != test.expected {
			t.Fatalf("%s: expected %q, got %q", test.name, test.expected, source)
		}
	}
}

func TestHashIsIndependentOfKeyOrderButNotOfTypes(t *testing.T) {
	hashA, err := Hash(Object{"x": "1", "y": Array{"a", "b"}})
	if err != nil {
		t.Fatalf("Hash: %+v", err)
	}
	hashB, err := Hash(Object{"y": Array{"a", "b"}, "x": "1"})
	if err != nil {
		t.Fatalf("Hash: %+v", err)
	}
	if !hashA.Equal(hashB) {
		t.Fatalf("hash depends on map iteration order")
	}

	hashC, err := Hash(Object{"x": 1, "y": Array{"a", "b"}})
	if err != nil {
		t.Fatalf("Hash: %+v", err)
	}
	if hashA.Equal(hashC) {
		t.Fatalf("string and number hashed the same")
	}
}

func TestHashRejectsUnsupportedValues(t *testing.T) {
	_, err := Hash(Object{"x": 1.5})
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
	_, err = Hash(Array{})
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
}
