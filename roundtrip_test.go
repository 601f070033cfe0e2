package con

import "testing"

// TestRoundTrip exercises spec §8's round-trip law: parse(emit(v)) equals
// normalize(v), across every array shape and a variety of primitive edge
// cases.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		v    any
	}{
		{
			desc: "SimpleObject",
			v:    map[string]any{"name": "John", "age": float64(30), "active": true},
		},
		{
			desc: "TabularArrayOfObjects",
			v: map[string]any{"users": []any{
				map[string]any{"name": "Alice", "age": float64(30)},
				map[string]any{"name": "Bob", "age": float64(25)},
			}},
		},
		{
			desc: "TopLevelInlinePrimitiveArray",
			v:    []any{float64(1), float64(2), float64(3)},
		},
		{
			desc: "TopLevelMixedArray",
			v:    []any{float64(1), "x", map[string]any{"k": true}},
		},
		{
			desc: "ListOfPrimitiveArrays",
			v: map[string]any{"matrix": []any{
				[]any{float64(1), float64(2)},
				[]any{float64(3)},
			}},
		},
		{
			desc: "DeeplyNestedObject",
			v: map[string]any{"a": map[string]any{
				"b": map[string]any{"c": float64(1)},
			}},
		},
		{
			desc: "StringsNeedingEscapes",
			v: map[string]any{
				"quote":    `has "quotes"`,
				"newline":  "line1\nline2",
				"tab":      "a\tb",
				"backtick": `a\b`,
			},
		},
		{
			desc: "AmbiguousStringLiterals",
			v: map[string]any{
				"leadingZero": "007",
				"boolLike":    "true",
				"nullLike":    "null",
				"empty":       "",
			},
		},
		{
			desc: "TopLevelPrimitive",
			v:    "hello",
		},
		{
			desc: "TopLevelNull",
			v:    nil,
		},
		{
			desc: "NestedEmptyContainers",
			v: map[string]any{
				"emptyArr": []any{},
				"emptyObj": map[string]any{},
				"present":  float64(1),
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			text, err := Serialize(tc.v, Options{})
			if err != nil {
				t.Fatalf("Serialize() error: %v", err)
			}
			got, err := Deserialize(text, Options{})
			if err != nil {
				t.Fatalf("Deserialize(%q) error: %v", text, err)
			}
			want, err := Normalize(tc.v)
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("round-trip mismatch for %q:\ngot  %#v\nwant %#v\ntext:\n%s", tc.desc, got, want, text)
			}
		})
	}
}

// TestNormalizeIdempotenceAcrossRoundTrip exercises spec §8's normalization
// idempotence property through the parse/emit boundary: re-normalizing an
// already-round-tripped value changes nothing further.
func TestNormalizeIdempotenceAcrossRoundTrip(t *testing.T) {
	t.Parallel()

	v := map[string]any{
		"users": []any{
			map[string]any{"name": "Alice", "age": float64(30)},
			map[string]any{"name": "Bob", "age": float64(25)},
		},
	}
	text, err := Serialize(v, Options{})
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	parsed, err := Deserialize(text, Options{})
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	reNormalized, err := Normalize(parsed)
	if err != nil {
		t.Fatalf("Normalize(parsed) error: %v", err)
	}
	if !parsed.Equal(reNormalized) {
		t.Errorf("Normalize is not idempotent across a round trip: parsed=%#v reNormalized=%#v", parsed, reNormalized)
	}
}

// TestRoundTripDelimiters exercises the round-trip law under each of the
// three legal delimiters.
func TestRoundTripDelimiters(t *testing.T) {
	t.Parallel()

	v := map[string]any{"tags": []any{"a", "b", "c"}}
	for _, delim := range []Delimiter{DelimiterComma, DelimiterTab, DelimiterPipe} {
		opts := Options{Delimiter: delim}
		text, err := Serialize(v, opts)
		if err != nil {
			t.Fatalf("Serialize() with delimiter %q error: %v", delim, err)
		}
		got, err := Deserialize(text, opts)
		if err != nil {
			t.Fatalf("Deserialize(%q) with delimiter %q error: %v", text, delim, err)
		}
		want, err := Normalize(v)
		if err != nil {
			t.Fatalf("Normalize() error: %v", err)
		}
		if !got.Equal(want) {
			t.Errorf("round-trip mismatch for delimiter %q:\ngot  %#v\nwant %#v\ntext:\n%s", delim, got, want, text)
		}
	}
}
