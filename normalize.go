package con

import (
	"encoding"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Normalize walks an arbitrary Go value with reflection and produces the
// closed Value model Serialize emits, per spec §4.2. The field-name
// resolution (struct tag lookup, "-" to skip, duplicate-name detection) is
// the same walk the teacher's fieldMap used for the opposite direction
// (Unmarshal); see DESIGN.md.
//
// Normalize detects cycles by tracking the identity of every map, slice, and
// pointer currently being walked; if the walk re-enters one of them, it
// returns a *CycleDetectedError identifying the path, before any output has
// been produced by a subsequent Serialize call.
func Normalize(v any) (Value, error) {
	n := &normalizer{seen: make(map[any]bool)}
	return n.walk(reflect.ValueOf(v), "$")
}

type normalizer struct {
	seen map[any]bool
}

// structTag is the tag key used to override a field's CON key, mirroring
// the teacher's "ccl" tag.
const structTag = "con"

// maxSafeInteger is the largest (and, negated, smallest) integer an
// IEEE-754 double represents exactly: 2^53-1. An integer outside this
// range normalizes to its decimal-string form instead of Num, per spec §3,
// so round-tripping through a float64 never silently loses precision.
const maxSafeInteger = 1<<53 - 1

type identityKey struct {
	ptr  uintptr
	kind reflect.Kind
}

func (n *normalizer) enter(v reflect.Value, path string) (func(), error) {
	var key identityKey
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		if v.IsNil() {
			return func() {}, nil
		}
		key = identityKey{ptr: v.Pointer(), kind: v.Kind()}
	default:
		return func() {}, nil
	}
	if n.seen[key] {
		return nil, &CycleDetectedError{Path: path}
	}
	n.seen[key] = true
	return func() { delete(n.seen, key) }, nil
}

func (n *normalizer) walk(v reflect.Value, path string) (Value, error) {
	if !v.IsValid() {
		return Null(), nil
	}

	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return Null(), nil
		}
		return n.walk(v.Elem(), path)
	}

	if existing, ok := v.Interface().(Value); ok {
		return existing, nil
	}

	if t, ok := v.Interface().(time.Time); ok {
		return Str(t.UTC().Format(time.RFC3339Nano)), nil
	}
	if tm, ok := v.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return Value{}, err
		}
		return Str(string(b)), nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return Null(), nil
		}
		leave, err := n.enter(v, path)
		if err != nil {
			return Value{}, err
		}
		defer leave()
		return n.walk(v.Elem(), path)

	case reflect.Bool:
		return Bool(v.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < -maxSafeInteger || n > maxSafeInteger {
			return Str(strconv.FormatInt(n, 10)), nil
		}
		return Num(float64(n)), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := v.Uint()
		if n > maxSafeInteger {
			return Str(strconv.FormatUint(n, 10)), nil
		}
		return Num(float64(n)), nil

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Null(), nil
		}
		if f == 0 {
			return Num(0), nil
		}
		return Num(f), nil

	case reflect.String:
		return Str(v.String()), nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return Str(string(v.Bytes())), nil
		}
		fallthrough
	case reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return Arr(), nil
		}
		leave, err := n.enter(v, path)
		if err != nil {
			return Value{}, err
		}
		defer leave()
		elems := make([]Value, v.Len())
		for i := 0; i < v.Len(); i++ {
			el, err := n.walk(v.Index(i), path)
			if err != nil {
				return Value{}, err
			}
			elems[i] = el
		}
		return Arr(elems...), nil

	case reflect.Map:
		if v.IsNil() {
			return Obj(), nil
		}
		leave, err := n.enter(v, path)
		if err != nil {
			return Value{}, err
		}
		defer leave()
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return mapKeyString(keys[i]) < mapKeyString(keys[j])
		})
		pairs := make([]Pair, len(keys))
		for i, k := range keys {
			el, err := n.walk(v.MapIndex(k), path)
			if err != nil {
				return Value{}, err
			}
			pairs[i] = Pair{Key: mapKeyString(k), Value: el}
		}
		return Obj(pairs...), nil

	case reflect.Struct:
		fields := structFields(v.Type())
		var pairs []Pair
		for _, f := range fields {
			fv := v.FieldByIndex(f.index)
			if f.omitempty && fv.IsZero() {
				continue
			}
			el, err := n.walk(fv, path+"."+f.name)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair{Key: f.name, Value: el})
		}
		return Obj(pairs...), nil

	default:
		// chan, func, unsafe pointer: no CON representation.
		return Null(), nil
	}
}

func mapKeyString(k reflect.Value) string {
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	switch k.Kind() {
	case reflect.String:
		return k.String()
	default:
		return reflect.ValueOf(k.Interface()).String()
	}
}

type structFieldInfo struct {
	name      string
	index     []int
	omitempty bool
}

// structFields resolves t's exported, non-skipped fields in declaration
// order, honoring the "con" struct tag for renames and "-" for exclusion,
// the same tag-reading convention the teacher's fieldMap used for the
// decode direction.
func structFields(t reflect.Type) []structFieldInfo {
	var out []structFieldInfo
	seen := make(map[string]bool)
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			index := append(append([]int{}, prefix...), i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, index)
				continue
			}
			name := f.Name
			omitempty := false
			if tag, ok := f.Tag.Lookup(structTag); ok {
				parts := splitTag(tag)
				if parts[0] == "-" {
					continue
				}
				if parts[0] != "" {
					name = parts[0]
				}
				for _, opt := range parts[1:] {
					if opt == "omitempty" {
						omitempty = true
					}
				}
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, structFieldInfo{name: name, index: index, omitempty: omitempty})
		}
	}
	walk(t, nil)
	return out
}

func splitTag(tag string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			parts = append(parts, tag[start:i])
			start = i + 1
		}
	}
	parts = append(parts, tag[start:])
	return parts
}
