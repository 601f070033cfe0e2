package con

// Value is the logical data model shared by the emitter and the parser: a
// closed, six-variant sum identical in shape to JSON's. The sum is closed on
// purpose — see DESIGN.md — so every operation (classify, emit, parse into)
// is an exhaustive switch on Kind rather than an interface dispatch.
type Value struct {
	kind Kind

	boolVal   bool
	numberVal float64
	stringVal string
	arrayVal  []Value
	objectVal []Pair
}

// Kind identifies which variant a Value holds.
type Kind int

// The six variants of the CON data model.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "<unknown>"
	}
}

// Pair is one member of an Obj, preserving the insertion order that gives
// object iteration its only observable order.
type Pair struct {
	Key   string
	Value Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Num returns a numeric value. Callers must have already normalized away
// non-finite values and negative zero; see Normalize.
func Num(f float64) Value { return Value{kind: KindNumber, numberVal: f} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, stringVal: s} }

// Arr returns an array value containing elems in order. The slice is
// copied; mutating elems afterward does not affect the returned Value.
func Arr(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arrayVal: cp}
}

// Obj returns an object value containing pairs in order. Keys must be
// unique; constructing an object with a duplicate key is a caller error
// (panics). Normalize never reaches this for structs: of two fields that
// resolve to the same name, it keeps the first.
func Obj(pairs ...Pair) Value {
	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if seen[p.Key] {
			panic("con: duplicate object key " + p.Key)
		}
		seen[p.Key] = true
	}
	cp := make([]Pair, len(pairs))
	copy(cp, pairs)
	return Value{kind: KindObject, objectVal: cp}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsPrimitive reports whether v is null, a bool, a number, or a string.
func (v Value) IsPrimitive() bool {
	switch v.kind {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// Bool returns the boolean payload of v. Calling it on a non-bool Value
// returns false; callers that care should check Kind first.
func (v Value) Bool() bool { return v.boolVal }

// Num returns the numeric payload of v.
func (v Value) Num() float64 { return v.numberVal }

// Str returns the string payload of v.
func (v Value) Str() string { return v.stringVal }

// Len returns the number of elements in an array Value, or the number of
// members in an object Value. It returns 0 for any other Kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arrayVal)
	case KindObject:
		return len(v.objectVal)
	default:
		return 0
	}
}

// Index returns the i'th element of an array Value. Panics if v is not an
// array or i is out of range, matching slice indexing semantics.
func (v Value) Index(i int) Value { return v.arrayVal[i] }

// Elements returns the backing slice of an array Value. The caller must not
// mutate it; it aliases v's storage.
func (v Value) Elements() []Value { return v.arrayVal }

// Pairs returns the backing slice of an object Value's members in
// insertion order. The caller must not mutate it; it aliases v's storage.
func (v Value) Pairs() []Pair { return v.objectVal }

// Get returns the value bound to key in an object Value and reports
// whether key was present. Returns the zero Value (KindNull) and false if
// v is not an object or key is absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, p := range v.objectVal {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the object's keys in insertion order, or nil if v is not an
// object.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.objectVal))
	for i, p := range v.objectVal {
		keys[i] = p.Key
	}
	return keys
}

// Equal reports whether v and other represent the same normalized value,
// ignoring nothing: object member order matters (per §8, key order is a
// round-trip invariant), array element order matters, and numeric equality
// is exact float64 comparison.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == other.boolVal
	case KindNumber:
		return v.numberVal == other.numberVal
	case KindString:
		return v.stringVal == other.stringVal
	case KindArray:
		if len(v.arrayVal) != len(other.arrayVal) {
			return false
		}
		for i := range v.arrayVal {
			if !v.arrayVal[i].Equal(other.arrayVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.objectVal) != len(other.objectVal) {
			return false
		}
		for i := range v.objectVal {
			if v.objectVal[i].Key != other.objectVal[i].Key {
				return false
			}
			if !v.objectVal[i].Value.Equal(other.objectVal[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
