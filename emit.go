package con

import (
	"strconv"
	"strings"

	"roseh.moe/pkg/con/internal/escape"
)

// Delimiter is the active separator character used inside array headers,
// tabular rows, and field lists. The zero value is comma.
type Delimiter byte

// The three legal delimiters.
const (
	DelimiterComma Delimiter = ','
	DelimiterTab   Delimiter = '\t'
	DelimiterPipe  Delimiter = '|'
)

func (d Delimiter) byteOrDefault() byte {
	if d == 0 {
		return ','
	}
	return byte(d)
}

// Options configures both Serialize and Deserialize. The zero value is the
// default configuration described in spec §6.
type Options struct {
	// Delimiter separates primitive values inside array headers, tabular
	// rows, and field lists. Default: comma.
	Delimiter Delimiter

	// Pretty is reserved for a future non-default layout; the core always
	// emits the indented form regardless of its value (spec §6).
	Pretty bool

	// StrictArrays has no observable effect on Serialize: a header's
	// declared count is always derived from the body being written, so
	// there is nothing for an emit-time check to catch. It exists for
	// symmetry with Strict, which does assert header/body agreement on
	// Deserialize, where the two can legitimately disagree. See
	// DESIGN.md.
	StrictArrays bool

	// MinTabularLength is the minimum element count at or above which an
	// otherwise tabular-eligible array is actually emitted tabular;
	// below it, the array is emitted as a mixed list instead. Default 2.
	MinTabularLength int

	// Strict enables the parse-time checks of spec §4.5 (indentation
	// regularity) and §4.7 (header/body count assertions). Default
	// false: real-world, hand-edited input still round-trips.
	Strict bool

	// Logger, if non-nil, receives debug-level tracing of Serialize's
	// array shape decisions; Deserialize writes nothing to it. The codec's
	// correctness never depends on it; see SPEC_FULL.md's ambient-stack
	// notes.
	Logger Logger
}

func (o Options) delimiterByte() byte {
	return o.Delimiter.byteOrDefault()
}

func (o Options) minTabularLength() int {
	if o.MinTabularLength > 0 {
		return o.MinTabularLength
	}
	return 2
}

// Serialize encodes value as CON text under opts. value is normalized
// first (see Normalize); serialization of a structure containing a cycle
// fails with a *CycleDetectedError before any output is produced.
func Serialize(value any, opts Options) (string, error) {
	v, err := Normalize(value)
	if err != nil {
		return "", err
	}
	e := &emitter{opts: opts, delim: opts.delimiterByte()}
	e.emitTop(v)
	if e.err != nil {
		return "", e.err
	}
	return e.b.String(), nil
}

type emitter struct {
	b     strings.Builder
	opts  Options
	delim byte
	err   error
}

func (e *emitter) logf(format string, args ...any) {
	if e.opts.Logger != nil {
		e.opts.Logger.Debugf(format, args...)
	}
}

func (e *emitter) writeIndent(depth int) {
	for i := 0; i < depth; i++ {
		e.b.WriteString("  ")
	}
}

func (e *emitter) emitTop(v Value) {
	switch v.Kind() {
	case KindObject:
		if v.Len() == 0 {
			return
		}
		e.emitObjectMembers(v, 0)
	case KindArray:
		e.emitArray(v, "", false, 0)
	default:
		e.b.WriteString(e.encodePrimitive(v))
	}
}

func (e *emitter) emitObjectMembers(obj Value, depth int) {
	for _, p := range obj.Pairs() {
		e.emitKeyValue(p.Key, p.Value, depth)
	}
}

func (e *emitter) emitKeyValue(key string, v Value, depth int) {
	switch v.Kind() {
	case KindArray:
		e.emitArray(v, key, true, depth)
	case KindObject:
		e.writeIndent(depth)
		e.b.WriteString(encodeKey(key))
		e.b.WriteByte(':')
		e.b.WriteByte('\n')
		if v.Len() > 0 {
			e.emitObjectMembers(v, depth+1)
		}
	default:
		e.writeIndent(depth)
		e.b.WriteString(encodeKey(key))
		e.b.WriteString(": ")
		e.b.WriteString(e.encodePrimitive(v))
		e.b.WriteByte('\n')
	}
}

// emitArray writes v (a KindArray Value) as a header plus body at depth.
// If hasKey, key is the owning object member's name; otherwise this is a
// headless array (document root, or a list-item element).
func (e *emitter) emitArray(v Value, key string, hasKey bool, depth int) {
	elems := v.Elements()
	shape, cols := classify(v, classifyOptions{minTabularLength: e.opts.minTabularLength()})
	e.logf("array shape=%d cols=%v len=%d", shape, cols, len(elems))

	h := headerDescriptor{key: key, hasKey: hasKey, count: len(elems), delimiter: e.delim}
	if shape == ShapeTabular {
		h.fields = cols
		h.hasFields = true
	}

	// StrictArrays has no effect here: h.count is always derived from elems
	// directly above, so the two can never disagree through this API. The
	// option exists for symmetry with Options.Strict on the parse side and
	// is not consulted by the emitter. See DESIGN.md.

	e.writeIndent(depth)
	e.b.WriteString(formatHeader(h))

	switch shape {
	case ShapeEmpty:
		e.b.WriteByte('\n')
	case ShapeInlinePrimitive:
		e.b.WriteByte(' ')
		for i, el := range elems {
			if i > 0 {
				e.b.WriteByte(e.delim)
			}
			e.b.WriteString(e.encodePrimitive(el))
		}
		e.b.WriteByte('\n')
	case ShapeTabular:
		e.b.WriteByte('\n')
		for _, el := range elems {
			e.writeIndent(depth + 1)
			for i, col := range cols {
				if i > 0 {
					e.b.WriteByte(e.delim)
				}
				cv, _ := el.Get(col)
				e.b.WriteString(e.encodePrimitive(cv))
			}
			e.b.WriteByte('\n')
		}
	case ShapeListOfPrimArrays:
		e.b.WriteByte('\n')
		for _, el := range elems {
			e.writeIndent(depth + 1)
			e.b.WriteString("- ")
			inner := el.Elements()
			innerHeader := headerDescriptor{count: len(inner), delimiter: e.delim}
			e.b.WriteString(formatHeader(innerHeader))
			if len(inner) > 0 {
				e.b.WriteByte(' ')
				for i, iv := range inner {
					if i > 0 {
						e.b.WriteByte(e.delim)
					}
					e.b.WriteString(e.encodePrimitive(iv))
				}
			}
			e.b.WriteByte('\n')
		}
	case ShapeMixedList:
		e.b.WriteByte('\n')
		for _, el := range elems {
			e.emitListItem(el, depth+1)
		}
	}
}

// emitListItem writes a single `- ` prefixed element of a mixed-list array.
func (e *emitter) emitListItem(v Value, depth int) {
	e.writeIndent(depth)
	switch v.Kind() {
	case KindArray:
		e.b.WriteString("- ")
		shape, cols := classify(v, classifyOptions{minTabularLength: e.opts.minTabularLength()})
		elems := v.Elements()
		if shape == ShapeInlinePrimitive || shape == ShapeEmpty {
			h := headerDescriptor{count: len(elems), delimiter: e.delim}
			e.b.WriteString(formatHeader(h))
			if len(elems) > 0 {
				e.b.WriteByte(' ')
				for i, el := range elems {
					if i > 0 {
						e.b.WriteByte(e.delim)
					}
					e.b.WriteString(e.encodePrimitive(el))
				}
			}
			e.b.WriteByte('\n')
			return
		}
		// A nested non-primitive array as a list item: write the header
		// inline, then its body one level deeper.
		h := headerDescriptor{count: len(elems), delimiter: e.delim}
		if shape == ShapeTabular {
			h.fields = cols
			h.hasFields = true
		}
		e.b.WriteString(formatHeader(h))
		e.b.WriteByte('\n')
		e.emitArrayBody(v, shape, cols, depth+1)
	case KindObject:
		if v.Len() == 0 {
			e.b.WriteByte('-')
			e.b.WriteByte('\n')
			return
		}
		pairs := v.Pairs()
		e.b.WriteString("- ")
		e.emitKeyValueInline(pairs[0].Key, pairs[0].Value, depth)
		if len(pairs) > 1 {
			e.emitObjectMembers(Obj(pairs[1:]...), depth+1)
		}
	default:
		e.b.WriteString("- ")
		e.b.WriteString(e.encodePrimitive(v))
		e.b.WriteByte('\n')
	}
}

// emitKeyValueInline writes the first key/value pair of a list-item object
// on the same line as the "- " prefix (already written by the caller).
func (e *emitter) emitKeyValueInline(key string, v Value, depth int) {
	switch v.Kind() {
	case KindArray:
		shape, cols := classify(v, classifyOptions{minTabularLength: e.opts.minTabularLength()})
		elems := v.Elements()
		h := headerDescriptor{key: key, hasKey: true, count: len(elems), delimiter: e.delim}
		if shape == ShapeTabular {
			h.fields = cols
			h.hasFields = true
		}
		e.b.WriteString(formatHeader(h))
		switch shape {
		case ShapeInlinePrimitive:
			e.b.WriteByte(' ')
			for i, el := range elems {
				if i > 0 {
					e.b.WriteByte(e.delim)
				}
				e.b.WriteString(e.encodePrimitive(el))
			}
			e.b.WriteByte('\n')
		case ShapeEmpty:
			e.b.WriteByte('\n')
		default:
			e.b.WriteByte('\n')
			e.emitArrayBody(v, shape, cols, depth+2)
		}
	case KindObject:
		e.b.WriteString(encodeKey(key))
		e.b.WriteByte(':')
		if v.Len() == 0 {
			e.b.WriteByte('\n')
			return
		}
		e.b.WriteByte('\n')
		e.emitObjectMembers(v, depth+2)
	default:
		e.b.WriteString(encodeKey(key))
		e.b.WriteString(": ")
		e.b.WriteString(e.encodePrimitive(v))
		e.b.WriteByte('\n')
	}
}

// emitArrayBody writes only the body lines of an already-classified array
// (the header line was written by the caller).
func (e *emitter) emitArrayBody(v Value, shape Shape, cols []string, depth int) {
	elems := v.Elements()
	switch shape {
	case ShapeTabular:
		for _, el := range elems {
			e.writeIndent(depth)
			for i, col := range cols {
				if i > 0 {
					e.b.WriteByte(e.delim)
				}
				cv, _ := el.Get(col)
				e.b.WriteString(e.encodePrimitive(cv))
			}
			e.b.WriteByte('\n')
		}
	case ShapeListOfPrimArrays:
		for _, el := range elems {
			e.writeIndent(depth)
			e.b.WriteString("- ")
			inner := el.Elements()
			innerHeader := headerDescriptor{count: len(inner), delimiter: e.delim}
			e.b.WriteString(formatHeader(innerHeader))
			if len(inner) > 0 {
				e.b.WriteByte(' ')
				for i, iv := range inner {
					if i > 0 {
						e.b.WriteByte(e.delim)
					}
					e.b.WriteString(e.encodePrimitive(iv))
				}
			}
			e.b.WriteByte('\n')
		}
	case ShapeMixedList:
		for _, el := range elems {
			e.emitListItem(el, depth)
		}
	}
}

// encodePrimitive renders a single primitive Value as its surface token.
func (e *emitter) encodePrimitive(v Value) string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.Num(), 'g', -1, 64)
	case KindString:
		s := v.Str()
		if escape.IsSafeUnquoted(s, e.delim) {
			return s
		}
		return `"` + escape.Escape(s) + `"`
	default:
		return ""
	}
}
