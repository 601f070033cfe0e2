package con

import (
	"strconv"
	"strings"

	"roseh.moe/pkg/con/internal/escape"
)

// Deserialize decodes CON text into a Value under opts, per spec §4.7.
func Deserialize(text string, opts Options) (Value, error) {
	if strings.TrimSpace(text) == "" {
		return Value{}, ErrEmptyInput
	}
	lines, err := splitLines(text, opts.Strict)
	if err != nil {
		return Value{}, err
	}
	if len(lines) == 0 {
		return Value{}, ErrEmptyInput
	}
	p := &parser{lines: lines, opts: opts, delim: opts.delimiterByte()}
	return p.parseDocument()
}

type parser struct {
	lines []lineRecord
	pos   int
	opts  Options
	delim byte
}

func (p *parser) logf(format string, args ...any) {
	if p.opts.Logger != nil {
		p.opts.Logger.Debugf(format, args...)
	}
}

func (p *parser) cur() *lineRecord {
	if p.pos >= len(p.lines) {
		return nil
	}
	return &p.lines[p.pos]
}

// parseDocument implements the §4.7 entry rule.
func (p *parser) parseDocument() (Value, error) {
	first := p.cur()
	h, tail, isHeader, err := parseHeader(first.content, first)
	if err != nil {
		return Value{}, err
	}
	if isHeader && !h.hasKey {
		p.pos++
		return p.parseArrayBody(h, tail, first.depth+1)
	}
	if len(p.lines) == 1 && escape.FindUnquoted(first.content, ':', 0) < 0 && !isHeader {
		return p.parsePrimitiveToken(first.content, first)
	}
	return p.parseObject(0)
}

// parseObject consumes lines at exactly depth d into an object, per §4.7.
func (p *parser) parseObject(d int) (Value, error) {
	var pairs []Pair
	for {
		pair, ok, err := p.consumeObjectMember(d)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			break
		}
		pairs = append(pairs, pair)
	}
	return Obj(pairs...), nil
}

// consumeObjectMember consumes and decodes one key/value member belonging
// to an object at depth d, advancing p.pos past it. ok is false (with a
// nil error) when the current line does not belong to this object — end
// of stream, a shallower line, or a list-item line — in which case p.pos
// is left unchanged.
func (p *parser) consumeObjectMember(d int) (Pair, bool, error) {
	line := p.cur()
	if line == nil || line.depth != d || isListItemLine(line.content) {
		return Pair{}, false, nil
	}

	h, tail, isHeader, err := parseHeader(line.content, line)
	if err != nil {
		return Pair{}, false, err
	}
	if isHeader && h.hasKey {
		p.pos++
		arr, err := p.parseArrayBody(h, tail, d+1)
		if err != nil {
			return Pair{}, false, err
		}
		return Pair{Key: h.key, Value: arr}, true, nil
	}

	key, rest, err := splitKeyValue(line.content, line, p.opts.Strict)
	if err != nil {
		return Pair{}, false, err
	}
	p.pos++
	rest = strings.TrimSpace(rest)
	if rest != "" {
		v, err := p.parsePrimitiveToken(rest, line)
		if err != nil {
			return Pair{}, false, err
		}
		return Pair{Key: key, Value: v}, true, nil
	}
	next := p.cur()
	if next != nil && next.depth > d {
		child, err := p.parseObject(d + 1)
		if err != nil {
			return Pair{}, false, err
		}
		return Pair{Key: key, Value: child}, true, nil
	}
	return Pair{Key: key, Value: Obj()}, true, nil
}

// splitKeyValue extracts the key token (quoted or unquoted) up to the first
// unquoted ':' in content (a key-value line's text, or a list item's
// remainder after its "- " prefix), returning the key and the remainder
// after the colon. line is used only for error position reporting.
func splitKeyValue(content string, line *lineRecord, strict bool) (string, string, error) {
	if strings.HasPrefix(content, "\"") {
		end := escape.FindClosingQuote(content, 0)
		if end < 0 {
			return "", "", newSyntaxError(line, 1, "unterminated quoted key")
		}
		key, err := escape.Unescape(content[1:end])
		if err != nil {
			return "", "", newSyntaxError(line, 1, "%s", err)
		}
		rest := content[end+1:]
		colon := escape.FindUnquoted(rest, ':', 0)
		if colon < 0 {
			return "", "", newSyntaxError(line, end+2, "expected ':' after key")
		}
		return key, rest[colon+1:], nil
	}
	colon := escape.FindUnquoted(content, ':', 0)
	if colon < 0 {
		return "", "", newSyntaxError(line, 1, "expected ':' in key-value line")
	}
	key := content[:colon]
	if strict && !escape.IsUnquotedKey(key) {
		return "", "", newSyntaxError(line, 1, "key %q must be quoted", key)
	}
	return key, content[colon+1:], nil
}

// parseArrayBody decodes the body of an array whose header is h and whose
// inline tail (text after the header's colon) is tail. childDepth is the
// depth at which body lines (if any) live.
func (p *parser) parseArrayBody(h headerDescriptor, tail string, childDepth int) (Value, error) {
	tail = strings.TrimSpace(tail)

	switch {
	case h.hasFields:
		return p.parseTabularBody(h, childDepth)
	case tail != "":
		return p.parseInlineBody(h, tail)
	default:
		if cols, ok := p.peekFieldNameRow(childDepth, h.delimiterByte()); ok {
			p.pos++
			h.fields = cols
			h.hasFields = true
			return p.parseTabularBody(h, childDepth)
		}
		return p.parseListBody(h, childDepth)
	}
}

// peekFieldNameRow recognizes the headless-tabular variant of spec §8's
// scenario 6: a header with no `{fields}` segment and no inline tail,
// whose first body line is itself a bare, comma(delim)-separated row of
// unquoted-key-shaped tokens rather than a list item or a data row of
// values. Such a line supplies the column names a bracketed field list
// would otherwise have given.
func (p *parser) peekFieldNameRow(depth int, delim byte) ([]string, bool) {
	line := p.cur()
	if line == nil || line.depth != depth || isListItemLine(line.content) {
		return nil, false
	}
	if escape.FindUnquoted(line.content, ':', 0) >= 0 {
		return nil, false
	}
	parts := splitUnquoted(line.content, delim)
	cols := make([]string, len(parts))
	for i, part := range parts {
		name := strings.TrimSpace(part)
		if !escape.IsUnquotedKey(name) {
			return nil, false
		}
		cols[i] = name
	}
	return cols, true
}

func (p *parser) parseInlineBody(h headerDescriptor, tail string) (Value, error) {
	// The header line carrying tail has already been consumed.
	header := &p.lines[p.pos-1]
	parts := splitUnquoted(tail, h.delimiterByte())
	elems := make([]Value, 0, len(parts))
	for _, part := range parts {
		v, err := p.parsePrimitiveToken(strings.TrimSpace(part), header)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	if p.opts.Strict && len(elems) != h.count {
		line := 0
		if p.pos > 0 {
			line = p.lines[p.pos-1].number
		}
		return Value{}, &CountMismatchError{Expected: h.count, Actual: len(elems), Kind: CountMismatchInline, Line: line}
	}
	return Arr(elems...), nil
}

func (p *parser) parseTabularBody(h headerDescriptor, depth int) (Value, error) {
	var rows []Value
	for {
		line := p.cur()
		if line == nil || line.depth != depth || isListItemLine(line.content) || !isDataRowLine(line.content) {
			break
		}
		parts := splitUnquoted(line.content, h.delimiterByte())
		if p.opts.Strict && len(parts) != len(h.fields) {
			return Value{}, &CountMismatchError{Expected: len(h.fields), Actual: len(parts), Kind: CountMismatchTabular, Line: line.number}
		}
		var pairs []Pair
		for i, field := range h.fields {
			var raw string
			if i < len(parts) {
				raw = strings.TrimSpace(parts[i])
			}
			v, err := p.parsePrimitiveToken(raw, line)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair{Key: field, Value: v})
		}
		rows = append(rows, Obj(pairs...))
		p.pos++
	}
	if p.opts.Strict && len(rows) != h.count {
		line := 0
		if p.pos > 0 {
			line = p.lines[p.pos-1].number
		}
		return Value{}, &CountMismatchError{Expected: h.count, Actual: len(rows), Kind: CountMismatchTabular, Line: line}
	}
	return Arr(rows...), nil
}

func (p *parser) parseListBody(h headerDescriptor, depth int) (Value, error) {
	var items []Value
	for {
		line := p.cur()
		if line == nil || line.depth != depth || !isListItemLine(line.content) {
			break
		}
		v, err := p.parseListItem(depth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	if p.opts.Strict && len(items) != h.count {
		line := 0
		if p.pos > 0 {
			line = p.lines[p.pos-1].number
		}
		return Value{}, &CountMismatchError{Expected: h.count, Actual: len(items), Kind: CountMismatchList, Line: line}
	}
	return Arr(items...), nil
}

// isListItemLine reports whether content is a list item line: "-" alone,
// or "- " followed by more text. A line starting with "-" but not "- " is
// not a list item (it is a primitive token or a key).
func isListItemLine(content string) bool {
	return content == "-" || strings.HasPrefix(content, "- ")
}

// isDataRowLine implements the §4.7 data-row-vs-key-value disambiguation:
// a line with no unquoted ':' at all, or one whose first unquoted
// delimiter precedes its first unquoted ':', is a tabular data row.
func isDataRowLine(content string) bool {
	colon := escape.FindUnquoted(content, ':', 0)
	if colon < 0 {
		return true
	}
	for _, d := range []byte{',', '\t', '|'} {
		if i := escape.FindUnquoted(content, d, 0); i >= 0 && i < colon {
			return true
		}
	}
	return false
}

// parseListItem decodes one "- "-prefixed line at depth, per §4.7.
func (p *parser) parseListItem(depth int) (Value, error) {
	line := p.cur()
	var remainder string
	if line.content != "-" {
		remainder = strings.TrimSpace(line.content[2:])
	}

	h, tail, isHeader, err := parseHeader(remainder, line)
	if err != nil {
		return Value{}, err
	}
	if isHeader && !h.hasKey {
		p.pos++
		return p.parseArrayBody(h, tail, depth+1)
	}

	if remainder == "" {
		p.pos++
		return Obj(), nil
	}

	if escape.FindUnquoted(remainder, ':', 0) >= 0 {
		var key, rest string
		if !isHeader {
			key, rest, err = splitKeyValue(remainder, line, p.opts.Strict)
			if err != nil {
				return Value{}, err
			}
		}
		p.pos++
		rest = strings.TrimSpace(rest)
		var first Pair
		if isHeader {
			// A keyed header opens the item object's first member; its body
			// sits two levels below the "- " line, as the emitter writes it.
			arr, err := p.parseArrayBody(h, tail, depth+2)
			if err != nil {
				return Value{}, err
			}
			first = Pair{Key: h.key, Value: arr}
		} else if rest != "" {
			v, err := p.parsePrimitiveToken(rest, line)
			if err != nil {
				return Value{}, err
			}
			first = Pair{Key: key, Value: v}
		} else {
			next := p.cur()
			if next != nil && next.depth > depth+1 {
				child, err := p.parseObject(depth + 2)
				if err != nil {
					return Value{}, err
				}
				first = Pair{Key: key, Value: child}
			} else {
				first = Pair{Key: key, Value: Obj()}
			}
		}

		pairs := []Pair{first}
		for {
			pair, ok, err := p.consumeObjectMember(depth + 1)
			if err != nil {
				return Value{}, err
			}
			if !ok {
				break
			}
			pairs = append(pairs, pair)
		}
		return Obj(pairs...), nil
	}

	p.pos++
	return p.parsePrimitiveToken(remainder, line)
}

// parsePrimitiveToken implements the §4.7 primitive token grammar.
func (p *parser) parsePrimitiveToken(tok string, line *lineRecord) (Value, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return Str(""), nil
	}
	if strings.HasPrefix(tok, "\"") {
		end := escape.FindClosingQuote(tok, 0)
		if end < 0 {
			return Value{}, newSyntaxError(line, 1, "unterminated quoted string")
		}
		if end != len(tok)-1 {
			return Value{}, newSyntaxError(line, end+2, "unexpected trailing text after quoted string")
		}
		s, err := escape.Unescape(tok[1:end])
		if err != nil {
			return Value{}, newSyntaxError(line, 1, "%s", err)
		}
		return Str(s), nil
	}
	switch tok {
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "null":
		return Null(), nil
	}
	if escape.IsNumericToken(tok) {
		f, err := strconv.ParseFloat(tok, 64)
		if err == nil {
			return Num(f), nil
		}
	}
	return Str(tok), nil
}
