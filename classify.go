package con

// Shape identifies which of the five array body forms in spec §4.3 an
// array uses. The classifier is shared, conceptually, by the emitter
// (which must pick one) and the parser (which recognizes one from a
// header's shape).
type Shape int

// The five array shapes, in the tie-break order spec §4.3 specifies:
// tabular wins over mixed-list whenever both would otherwise apply.
const (
	ShapeEmpty Shape = iota
	ShapeInlinePrimitive
	ShapeTabular
	ShapeListOfPrimArrays
	ShapeMixedList
)

// classifyOptions carries the subset of Options the classifier needs so it
// does not have to import the full emitter configuration.
type classifyOptions struct {
	minTabularLength int
}

// classify implements spec §4.3. arr must be a KindArray Value.
//
// Tabular requires every element to be an object sharing the first
// element's key set (same count, same keys, every value primitive); the
// first element's key order becomes the column order. MinTabularLength is
// an emit-time-only advisory floor (see DESIGN.md) below which an
// otherwise-tabular array is treated as mixed instead, to avoid spending a
// header+braces on a table too small to be worth it (with the default of
// 2, only a single-row array falls below it).
func classify(arr Value, opts classifyOptions) (Shape, []string) {
	elems := arr.Elements()
	if len(elems) == 0 {
		return ShapeEmpty, nil
	}

	allPrimitive := true
	for _, e := range elems {
		if !e.IsPrimitive() {
			allPrimitive = false
			break
		}
	}
	if allPrimitive {
		return ShapeInlinePrimitive, nil
	}

	if cols, ok := tabularColumns(elems); ok && len(elems) >= opts.minTabularLength {
		return ShapeTabular, cols
	}

	allPrimArrays := true
	for _, e := range elems {
		if e.Kind() != KindArray {
			allPrimArrays = false
			break
		}
		for _, inner := range e.Elements() {
			if !inner.IsPrimitive() {
				allPrimArrays = false
				break
			}
		}
		if !allPrimArrays {
			break
		}
	}
	if allPrimArrays {
		return ShapeListOfPrimArrays, nil
	}

	return ShapeMixedList, nil
}

// tabularColumns reports whether elems qualifies for the tabular shape and,
// if so, returns the column order taken from the first element.
func tabularColumns(elems []Value) ([]string, bool) {
	if elems[0].Kind() != KindObject {
		return nil, false
	}
	cols := elems[0].Keys()
	if len(cols) == 0 {
		return nil, false
	}
	for _, e := range elems {
		if e.Kind() != KindObject {
			return nil, false
		}
		if e.Len() != len(cols) {
			return nil, false
		}
		for _, col := range cols {
			v, ok := e.Get(col)
			if !ok || !v.IsPrimitive() {
				return nil, false
			}
		}
	}
	return cols, true
}
