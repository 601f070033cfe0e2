package con

import "strings"

const indentSize = 2

// lineRecord is one non-blank line of source text, pre-split by the line
// model described in spec §4.5. Blank lines never appear in the records
// slice; they are skipped entirely, the same way the teacher's lexer skips
// whitespace runs before yielding a token.
type lineRecord struct {
	raw     string
	indent  int
	content string
	depth   int
	number  int // 1-indexed source line number, for error reporting
}

// splitLines runs the §4.5 pre-pass: split on \n, measure indentation,
// drop blank lines, and (in strict mode) enforce indentation regularity.
func splitLines(text string, strict bool) ([]lineRecord, error) {
	raw := strings.Split(text, "\n")
	records := make([]lineRecord, 0, len(raw))
	for i, line := range raw {
		number := i + 1
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := 0
		sawTab := false
		for indent < len(line) && (line[indent] == ' ' || line[indent] == '\t') {
			if line[indent] == '\t' {
				sawTab = true
			}
			indent++
		}
		if strict {
			if sawTab {
				return nil, &SyntaxError{Line: number, Reason: "tab character in indentation"}
			}
			if indent%indentSize != 0 {
				return nil, &SyntaxError{Line: number, Reason: "indentation is not a multiple of 2 spaces"}
			}
		}
		records = append(records, lineRecord{
			raw:     line,
			indent:  indent,
			content: line[indent:],
			depth:   indent / indentSize,
			number:  number,
		})
	}
	return records, nil
}
