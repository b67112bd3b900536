// Package boardconfig parses the textual board-configuration stream of
// spec.md §6 into the (rows, cols, values) triple that seeds
// board.NewBoard. It follows the teacher's config.Load "defaults +
// textual source" shape, generalized from JSON to a line grammar.
package boardconfig

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Error reports a deviation from the board-config grammar. It is
// distinct from the engine's own sentinel errors (board.ErrCardRemoved
// et al.) — a malformed config file is a construction-time failure,
// not a concurrency-core error.
type Error struct {
	Line   int
	Reason string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("boardconfig: line %d: %s", e.Line, e.Reason)
	}
	return "boardconfig: " + e.Reason
}

// Parse reads r and returns (rows, cols, values) per spec.md §6: the
// first non-blank line must be "{rows}x{columns}" with positive
// integers, followed by exactly rows*columns non-blank value lines.
// Blank lines are skipped globally. Any deviation returns an *Error.
func Parse(r io.Reader) (rows, cols int, values []string, err error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	nextNonBlank := func() (string, int, bool) {
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			return line, lineNo, true
		}
		return "", lineNo, false
	}

	header, headerLine, ok := nextNonBlank()
	if !ok {
		return 0, 0, nil, &Error{Reason: "empty board-config stream"}
	}

	rows, cols, err = parseHeader(header)
	if err != nil {
		return 0, 0, nil, &Error{Line: headerLine, Reason: err.Error()}
	}

	want := rows * cols
	values = make([]string, 0, want)
	for len(values) < want {
		v, ln, ok := nextNonBlank()
		if !ok {
			return 0, 0, nil, &Error{Reason: fmt.Sprintf("expected %d values, got %d", want, len(values))}
		}
		_ = ln
		values = append(values, v)
	}

	if err := scanner.Err(); err != nil {
		return 0, 0, nil, &Error{Reason: err.Error()}
	}

	// Reject any further non-blank content beyond the expected count.
	if extra, ln, ok := nextNonBlank(); ok {
		return 0, 0, nil, &Error{Line: ln, Reason: fmt.Sprintf("unexpected trailing content %q", extra)}
	}

	return rows, cols, values, nil
}

func parseHeader(line string) (rows, cols int, err error) {
	parts := strings.SplitN(line, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed header %q, want \"{rows}x{columns}\"", line)
	}
	rows, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || rows <= 0 {
		return 0, 0, fmt.Errorf("malformed row count in header %q", line)
	}
	cols, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || cols <= 0 {
		return 0, 0, fmt.Errorf("malformed column count in header %q", line)
	}
	return rows, cols, nil
}
