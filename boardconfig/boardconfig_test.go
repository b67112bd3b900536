package boardconfig

import (
	"errors"
	"strings"
	"testing"
)

func TestParseValidStream(t *testing.T) {
	in := "2x2\nA\nA\nB\nB\n"
	rows, cols, values, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows != 2 || cols != 2 {
		t.Fatalf("expected 2x2, got %dx%d", rows, cols)
	}
	want := []string{"A", "A", "B", "B"}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(values))
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("value %d = %q, want %q", i, values[i], want[i])
		}
	}
}

func TestParseSkipsBlankLinesGlobally(t *testing.T) {
	in := "\n\n2x2\n\nA\n\nA\nB\n\nB\n\n"
	rows, cols, values, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows != 2 || cols != 2 || len(values) != 4 {
		t.Fatalf("unexpected parse result: %d %d %v", rows, cols, values)
	}
}

func TestParseEmptyStream(t *testing.T) {
	if _, _, _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error on empty stream")
	}
}

func TestParseMalformedHeader(t *testing.T) {
	cases := []string{"2", "2x", "x2", "0x2", "2x0", "axb", "2x2x2"}
	for _, c := range cases {
		if _, _, _, err := Parse(strings.NewReader(c)); err == nil {
			t.Errorf("expected error for header %q", c)
		}
	}
}

func TestParseWrongValueCount(t *testing.T) {
	if _, _, _, err := Parse(strings.NewReader("2x2\nA\nA\nB\n")); err == nil {
		t.Fatal("expected error for too few values")
	}
}

func TestParseTrailingContent(t *testing.T) {
	if _, _, _, err := Parse(strings.NewReader("2x2\nA\nA\nB\nB\nEXTRA\n")); err == nil {
		t.Fatal("expected error for trailing content")
	}
}

func TestParseErrorIncludesLine(t *testing.T) {
	_, _, _, err := Parse(strings.NewReader("garbled"))
	if err == nil {
		t.Fatal("expected error")
	}
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *boardconfig.Error, got %T", err)
	}
	if cfgErr.Line != 1 {
		t.Errorf("expected error on line 1, got %d", cfgErr.Line)
	}
}
