package fainder

import "testing"

func TestExtractBalanced(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		open    int
		content string
		end     int
		ok      bool
	}{
		{"flat", "(abc)", 0, "abc", 4, true},
		{"nested kept verbatim", "COLUMN(NAME(age;1))", 6, "NAME(age;1)", 18, true},
		{"stops at matching paren", "(a)(b)", 0, "a", 2, true},
		{"empty content", "x()", 1, "", 2, true},
		{"deeply nested", "((()))", 1, "()", 4, true},
		{"unbalanced", "(a(b)", 0, "", -1, false},
		{"open at end", "abc(", 3, "", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			content, end, ok := extractBalanced(tt.input, tt.open)
			if ok != tt.ok || content != tt.content || end != tt.end {
				t.Errorf("extractBalanced(%q, %d) = (%q, %d, %v), want (%q, %d, %v)",
					tt.input, tt.open, content, end, ok, tt.content, tt.end, tt.ok)
			}
		})
	}
}

func TestQueryScanner_AtKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		offset int
		kw     string
		want   bool
	}{
		{"AND x", 0, keywordAnd, true},
		{"and x", 0, keywordAnd, true},
		{"AnD x", 0, keywordAnd, true},
		{"ANDROID", 0, keywordAnd, true},
		{"AND", 0, keywordAnd, false},
		{"x AND", 2, keywordAnd, false},
		{"ANY x", 0, keywordAnd, false},
		{"column(x)", 0, keywordColumn, true},
		{"COLUMN", 0, keywordColumn, false},
		{"COLUM(x)", 0, keywordColumn, false},
		{"é AND x", 3, keywordAnd, true},
	}

	for _, tt := range tests {
		s := newQueryScanner(tt.input)
		s.offset = tt.offset

		if got := s.atKeyword(tt.kw); got != tt.want {
			t.Errorf("atKeyword(%q at %d, %q) = %v, want %v", tt.input, tt.offset, tt.kw, got, tt.want)
		}
	}
}

func TestQueryScanner_SkipSpace(t *testing.T) {
	t.Parallel()

	s := newQueryScanner(" \t \nx")
	s.skipSpace()

	if got := s.input[s.offset:]; got != "x" {
		t.Errorf("after skipSpace remaining = %q, want %q", got, "x")
	}
}

func TestQueryScanner_Opaque(t *testing.T) {
	t.Parallel()

	s := newQueryScanner("KW(a) AND KW(b)")

	fragment, span := s.opaque()
	if fragment != "KW(a)" || span != (Span{Start: 0, End: 5}) {
		t.Errorf("first opaque = (%q, %+v)", fragment, span)
	}

	if s.offset != 10 {
		t.Errorf("offset = %d, want 10", s.offset)
	}

	fragment, _ = s.opaque()
	if fragment != "KW(b)" {
		t.Errorf("second opaque = %q, want %q", fragment, "KW(b)")
	}

	if !s.eof() {
		t.Error("expected scanner at end of input")
	}
}
