package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Bli-AIk/mortar/token"
)

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeKeywordsAndPunctuation(t *testing.T) {
	src := []byte(`node Greeting { text "hi" -> choice { when true -> Greeting } }`)
	got := types(Tokenize(src))
	want := []token.Type{
		token.NODE, token.IDENT, token.LBRACE,
		token.TEXT, token.STRING, token.ARROW,
		token.CHOICE, token.LBRACE,
		token.WHEN, token.TRUE, token.ARROW, token.IDENT,
		token.RBRACE, token.RBRACE, token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	toks := Tokenize([]byte("42 3.14 7."))
	if toks[0].Literal != "42" || toks[0].Type != token.NUMBER {
		t.Errorf("toks[0] = %+v, want NUMBER 42", toks[0])
	}
	if toks[1].Literal != "3.14" || toks[1].Type != token.NUMBER {
		t.Errorf("toks[1] = %+v, want NUMBER 3.14", toks[1])
	}
	// "7." has no digit after the dot, so the dot is not consumed as part
	// of the number.
	if toks[2].Literal != "7" || toks[2].Type != token.NUMBER {
		t.Errorf("toks[2] = %+v, want NUMBER 7", toks[2])
	}
	if toks[3].Type != token.DOT {
		t.Errorf("toks[3] = %+v, want DOT", toks[3])
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks := Tokenize([]byte(`"line\"break"`))
	if len(toks) != 2 || toks[0].Type != token.STRING {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
	if toks[0].Literal != `line\"break` {
		t.Errorf("Literal = %q, want %q", toks[0].Literal, `line\"break`)
	}
}

func TestTokenizeTripleQuotedDedent(t *testing.T) {
	src := []byte("\"\"\"\n    first\n    second\n    \"\"\"")
	toks := Tokenize(src)
	if toks[0].Type != token.STRING {
		t.Fatalf("toks[0].Type = %v, want STRING", toks[0].Type)
	}
	want := "first\nsecond"
	if toks[0].Literal != want {
		t.Errorf("dedented literal = %q, want %q", toks[0].Literal, want)
	}
}

func TestTokenizeInterpolatedString(t *testing.T) {
	toks := Tokenize([]byte(`$"hello {name}!"`))
	if toks[0].Type != token.INTERP_STRING {
		t.Fatalf("toks[0].Type = %v, want INTERP_STRING", toks[0].Type)
	}
	if toks[0].Literal != "hello {name}!" {
		t.Errorf("Literal = %q", toks[0].Literal)
	}
}

func TestTokenizeIllegalByteContinuesScanning(t *testing.T) {
	toks := Tokenize([]byte("let x = @ 1"))
	got := types(toks)
	want := []token.Type{token.LET, token.IDENT, token.ASSIGN, token.ILLEGAL, token.NUMBER, token.EOF}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeCommentsSkippedByDefault(t *testing.T) {
	toks := Tokenize([]byte("let x = 1 // trailing\n/* block */ let y = 2"))
	got := types(toks)
	for _, typ := range got {
		if typ == token.COMMENT_LINE || typ == token.COMMENT_BLOCK {
			t.Fatalf("comment token leaked without WithTrackComments: %v", got)
		}
	}
}

func TestTokenizeWithTrackComments(t *testing.T) {
	toks := Tokenize([]byte("let x = 1 // trailing\n"), WithTrackComments())
	found := false
	for _, tok := range toks {
		if tok.Type == token.COMMENT_LINE {
			found = true
			if tok.Literal != "// trailing" {
				t.Errorf("comment literal = %q", tok.Literal)
			}
		}
	}
	if !found {
		t.Fatal("expected a COMMENT_LINE token with WithTrackComments")
	}
}

func TestTokenizeAlwaysEndsWithEOF(t *testing.T) {
	for _, src := range []string{"", "node Foo {}", "   \n\t"} {
		toks := Tokenize([]byte(src))
		last := toks[len(toks)-1]
		if last.Type != token.EOF {
			t.Errorf("Tokenize(%q) last token = %v, want EOF", src, last.Type)
		}
	}
}

func TestIsValidBoundary(t *testing.T) {
	src := []byte("héllo") // é is a 2-byte rune
	if !IsValidBoundary(src, 0) {
		t.Error("offset 0 should be a valid boundary")
	}
	if IsValidBoundary(src, 2) {
		t.Error("offset 2 (mid-rune) should not be a valid boundary")
	}
	if !IsValidBoundary(src, len(src)) {
		t.Error("end-of-source offset should be a valid boundary")
	}
	if IsValidBoundary(src, -1) || IsValidBoundary(src, len(src)+1) {
		t.Error("out-of-range offsets should not be valid boundaries")
	}
}
