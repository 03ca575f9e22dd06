package token

import "testing"

func TestTypeString(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{NODE, "NODE"},
		{ARROW, "ARROW"},
		{Type(9999), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Errorf("Type(%d).String() = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestKeywordsAliases(t *testing.T) {
	aliases := map[string]Type{
		"nd":       NODE,
		"function": FN,
		"public":   PUB,
		"tl":       TIMELINE,
		"Bool":     TYPE_BOOLEAN,
	}
	for word, want := range aliases {
		if got, ok := Keywords[word]; !ok || got != want {
			t.Errorf("Keywords[%q] = %v, %v, want %v, true", word, got, ok, want)
		}
	}
}

func TestIsTopLevelStarter(t *testing.T) {
	for _, typ := range []Type{NODE, FN, LET, CONST, PUB, ENUM, EVENT, TIMELINE} {
		if !typ.IsTopLevelStarter() {
			t.Errorf("%s.IsTopLevelStarter() = false, want true", typ)
		}
	}
	for _, typ := range []Type{IDENT, NUMBER, STRING, ARROW, EOF} {
		if typ.IsTopLevelStarter() {
			t.Errorf("%s.IsTopLevelStarter() = true, want false", typ)
		}
	}
}

func TestLineCol(t *testing.T) {
	src := []byte("node Foo {\n  text \"hi\"\n}\n")
	cases := []struct {
		offset int
		want   Position
	}{
		{0, Position{Line: 1, Column: 1, Offset: 0}},
		{11, Position{Line: 2, Column: 1, Offset: 11}},
		{100, LineCol(src, len(src))},
	}
	for _, c := range cases {
		got := LineCol(src, c.offset)
		if got != c.want {
			t.Errorf("LineCol(src, %d) = %+v, want %+v", c.offset, got, c.want)
		}
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: IDENT, Start: 3, End: 7, Literal: "Nova"}
	want := `IDENT("Nova")@[3,7)`
	if got := tok.String(); got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
}
