// Package lexer scans Mortar source into a flat token stream (component C1
// of the compiler pipeline).
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/Bli-AIk/mortar/token"
)

// Config holds lexer configuration, set via functional Opt values in the
// same style as the parser's configuration.
type Config struct {
	trackComments bool
}

// Opt configures a Lexer at construction time.
type Opt func(*Config)

// WithTrackComments makes the lexer emit COMMENT_LINE/COMMENT_BLOCK tokens
// instead of silently skipping them. The parser never sets it, so comments
// never reach the parser.
func WithTrackComments() Opt {
	return func(c *Config) { c.trackComments = true }
}

// Lexer scans a single source buffer into tokens on demand.
type Lexer struct {
	input  []byte
	pos    int
	cfg    Config
}

// New constructs a Lexer over source.
func New(source []byte, opts ...Opt) *Lexer {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Lexer{input: source, cfg: cfg}
}

// Tokenize scans the entire input and returns the resulting token sequence,
// always terminated with a single EOF token. Unrecognized input produces an
// ILLEGAL token covering the offending bytes rather than aborting, so the
// parser can keep going (see §4.1 contract: lexer never fails).
func Tokenize(source []byte, opts ...Opt) []token.Token {
	l := New(source, opts...)
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	return toks
}

// Next scans and returns the next token, skipping whitespace and (unless
// tracking comments) comments.
func (l *Lexer) Next() token.Token {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return token.Token{Type: token.EOF, Start: l.pos, End: l.pos}
		}
		if l.atLineComment() {
			start := l.pos
			l.skipLineComment()
			if l.cfg.trackComments {
				return token.Token{Type: token.COMMENT_LINE, Start: start, End: l.pos, Literal: string(l.input[start:l.pos])}
			}
			continue
		}
		if l.atBlockComment() {
			start := l.pos
			l.skipBlockComment()
			if l.cfg.trackComments {
				return token.Token{Type: token.COMMENT_BLOCK, Start: start, End: l.pos, Literal: string(l.input[start:l.pos])}
			}
			continue
		}
		break
	}
	return l.scanToken()
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) atLineComment() bool {
	return l.pos+1 < len(l.input) && l.input[l.pos] == '/' && l.input[l.pos+1] == '/'
}

func (l *Lexer) atBlockComment() bool {
	return l.pos+1 < len(l.input) && l.input[l.pos] == '/' && l.input[l.pos+1] == '*'
}

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.pos++
	}
}

func (l *Lexer) skipBlockComment() {
	l.pos += 2 // consume "/*"
	for l.pos < len(l.input) {
		if l.input[l.pos] == '*' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/' {
			l.pos += 2
			return
		}
		l.pos++
	}
	// Unterminated block comment: consume to EOF, matching the "lexer never
	// fails" contract. The parser will fail to find a subsequent token and
	// record a SyntaxError of its own.
}

func (l *Lexer) scanToken() token.Token {
	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '$' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '"':
		return l.scanInterpolatedString(start)
	case c == '"' || c == '\'':
		return l.scanString(start, c)
	case isDigit(c):
		return l.scanNumber(start)
	case isIdentStart(c):
		return l.scanIdentifier(start)
	}

	// Two-character operators.
	if l.pos+1 < len(l.input) {
		two := string(l.input[l.pos : l.pos+2])
		if tt, ok := twoCharTokens[two]; ok {
			l.pos += 2
			return token.Token{Type: tt, Start: start, End: l.pos, Literal: two}
		}
	}

	if tt, ok := singleCharTokens[c]; ok {
		l.pos++
		return token.Token{Type: tt, Start: start, End: l.pos, Literal: string(c)}
	}

	// Unrecognized byte: emit ILLEGAL and advance past it so scanning can
	// continue.
	l.pos++
	return token.Token{Type: token.ILLEGAL, Start: start, End: l.pos, Literal: string(c)}
}

var twoCharTokens = map[string]token.Type{
	"->": token.ARROW,
	"==": token.EQ,
	"!=": token.NEQ,
	">=": token.GTE,
	"<=": token.LTE,
	"&&": token.AND,
	"||": token.OR,
}

var singleCharTokens = map[byte]token.Type{
	':': token.COLON,
	',': token.COMMA,
	';': token.SEMICOLON,
	'.': token.DOT,
	'{': token.LBRACE,
	'}': token.RBRACE,
	'[': token.LBRACKET,
	']': token.RBRACKET,
	'(': token.LPAREN,
	')': token.RPAREN,
	'=': token.ASSIGN,
	'>': token.GT,
	'<': token.LT,
	'!': token.NOT,
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func (l *Lexer) scanIdentifier(start int) token.Token {
	for l.pos < len(l.input) && isIdentCont(l.input[l.pos]) {
		l.pos++
	}
	lit := string(l.input[start:l.pos])
	if tt, ok := token.Keywords[lit]; ok {
		return token.Token{Type: tt, Start: start, End: l.pos, Literal: lit}
	}
	return token.Token{Type: token.IDENT, Start: start, End: l.pos, Literal: lit}
}

// scanNumber matches [0-9]+(\.[0-9]+)? per the lexer contract; the literal
// text is kept unparsed, parsed to float64 on demand by consumers.
func (l *Lexer) scanNumber(start int) token.Token {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return token.Token{Type: token.NUMBER, Start: start, End: l.pos, Literal: string(l.input[start:l.pos])}
}

// scanString handles both single-line "…"/'…' and triple-quoted
// """…"""/'''…''' forms. The emitted literal is the content between the
// quotes with escapes unresolved (see Unescape).
func (l *Lexer) scanString(start int, quote byte) token.Token {
	triple := l.pos+2 < len(l.input) && l.input[l.pos+1] == quote && l.input[l.pos+2] == quote
	if triple {
		return l.scanTripleQuotedString(start, quote)
	}

	l.pos++ // opening quote
	contentStart := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != quote {
		if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
			l.pos += 2
			continue
		}
		l.pos++
	}
	contentEnd := l.pos
	if l.pos < len(l.input) {
		l.pos++ // closing quote
	}
	return token.Token{Type: token.STRING, Start: start, End: l.pos, Literal: string(l.input[contentStart:contentEnd])}
}

func (l *Lexer) scanTripleQuotedString(start int, quote byte) token.Token {
	l.pos += 3
	contentStart := l.pos
	for l.pos+2 < len(l.input) {
		if l.input[l.pos] == quote && l.input[l.pos+1] == quote && l.input[l.pos+2] == quote {
			break
		}
		if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
			l.pos += 2
			continue
		}
		l.pos++
	}
	contentEnd := l.pos
	if l.pos+2 < len(l.input) {
		l.pos += 3
	} else {
		l.pos = len(l.input)
	}
	dedented := dedentTripleQuoted(string(l.input[contentStart:contentEnd]))
	return token.Token{Type: token.STRING, Start: start, End: l.pos, Literal: dedented}
}

// dedentTripleQuoted strips a leading/trailing blank line (if present) and
// removes the minimum common indent among the remaining non-empty lines.
func dedentTripleQuoted(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 1 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return strings.Join(lines, "\n")
	}
	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// scanInterpolatedString scans a $"…" literal as a single token; inner
// braces are not interpreted here (that is component C3's job).
func (l *Lexer) scanInterpolatedString(start int) token.Token {
	l.pos += 2 // consume `$"`
	contentStart := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '"' {
		if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
			l.pos += 2
			continue
		}
		l.pos++
	}
	contentEnd := l.pos
	if l.pos < len(l.input) {
		l.pos++
	}
	return token.Token{Type: token.INTERP_STRING, Start: start, End: l.pos, Literal: string(l.input[contentStart:contentEnd])}
}

// IsValidBoundary reports whether offset lies on a UTF-8 rune boundary of
// source, i.e. whether it is a valid span endpoint.
func IsValidBoundary(source []byte, offset int) bool {
	if offset < 0 || offset > len(source) {
		return false
	}
	if offset == len(source) {
		return true
	}
	return utf8.RuneStart(source[offset])
}
