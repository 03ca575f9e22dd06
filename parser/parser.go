// Package parser builds the Mortar syntax tree from a token stream using
// recursive descent with one-token lookahead (plus a handful of two-token
// lookahead ambiguity sites), recovering from errors in panic mode at
// top-level synchronization points (component C2).
package parser

import (
	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/i18n"
	"github.com/Bli-AIk/mortar/lexer"
	"github.com/Bli-AIk/mortar/token"
)

// Parser holds the cursor over a token stream plus the diagnostic
// collector every parse phase reports into.
type Parser struct {
	source []byte
	tokens []token.Token
	pos    int
	diags  *diagnostic.Collector
	cfg    Config

	lastConsumed token.Token // fallback span source when current() is EOF
}

// New constructs a Parser over source, lexing it eagerly (the lexer itself
// never fails, so this cannot either).
func New(source []byte, opts ...Opt) *Parser {
	cfg := Config{locale: i18n.English}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Parser{
		source: source,
		tokens: lexer.Tokenize(source),
		diags:  diagnostic.NewCollector(cfg.locale),
		cfg:    cfg,
	}
}

// Parse runs the full C2 pass: top-level dispatch with panic-mode recovery.
// It always returns a Program — possibly a partial one — plus every
// diagnostic recorded along the way.
func Parse(source []byte, opts ...Opt) (*ast.Program, []diagnostic.Diagnostic) {
	p := New(source, opts...)
	return p.parseProgram(), p.diags.Diagnostics()
}

// --- token cursor -----------------------------------------------------

func (p *Parser) current() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token.Token{Type: token.EOF, Start: len(p.source), End: len(p.source)}
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx < len(p.tokens) {
		return p.tokens[idx]
	}
	return token.Token{Type: token.EOF, Start: len(p.source), End: len(p.source)}
}

func (p *Parser) atEnd() bool {
	return p.current().Type == token.EOF
}

func (p *Parser) advance() token.Token {
	t := p.current()
	if t.Type != token.EOF {
		p.pos++
	}
	p.lastConsumed = t
	return t
}

func (p *Parser) check(tt token.Type) bool {
	return p.current().Type == tt
}

func (p *Parser) match(tt token.Type) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// currentSpan returns the span diagnostics should anchor to: the current
// token's span, or the last consumed token's span when the cursor has run
// off the end (§4.2 "falls back to the span of the last consumed token").
func (p *Parser) currentSpan() ast.Span {
	t := p.current()
	if t.Type != token.EOF {
		return ast.NewSpan(t.Start, t.End)
	}
	if p.lastConsumed.End != 0 || p.lastConsumed.Start != 0 {
		return ast.NewSpan(p.lastConsumed.Start, p.lastConsumed.End)
	}
	return ast.NewSpan(t.Start, t.End)
}

// skipSeparators consumes any run of `,` and `;` tokens at a list-like
// position; both separators are optional and interchangeable
// (§4.2 "Optional separators").
func (p *Parser) skipSeparators() {
	for p.check(token.COMMA) || p.check(token.SEMICOLON) {
		p.advance()
	}
}

// synchronize implements panic-mode recovery: advance until the next
// top-level starter keyword or end-of-input, guaranteeing at least one
// token is consumed (testable property 6, error recovery progress).
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() && !p.current().Type.IsTopLevelStarter() {
		p.advance()
	}
}

// --- top-level loop -----------------------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEnd() {
		item, err := p.parseTopLevel()
		if err != nil {
			p.diags.Add(diagnostic.SyntaxError, p.currentSpan(), err.Error())
			p.synchronize()
			continue
		}
		if item != nil {
			prog.TopLevel = append(prog.TopLevel, item)
		}
	}
	return prog
}
