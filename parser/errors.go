package parser

import (
	"fmt"

	"github.com/Bli-AIk/mortar/token"
)

// parseError is a plain descriptive error bubbled up from a sub-parser to
// the top-level loop, which is the only place a SyntaxError diagnostic is
// actually recorded (see parseProgram). Keeping these as plain errors lets
// every parse* method use ordinary Go error returns without reaching into
// the diagnostic collector from deep inside the recursion.
type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

func (p *Parser) errUnexpected(expected string) error {
	got := p.current()
	return &parseError{msg: fmt.Sprintf("expected %s, found %s %q", expected, got.Type, got.Literal)}
}

func (p *Parser) errMissing(expected string) error {
	return &parseError{msg: fmt.Sprintf("expected %s", expected)}
}

func (p *Parser) errf(format string, args ...any) error {
	return &parseError{msg: fmt.Sprintf(format, args...)}
}

// expect consumes the current token if it has type tt, otherwise returns an
// unexpected-token error without consuming anything.
func (p *Parser) expect(tt token.Type, what string) (token.Token, error) {
	if !p.check(tt) {
		return token.Token{}, p.errUnexpected(what)
	}
	return p.advance(), nil
}
