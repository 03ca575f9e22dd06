package parser

import (
	"strconv"

	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/lexer"
	"github.com/Bli-AIk/mortar/token"
)

// parseIfCondition parses a condition expression using standard operator
// precedence from loosest to tightest: ||, &&, comparison, prefix !, atoms
// (§4.2 "If/else").
func (p *Parser) parseIfCondition() (ast.IfCond, error) {
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() (ast.IfCond, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.check(token.OR) {
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryCond{Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAndExpr() (ast.IfCond, error) {
	left, err := p.parseComparisonExpr()
	if err != nil {
		return nil, err
	}
	for p.check(token.AND) {
		p.advance()
		right, err := p.parseComparisonExpr()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryCond{Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

var comparisonOps = map[token.Type]ast.ComparisonOp{
	token.GT:  ast.OpGT,
	token.LT:  ast.OpLT,
	token.GTE: ast.OpGTE,
	token.LTE: ast.OpLTE,
	token.EQ:  ast.OpEQ,
	token.NEQ: ast.OpNEQ,
}

func (p *Parser) parseComparisonExpr() (ast.IfCond, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	if op, ok := comparisonOps[p.current().Type]; ok {
		p.advance()
		right, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return ast.BinaryCond{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseUnaryExpr() (ast.IfCond, error) {
	if p.check(token.NOT) {
		p.advance()
		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return ast.UnaryCond{Operand: operand}, nil
	}
	return p.parsePrimaryCond()
}

// parsePrimaryCond parses a parenthesized condition, a boolean literal, or
// an identifier — optionally followed by `.variant` (an enum member) or
// `(args…)` (a boolean-returning function call, checked against its
// declared return type by the analyzer's ConditionTypeMismatch rule).
func (p *Parser) parsePrimaryCond() (ast.IfCond, error) {
	switch p.current().Type {
	case token.LPAREN:
		p.advance()
		cond, err := p.parseIfCondition()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return cond, nil
	case token.TRUE:
		p.advance()
		return ast.CondLiteral{Value: true}, nil
	case token.FALSE:
		p.advance()
		return ast.CondLiteral{Value: false}, nil
	case token.IDENT:
		name := p.advance()
		switch {
		case p.check(token.DOT):
			p.advance()
			variant, err := p.expect(token.IDENT, "an enum variant")
			if err != nil {
				return nil, err
			}
			return ast.CondEnumMember{Enum: name.Literal, Variant: variant.Literal, Span: ast.NewSpan(name.Start, variant.End)}, nil
		case p.check(token.LPAREN):
			p.advance()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN, "')'"); err != nil {
				return nil, err
			}
			return ast.CondFuncCall{Call: ast.FuncCall{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End), Args: args}}, nil
		default:
			return ast.CondIdent{Name: name.Literal, Span: ast.NewSpan(name.Start, name.End)}, nil
		}
	default:
		return nil, p.errUnexpected("a condition (literal, identifier, or parenthesized expression)")
	}
}

// parseArgList parses a comma/semicolon-separated argument list up to (but
// not consuming) the closing `)`.
func (p *Parser) parseArgList() ([]ast.Arg, error) {
	var args []ast.Arg
	p.skipSeparators()
	for !p.check(token.RPAREN) && !p.atEnd() {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSeparators()
	}
	return args, nil
}

// parseArg parses a single argument: a quoted string, a numeric literal, a
// boolean literal, a bare identifier, or (via the identifier-followed-by-'('
// two-token lookahead) a nested function call.
func (p *Parser) parseArg() (ast.Arg, error) {
	switch p.current().Type {
	case token.STRING:
		t := p.advance()
		return ast.ArgString{Value: lexer.Unescape(t.Literal)}, nil
	case token.NUMBER:
		t := p.advance()
		f, err := strconv.ParseFloat(t.Literal, 64)
		if err != nil {
			return nil, p.errf("invalid number %q", t.Literal)
		}
		return ast.ArgNumber{Value: f}, nil
	case token.TRUE:
		p.advance()
		return ast.ArgBool{Value: true}, nil
	case token.FALSE:
		p.advance()
		return ast.ArgBool{Value: false}, nil
	case token.IDENT:
		if p.peekAt(1).Type == token.LPAREN {
			call, err := p.parseFuncCall()
			if err != nil {
				return nil, err
			}
			return ast.ArgFuncCall{Call: call}, nil
		}
		t := p.advance()
		return ast.ArgIdent{Name: t.Literal, Span: ast.NewSpan(t.Start, t.End)}, nil
	default:
		return nil, p.errUnexpected("a string, number, boolean, identifier, or function call")
	}
}

// parseFuncCall parses `name(arg, arg, …)`.
func (p *Parser) parseFuncCall() (ast.FuncCall, error) {
	name, err := p.expect(token.IDENT, "a function name")
	if err != nil {
		return ast.FuncCall{}, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return ast.FuncCall{}, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return ast.FuncCall{}, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return ast.FuncCall{}, err
	}
	return ast.FuncCall{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End), Args: args}, nil
}

// parseVarValue parses a `let`/`const` initializer: String, Number,
// Boolean, or EnumMember (`Name.variant`) — a bare identifier alone is not
// a valid variable value (branch values go through parseBranchValue
// instead, dispatched before this is reached).
func (p *Parser) parseVarValue() (ast.VarValue, error) {
	switch p.current().Type {
	case token.STRING:
		t := p.advance()
		return ast.VarString{Value: lexer.Unescape(t.Literal)}, nil
	case token.NUMBER:
		t := p.advance()
		f, err := strconv.ParseFloat(t.Literal, 64)
		if err != nil {
			return nil, p.errf("invalid number %q", t.Literal)
		}
		return ast.VarNumber{Value: f}, nil
	case token.TRUE:
		p.advance()
		return ast.VarBool{Value: true}, nil
	case token.FALSE:
		p.advance()
		return ast.VarBool{Value: false}, nil
	case token.IDENT:
		name := p.advance()
		if _, err := p.expect(token.DOT, "'.' (a bare identifier is not a valid value)"); err != nil {
			return nil, err
		}
		variant, err := p.expect(token.IDENT, "an enum variant")
		if err != nil {
			return nil, err
		}
		return ast.VarEnumMember{Enum: name.Literal, Variant: variant.Literal, Span: ast.NewSpan(name.Start, variant.End)}, nil
	default:
		return nil, p.errUnexpected("a string, number, boolean, or enum member")
	}
}
