package parser

import (
	"strconv"

	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/token"
)

// parseTopLevel dispatches on the first keyword of a top-level declaration
// (§4.2 "Top-level dispatch").
func (p *Parser) parseTopLevel() (ast.TopLevel, error) {
	p.skipSeparators()
	if p.atEnd() {
		return nil, nil
	}
	switch p.current().Type {
	case token.NODE:
		return p.parseNodeDef()
	case token.FN:
		return p.parseFunctionDecl()
	case token.LET:
		return p.parseVarDecl()
	case token.CONST:
		return p.parseConstDecl(false)
	case token.PUB:
		p.advance()
		p.match(token.CONST) // `pub const` and bare `pub` are equivalent
		return p.parseConstDecl(true)
	case token.ENUM:
		return p.parseEnumDef()
	case token.EVENT:
		return p.parseEventDef()
	case token.TIMELINE:
		return p.parseTimelineDef()
	default:
		return nil, p.errUnexpected("a top-level declaration (node, fn, let, const, pub, enum, event, timeline)")
	}
}

// parseNodeDef parses `node Name { body } -> jump?`.
func (p *Parser) parseNodeDef() (*ast.NodeDef, error) {
	p.advance() // node
	name, err := p.expect(token.IDENT, "node name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	body, err := p.parseNodeBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	def := &ast.NodeDef{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End), Body: body}
	if p.match(token.ARROW) {
		jump, err := p.parseNodeJump()
		if err != nil {
			return nil, err
		}
		def.Jump = jump
	}
	return def, nil
}

func (p *Parser) parseNodeJump() (ast.NodeJump, error) {
	switch p.current().Type {
	case token.RETURN:
		p.advance()
		return ast.JumpReturn{}, nil
	case token.BREAK:
		p.advance()
		return ast.JumpBreak{}, nil
	case token.IDENT:
		t := p.advance()
		return ast.JumpTo{Name: t.Literal, NameSpan: ast.NewSpan(t.Start, t.End)}, nil
	default:
		return nil, p.errUnexpected("a jump target (node name, return, or break)")
	}
}

func (p *Parser) parseNodeBody() ([]ast.NodeStmt, error) {
	var stmts []ast.NodeStmt
	p.skipSeparators()
	for !p.check(token.RBRACE) && !p.atEnd() {
		stmt, err := p.parseNodeStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipSeparators()
	}
	return stmts, nil
}

// parseFunctionDecl parses `fn name(params) -> ReturnType?`.
func (p *Parser) parseFunctionDecl() (*ast.FunctionDecl, error) {
	p.advance() // fn
	name, err := p.expect(token.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	p.skipSeparators()
	for !p.check(token.RPAREN) && !p.atEnd() {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		p.skipSeparators()
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	decl := &ast.FunctionDecl{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End), Params: params}
	if p.match(token.ARROW) {
		ty, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		decl.ReturnType = ty
	}
	return decl, nil
}

func (p *Parser) parseParam() (ast.Param, error) {
	name, err := p.expect(token.IDENT, "parameter name")
	if err != nil {
		return ast.Param{}, err
	}
	if _, err := p.expect(token.COLON, "':'"); err != nil {
		return ast.Param{}, err
	}
	ty, err := p.parseTypeName()
	if err != nil {
		return ast.Param{}, err
	}
	return ast.Param{Name: name.Literal, Type: ty}, nil
}

// parseTypeName accepts the built-in type keywords as well as a bare
// identifier (an enum type name).
func (p *Parser) parseTypeName() (string, error) {
	switch p.current().Type {
	case token.TYPE_STRING, token.TYPE_NUMBER, token.TYPE_BOOLEAN, token.IDENT:
		return p.advance().Literal, nil
	default:
		return "", p.errUnexpected("a type name")
	}
}

// parseVarDecl parses `let name[: Type] [= value]` or the inline branch
// form `let name: branch[<Enum>] [ … ]`.
func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	p.advance() // let
	return p.parseVarDeclBody()
}

func (p *Parser) parseVarDeclBody() (*ast.VarDecl, error) {
	name, err := p.expect(token.IDENT, "variable name")
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End)}

	if p.match(token.COLON) {
		if p.check(token.BRANCH) {
			val, err := p.parseBranchValue()
			if err != nil {
				return nil, err
			}
			decl.Value = ast.VarBranch{Value: *val}
			return decl, nil
		}
		ty, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		decl.Type = ty
	}
	if p.match(token.ASSIGN) {
		val, err := p.parseVarValue()
		if err != nil {
			return nil, err
		}
		decl.Value = val
	}
	return decl, nil
}

// parseConstDecl parses `const name ...` (isPublic already determined by
// whether a leading `pub` was consumed by the caller).
func (p *Parser) parseConstDecl(isPublic bool) (*ast.ConstDecl, error) {
	if p.check(token.LET) {
		p.advance()
	}
	v, err := p.parseVarDeclBody()
	if err != nil {
		return nil, err
	}
	return &ast.ConstDecl{VarDecl: *v, IsPublic: isPublic}, nil
}

func (p *Parser) parseEnumDef() (*ast.EnumDef, error) {
	p.advance() // enum
	name, err := p.expect(token.IDENT, "enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var variants []string
	p.skipSeparators()
	for !p.check(token.RBRACE) && !p.atEnd() {
		v, err := p.expect(token.IDENT, "enum variant name")
		if err != nil {
			return nil, err
		}
		variants = append(variants, v.Literal)
		p.skipSeparators()
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.EnumDef{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End), Variants: variants}, nil
}

// parseEventDef parses `event Name { [index: N,] action: call(...), [duration: N] }`.
func (p *Parser) parseEventDef() (*ast.EventDef, error) {
	p.advance() // event
	name, err := p.expect(token.IDENT, "event name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	def := &ast.EventDef{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End)}
	haveAction := false
	p.skipSeparators()
	for !p.check(token.RBRACE) && !p.atEnd() {
		switch p.current().Type {
		case token.INDEX:
			p.advance()
			if _, err := p.expect(token.COLON, "':'"); err != nil {
				return nil, err
			}
			n, err := p.expect(token.NUMBER, "an index number")
			if err != nil {
				return nil, err
			}
			f, ferr := strconv.ParseFloat(n.Literal, 64)
			if ferr != nil {
				return nil, p.errf("invalid number %q", n.Literal)
			}
			def.Index = &f
		case token.ACTION:
			p.advance()
			if _, err := p.expect(token.COLON, "':'"); err != nil {
				return nil, err
			}
			action, err := p.parseEventAction()
			if err != nil {
				return nil, err
			}
			def.Action = action
			haveAction = true
		case token.DURATION:
			p.advance()
			if _, err := p.expect(token.COLON, "':'"); err != nil {
				return nil, err
			}
			n, err := p.expect(token.NUMBER, "a duration number")
			if err != nil {
				return nil, err
			}
			f, ferr := strconv.ParseFloat(n.Literal, 64)
			if ferr != nil {
				return nil, p.errf("invalid number %q", n.Literal)
			}
			def.Duration = &f
		default:
			return nil, p.errUnexpected("index, action, or duration")
		}
		p.skipSeparators()
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	if !haveAction {
		return nil, p.errMissing("an action field")
	}
	return def, nil
}

// parseTimelineDef parses `timeline Name { run/now-run/wait statements }`.
func (p *Parser) parseTimelineDef() (*ast.TimelineDef, error) {
	p.advance() // timeline/tl
	name, err := p.expect(token.IDENT, "timeline name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var body []ast.TimelineStmt
	p.skipSeparators()
	for !p.check(token.RBRACE) && !p.atEnd() {
		stmt, err := p.parseTimelineStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		p.skipSeparators()
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.TimelineDef{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End), Body: body}, nil
}

func (p *Parser) parseTimelineStmt() (ast.TimelineStmt, error) {
	switch p.current().Type {
	case token.WAIT:
		p.advance()
		n, err := p.expect(token.NUMBER, "a wait duration")
		if err != nil {
			return nil, err
		}
		f, ferr := strconv.ParseFloat(n.Literal, 64)
		if ferr != nil {
			return nil, p.errf("invalid number %q", n.Literal)
		}
		return ast.TimelineWait{Duration: f}, nil
	case token.NOW:
		p.advance()
		if _, err := p.expect(token.RUN, "'run'"); err != nil {
			return nil, err
		}
		run, err := p.parseRunStmtBody()
		if err != nil {
			return nil, err
		}
		run.IgnoreDuration = true
		return ast.TimelineRun{Run: *run}, nil
	case token.RUN:
		p.advance()
		run, err := p.parseRunStmtBody()
		if err != nil {
			return nil, err
		}
		return ast.TimelineRun{Run: *run}, nil
	default:
		return nil, p.errUnexpected("run, now run, or wait")
	}
}
