package parser

import (
	"strconv"

	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/lexer"
	"github.com/Bli-AIk/mortar/token"
)

// parseNodeStmt dispatches on the first token of a node-body statement.
func (p *Parser) parseNodeStmt() (ast.NodeStmt, error) {
	switch p.current().Type {
	case token.IF:
		return p.parseIfElse()
	case token.TEXT:
		return p.parseTextStmt()
	case token.EVENTS:
		return p.parseDeprecatedEventsStmt()
	case token.CHOICE:
		return p.parseChoiceStmt()
	case token.RUN:
		p.advance()
		run, err := p.parseRunStmtBody()
		if err != nil {
			return nil, err
		}
		return run, nil
	case token.WITH:
		return p.parseWithEventsStmt()
	case token.LET:
		return nil, p.errf("`let` is not allowed inside a node body; use a top-level `let` declaration")
	case token.IDENT:
		return p.parseIdentStmt()
	default:
		return nil, p.errUnexpected("a node statement")
	}
}

func (p *Parser) parseTextStmt() (ast.NodeStmt, error) {
	p.advance() // text
	if _, err := p.expect(token.COLON, "':'"); err != nil {
		return nil, err
	}
	switch p.current().Type {
	case token.STRING:
		t := p.advance()
		return &ast.TextStmt{Text: lexer.Unescape(t.Literal), Span: ast.NewSpan(t.Start, t.End)}, nil
	case token.INTERP_STRING:
		t := p.advance()
		value, err := p.parseInterpolatedString(t.Literal, t.Start+2) // skip `$"`
		if err != nil {
			return nil, err
		}
		return &ast.InterpolatedTextStmt{Value: value, Span: ast.NewSpan(t.Start, t.End)}, nil
	default:
		return nil, p.errUnexpected("a string literal")
	}
}

// parseDeprecatedEventsStmt rejects the standalone `events: [...]` form
// directly inside a node body: it is not valid syntax, only `with events:`
// following a text statement is. Reported as a SyntaxError so panic-mode
// recovery synchronizes past it like any other malformed statement.
func (p *Parser) parseDeprecatedEventsStmt() (ast.NodeStmt, error) {
	return nil, p.errf("bare `events:` inside a node body is not allowed; use `with events:` after a text statement")
}

// parseChoiceStmt parses `choice: [ items ]`.
func (p *Parser) parseChoiceStmt() (ast.NodeStmt, error) {
	start := p.current().Start
	p.advance() // choice
	if _, err := p.expect(token.COLON, "':'"); err != nil {
		return nil, err
	}
	items, end, err := p.parseChoiceItemList()
	if err != nil {
		return nil, err
	}
	return &ast.ChoiceStmt{Items: items, Span: ast.NewSpan(start, end)}, nil
}

func (p *Parser) parseChoiceItemList() ([]ast.ChoiceItem, int, error) {
	if _, err := p.expect(token.LBRACKET, "'['"); err != nil {
		return nil, 0, err
	}
	var items []ast.ChoiceItem
	p.skipSeparators()
	for !p.check(token.RBRACKET) && !p.atEnd() {
		item, err := p.parseChoiceItem()
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		p.skipSeparators()
	}
	end, err := p.expect(token.RBRACKET, "']'")
	if err != nil {
		return nil, 0, err
	}
	return items, end.End, nil
}

// parseChoiceItem parses `text [condition]? -> dest`, where text is a bare
// or parenthesized string literal, condition is `when expr` / `.when(expr)`,
// and dest is a node name, return, break, or a nested `[ … ]` sub-list.
func (p *Parser) parseChoiceItem() (ast.ChoiceItem, error) {
	text, textSpan, err := p.parseChoiceText()
	if err != nil {
		return ast.ChoiceItem{}, err
	}
	var cond ast.IfCond
	if p.check(token.WHEN) {
		p.advance()
		cond, err = p.parseIfCondition()
		if err != nil {
			return ast.ChoiceItem{}, err
		}
	} else if p.check(token.DOT) && p.peekAt(1).Type == token.WHEN {
		p.advance() // .
		p.advance() // when
		if _, err := p.expect(token.LPAREN, "'('"); err != nil {
			return ast.ChoiceItem{}, err
		}
		cond, err = p.parseIfCondition()
		if err != nil {
			return ast.ChoiceItem{}, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return ast.ChoiceItem{}, err
		}
	}
	if _, err := p.expect(token.ARROW, "'->'"); err != nil {
		return ast.ChoiceItem{}, err
	}
	dest, err := p.parseChoiceDest()
	if err != nil {
		return ast.ChoiceItem{}, err
	}
	return ast.ChoiceItem{Text: text, TextSpan: textSpan, Condition: cond, Dest: dest}, nil
}

func (p *Parser) parseChoiceText() (string, ast.Span, error) {
	paren := p.match(token.LPAREN)
	t, err := p.expect(token.STRING, "a choice text string")
	if err != nil {
		return "", ast.Span{}, err
	}
	if paren {
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return "", ast.Span{}, err
		}
	}
	return lexer.Unescape(t.Literal), ast.NewSpan(t.Start, t.End), nil
}

func (p *Parser) parseChoiceDest() (ast.ChoiceDest, error) {
	switch p.current().Type {
	case token.RETURN:
		p.advance()
		return ast.DestReturn{}, nil
	case token.BREAK:
		p.advance()
		return ast.DestBreak{}, nil
	case token.LBRACKET:
		items, _, err := p.parseChoiceItemList()
		if err != nil {
			return nil, err
		}
		return ast.DestChoice{Items: items}, nil
	case token.IDENT:
		t := p.advance()
		return ast.DestNode{Name: t.Literal, NameSpan: ast.NewSpan(t.Start, t.End)}, nil
	default:
		return nil, p.errUnexpected("a choice destination (node name, return, break, or nested choice)")
	}
}

// parseIdentStmt disambiguates, via one token of lookahead past the
// identifier, between an assignment (`name = value`) and a branch
// definition (`name: branch …`).
func (p *Parser) parseIdentStmt() (ast.NodeStmt, error) {
	name := p.advance()
	switch {
	case p.check(token.ASSIGN):
		p.advance()
		val, err := p.parseAssignValue()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentStmt{Var: name.Literal, VarSpan: ast.NewSpan(name.Start, name.End), Value: val}, nil
	case p.check(token.COLON) && p.peekAt(1).Type == token.BRANCH:
		p.advance() // :
		bv, err := p.parseBranchValue()
		if err != nil {
			return nil, err
		}
		return &ast.BranchStmt{Def: ast.BranchDef{
			Name:     name.Literal,
			NameSpan: ast.NewSpan(name.Start, name.End),
			EnumType: bv.EnumType,
			Cases:    bv.Cases,
		}}, nil
	default:
		return nil, p.errUnexpected("'=' or ': branch'")
	}
}

// parseBranchValue parses the shared `branch [<EnumName>]? [ cases ]` tail,
// used both by `name: branch […]` node statements and `let name: branch[...]`
// variable declarations.
func (p *Parser) parseBranchValue() (*ast.BranchValue, error) {
	if _, err := p.expect(token.BRANCH, "'branch'"); err != nil {
		return nil, err
	}
	var enumType string
	if p.match(token.LT) {
		ty, err := p.expect(token.IDENT, "an enum type name")
		if err != nil {
			return nil, err
		}
		enumType = ty.Literal
		if _, err := p.expect(token.GT, "'>'"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.LBRACKET, "'['"); err != nil {
		return nil, err
	}
	var cases []ast.BranchCase
	p.skipSeparators()
	for !p.check(token.RBRACKET) && !p.atEnd() {
		c, err := p.parseBranchCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
		p.skipSeparators()
	}
	if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return &ast.BranchValue{EnumType: enumType, Cases: cases}, nil
}

// parseBranchCase parses `condition, "text" [, events: […]]`.
func (p *Parser) parseBranchCase() (ast.BranchCase, error) {
	cond, err := p.expect(token.IDENT, "a branch case condition")
	if err != nil {
		return ast.BranchCase{}, err
	}
	p.skipSeparators()
	text, err := p.expect(token.STRING, "branch case text")
	if err != nil {
		return ast.BranchCase{}, err
	}
	c := ast.BranchCase{
		Condition:     cond.Literal,
		ConditionSpan: ast.NewSpan(cond.Start, cond.End),
		Text:          lexer.Unescape(text.Literal),
	}
	p.skipSeparators()
	if p.check(token.EVENTS) {
		p.advance()
		if _, err := p.expect(token.COLON, "':'"); err != nil {
			return ast.BranchCase{}, err
		}
		events, _, err := p.parseEventList()
		if err != nil {
			return ast.BranchCase{}, err
		}
		c.Events = events
	}
	return c, nil
}

// parseIfElse parses `if cond { then } [else { else }]`.
func (p *Parser) parseIfElse() (ast.NodeStmt, error) {
	p.advance() // if
	cond, err := p.parseIfCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	thenBody, err := p.parseNodeBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	stmt := &ast.IfElseStmt{Cond: cond, Then: thenBody}
	if p.match(token.ELSE) {
		if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
			return nil, err
		}
		elseBody, err := p.parseNodeBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
			return nil, err
		}
		stmt.Else = elseBody
	}
	return stmt, nil
}

// parseRunStmtBody parses the tail of a run statement after the `run`
// keyword has already been consumed: `EventName(args?) [with (number|ident)]?`.
func (p *Parser) parseRunStmtBody() (*ast.RunStmt, error) {
	name, err := p.expect(token.IDENT, "an event name")
	if err != nil {
		return nil, err
	}
	run := &ast.RunStmt{EventName: name.Literal, EventNameSpan: ast.NewSpan(name.Start, name.End)}
	if p.match(token.LPAREN) {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		run.Args = args
	}
	if p.match(token.WITH) {
		override, err := p.parseIndexOverride()
		if err != nil {
			return nil, err
		}
		run.IndexOverride = override
	}
	return run, nil
}

func (p *Parser) parseIndexOverride() (ast.IndexOverride, error) {
	switch p.current().Type {
	case token.NUMBER:
		t := p.advance()
		f, ferr := strconv.ParseFloat(t.Literal, 64)
		if ferr != nil {
			return nil, p.errf("invalid number %q", t.Literal)
		}
		return ast.IndexValue{Value: f}, nil
	case token.IDENT:
		t := p.advance()
		return ast.IndexVariable{Name: t.Literal, Span: ast.NewSpan(t.Start, t.End)}, nil
	default:
		return nil, p.errUnexpected("a number or variable name")
	}
}

// parseWithEventsStmt parses the four `with …` forms: `with run Event`,
// `with event { … }` (an inline event), `with events: [ … ]` (a list of
// index-events or bare event-name references), and the bare `with
// EventName` shorthand.
func (p *Parser) parseWithEventsStmt() (ast.NodeStmt, error) {
	start := p.current().Start
	p.advance() // with
	switch p.current().Type {
	case token.RUN:
		p.advance()
		run, err := p.parseRunStmtBody()
		if err != nil {
			return nil, err
		}
		return run, nil
	case token.EVENT:
		p.advance()
		ev, err := p.parseInlineEvent()
		if err != nil {
			return nil, err
		}
		return &ast.WithEventsStmt{Items: []ast.WithEventItem{ast.InlineEvent{Event: ev}}, Span: ast.NewSpan(start, p.lastConsumed.End)}, nil
	case token.EVENTS:
		p.advance()
		if _, err := p.expect(token.COLON, "':'"); err != nil {
			return nil, err
		}
		items, end, err := p.parseWithEventItemList()
		if err != nil {
			return nil, err
		}
		return &ast.WithEventsStmt{Items: items, Span: ast.NewSpan(start, end)}, nil
	case token.IDENT:
		t := p.advance()
		var item ast.WithEventItem = ast.EventRef{Name: t.Literal, NameSpan: ast.NewSpan(t.Start, t.End)}
		if p.match(token.WITH) {
			override, err := p.parseIndexOverride()
			if err != nil {
				return nil, err
			}
			item = ast.EventRefWithOverride{Name: t.Literal, NameSpan: ast.NewSpan(t.Start, t.End), Override: override}
		}
		return &ast.WithEventsStmt{Items: []ast.WithEventItem{item}, Span: ast.NewSpan(start, p.lastConsumed.End)}, nil
	default:
		return nil, p.errUnexpected("run, event, events, or an event name")
	}
}

// parseWithEventItemList parses the bracketed body of `with events: […]`:
// a comma/semicolon-separated list where each item is either `index, call…`
// (an inline index-event, reusing the same grammar as parseEventList's
// entries) or a bare event-name reference, optionally `with` overridden.
func (p *Parser) parseWithEventItemList() ([]ast.WithEventItem, int, error) {
	if _, err := p.expect(token.LBRACKET, "'['"); err != nil {
		return nil, 0, err
	}
	var items []ast.WithEventItem
	p.skipSeparators()
	for !p.check(token.RBRACKET) && !p.atEnd() {
		if p.check(token.NUMBER) {
			ev, err := p.parseEvent()
			if err != nil {
				return nil, 0, err
			}
			items = append(items, ast.InlineEvent{Event: ev})
		} else {
			name, err := p.expect(token.IDENT, "an event name")
			if err != nil {
				return nil, 0, err
			}
			var item ast.WithEventItem = ast.EventRef{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End)}
			if p.match(token.WITH) {
				override, err := p.parseIndexOverride()
				if err != nil {
					return nil, 0, err
				}
				item = ast.EventRefWithOverride{Name: name.Literal, NameSpan: ast.NewSpan(name.Start, name.End), Override: override}
			}
			items = append(items, item)
		}
		p.skipSeparators()
	}
	end, err := p.expect(token.RBRACKET, "']'")
	if err != nil {
		return nil, 0, err
	}
	return items, end.End, nil
}

// parseEventList parses `[ index, call(args…)(.chain(args…))*  ; … ]`.
func (p *Parser) parseEventList() ([]ast.Event, int, error) {
	if _, err := p.expect(token.LBRACKET, "'['"); err != nil {
		return nil, 0, err
	}
	var events []ast.Event
	p.skipSeparators()
	for !p.check(token.RBRACKET) && !p.atEnd() {
		ev, err := p.parseEvent()
		if err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
		p.skipSeparators()
	}
	end, err := p.expect(token.RBRACKET, "']'")
	if err != nil {
		return nil, 0, err
	}
	return events, end.End, nil
}

func (p *Parser) parseEvent() (ast.Event, error) {
	idxTok, err := p.expect(token.NUMBER, "an event index")
	if err != nil {
		return ast.Event{}, err
	}
	idx, ferr := strconv.ParseFloat(idxTok.Literal, 64)
	if ferr != nil {
		return ast.Event{}, p.errf("invalid number %q", idxTok.Literal)
	}
	p.skipSeparators()
	action, err := p.parseEventAction()
	if err != nil {
		return ast.Event{}, err
	}
	return ast.Event{Index: idx, Action: action}, nil
}

// parseEventAction parses `name(args…)(.chain(args…))*`, left to right.
func (p *Parser) parseEventAction() (ast.EventAction, error) {
	call, err := p.parseFuncCall()
	if err != nil {
		return ast.EventAction{}, err
	}
	action := ast.EventAction{Call: call}
	for p.check(token.DOT) {
		p.advance()
		chain, err := p.parseFuncCall()
		if err != nil {
			return ast.EventAction{}, err
		}
		action.Chains = append(action.Chains, chain)
	}
	return action, nil
}

func (p *Parser) parseInlineEvent() (ast.Event, error) {
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return ast.Event{}, err
	}
	ev, err := p.parseEvent()
	if err != nil {
		return ast.Event{}, err
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return ast.Event{}, err
	}
	return ev, nil
}

func (p *Parser) parseAssignValue() (ast.AssignValue, error) {
	switch p.current().Type {
	case token.STRING:
		t := p.advance()
		return ast.AssignString{Value: lexer.Unescape(t.Literal)}, nil
	case token.NUMBER:
		t := p.advance()
		f, ferr := strconv.ParseFloat(t.Literal, 64)
		if ferr != nil {
			return nil, p.errf("invalid number %q", t.Literal)
		}
		return ast.AssignNumber{Value: f}, nil
	case token.TRUE:
		p.advance()
		return ast.AssignBool{Value: true}, nil
	case token.FALSE:
		p.advance()
		return ast.AssignBool{Value: false}, nil
	case token.IDENT:
		t := p.advance()
		return ast.AssignIdent{Name: t.Literal, Span: ast.NewSpan(t.Start, t.End)}, nil
	default:
		return nil, p.errUnexpected("a string, number, boolean, or identifier")
	}
}
