package parser

import (
	"strconv"
	"strings"

	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/lexer"
)

// parseInterpolatedString re-scans the raw contents of a `$"…"` token
// (component C3) into an alternating sequence of literal text, placeholder
// references, and function-call expressions. base is the byte offset of
// raw[0] in the original source, used to keep placeholder spans accurate.
//
// Unmatched '{' is reported directly as an InterpolationUnmatchedBrace
// diagnostic rather than bubbled as a parse failure: the rest of the
// program still parses, matching the rest of C3's inputs being independent
// literals.
func (p *Parser) parseInterpolatedString(raw string, base int) (ast.InterpolatedString, error) {
	var parts []ast.StringPart
	var textBuf strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '{' {
			if textBuf.Len() > 0 {
				parts = append(parts, ast.TextPart{Text: lexer.Unescape(textBuf.String())})
				textBuf.Reset()
			}
			regionStart := i + 1
			end, ok := findBalancedBrace(raw, regionStart)
			if !ok {
				p.diags.Add(diagnostic.InterpolationUnmatchedBrace, ast.NewSpan(base+i, base+len(raw)))
				i = len(raw)
				break
			}
			content := strings.TrimSpace(raw[regionStart:end])
			part, perr := parseInterpolationRegion(content, base+regionStart)
			if perr != nil {
				p.diags.Add(diagnostic.InterpolationUnmatchedBrace, ast.NewSpan(base+regionStart, base+end))
			} else {
				parts = append(parts, part)
			}
			i = end + 1
			continue
		}
		textBuf.WriteByte(c)
		i++
	}
	if textBuf.Len() > 0 {
		parts = append(parts, ast.TextPart{Text: lexer.Unescape(textBuf.String())})
	}
	return ast.InterpolatedString{Parts: parts}, nil
}

// findBalancedBrace scans raw[start:] for the '}' matching the '{' that
// preceded start, ignoring braces inside nested quoted strings and
// treating '\\' as deferring the next character, per §4.3.
func findBalancedBrace(raw string, start int) (end int, ok bool) {
	depth := 1
	inString := false
	var quote byte
	i := start
	for i < len(raw) {
		c := raw[i]
		if inString {
			if c == '\\' && i+1 < len(raw) {
				i += 2
				continue
			}
			if c == quote {
				inString = false
			}
			i++
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// parseInterpolationRegion turns a trimmed `{ … }` region's contents into
// either an Expression part (when it contains '(', i.e. a function call) or
// a Placeholder part (a bare name).
func parseInterpolationRegion(content string, base int) (ast.StringPart, error) {
	if !strings.ContainsRune(content, '(') {
		return ast.PlaceholderPart{Name: content, Span: ast.NewSpan(base, base+len(content))}, nil
	}
	open := strings.IndexByte(content, '(')
	if !strings.HasSuffix(content, ")") {
		return nil, errUnterminatedCall
	}
	name := strings.TrimSpace(content[:open])
	argsText := content[open+1 : len(content)-1]
	args, err := parseSimpleArgs(argsText)
	if err != nil {
		return nil, err
	}
	return ast.ExpressionPart{Call: ast.FuncCall{
		Name:     name,
		NameSpan: ast.NewSpan(base, base+open),
		Args:     args,
	}}, nil
}

var errUnterminatedCall = &parseError{msg: "unterminated function call in interpolated expression"}

// parseSimpleArgs naively splits argsText on top-level commas (ignoring
// commas inside quoted strings) and classifies each trimmed piece as a
// quoted string, a numeric literal, or a bare identifier — the restricted
// argument grammar §4.3 allows inside `{ fn(...) }`.
func parseSimpleArgs(argsText string) ([]ast.Arg, error) {
	argsText = strings.TrimSpace(argsText)
	if argsText == "" {
		return nil, nil
	}
	var pieces []string
	var buf strings.Builder
	inString := false
	var quote byte
	for i := 0; i < len(argsText); i++ {
		c := argsText[i]
		if inString {
			buf.WriteByte(c)
			if c == '\\' && i+1 < len(argsText) {
				i++
				buf.WriteByte(argsText[i])
				continue
			}
			if c == quote {
				inString = false
			}
			continue
		}
		if c == '"' || c == '\'' {
			inString = true
			quote = c
			buf.WriteByte(c)
			continue
		}
		if c == ',' {
			pieces = append(pieces, buf.String())
			buf.Reset()
			continue
		}
		buf.WriteByte(c)
	}
	pieces = append(pieces, buf.String())

	args := make([]ast.Arg, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		switch {
		case len(piece) >= 2 && (piece[0] == '"' || piece[0] == '\'') && piece[len(piece)-1] == piece[0]:
			args = append(args, ast.ArgString{Value: lexer.Unescape(piece[1 : len(piece)-1])})
		default:
			if f, err := strconv.ParseFloat(piece, 64); err == nil {
				args = append(args, ast.ArgNumber{Value: f})
			} else {
				args = append(args, ast.ArgIdent{Name: piece})
			}
		}
	}
	return args, nil
}
