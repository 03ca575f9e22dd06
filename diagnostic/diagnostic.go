// Package diagnostic defines the closed set of Mortar error/warning kinds
// and the collector the parser and analyzer both append to.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/i18n"
	"github.com/Bli-AIk/mortar/token"
)

// Kind is the closed tag set a Diagnostic may carry.
type Kind int

const (
	// Errors — fatal to the emit stage.
	SyntaxError Kind = iota
	NodeNotFound
	FunctionNotFound
	ArgumentCountMismatch
	ArgumentTypeMismatch
	ConditionTypeMismatch
	DuplicateDefinition
	InterpolationUnmatchedBrace
	SerializationError

	// Warnings — non-fatal.
	NonSnakeCaseFunction
	NonSnakeCaseVariable
	NonPascalCaseNode
	NonPascalCaseEnum
	UnusedFunction
)

var kindKeys = map[Kind]string{
	SyntaxError:                 "SyntaxError",
	NodeNotFound:                "NodeNotFound",
	FunctionNotFound:            "FunctionNotFound",
	ArgumentCountMismatch:       "ArgumentCountMismatch",
	ArgumentTypeMismatch:        "ArgumentTypeMismatch",
	ConditionTypeMismatch:       "ConditionTypeMismatch",
	DuplicateDefinition:         "DuplicateDefinition",
	InterpolationUnmatchedBrace: "InterpolationUnmatchedBrace",
	SerializationError:          "SerializationError",
	NonSnakeCaseFunction:        "NonSnakeCaseFunction",
	NonSnakeCaseVariable:        "NonSnakeCaseVariable",
	NonPascalCaseNode:           "NonPascalCaseNode",
	NonPascalCaseEnum:           "NonPascalCaseEnum",
	UnusedFunction:              "UnusedFunction",
}

func (k Kind) String() string {
	if s, ok := kindKeys[k]; ok {
		return s
	}
	return "Unknown"
}

// Severity classifies a Kind as fatal-to-emit or advisory.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

func (k Kind) Severity() Severity {
	switch k {
	case NonSnakeCaseFunction, NonSnakeCaseVariable, NonPascalCaseNode, NonPascalCaseEnum, UnusedFunction:
		return Warning
	default:
		return Error
	}
}

// Diagnostic is one reported problem, optionally anchored to a span.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Span     ast.Span
	Message  string
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped like any other Go error. It renders only "severity: message";
// the `--> line:col` source excerpt comes from Snippet.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Snippet renders a Rust/Clang-style excerpt of source around d.Span: an
// arrow line, the offending source line, and a caret underline.
func (d Diagnostic) Snippet(source []byte) string {
	if !d.Span.Valid() {
		return ""
	}
	pos := token.LineCol(source, d.Span.Start)
	lineStart, lineEnd := lineBounds(source, d.Span.Start)
	line := string(source[lineStart:lineEnd])

	width := d.Span.End - d.Span.Start
	if width < 1 {
		width = 1
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", pos.Line, pos.Column)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%3d | %s\n", pos.Line, line)
	b.WriteString("   | ")
	b.WriteString(strings.Repeat(" ", pos.Column-1))
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}

func lineBounds(source []byte, offset int) (start, end int) {
	start = offset
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	end = offset
	for end < len(source) && source[end] != '\n' {
		end++
	}
	return start, end
}

// Collector accumulates diagnostics for a single parse/analyze pass; it
// owns the locale used to format messages and never mutates the tree it is
// reporting on.
type Collector struct {
	locale i18n.Locale
	items  []Diagnostic
}

// NewCollector constructs a Collector reporting in locale.
func NewCollector(locale i18n.Locale) *Collector {
	return &Collector{locale: locale}
}

// Add appends a diagnostic of kind, anchored at span, formatted from args.
func (c *Collector) Add(kind Kind, span ast.Span, args ...any) {
	c.items = append(c.items, Diagnostic{
		Kind:     kind,
		Severity: kind.Severity(),
		Span:     span,
		Message:  i18n.Get(kind.String(), c.locale, args...),
	})
}

// Diagnostics returns the accumulated diagnostics in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.items
}

// HasErrors reports whether any collected diagnostic is Error severity.
func (c *Collector) HasErrors() bool {
	for _, d := range c.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// HasErrors reports whether any diagnostic in ds is Error severity; used by
// callers (CLI, driver) holding a plain slice rather than a Collector.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
