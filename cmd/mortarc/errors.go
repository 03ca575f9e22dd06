package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/token"
)

// CLIError is a formatted, user-facing CLI error independent of any
// diagnostic collected during compilation (bad flags, missing files, and
// the like).
type CLIError struct {
	Type    string // "usage" | "io" | "compile"
	Message string
	Hint    string
}

func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// FormatError writes err to w, colorizing known CLI error shapes the same
// way diagnostics are colorized.
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}
	if cliErr, ok := err.(*CLIError); ok {
		fmt.Fprintf(w, "%s%s\n", Colorize("error: ", ColorRed, useColor), cliErr.Message)
		if cliErr.Hint != "" {
			fmt.Fprintf(w, "%s%s\n", Colorize("hint: ", ColorYellow, useColor), cliErr.Hint)
		}
		return
	}
	fmt.Fprintf(w, "%s%s\n", Colorize("error: ", ColorRed, useColor), err.Error())
}

// FormatDiagnostics writes each diagnostic in ds to w as
// `severity: filename:line:col: message` with a colored severity tag; a
// diagnostic without a valid span is anchored to filename alone. A source
// snippet is appended only when showSource is set, since Diagnostic.Snippet
// indexes into source and a caller with no source to show should not pass
// one in at all.
func FormatDiagnostics(w io.Writer, ds []diagnostic.Diagnostic, source []byte, filename string, showSource, useColor bool) {
	for _, d := range ds {
		color := ColorYellow
		if d.Severity == diagnostic.Error {
			color = ColorRed
		}
		loc := filename
		if d.Span.Valid() {
			pos := token.LineCol(source, d.Span.Start)
			loc = fmt.Sprintf("%s:%d:%d", filename, pos.Line, pos.Column)
		}
		fmt.Fprintf(w, "%s %s: %s\n", Colorize(d.Severity.String()+":", color, useColor), loc, d.Message)
		if showSource {
			if snippet := d.Snippet(source); snippet != "" {
				fmt.Fprintln(w, snippet)
			}
		}
	}
}
