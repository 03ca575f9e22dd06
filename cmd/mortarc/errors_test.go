package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Bli-AIk/mortar/diagnostic"
)

func TestCLIErrorMessageIncludesHint(t *testing.T) {
	err := &CLIError{Type: "io", Message: "cannot read file.mortar", Hint: "check the path"}
	if !strings.Contains(err.Error(), "cannot read file.mortar") {
		t.Errorf("Error() = %q, missing message", err.Error())
	}
	if !strings.Contains(err.Error(), "check the path") {
		t.Errorf("Error() = %q, missing hint", err.Error())
	}
}

func TestFormatErrorNilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	FormatError(&buf, nil, false)
	if buf.Len() != 0 {
		t.Errorf("FormatError(nil) wrote %q, want nothing", buf.String())
	}
}

func TestFormatErrorPlainError(t *testing.T) {
	var buf bytes.Buffer
	FormatError(&buf, &CLIError{Message: "bad flag"}, false)
	if !strings.Contains(buf.String(), "bad flag") {
		t.Errorf("FormatError() = %q", buf.String())
	}
}

func TestFormatDiagnosticsWithoutSourceOmitsSnippet(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{Kind: diagnostic.NodeNotFound, Severity: diagnostic.Error, Message: `undefined node "Missing"`},
	}
	var buf bytes.Buffer
	FormatDiagnostics(&buf, diags, nil, "a.mortar", false, false)
	out := buf.String()
	if !strings.Contains(out, "a.mortar") || !strings.Contains(out, `undefined node "Missing"`) {
		t.Errorf("FormatDiagnostics() = %q", out)
	}
}
