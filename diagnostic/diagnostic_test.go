package diagnostic

import (
	"strings"
	"testing"

	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/i18n"
)

func TestKindSeverityClassification(t *testing.T) {
	for _, kind := range []Kind{SyntaxError, NodeNotFound, FunctionNotFound, ArgumentCountMismatch,
		ArgumentTypeMismatch, ConditionTypeMismatch, DuplicateDefinition,
		InterpolationUnmatchedBrace, SerializationError} {
		if kind.Severity() != Error {
			t.Errorf("%s.Severity() = %s, want error", kind, kind.Severity())
		}
	}
	for _, kind := range []Kind{NonSnakeCaseFunction, NonSnakeCaseVariable, NonPascalCaseNode,
		NonPascalCaseEnum, UnusedFunction} {
		if kind.Severity() != Warning {
			t.Errorf("%s.Severity() = %s, want warning", kind, kind.Severity())
		}
	}
}

func TestKindStringUnknown(t *testing.T) {
	var k Kind = 999
	if k.String() != "Unknown" {
		t.Errorf("Kind(999).String() = %q, want Unknown", k.String())
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{Severity: Error, Message: "boom"}
	if d.Error() != "error: boom" {
		t.Errorf("Error() = %q", d.Error())
	}
	w := Diagnostic{Severity: Warning, Message: "careful"}
	if w.Error() != "warning: careful" {
		t.Errorf("Error() = %q", w.Error())
	}
}

func TestSnippetEmptyForInvalidSpan(t *testing.T) {
	d := Diagnostic{Message: "x"}
	if d.Snippet([]byte("node Foo {}")) != "" {
		t.Error("Snippet() should be empty for a zero-value (invalid) span")
	}
}

func TestSnippetRendersCaretUnderline(t *testing.T) {
	source := []byte("node Foo {\n  text \"hi\"\n}\n")
	// Span covering "text" on line 2.
	span := ast.NewSpan(13, 17)
	d := Diagnostic{Message: "x", Span: span}
	snippet := d.Snippet(source)
	if !strings.Contains(snippet, "2:3") {
		t.Errorf("Snippet() = %q, want a 2:3 position marker", snippet)
	}
	if !strings.Contains(snippet, "text \"hi\"") {
		t.Errorf("Snippet() = %q, want the offending source line", snippet)
	}
	if !strings.Contains(snippet, "^^^^") {
		t.Errorf("Snippet() = %q, want a 4-wide caret underline for a 4-byte span", snippet)
	}
}

func TestCollectorAccumulatesAndReportsErrors(t *testing.T) {
	c := NewCollector(i18n.English)
	c.Add(NodeNotFound, ast.Span{}, "Missing")
	if !c.HasErrors() {
		t.Error("expected HasErrors() to be true after adding a NodeNotFound diagnostic")
	}
	if len(c.Diagnostics()) != 1 {
		t.Fatalf("len(Diagnostics()) = %d, want 1", len(c.Diagnostics()))
	}
	if !strings.Contains(c.Diagnostics()[0].Message, "Missing") {
		t.Errorf("Message = %q, want to contain the formatted node name", c.Diagnostics()[0].Message)
	}
}

func TestCollectorHasErrorsFalseForWarningsOnly(t *testing.T) {
	c := NewCollector(i18n.English)
	c.Add(UnusedFunction, ast.Span{}, "helper")
	if c.HasErrors() {
		t.Error("HasErrors() should be false when only warnings were collected")
	}
}

func TestHasErrorsFreeFunction(t *testing.T) {
	if HasErrors(nil) {
		t.Error("HasErrors(nil) should be false")
	}
	if HasErrors([]Diagnostic{{Severity: Warning}}) {
		t.Error("HasErrors() should be false for warning-only slices")
	}
	if !HasErrors([]Diagnostic{{Severity: Warning}, {Severity: Error}}) {
		t.Error("HasErrors() should be true when any diagnostic is Error severity")
	}
}
