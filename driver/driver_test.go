package driver

import (
	"testing"
	"time"

	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/i18n"
)

const validSource = `
node Start {
	text: "hi"
} -> End
node End {
	text: "bye"
}
`

const invalidSource = `
node Start {
	text: "hi"
} -> Nowhere
`

func TestOpenAnalyzesImmediately(t *testing.T) {
	d := New(i18n.English)
	diags := d.Open("file:///a.mortar", []byte(validSource), 1)
	if diagnostic.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	prog, ok := d.Program("file:///a.mortar")
	if !ok || prog == nil {
		t.Fatal("Program() should be populated immediately after Open, no debounce")
	}
	symbols, ok := d.SymbolTable("file:///a.mortar")
	if !ok || symbols == nil {
		t.Fatal("SymbolTable() should be populated immediately after Open")
	}
}

func TestOpenReportsAnalysisDiagnostics(t *testing.T) {
	d := New(i18n.English)
	diags := d.Open("file:///bad.mortar", []byte(invalidSource), 1)
	found := false
	for _, dg := range diags {
		if dg.Kind == diagnostic.NodeNotFound {
			found = true
		}
	}
	if !found {
		t.Error("expected a NodeNotFound diagnostic for the unresolved jump target")
	}
}

func TestChangeDebouncesReanalysis(t *testing.T) {
	d := New(i18n.English)
	d.Open("file:///a.mortar", []byte(validSource), 1)

	d.Change("file:///a.mortar", []byte(invalidSource), 2)

	// Immediately after Change, the debounce window hasn't elapsed, so the
	// diagnostics published by Open should still be in effect.
	if diagnostic.HasErrors(d.Diagnostics("file:///a.mortar")) {
		t.Error("diagnostics should not reflect the pending edit before the debounce fires")
	}

	time.Sleep(DebounceInterval + 150*time.Millisecond)

	diags := d.Diagnostics("file:///a.mortar")
	if !diagnostic.HasErrors(diags) {
		t.Error("expected the debounced re-analysis to have published the new document's errors")
	}
}

func TestChangeSupersedesPendingEdit(t *testing.T) {
	d := New(i18n.English)
	d.Open("file:///a.mortar", []byte(validSource), 1)

	// Two rapid edits: only the second's analysis should ever be published,
	// since runAnalysis checks doc.version against the version it was
	// scheduled for before writing results back.
	d.Change("file:///a.mortar", []byte(invalidSource), 2)
	d.Change("file:///a.mortar", []byte(validSource), 3)

	time.Sleep(DebounceInterval + 150*time.Millisecond)

	diags := d.Diagnostics("file:///a.mortar")
	if diagnostic.HasErrors(diags) {
		t.Error("expected the superseded (version 2) analysis to be discarded, leaving version 3's clean result")
	}
}

func TestCloseDiscardsDocumentState(t *testing.T) {
	d := New(i18n.English)
	d.Open("file:///a.mortar", []byte(validSource), 1)
	d.Close("file:///a.mortar")

	if _, ok := d.Program("file:///a.mortar"); ok {
		t.Error("Program() should report not-found after Close")
	}
	if diags := d.Diagnostics("file:///a.mortar"); diags != nil {
		t.Error("Diagnostics() should be nil after Close")
	}
}

func TestCloseCancelsPendingDebounce(t *testing.T) {
	d := New(i18n.English)
	d.Open("file:///a.mortar", []byte(validSource), 1)
	d.Change("file:///a.mortar", []byte(invalidSource), 2)
	d.Close("file:///a.mortar")

	time.Sleep(DebounceInterval + 150*time.Millisecond)

	if _, ok := d.Program("file:///a.mortar"); ok {
		t.Error("a closed document should not reappear even after its pending debounce would have fired")
	}
}

func TestSetLocaleReanalyzesOpenDocuments(t *testing.T) {
	d := New(i18n.English)
	d.Open("file:///bad.mortar", []byte(invalidSource), 1)

	enDiags := d.Diagnostics("file:///bad.mortar")

	d.SetLocale(i18n.Chinese)
	zhDiags := d.Diagnostics("file:///bad.mortar")

	if len(enDiags) == 0 || len(zhDiags) == 0 {
		t.Fatal("expected diagnostics in both locales")
	}
	if enDiags[0].Message == zhDiags[0].Message {
		t.Error("expected the re-analysis after SetLocale to render diagnostics in the new locale")
	}
}

func TestDiagnosticsAndSymbolTableUnknownURI(t *testing.T) {
	d := New(i18n.English)
	if diags := d.Diagnostics("file:///missing.mortar"); diags != nil {
		t.Error("Diagnostics() for an unknown URI should be nil")
	}
	if _, ok := d.SymbolTable("file:///missing.mortar"); ok {
		t.Error("SymbolTable() for an unknown URI should report not-found")
	}
	if _, ok := d.Program("file:///missing.mortar"); ok {
		t.Error("Program() for an unknown URI should report not-found")
	}
}
