package driver

import (
	"testing"

	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/i18n"
)

func TestDispatchOpenDocumentPublishesDiagnostics(t *testing.T) {
	d := New(i18n.English)
	ev := d.Dispatch(Request{Kind: OpenDocument, URI: "file:///a.mortar", Source: []byte(validSource), Version: 1})
	if ev.Kind != DiagnosticsPublished {
		t.Fatalf("Event.Kind = %v, want DiagnosticsPublished", ev.Kind)
	}
	if diagnostic.HasErrors(ev.Diagnostics) {
		t.Fatalf("unexpected errors: %v", ev.Diagnostics)
	}
}

func TestDispatchOpenDocumentReportsAnalysisErrors(t *testing.T) {
	d := New(i18n.English)
	ev := d.Dispatch(Request{Kind: OpenDocument, URI: "file:///b.mortar", Source: []byte(invalidSource), Version: 1})
	if !diagnostic.HasErrors(ev.Diagnostics) {
		t.Fatal("expected an error diagnostic for a jump to an undefined node")
	}
}

func TestDispatchCloseDocumentDiscardsState(t *testing.T) {
	d := New(i18n.English)
	d.Dispatch(Request{Kind: OpenDocument, URI: "file:///c.mortar", Source: []byte(validSource), Version: 1})
	ev := d.Dispatch(Request{Kind: CloseDocument, URI: "file:///c.mortar"})
	if ev.Kind != DocumentClosed {
		t.Fatalf("Event.Kind = %v, want DocumentClosed", ev.Kind)
	}
	if diags := d.Diagnostics("file:///c.mortar"); diags != nil {
		t.Errorf("Diagnostics() after close = %v, want nil", diags)
	}
}

func TestDispatchSetLanguageReanalyzesOpenDocuments(t *testing.T) {
	d := New(i18n.English)
	d.Dispatch(Request{Kind: OpenDocument, URI: "file:///d.mortar", Source: []byte(invalidSource), Version: 1})
	ev := d.Dispatch(Request{Kind: SetLanguage, URI: "file:///d.mortar", Locale: i18n.Chinese})
	if len(ev.Diagnostics) == 0 {
		t.Fatal("expected diagnostics after SetLanguage re-analysis")
	}
	if ev.Diagnostics[0].Message == "" {
		t.Error("expected a non-empty Chinese-locale diagnostic message")
	}
}
