package driver

import (
	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/i18n"
)

// RequestKind identifies which of the four operations a Request carries.
type RequestKind int

const (
	OpenDocument RequestKind = iota
	ChangeDocument
	CloseDocument
	SetLanguage
)

// Request is one façade operation dispatched to a Driver: the in-process
// equivalent of backend.rs's did_open/did_change/did_close/did_change_configuration
// handlers, stripped of the JSON-RPC transport and Uri/Rope types around them.
type Request struct {
	Kind    RequestKind
	URI     string
	Source  []byte
	Version int
	Locale  i18n.Locale
}

// EventKind classifies what a dispatched Request produced.
type EventKind int

const (
	DiagnosticsPublished EventKind = iota
	DocumentClosed
)

// Event is the result of applying a Request, the analogue of backend.rs
// publishing diagnostics back to the client after did_open/did_change.
type Event struct {
	Kind        EventKind
	URI         string
	Diagnostics []diagnostic.Diagnostic
}

// Dispatch applies req to d and reports what happened. It is a thin,
// synchronous façade over Driver's own Open/Change/Close/SetLocale methods
// for callers (the eventual LSP transport) that want a single request/event
// entry point rather than four separate methods.
func (d *Driver) Dispatch(req Request) Event {
	switch req.Kind {
	case OpenDocument:
		diags := d.Open(req.URI, req.Source, req.Version)
		return Event{Kind: DiagnosticsPublished, URI: req.URI, Diagnostics: diags}
	case ChangeDocument:
		d.Change(req.URI, req.Source, req.Version)
		return Event{Kind: DiagnosticsPublished, URI: req.URI, Diagnostics: d.Diagnostics(req.URI)}
	case CloseDocument:
		d.Close(req.URI)
		return Event{Kind: DocumentClosed, URI: req.URI}
	case SetLanguage:
		d.SetLocale(req.Locale)
		return Event{Kind: DiagnosticsPublished, URI: req.URI, Diagnostics: d.Diagnostics(req.URI)}
	default:
		return Event{URI: req.URI}
	}
}
