// Package driver implements the incremental language-server component
// (C6): per-document state keyed by URI, a 300ms debounce before
// re-analyzing an edit, and best-effort cancellation when a newer edit
// supersedes one still being analyzed. The Request/Event façade (C9) in
// facade.go wraps Driver's methods for callers that want one dispatch
// entry point instead of four.
package driver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Bli-AIk/mortar/analyzer"
	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/i18n"
	"github.com/Bli-AIk/mortar/parser"
)

// DebounceInterval is the delay between the last edit to a document and
// the re-analysis it triggers.
const DebounceInterval = 300 * time.Millisecond

// document holds one open file's latest source plus the most recent
// analysis that completed for it. Each document owns its own lock so
// unrelated files never contend with each other.
type document struct {
	mu      sync.RWMutex
	source  []byte
	version int
	prog    *ast.Program
	symbols *analyzer.SymbolTable
	diags   []diagnostic.Diagnostic
}

// Driver is the incremental language-server core: Open/Change/Close manage
// a set of in-memory documents, each independently analyzed.
type Driver struct {
	mu        sync.RWMutex
	documents map[string]*document

	pendingMu sync.Mutex
	timers    map[string]*time.Timer
	cancels   map[string]context.CancelFunc

	localeMu sync.RWMutex
	locale   i18n.Locale

	log *slog.Logger
}

// New constructs a Driver reporting diagnostics in locale. Analysis
// start/publish/cancel events are logged at Debug level through
// slog.Default(); use SetLogger to redirect them.
func New(locale i18n.Locale) *Driver {
	return &Driver{
		documents: make(map[string]*document),
		timers:    make(map[string]*time.Timer),
		cancels:   make(map[string]context.CancelFunc),
		locale:    locale,
		log:       slog.Default(),
	}
}

// SetLogger redirects the Debug-level analysis lifecycle logging to log.
func (d *Driver) SetLogger(log *slog.Logger) {
	d.log = log
}

func (d *Driver) getOrCreate(uri string) *document {
	d.mu.RLock()
	doc, ok := d.documents[uri]
	d.mu.RUnlock()
	if ok {
		return doc
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if doc, ok := d.documents[uri]; ok {
		return doc
	}
	doc = &document{}
	d.documents[uri] = doc
	return doc
}

func (d *Driver) currentLocale() i18n.Locale {
	d.localeMu.RLock()
	defer d.localeMu.RUnlock()
	return d.locale
}

// Open registers a newly opened document and analyzes it immediately (no
// debounce on first open, matching the handler that backs didOpen).
func (d *Driver) Open(uri string, source []byte, version int) []diagnostic.Diagnostic {
	doc := d.getOrCreate(uri)
	doc.mu.Lock()
	doc.source = source
	doc.version = version
	doc.mu.Unlock()
	d.runAnalysis(context.Background(), uri, doc, version)
	doc.mu.RLock()
	defer doc.mu.RUnlock()
	return doc.diags
}

// Change records a document edit and schedules a debounced re-analysis,
// canceling any re-analysis still pending for this URI. If a previous
// analysis is still running when a newer edit lands, its result is
// discarded on a version mismatch rather than published (best-effort
// cancellation).
func (d *Driver) Change(uri string, source []byte, version int) {
	doc := d.getOrCreate(uri)
	doc.mu.Lock()
	doc.source = source
	doc.version = version
	doc.mu.Unlock()

	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	if t, ok := d.timers[uri]; ok {
		t.Stop()
	}
	if cancel, ok := d.cancels[uri]; ok {
		d.log.Debug("analysis canceled", "uri", uri, "version", version)
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancels[uri] = cancel
	d.timers[uri] = time.AfterFunc(DebounceInterval, func() {
		d.runAnalysis(ctx, uri, doc, version)
	})
}

// Close discards all state associated with uri, including any pending
// debounce timer.
func (d *Driver) Close(uri string) {
	d.pendingMu.Lock()
	if t, ok := d.timers[uri]; ok {
		t.Stop()
		delete(d.timers, uri)
	}
	if cancel, ok := d.cancels[uri]; ok {
		cancel()
		delete(d.cancels, uri)
	}
	d.pendingMu.Unlock()

	d.mu.Lock()
	delete(d.documents, uri)
	d.mu.Unlock()
}

// SetLocale changes the locale future diagnostics are formatted in and
// immediately re-analyzes every currently open document so their
// published diagnostics reflect the new locale right away.
func (d *Driver) SetLocale(locale i18n.Locale) {
	d.localeMu.Lock()
	d.locale = locale
	d.localeMu.Unlock()

	d.mu.RLock()
	uris := make([]string, 0, len(d.documents))
	docs := make([]*document, 0, len(d.documents))
	for uri, doc := range d.documents {
		uris = append(uris, uri)
		docs = append(docs, doc)
	}
	d.mu.RUnlock()

	for i, uri := range uris {
		doc := docs[i]
		doc.mu.RLock()
		version := doc.version
		doc.mu.RUnlock()
		d.runAnalysis(context.Background(), uri, doc, version)
	}
}

func (d *Driver) runAnalysis(ctx context.Context, uri string, doc *document, version int) {
	doc.mu.RLock()
	source := doc.source
	stillCurrent := doc.version == version
	doc.mu.RUnlock()
	if !stillCurrent {
		return
	}

	d.log.Debug("analysis started", "uri", uri, "version", version)
	locale := d.currentLocale()
	prog, parseDiags := parser.Parse(source, parser.WithLocale(locale))
	symbols, analyzeDiags := analyzer.Analyze(prog, locale)
	diags := make([]diagnostic.Diagnostic, 0, len(parseDiags)+len(analyzeDiags))
	diags = append(diags, parseDiags...)
	diags = append(diags, analyzeDiags...)

	select {
	case <-ctx.Done():
		d.log.Debug("analysis canceled", "uri", uri, "version", version)
		return
	default:
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.version != version {
		// A newer edit landed while this analysis was running.
		d.log.Debug("analysis superseded", "uri", uri, "version", version, "current", doc.version)
		return
	}
	doc.prog = prog
	doc.symbols = symbols
	doc.diags = diags
	d.log.Debug("analysis published", "uri", uri, "version", version, "diagnostics", len(diags))
}

// Diagnostics returns the most recently published diagnostics for uri.
func (d *Driver) Diagnostics(uri string) []diagnostic.Diagnostic {
	d.mu.RLock()
	doc, ok := d.documents[uri]
	d.mu.RUnlock()
	if !ok {
		return nil
	}
	doc.mu.RLock()
	defer doc.mu.RUnlock()
	return doc.diags
}

// SymbolTable returns the most recently built symbol table for uri.
func (d *Driver) SymbolTable(uri string) (*analyzer.SymbolTable, bool) {
	d.mu.RLock()
	doc, ok := d.documents[uri]
	d.mu.RUnlock()
	if !ok {
		return nil, false
	}
	doc.mu.RLock()
	defer doc.mu.RUnlock()
	return doc.symbols, doc.symbols != nil
}

// Program returns the most recently parsed syntax tree for uri.
func (d *Driver) Program(uri string) (*ast.Program, bool) {
	d.mu.RLock()
	doc, ok := d.documents[uri]
	d.mu.RUnlock()
	if !ok {
		return nil, false
	}
	doc.mu.RLock()
	defer doc.mu.RUnlock()
	return doc.prog, doc.prog != nil
}
