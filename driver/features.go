package driver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Bli-AIk/mortar/ast"
)

// CompletionItem is one suggestion returned for a cursor position.
type CompletionItem struct {
	Label  string
	Kind   string // "keyword" | "node" | "event" | "function" | "type"
	Detail string
}

// topLevelKeywords mirrors the keywords a cursor at the start of a
// declaration can begin.
var topLevelKeywords = []string{"node", "nd", "fn", "let", "const", "enum", "event", "timeline", "pub"}

// nodeBodyKeywords mirrors the keywords valid at the start of a node-body
// statement.
var nodeBodyKeywords = []string{"text", "with", "choice", "if", "run", "now"}

// CompletionCandidates ranks the identifiers and keywords relevant to
// prefix for the document at uri, given scope hints at the document's
// current analysis. Ranking uses fuzzy matching rather than a strict
// prefix test so a typo'd or partial prefix still surfaces the intended
// name.
func (d *Driver) CompletionCandidates(uri, prefix, scope string) []CompletionItem {
	symbols, ok := d.SymbolTable(uri)
	if !ok {
		return nil
	}

	var items []CompletionItem
	addRanked := func(candidates []string, kind string, detail func(string) string) {
		for _, name := range rank(prefix, candidates) {
			det := ""
			if detail != nil {
				det = detail(name)
			}
			items = append(items, CompletionItem{Label: name, Kind: kind, Detail: det})
		}
	}

	switch scope {
	case "choice":
		addRanked([]string{"when", "return", "break"}, "keyword", nil)
		addRanked(names(symbols.Nodes), "node", func(string) string { return "jump to node" })
	case "node":
		addRanked(nodeBodyKeywords, "keyword", nil)
		addRanked(names(symbols.Events), "event", nil)
	case "expression":
		addRanked(functionNames(symbols.Functions), "function", func(n string) string {
			return describeFunction(symbols.Functions[n])
		})
		addRanked([]string{"String", "Number", "Boolean", "true", "false"}, "type", nil)
	default: // top-level
		addRanked(topLevelKeywords, "keyword", nil)
	}
	return items
}

func rank(prefix string, candidates []string) []string {
	if prefix == "" {
		sorted := append([]string(nil), candidates...)
		sort.Strings(sorted)
		return sorted
	}
	ranks := fuzzy.RankFindNormalizedFold(prefix, candidates)
	sort.Sort(ranks)
	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	return out
}

func names[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func functionNames(m map[string]*ast.FunctionDecl) []string { return names(m) }

func describeFunction(f *ast.FunctionDecl) string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	sig := fmt.Sprintf("fn %s(%s)", f.Name, strings.Join(parts, ", "))
	if f.ReturnType != "" {
		sig += " -> " + f.ReturnType
	}
	return sig
}

// DocumentSymbol is one entry of the outline shown for a document.
type DocumentSymbol struct {
	Name   string
	Kind   string // "node" | "function" | "variable" | "constant" | "enum" | "event" | "timeline"
	Detail string
	Span   ast.Span
}

// DocumentSymbols extracts the outline for uri's current symbol table.
// Unlike the placeholder (0,0) ranges a first LSP pass often ships with,
// entries carry the real declaration span the analyzer recorded, except
// enum entries: SymbolTable keeps only an enum's variants, so they carry
// no span.
func (d *Driver) DocumentSymbols(uri string) []DocumentSymbol {
	symbols, ok := d.SymbolTable(uri)
	if !ok {
		return nil
	}
	var out []DocumentSymbol
	for name, span := range symbols.Nodes {
		out = append(out, DocumentSymbol{Name: name, Kind: "node", Span: span})
	}
	for name, f := range symbols.Functions {
		out = append(out, DocumentSymbol{Name: name, Kind: "function", Detail: describeFunction(f), Span: f.NameSpan})
	}
	for name, span := range symbols.Variables {
		out = append(out, DocumentSymbol{Name: name, Kind: "variable", Span: span})
	}
	for name, span := range symbols.Constants {
		out = append(out, DocumentSymbol{Name: name, Kind: "constant", Span: span})
	}
	for name := range symbols.Enums {
		out = append(out, DocumentSymbol{Name: name, Kind: "enum"})
	}
	for name, span := range symbols.Events {
		out = append(out, DocumentSymbol{Name: name, Kind: "event", Span: span})
	}
	for name, span := range symbols.Timelines {
		out = append(out, DocumentSymbol{Name: name, Kind: "timeline", Span: span})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Span.Valid() && out[j].Span.Valid() && out[i].Span.Start != out[j].Span.Start {
			return out[i].Span.Start < out[j].Span.Start
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SemanticToken classifies one source span by syntactic role, for editors
// that render their own syntax highlighting off the language server
// instead of (or in addition to) static grammar files.
type SemanticToken struct {
	Span ast.Span
	Type string // "node" | "function" | "variable" | "enum" | "event" | "timeline"
}

// SemanticTokens walks uri's parsed Program and emits one token per
// name-introducing span — declarations only; reference-site
// classification would need a second walk threading the symbol table
// through every statement, which document-symbol/completion already
// cover for navigation purposes.
func (d *Driver) SemanticTokens(uri string) []SemanticToken {
	prog, ok := d.Program(uri)
	if !ok {
		return nil
	}
	var out []SemanticToken
	for _, tl := range prog.TopLevel {
		switch n := tl.(type) {
		case *ast.NodeDef:
			if n.NameSpan.Valid() {
				out = append(out, SemanticToken{Span: n.NameSpan, Type: "node"})
			}
		case *ast.FunctionDecl:
			if n.NameSpan.Valid() {
				out = append(out, SemanticToken{Span: n.NameSpan, Type: "function"})
			}
		case *ast.VarDecl:
			if n.NameSpan.Valid() {
				out = append(out, SemanticToken{Span: n.NameSpan, Type: "variable"})
			}
		case *ast.ConstDecl:
			if n.NameSpan.Valid() {
				out = append(out, SemanticToken{Span: n.NameSpan, Type: "variable"})
			}
		case *ast.EnumDef:
			if n.NameSpan.Valid() {
				out = append(out, SemanticToken{Span: n.NameSpan, Type: "enum"})
			}
		case *ast.EventDef:
			if n.NameSpan.Valid() {
				out = append(out, SemanticToken{Span: n.NameSpan, Type: "event"})
			}
		case *ast.TimelineDef:
			if n.NameSpan.Valid() {
				out = append(out, SemanticToken{Span: n.NameSpan, Type: "timeline"})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}
