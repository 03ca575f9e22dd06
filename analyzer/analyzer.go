// Package analyzer implements the Mortar diagnostic analyzer (component
// C4): a two-pass walk of a Program that resolves name references, checks
// call arity/argument shapes, enforces naming conventions, and builds the
// symbol table every other component reads. The analyzer never mutates the
// tree it walks.
package analyzer

import (
	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/i18n"
)

// SymbolTable is the by-product of Pass A: every declared name, grouped by
// kind. Consumers (the driver's completion and outline features) only read
// it; the analyzer is its sole writer.
type SymbolTable struct {
	Nodes     map[string]ast.Span
	Functions map[string]*ast.FunctionDecl
	Variables map[string]ast.Span
	Constants map[string]ast.Span
	Enums     map[string][]string
	Events    map[string]ast.Span
	Timelines map[string]ast.Span
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{
		Nodes:     map[string]ast.Span{},
		Functions: map[string]*ast.FunctionDecl{},
		Variables: map[string]ast.Span{},
		Constants: map[string]ast.Span{},
		Enums:     map[string][]string{},
		Events:    map[string]ast.Span{},
		Timelines: map[string]ast.Span{},
	}
}

type analyzer struct {
	symbols       *SymbolTable
	collector     *diagnostic.Collector
	funcOrder     []string // declaration order, for deterministic UnusedFunction output
	usedFunctions map[string]bool
}

// Analyze runs both passes over prog and returns the resulting symbol
// table plus every diagnostic recorded (in report order: Pass A duplicate
// and naming diagnostics first, Pass B resolution diagnostics next, the
// UnusedFunction sweep last).
func Analyze(prog *ast.Program, locale i18n.Locale) (*SymbolTable, []diagnostic.Diagnostic) {
	a := &analyzer{
		symbols:       newSymbolTable(),
		collector:     diagnostic.NewCollector(locale),
		usedFunctions: map[string]bool{},
	}
	a.collectDeclarations(prog)
	a.resolveReferences(prog)
	a.flagUnusedFunctions()
	return a.symbols, a.collector.Diagnostics()
}

// --- Pass A: collect declarations ---------------------------------------

func (a *analyzer) collectDeclarations(prog *ast.Program) {
	for _, item := range prog.TopLevel {
		switch n := item.(type) {
		case *ast.NodeDef:
			a.declare(a.symbols.Nodes, n.Name, n.NameSpan)
			a.checkPascalCase(n.Name, n.NameSpan, diagnostic.NonPascalCaseNode)
		case *ast.FunctionDecl:
			if _, dup := a.symbols.Functions[n.Name]; dup {
				a.collector.Add(diagnostic.DuplicateDefinition, n.NameSpan, n.Name)
			} else {
				a.symbols.Functions[n.Name] = n
				a.funcOrder = append(a.funcOrder, n.Name)
			}
			a.checkSnakeCase(n.Name, n.NameSpan, diagnostic.NonSnakeCaseFunction)
		case *ast.VarDecl:
			a.declare(a.symbols.Variables, n.Name, n.NameSpan)
			a.checkSnakeCase(n.Name, n.NameSpan, diagnostic.NonSnakeCaseVariable)
		case *ast.ConstDecl:
			a.declare(a.symbols.Constants, n.Name, n.NameSpan)
			a.checkSnakeCase(n.Name, n.NameSpan, diagnostic.NonSnakeCaseVariable)
		case *ast.EnumDef:
			if _, dup := a.symbols.Enums[n.Name]; dup {
				a.collector.Add(diagnostic.DuplicateDefinition, n.NameSpan, n.Name)
			} else {
				a.symbols.Enums[n.Name] = n.Variants
			}
			a.checkPascalCase(n.Name, n.NameSpan, diagnostic.NonPascalCaseEnum)
		case *ast.EventDef:
			a.declare(a.symbols.Events, n.Name, n.NameSpan)
		case *ast.TimelineDef:
			a.declare(a.symbols.Timelines, n.Name, n.NameSpan)
		}
	}
}

// declare records name -> span in table, emitting DuplicateDefinition for
// every occurrence after the first (which is left untouched).
func (a *analyzer) declare(table map[string]ast.Span, name string, span ast.Span) {
	if _, dup := table[name]; dup {
		a.collector.Add(diagnostic.DuplicateDefinition, span, name)
		return
	}
	table[name] = span
}

func (a *analyzer) checkSnakeCase(name string, span ast.Span, kind diagnostic.Kind) {
	if !isSnakeCase(name) {
		a.collector.Add(kind, span, name)
	}
}

func (a *analyzer) checkPascalCase(name string, span ast.Span, kind diagnostic.Kind) {
	if !isPascalCase(name) {
		a.collector.Add(kind, span, name)
	}
}

func isSnakeCase(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case i == 0 && (r == '_' || (r >= 'a' && r <= 'z')):
		case i > 0 && (r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

func isPascalCase(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case i == 0 && r >= 'A' && r <= 'Z':
		case i > 0 && ((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// --- Pass B: resolve references -----------------------------------------

func (a *analyzer) resolveReferences(prog *ast.Program) {
	for _, item := range prog.TopLevel {
		switch n := item.(type) {
		case *ast.NodeDef:
			a.resolveStmts(n.Body)
			if jump, ok := n.Jump.(ast.JumpTo); ok {
				a.resolveNodeRef(jump.Name, jump.NameSpan)
			}
		case *ast.EventDef:
			a.resolveEventAction(n.Action)
		case *ast.TimelineDef:
			for _, stmt := range n.Body {
				if run, ok := stmt.(ast.TimelineRun); ok {
					a.resolveRunStmt(&run.Run)
				}
			}
		}
	}
}

func (a *analyzer) resolveStmts(stmts []ast.NodeStmt) {
	for _, stmt := range stmts {
		a.resolveStmt(stmt)
	}
}

func (a *analyzer) resolveStmt(stmt ast.NodeStmt) {
	switch s := stmt.(type) {
	case *ast.InterpolatedTextStmt:
		for _, part := range s.Value.Parts {
			if ep, ok := part.(ast.ExpressionPart); ok {
				a.resolveFuncCall(ep.Call)
			}
		}
	case *ast.ChoiceStmt:
		for _, item := range s.Items {
			a.resolveChoiceItem(item)
		}
	case *ast.BranchStmt:
		for _, c := range s.Def.Cases {
			for _, ev := range c.Events {
				a.resolveEventAction(ev.Action)
			}
		}
	case *ast.IfElseStmt:
		a.resolveCond(s.Cond)
		a.resolveStmts(s.Then)
		a.resolveStmts(s.Else)
	case *ast.RunStmt:
		a.resolveRunStmt(s)
	case *ast.WithEventsStmt:
		for _, item := range s.Items {
			a.resolveWithEventItem(item)
		}
	}
}

func (a *analyzer) resolveChoiceItem(item ast.ChoiceItem) {
	if item.Condition != nil {
		a.resolveCond(item.Condition)
	}
	switch d := item.Dest.(type) {
	case ast.DestNode:
		a.resolveNodeRef(d.Name, d.NameSpan)
	case ast.DestChoice:
		for _, sub := range d.Items {
			a.resolveChoiceItem(sub)
		}
	}
}

func (a *analyzer) resolveWithEventItem(item ast.WithEventItem) {
	switch e := item.(type) {
	case ast.EventRef:
		a.resolveEventOrNodeRef(e.Name, e.NameSpan)
	case ast.EventRefWithOverride:
		a.resolveEventOrNodeRef(e.Name, e.NameSpan)
	case ast.InlineEvent:
		a.resolveEventAction(e.Event.Action)
	case ast.EventRefList:
		for _, sub := range e.Items {
			a.resolveWithEventItem(sub)
		}
	}
}

func (a *analyzer) resolveRunStmt(run *ast.RunStmt) {
	a.resolveEventOrNodeRef(run.EventName, run.EventNameSpan)
	for _, arg := range run.Args {
		if fc, ok := arg.(ast.ArgFuncCall); ok {
			a.resolveFuncCall(fc.Call)
		}
	}
}

// resolveNodeRef checks a reference that must name a node (jumps, choice
// destinations).
func (a *analyzer) resolveNodeRef(name string, span ast.Span) {
	if _, ok := a.symbols.Nodes[name]; !ok {
		a.collector.Add(diagnostic.NodeNotFound, span, name)
	}
}

// resolveEventOrNodeRef checks a reference that §4.4 groups under "Node
// references": run statements' event/node names may name either an event
// or a node, and an unresolved name is reported as NodeNotFound either way
// since the taxonomy has no separate event-not-found kind.
func (a *analyzer) resolveEventOrNodeRef(name string, span ast.Span) {
	_, isEvent := a.symbols.Events[name]
	_, isNode := a.symbols.Nodes[name]
	if !isEvent && !isNode {
		a.collector.Add(diagnostic.NodeNotFound, span, name)
	}
}

func (a *analyzer) resolveEventAction(action ast.EventAction) {
	a.resolveFuncCall(action.Call)
	for _, chain := range action.Chains {
		a.resolveFuncCall(chain)
	}
}

func (a *analyzer) resolveCond(cond ast.IfCond) {
	switch c := cond.(type) {
	case ast.UnaryCond:
		a.resolveCond(c.Operand)
	case ast.BinaryCond:
		a.resolveCond(c.Left)
		a.resolveCond(c.Right)
	case ast.CondFuncCall:
		decl := a.resolveFuncCall(c.Call)
		if decl != nil && !isBooleanType(decl.ReturnType) {
			a.collector.Add(diagnostic.ConditionTypeMismatch, c.Call.NameSpan, c.Call.Name, decl.ReturnType)
		}
	}
}

// resolveFuncCall checks the callee exists, marks it used, checks arity,
// recursively resolves any nested function-call arguments, and checks
// each argument's static shape against the declared parameter type. It
// returns the resolved declaration (nil if the callee was not found) so
// callers like resolveCond can additionally check a return type.
func (a *analyzer) resolveFuncCall(call ast.FuncCall) *ast.FunctionDecl {
	decl, ok := a.symbols.Functions[call.Name]
	if !ok {
		a.collector.Add(diagnostic.FunctionNotFound, call.NameSpan, call.Name)
		return nil
	}
	a.usedFunctions[call.Name] = true

	for _, arg := range call.Args {
		if fc, ok := arg.(ast.ArgFuncCall); ok {
			a.resolveFuncCall(fc.Call)
		}
	}

	if len(call.Args) != len(decl.Params) {
		a.collector.Add(diagnostic.ArgumentCountMismatch, call.NameSpan, call.Name, len(decl.Params), len(call.Args))
		return decl
	}
	for i, arg := range call.Args {
		argType, known := a.argShape(arg)
		if !known {
			continue // bare identifiers aren't type-tracked, so there's nothing to check
		}
		if !typesCompatible(decl.Params[i].Type, argType) {
			a.collector.Add(diagnostic.ArgumentTypeMismatch, call.NameSpan, call.Name, i+1, decl.Params[i].Type, argType)
		}
	}
	return decl
}

// argShape returns the static type name an argument presents for
// arity/type checking, and whether a shape is known at all (bare
// identifiers are assumed to match, per §4.4).
func (a *analyzer) argShape(arg ast.Arg) (string, bool) {
	switch v := arg.(type) {
	case ast.ArgString:
		return "String", true
	case ast.ArgNumber:
		return "Number", true
	case ast.ArgBool:
		return "Boolean", true
	case ast.ArgFuncCall:
		if decl, ok := a.symbols.Functions[v.Call.Name]; ok {
			return decl.ReturnType, decl.ReturnType != ""
		}
		return "", false
	default:
		return "", false
	}
}

func isBooleanType(t string) bool {
	return t == "Boolean" || t == "Bool"
}

// typesCompatible compares a declared parameter type against an argument's
// static shape, treating Bool/Boolean as equivalent and everything else as
// an exact name match (enum types included).
func typesCompatible(paramType, argType string) bool {
	if isBooleanType(paramType) && isBooleanType(argType) {
		return true
	}
	return paramType == argType
}

func (a *analyzer) flagUnusedFunctions() {
	for _, name := range a.funcOrder {
		if !a.usedFunctions[name] {
			decl := a.symbols.Functions[name]
			a.collector.Add(diagnostic.UnusedFunction, decl.NameSpan, name)
		}
	}
}
