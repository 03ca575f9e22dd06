package serializer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/Bli-AIk/mortar/ast"
	"github.com/Bli-AIk/mortar/diagnostic"
)

// SchemaVersion is stamped into every document's metadata.version.
const SchemaVersion = "1.0.0"

// Options controls Serialize's output.
type Options struct {
	// Pretty indents the final JSON with two spaces instead of emitting it
	// compact. Only Marshal reads it; Serialize builds the same Mortared
	// value either way.
	Pretty bool
	// Now overrides the generated_at timestamp; zero value uses time.Now().
	// Exists so driver/cmd callers (and tests) can pin the value.
	Now time.Time
}

// SerializationError wraps a diagnostic.SerializationError occurrence: a
// construct that parsed successfully but has no wire representation.
type SerializationError struct {
	Message string
}

func (e *SerializationError) Error() string { return e.Message }

func serErr(format string, args ...any) error {
	return &SerializationError{Message: fmt.Sprintf(format, args...)}
}

// Serialize lowers a successfully parsed Program into the `.mortared`
// document shape. It is a pure function of prog and opts: no I/O, no
// global state. The single failure mode is a construct the wire schema
// cannot represent (diagnostic.SerializationError) — see README §4.5.
func Serialize(prog *ast.Program, opts Options) (*Mortared, error) {
	c := &converter{
		varValues: make(map[string]ast.VarValue),
		eventDefs: make(map[string]*ast.EventDef),
	}
	for _, tl := range prog.TopLevel {
		switch d := tl.(type) {
		case *ast.VarDecl:
			c.varValues[d.Name] = d.Value
		case *ast.ConstDecl:
			c.varValues[d.Name] = d.Value
		case *ast.EventDef:
			c.eventDefs[d.Name] = d
		}
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	out := &Mortared{
		Metadata:  Metadata{Version: SchemaVersion, GeneratedAt: now.Format(time.RFC3339)},
		Nodes:     []Node{},
		Functions: []Function{},
	}

	for _, tl := range prog.TopLevel {
		switch d := tl.(type) {
		case *ast.NodeDef:
			n, err := c.convertNode(d)
			if err != nil {
				return nil, err
			}
			out.Nodes = append(out.Nodes, *n)
		case *ast.FunctionDecl:
			out.Functions = append(out.Functions, convertFunction(d))
		case *ast.VarDecl:
			v, err := c.convertVariable(d.Name, d.Type, d.Value)
			if err != nil {
				return nil, err
			}
			out.Variables = append(out.Variables, v)
		case *ast.ConstDecl:
			v, err := c.convertVariable(d.Name, d.Type, d.Value)
			if err != nil {
				return nil, err
			}
			out.Constants = append(out.Constants, Constant{Variable: v, Public: d.IsPublic})
		case *ast.EnumDef:
			out.Enums = append(out.Enums, EnumJSON{Name: d.Name, Variants: d.Variants})
		case *ast.EventDef:
			ed, err := c.convertEventDef(d)
			if err != nil {
				return nil, err
			}
			out.Events = append(out.Events, *ed)
		case *ast.TimelineDef:
			td, err := c.convertTimeline(d)
			if err != nil {
				return nil, err
			}
			out.Timelines = append(out.Timelines, *td)
		}
	}
	return out, nil
}

// Marshal renders a Mortared document to JSON, indenting it when opts.Pretty
// is set. Field order follows struct declaration order, matching
// encoding/json's normal behavior.
func Marshal(m *Mortared, opts Options) ([]byte, error) {
	if opts.Pretty {
		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "marshal mortared document")
		}
		return b, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "marshal mortared document")
	}
	return b, nil
}

type converter struct {
	varValues map[string]ast.VarValue
	eventDefs map[string]*ast.EventDef
}

// convertNode lowers one node body into its grouped texts, hoisted
// branches, and trailing choice, following the accumulator pattern: a new
// Text starts at every text statement and accumulates any events attached
// via a following `with events:` (or shorthand) statement, synthesizing an
// empty leading Text when events appear before any text.
func (c *converter) convertNode(n *ast.NodeDef) (*Node, error) {
	branchesByName := make(map[string]ast.BranchDef)
	var branchOrder []string
	for _, stmt := range n.Body {
		if bs, ok := stmt.(*ast.BranchStmt); ok {
			branchesByName[bs.Def.Name] = bs.Def
			branchOrder = append(branchOrder, bs.Def.Name)
		}
	}

	out := &Node{Name: n.Name, Texts: []Text{}}
	var pending *Text
	flush := func() {
		if pending != nil {
			out.Texts = append(out.Texts, *pending)
			pending = nil
		}
	}

	for _, stmt := range n.Body {
		switch s := stmt.(type) {
		case *ast.TextStmt:
			flush()
			pending = &Text{Text: s.Text}
		case *ast.InterpolatedTextStmt:
			flush()
			parts, plain, err := c.convertInterpolated(s.Value, branchesByName)
			if err != nil {
				return nil, err
			}
			pending = &Text{Text: plain, InterpolatedParts: parts}
		case *ast.BranchStmt:
			// already collected above; hoisted separately from the text stream
		case *ast.ChoiceStmt:
			flush()
			items, err := c.convertChoiceItems(s.Items)
			if err != nil {
				return nil, err
			}
			out.Choice = items
		case *ast.WithEventsStmt:
			if pending == nil {
				pending = &Text{}
			}
			events, err := c.convertWithEventItems(s.Items)
			if err != nil {
				return nil, err
			}
			pending.Events = append(pending.Events, events...)
		default:
			return nil, serErr("node %q: statement %T has no .mortared representation", n.Name, stmt)
		}
	}
	flush()

	for _, name := range branchOrder {
		bd, err := c.convertBranchDef(branchesByName[name])
		if err != nil {
			return nil, err
		}
		out.Branches = append(out.Branches, bd)
	}

	switch j := n.Jump.(type) {
	case ast.JumpTo:
		next := j.Name
		out.Next = &next
	case ast.JumpReturn, ast.JumpBreak, nil:
		// No wire field distinguishes "returns to caller" / "breaks out of
		// the enclosing timeline" from "dialogue simply ends here" — both
		// leave Next unset.
	}
	return out, nil
}

func (c *converter) convertInterpolated(s ast.InterpolatedString, branches map[string]ast.BranchDef) ([]StringPart, string, error) {
	var parts []StringPart
	var plain string
	for _, p := range s.Parts {
		switch part := p.(type) {
		case ast.TextPart:
			plain += part.Text
			parts = append(parts, StringPart{Type: "text", Content: part.Text})
		case ast.PlaceholderPart:
			plain += "{" + part.Name + "}"
			sp := StringPart{Type: "placeholder", Content: part.Name}
			if bd, ok := branches[part.Name]; ok {
				cases, err := c.convertBranchCases(bd.Cases)
				if err != nil {
					return nil, "", err
				}
				sp.EnumType = bd.EnumType
				sp.Branches = cases
			}
			parts = append(parts, sp)
		case ast.ExpressionPart:
			args, err := c.argsToStrings(part.Call.Args)
			if err != nil {
				return nil, "", err
			}
			plain += "{" + part.Call.Name + "(...)}"
			parts = append(parts, StringPart{
				Type:         "expression",
				Content:      part.Call.Name,
				FunctionName: part.Call.Name,
				Args:         args,
			})
		}
	}
	return parts, plain, nil
}

func (c *converter) convertBranchDef(bd ast.BranchDef) (BranchDef, error) {
	cases, err := c.convertBranchCases(bd.Cases)
	if err != nil {
		return BranchDef{}, err
	}
	return BranchDef{Name: bd.Name, EnumType: bd.EnumType, Cases: cases}, nil
}

func (c *converter) convertBranchCases(cases []ast.BranchCase) ([]BranchCase, error) {
	out := make([]BranchCase, 0, len(cases))
	for _, bc := range cases {
		events, err := c.convertEvents(bc.Events)
		if err != nil {
			return nil, err
		}
		out = append(out, BranchCase{Condition: bc.Condition, Text: bc.Text, Events: events})
	}
	return out, nil
}

func (c *converter) convertEvents(events []ast.Event) ([]Event, error) {
	if len(events) == 0 {
		return nil, nil
	}
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		actions, err := c.convertEventAction(ev.Action)
		if err != nil {
			return nil, err
		}
		out = append(out, Event{Index: ev.Index, Actions: actions})
	}
	return out, nil
}

func (c *converter) convertEventAction(ea ast.EventAction) ([]Action, error) {
	actions := make([]Action, 0, 1+len(ea.Chains))
	a, err := c.convertCallAsAction(ea.Call)
	if err != nil {
		return nil, err
	}
	actions = append(actions, a)
	for _, chain := range ea.Chains {
		a, err := c.convertCallAsAction(chain)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func (c *converter) convertCallAsAction(call ast.FuncCall) (Action, error) {
	args, err := c.argsToStrings(call.Args)
	if err != nil {
		return Action{}, errors.Wrapf(err, "action %q", call.Name)
	}
	return Action{Type: call.Name, Args: args}, nil
}

// argsToStrings renders a call's arguments to the flat string form every
// wire Action/Condition carries. A nested function-call argument has no
// such rendering and is reported as diagnostic.SerializationError.
func (c *converter) argsToStrings(args []ast.Arg) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		s, err := c.argToString(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *converter) argToString(arg ast.Arg) (string, error) {
	switch a := arg.(type) {
	case ast.ArgString:
		return a.Value, nil
	case ast.ArgNumber:
		return strconv.FormatFloat(a.Value, 'f', -1, 64), nil
	case ast.ArgBool:
		return strconv.FormatBool(a.Value), nil
	case ast.ArgIdent:
		return a.Name, nil
	case ast.ArgFuncCall:
		return "", serErr("%s: nested function call %q cannot be represented as an argument", diagnostic.SerializationError, a.Call.Name)
	default:
		return "", serErr("unrecognized argument kind %T", arg)
	}
}

func (c *converter) convertWithEventItems(items []ast.WithEventItem) ([]Event, error) {
	var out []Event
	for _, item := range items {
		events, err := c.expandWithEventItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, events...)
	}
	return out, nil
}

func (c *converter) expandWithEventItem(item ast.WithEventItem) ([]Event, error) {
	switch it := item.(type) {
	case ast.EventRef:
		ev, err := c.resolveEventRef(it.Name, nil)
		if err != nil {
			return nil, err
		}
		return []Event{ev}, nil
	case ast.EventRefWithOverride:
		ev, err := c.resolveEventRef(it.Name, it.Override)
		if err != nil {
			return nil, err
		}
		return []Event{ev}, nil
	case ast.InlineEvent:
		actions, err := c.convertEventAction(it.Event.Action)
		if err != nil {
			return nil, err
		}
		return []Event{{Index: it.Event.Index, Actions: actions}}, nil
	case ast.EventRefList:
		var out []Event
		for _, sub := range it.Items {
			evs, err := c.expandWithEventItem(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, evs...)
		}
		return out, nil
	default:
		return nil, serErr("unrecognized with-events item %T", item)
	}
}

func (c *converter) resolveEventRef(name string, override ast.IndexOverride) (Event, error) {
	def, ok := c.eventDefs[name]
	if !ok {
		return Event{}, serErr("%s: event %q is not declared", diagnostic.NodeNotFound, name)
	}
	index := 0.0
	if def.Index != nil {
		index = *def.Index
	}
	if override != nil {
		v, err := c.resolveIndexOverride(override)
		if err != nil {
			return Event{}, err
		}
		index = v
	}
	actions, err := c.convertEventAction(def.Action)
	if err != nil {
		return Event{}, err
	}
	return Event{Index: index, Actions: actions}, nil
}

func (c *converter) resolveIndexOverride(o ast.IndexOverride) (float64, error) {
	switch v := o.(type) {
	case ast.IndexValue:
		return v.Value, nil
	case ast.IndexVariable:
		val, ok := c.varValues[v.Name]
		if !ok {
			return 0, serErr("index override %q is not a declared variable", v.Name)
		}
		num, ok := val.(ast.VarNumber)
		if !ok {
			return 0, serErr("index override %q is not a numeric variable", v.Name)
		}
		return num.Value, nil
	default:
		return 0, serErr("unrecognized index override %T", o)
	}
}

func (c *converter) convertChoiceItems(items []ast.ChoiceItem) ([]Choice, error) {
	out := make([]Choice, 0, len(items))
	for _, item := range items {
		ch := Choice{Text: item.Text}
		if item.Condition != nil {
			cond, err := conditionToJSON(item.Condition)
			if err != nil {
				return nil, err
			}
			ch.Condition = cond
		}
		switch d := item.Dest.(type) {
		case ast.DestNode:
			next := d.Name
			ch.Next = &next
		case ast.DestReturn:
			ch.Action = "return"
		case ast.DestBreak:
			ch.Action = "break"
		case ast.DestChoice:
			sub, err := c.convertChoiceItems(d.Items)
			if err != nil {
				return nil, err
			}
			ch.Choice = sub
		default:
			return nil, serErr("unrecognized choice destination %T", item.Dest)
		}
		out = append(out, ch)
	}
	return out, nil
}

// conditionToJSON flattens the recursive IfCond tree into the wire
// {type, args} shape. Function-call conditions map directly (type is the
// called function's name); every other condition kind is given a
// synthetic type tag, with nested conditions rendered into single args
// entries via renderCond so the outer shape always stays flat.
func conditionToJSON(cond ast.IfCond) (*Condition, error) {
	switch c := cond.(type) {
	case ast.CondFuncCall:
		conv := &converter{}
		args, err := conv.argsToStrings(c.Call.Args)
		if err != nil {
			return nil, err
		}
		return &Condition{Type: c.Call.Name, Args: args}, nil
	case ast.CondIdent:
		return &Condition{Type: "identifier", Args: []string{c.Name}}, nil
	case ast.CondEnumMember:
		return &Condition{Type: "enum_member", Args: []string{c.Enum + "." + c.Variant}}, nil
	case ast.CondLiteral:
		return &Condition{Type: "literal", Args: []string{strconv.FormatBool(c.Value)}}, nil
	case ast.UnaryCond:
		inner, err := conditionToJSON(c.Operand)
		if err != nil {
			return nil, err
		}
		return &Condition{Type: "not", Args: []string{renderCond(inner)}}, nil
	case ast.BinaryCond:
		left, err := conditionToJSON(c.Left)
		if err != nil {
			return nil, err
		}
		right, err := conditionToJSON(c.Right)
		if err != nil {
			return nil, err
		}
		return &Condition{Type: comparisonOpName(c.Op), Args: []string{renderCond(left), renderCond(right)}}, nil
	default:
		return nil, serErr("unrecognized condition kind %T", cond)
	}
}

func renderCond(c *Condition) string {
	s := c.Type + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ","
		}
		s += a
	}
	return s + ")"
}

func comparisonOpName(op ast.ComparisonOp) string {
	switch op {
	case ast.OpGT:
		return "gt"
	case ast.OpLT:
		return "lt"
	case ast.OpGTE:
		return "gte"
	case ast.OpLTE:
		return "lte"
	case ast.OpEQ:
		return "eq"
	case ast.OpNEQ:
		return "neq"
	case ast.OpAnd:
		return "and"
	case ast.OpOr:
		return "or"
	default:
		return "unknown"
	}
}

func convertFunction(d *ast.FunctionDecl) Function {
	params := make([]Param, 0, len(d.Params))
	for _, p := range d.Params {
		params = append(params, Param{Name: p.Name, Type: p.Type})
	}
	return Function{Name: d.Name, Params: params, Return: d.ReturnType}
}

func (c *converter) convertVariable(name, typ string, v ast.VarValue) (Variable, error) {
	val, err := c.varValueToJSON(v)
	if err != nil {
		return Variable{}, err
	}
	return Variable{Name: name, Type: typ, Value: val}, nil
}

func (c *converter) varValueToJSON(v ast.VarValue) (any, error) {
	switch val := v.(type) {
	case ast.VarString:
		return val.Value, nil
	case ast.VarNumber:
		return val.Value, nil
	case ast.VarBool:
		return val.Value, nil
	case ast.VarEnumMember:
		return val.Enum + "." + val.Variant, nil
	case ast.VarBranch:
		cases, err := c.convertBranchCases(val.Value.Cases)
		if err != nil {
			return nil, err
		}
		return BranchValueJSON{EnumType: val.Value.EnumType, Cases: cases}, nil
	default:
		return nil, serErr("unrecognized variable value kind %T", v)
	}
}

func (c *converter) convertEventDef(d *ast.EventDef) (*EventDef, error) {
	action, err := c.convertCallAsAction(d.Action.Call)
	if err != nil {
		return nil, err
	}
	return &EventDef{Name: d.Name, Index: d.Index, Action: action, Duration: d.Duration}, nil
}

func (c *converter) convertTimeline(d *ast.TimelineDef) (*TimelineDef, error) {
	stmts := make([]TimelineStmtJSON, 0, len(d.Body))
	for _, stmt := range d.Body {
		switch s := stmt.(type) {
		case ast.TimelineRun:
			args, err := c.argsToStrings(s.Run.Args)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, TimelineStmtJSON{
				Type:           "run",
				EventName:      s.Run.EventName,
				Args:           args,
				IgnoreDuration: s.Run.IgnoreDuration,
			})
		case ast.TimelineWait:
			stmts = append(stmts, TimelineStmtJSON{Type: "wait", Duration: s.Duration})
		default:
			return nil, serErr("unrecognized timeline statement %T", stmt)
		}
	}
	return &TimelineDef{Name: d.Name, Statements: stmts}, nil
}
