package decode

import (
	"encoding/json"
	"fmt"

	"github.com/cssc-lang/cssc/internal/arena"
	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/value"
)

// Decode parses data (the fixture JSON tree described in this package's
// doc comment) into an ast.Block backed by a freshly allocated ast.Arena.
func Decode(data []byte) (ast.Block, *ast.Arena, error) {
	a := arena.New[ast.Statement]()
	block, err := DecodeInto(data, a)
	if err != nil {
		return nil, nil, err
	}
	return block, a, nil
}

// DecodeInto parses data into a.Block allocated from the caller-owned
// arena, so a file pulled in via @import lands its statements in the same
// arena as the entry file it was imported from, required by ast.Block's
// indices-into-one-arena contract.
func DecodeInto(data []byte, a *ast.Arena) (ast.Block, error) {
	var nodes []node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	d := &decoder{arena: a}
	return d.block(nodes)
}

type decoder struct {
	arena *ast.Arena
}

// node mirrors the demonstration fixture schema. Only the fields relevant
// to Type are populated by a given fixture author; the rest are left zero.
type node struct {
	Type string `json:"type"`

	// Ruleset / KeyframeBlock
	Selector string `json:"selector,omitempty"`
	Body     []node `json:"body,omitempty"`

	// Declaration
	Property  string    `json:"property,omitempty"`
	Value     *exprNode `json:"value,omitempty"`
	Important bool      `json:"important,omitempty"`

	// Comment
	Text      string `json:"text,omitempty"`
	Preserved bool   `json:"preserved,omitempty"`

	// Import
	URLs       []string `json:"urls,omitempty"`
	MediaQuery string   `json:"mediaQuery,omitempty"`

	// VarAssignment
	Name    string `json:"name,omitempty"`
	Default bool   `json:"default,omitempty"`
	Global  bool   `json:"global,omitempty"`

	// MixinDef / FunctionDef / Include
	Params []paramNode `json:"params,omitempty"`
	Args   []argNode   `json:"args,omitempty"`

	// If
	Branches []branchNode `json:"branches,omitempty"`
	Else     []node       `json:"else,omitempty"`
	HasElse  bool         `json:"hasElse,omitempty"`

	// For
	From      *exprNode `json:"from,omitempty"`
	To        *exprNode `json:"to,omitempty"`
	Inclusive bool      `json:"inclusive,omitempty"`

	// Each
	Vars []string  `json:"vars,omitempty"`
	List *exprNode `json:"list,omitempty"`

	// While / Warn / ErrorDirective / Debug
	Condition *exprNode `json:"condition,omitempty"`
	Message   *exprNode `json:"message,omitempty"`

	// ExtendDirective
	Target   string `json:"target,omitempty"`
	Optional bool   `json:"optional,omitempty"`

	// AtRule / MediaRule / SupportsRule / AtRootRule
	AtName  string `json:"atName,omitempty"`
	Prelude string `json:"prelude,omitempty"`
	HasBody bool   `json:"hasBody,omitempty"`
	Query   string `json:"query,omitempty"`

	// KeyframesRule
	VendorPrefix string      `json:"vendorPrefix,omitempty"`
	Blocks       []blockNode `json:"blocks,omitempty"`
}

type paramNode struct {
	Name     string    `json:"name"`
	Default  *exprNode `json:"default,omitempty"`
	Variadic bool      `json:"variadic,omitempty"`
}

type argNode struct {
	Name  string    `json:"name,omitempty"`
	Value *exprNode `json:"value"`
	Splat bool      `json:"splat,omitempty"`
}

type branchNode struct {
	Condition *exprNode `json:"condition"`
	Body      []node    `json:"body"`
}

type blockNode struct {
	Selectors []string `json:"selectors"`
	Body      []node   `json:"body"`
}

// exprNode mirrors ast.Expr. "t" selects the variant; the rest of the
// fields are interpreted per-variant the same way node's are.
type exprNode struct {
	T string `json:"t"`

	// num
	Num  float64 `json:"num,omitempty"`
	Unit string  `json:"unit,omitempty"`

	// str
	Str    string `json:"str,omitempty"`
	Quoted bool   `json:"quoted,omitempty"`

	// color
	Hex string `json:"hex,omitempty"`

	// bool
	Bool bool `json:"bool,omitempty"`

	// var
	Name string `json:"name,omitempty"`

	// bin / un
	Op    string    `json:"op,omitempty"`
	Left  *exprNode `json:"left,omitempty"`
	Right *exprNode `json:"right,omitempty"`
	Value *exprNode `json:"value,omitempty"`

	// call
	Args []argNode `json:"args,omitempty"`

	// list
	Sep   string      `json:"sep,omitempty"`
	Items []*exprNode `json:"items,omitempty"`

	// map
	Keys   []*exprNode `json:"keys,omitempty"`
	Values []*exprNode `json:"values,omitempty"`
}

func (d *decoder) block(nodes []node) (ast.Block, error) {
	block := make(ast.Block, 0, len(nodes))
	for _, n := range nodes {
		stmt, err := d.statement(n)
		if err != nil {
			return nil, err
		}
		block = append(block, d.arena.Alloc(stmt))
	}
	return block, nil
}

func (d *decoder) statement(n node) (ast.Statement, error) {
	switch n.Type {
	case "rule":
		sel, err := parseSelectorList(n.Selector)
		if err != nil {
			return nil, err
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Ruleset{Selector: sel, Body: body}, nil

	case "decl":
		val, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return ast.Declaration{
			Property:  ast.PlainInterpolated(n.Property),
			Value:     val,
			Important: n.Important,
		}, nil

	case "comment":
		return ast.CommentNode{Text: n.Text, Preserved: n.Preserved}, nil

	case "import":
		urls := make([]ast.Interpolated, len(n.URLs))
		for i, u := range n.URLs {
			urls[i] = ast.PlainInterpolated(u)
		}
		return ast.Import{URLs: urls, MediaQuery: ast.PlainInterpolated(n.MediaQuery)}, nil

	case "var":
		val, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return ast.VarAssignment{Name: n.Name, Value: val, Default: n.Default, Global: n.Global}, nil

	case "mixin":
		params, err := d.params(n.Params)
		if err != nil {
			return nil, err
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.MixinDef{Name: n.Name, Params: params, Body: body}, nil

	case "include":
		args, err := d.arguments(n.Args)
		if err != nil {
			return nil, err
		}
		content, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Include{Name: n.Name, Args: args, ContentBody: content, HasContent: len(n.Body) > 0}, nil

	case "function":
		params, err := d.params(n.Params)
		if err != nil {
			return nil, err
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.FunctionDef{Name: n.Name, Params: params, Body: body}, nil

	case "return":
		val, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return ast.Return{Value: val}, nil

	case "content":
		return ast.ContentDirective{}, nil

	case "extend":
		sel, err := parseSelectorList(n.Target)
		if err != nil {
			return nil, err
		}
		if len(sel.Complexes) != 1 || len(sel.Complexes[0].Tail) != 0 {
			return nil, fmt.Errorf("decode: @extend target %q must be a single compound selector", n.Target)
		}
		return ast.ExtendDirective{Target: sel.Complexes[0].Head, Optional: n.Optional}, nil

	case "if":
		branches := make([]ast.IfBranch, len(n.Branches))
		for i, b := range n.Branches {
			cond, err := d.expr(b.Condition)
			if err != nil {
				return nil, err
			}
			body, err := d.block(b.Body)
			if err != nil {
				return nil, err
			}
			branches[i] = ast.IfBranch{Condition: cond, Body: body}
		}
		elseBody, err := d.block(n.Else)
		if err != nil {
			return nil, err
		}
		return ast.If{Branches: branches, Else: elseBody, HasElse: n.HasElse}, nil

	case "for":
		from, err := d.expr(n.From)
		if err != nil {
			return nil, err
		}
		to, err := d.expr(n.To)
		if err != nil {
			return nil, err
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.For{Var: n.Name, From: from, To: to, Inclusive: n.Inclusive, Body: body}, nil

	case "each":
		list, err := d.expr(n.List)
		if err != nil {
			return nil, err
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Each{Vars: n.Vars, List: list, Body: body}, nil

	case "while":
		cond, err := d.expr(n.Condition)
		if err != nil {
			return nil, err
		}
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.While{Condition: cond, Body: body}, nil

	case "warn":
		msg, err := d.expr(n.Message)
		if err != nil {
			return nil, err
		}
		return ast.Warn{Message: msg}, nil

	case "error":
		msg, err := d.expr(n.Message)
		if err != nil {
			return nil, err
		}
		return ast.ErrorDirective{Message: msg}, nil

	case "debug":
		msg, err := d.expr(n.Message)
		if err != nil {
			return nil, err
		}
		return ast.Debug{Message: msg}, nil

	case "media":
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.MediaRule{Query: ast.PlainInterpolated(n.Query), Body: body}, nil

	case "supports":
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.SupportsRule{Condition: ast.PlainInterpolated(n.Query), Body: body}, nil

	case "atroot":
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.AtRootRule{Query: ast.PlainInterpolated(n.Query), Body: body}, nil

	case "atrule":
		body, err := d.block(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.AtRule{Name: n.AtName, Prelude: ast.PlainInterpolated(n.Prelude), Body: body, HasBody: n.HasBody}, nil

	case "keyframes":
		blocks := make([]ast.KeyframeBlock, len(n.Blocks))
		for i, b := range n.Blocks {
			body, err := d.block(b.Body)
			if err != nil {
				return nil, err
			}
			blocks[i] = ast.KeyframeBlock{Selectors: b.Selectors, Body: body}
		}
		return ast.KeyframesRule{VendorPrefix: n.VendorPrefix, Name: n.Name, Blocks: blocks}, nil

	default:
		return nil, fmt.Errorf("decode: unknown statement type %q", n.Type)
	}
}

func (d *decoder) params(in []paramNode) ([]ast.Param, error) {
	out := make([]ast.Param, len(in))
	for i, p := range in {
		var def ast.Expr
		if p.Default != nil {
			var err error
			def, err = d.expr(p.Default)
			if err != nil {
				return nil, err
			}
		}
		out[i] = ast.Param{Name: p.Name, Default: def, Variadic: p.Variadic}
	}
	return out, nil
}

func (d *decoder) arguments(in []argNode) ([]ast.Argument, error) {
	out := make([]ast.Argument, len(in))
	for i, a := range in {
		val, err := d.expr(a.Value)
		if err != nil {
			return nil, err
		}
		out[i] = ast.Argument{Name: a.Name, Value: val, Splat: a.Splat}
	}
	return out, nil
}

func (d *decoder) expr(n *exprNode) (ast.Expr, error) {
	if n == nil {
		return ast.Literal{Value: value.Null{}}, nil
	}
	switch n.T {
	case "num":
		return ast.Literal{Value: value.Number{Val: n.Num, Unit: n.Unit}}, nil

	case "str":
		var quoteChar byte
		if n.Quoted {
			quoteChar = '"'
		}
		return ast.Literal{Value: value.String{Text: n.Str, Quoted: n.Quoted, QuoteChar: quoteChar}}, nil

	case "color":
		c, err := parseHexColor(n.Hex)
		if err != nil {
			return nil, err
		}
		return ast.Literal{Value: c}, nil

	case "bool":
		return ast.Literal{Value: value.Bool(n.Bool)}, nil

	case "null":
		return ast.Literal{Value: value.Null{}}, nil

	case "var":
		return ast.VariableRef{Name: n.Name}, nil

	case "bin":
		l, err := d.expr(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := d.expr(n.Right)
		if err != nil {
			return nil, err
		}
		return ast.BinaryOp{Op: n.Op, Left: l, Right: r}, nil

	case "un":
		v, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: n.Op, Operand: v}, nil

	case "call":
		args, err := d.arguments(n.Args)
		if err != nil {
			return nil, err
		}
		return ast.FunctionCall{Name: n.Name, Args: args}, nil

	case "list":
		sep := value.SpaceSeparated
		if n.Sep == "comma" {
			sep = value.CommaSeparated
		}
		items := make([]ast.Expr, len(n.Items))
		for i, it := range n.Items {
			v, err := d.expr(it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return ast.ListExpr{Separator: sep, Items: items}, nil

	case "map":
		if len(n.Keys) != len(n.Values) {
			return nil, fmt.Errorf("decode: map keys/values length mismatch")
		}
		keys := make([]ast.Expr, len(n.Keys))
		values := make([]ast.Expr, len(n.Values))
		for i := range n.Keys {
			k, err := d.expr(n.Keys[i])
			if err != nil {
				return nil, err
			}
			v, err := d.expr(n.Values[i])
			if err != nil {
				return nil, err
			}
			keys[i], values[i] = k, v
		}
		return ast.MapExpr{Keys: keys, Values: values}, nil

	default:
		return nil, fmt.Errorf("decode: unknown expression type %q", n.T)
	}
}

func parseHexColor(hex string) (value.Color, error) {
	h := hex
	if len(h) > 0 && h[0] == '#' {
		h = h[1:]
	}
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return value.Color{}, fmt.Errorf("decode: invalid hex color %q", hex)
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		var b int
		if _, err := fmt.Sscanf(h[i*2:i*2+2], "%02x", &b); err != nil {
			return value.Color{}, fmt.Errorf("decode: invalid hex color %q: %w", hex, err)
		}
		rgb[i] = uint8(b)
	}
	return value.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 1, Original: hex, HasOriginal: true}, nil
}
