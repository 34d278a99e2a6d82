package expr

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Expr is a node of the restricted expression tree: the subset of the full
// surface grammar this evaluator can execute. Trees are built once per
// request by Convert and consumed read-only.
type Expr interface {
	String() string
	exprNode()
}

// Path is a variable reference with optional refining segments,
// e.g. a, a.b, a[0].c. The first segment is always an *Ident.
type Path struct {
	Segments []PathSegment
}

// Binary is an infix operation, e.g. a + b.
type Binary struct {
	Left  Expr
	Op    BinOp
	Right Expr
}

// Unary is a prefix operation, e.g. -a, !b, *p, &x.
type Unary struct {
	Op UnaryOp
	X  Expr
}

// IntLit is an integer literal. The payload always fits the evaluator's
// signed 128-bit window.
type IntLit struct {
	Value *big.Int
}

// FloatLit is a floating-point literal; the default literal width is 64-bit.
type FloatLit struct {
	Value float64
}

type BoolLit struct {
	Value bool
}

type CharLit struct {
	Value rune
}

type StrLit struct {
	Value string
}

// Paren wraps a parenthesized expression. It has no semantic effect and is
// kept only so renderings match the source text.
type Paren struct {
	X Expr
}

// Cast is an explicit conversion to a named primitive type. The target name
// is validated at evaluation time, not at conversion time.
type Cast struct {
	X    Expr
	Type string
}

func (*Path) exprNode()     {}
func (*Binary) exprNode()   {}
func (*Unary) exprNode()    {}
func (*IntLit) exprNode()   {}
func (*FloatLit) exprNode() {}
func (*BoolLit) exprNode()  {}
func (*CharLit) exprNode()  {}
func (*StrLit) exprNode()   {}
func (*Paren) exprNode()    {}
func (*Cast) exprNode()     {}

func (p *Path) String() string {
	var b strings.Builder
	needDot := false
	for _, seg := range p.Segments {
		switch s := seg.(type) {
		case *Ident:
			if needDot {
				b.WriteByte('.')
			}
			b.WriteString(s.Name)
			needDot = true
		case *Index:
			fmt.Fprintf(&b, "[%d]", s.Value)
			needDot = true
		case *TupleIndex:
			fmt.Fprintf(&b, ".%d", s.Value)
			needDot = true
		case *Deref:
			b.WriteByte('*')
		case *Ref:
			b.WriteByte('&')
		}
	}
	return b.String()
}

func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *Unary) String() string {
	return fmt.Sprintf("(%s%s)", e.Op, e.X)
}

func (l *IntLit) String() string   { return l.Value.String() }
func (l *FloatLit) String() string { return strconv.FormatFloat(l.Value, 'g', -1, 64) }
func (l *BoolLit) String() string  { return strconv.FormatBool(l.Value) }
func (l *CharLit) String() string  { return strconv.QuoteRune(l.Value) }
func (l *StrLit) String() string   { return strconv.Quote(l.Value) }

func (e *Paren) String() string { return "(" + e.X.String() + ")" }

func (e *Cast) String() string { return fmt.Sprintf("%s(%s)", e.Type, e.X) }

// PathSegment refines the base of a Path.
type PathSegment interface {
	String() string
	pathSegment()
}

// Ident names a variable or a field.
type Ident struct {
	Name string
}

// Index is a statically-known element index, e.g. [0].
type Index struct {
	Value int
}

// TupleIndex is a statically-known tuple element index. The Go-flavored
// surface grammar has no spelling for it; the segment exists for
// programmatically built paths and renders as .N.
type TupleIndex struct {
	Value int
}

// Deref marks a leading dereference inside a path chain.
type Deref struct{}

// Ref marks a leading reference inside a path chain.
type Ref struct{}

func (*Ident) pathSegment()      {}
func (*Index) pathSegment()      {}
func (*TupleIndex) pathSegment() {}
func (*Deref) pathSegment()      {}
func (*Ref) pathSegment()        {}

func (s *Ident) String() string      { return s.Name }
func (s *Index) String() string      { return "[" + strconv.Itoa(s.Value) + "]" }
func (s *TupleIndex) String() string { return "." + strconv.Itoa(s.Value) }
func (*Deref) String() string        { return "*" }
func (*Ref) String() string          { return "&" }

// BinOp is a binary operator of the restricted grammar.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpAnd
	OpOr

	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
)

// String returns the operator's source text, used verbatim in diagnostics.
func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	}
	return "?"
}

// UnaryOp is a prefix operator of the restricted grammar.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
	OpDeref
	OpRef
)

func (op UnaryOp) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	case OpDeref:
		return "*"
	case OpRef:
		return "&"
	}
	return "?"
}
