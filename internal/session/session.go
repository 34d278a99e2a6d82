// Package session drives one expression evaluation end to end: it decodes
// caller-supplied (name, type, value) triples into typed values, binds them,
// and returns the rendered result.
package session

import (
	"log/slog"
	"math/big"
	"strconv"
	"strings"

	"github.com/karuizawa/probe/internal/expr"
)

// Local is the shape debug state arrives in: a variable name, its declared
// primitive type name, and the value rendered as text.
type Local struct {
	Name  string
	Type  string
	Value string
}

// Result is a successful evaluation: the rendered value and its type name.
type Result struct {
	Value string
	Type  string
}

// Session accumulates variable bindings and evaluates expressions against
// them. It is not safe for concurrent use.
type Session struct {
	eval *expr.Evaluator
}

func New() *Session {
	return &Session{eval: expr.New()}
}

// AddLocals decodes and binds the given locals. A local whose value text
// does not parse for its declared type is skipped, not an error: partial
// debug state must never block evaluation of expressions that do not touch
// it.
func (s *Session) AddLocals(locals []Local) {
	for _, l := range locals {
		v, ok := DecodeValue(l.Type, l.Value)
		if !ok {
			slog.Debug("skipping undecodable local", "name", l.Name, "type", l.Type, "value", l.Value)
			continue
		}
		s.eval.SetVar(l.Name, v)
	}
}

// Bind adds or replaces a single variable.
func (s *Session) Bind(name string, v expr.Value) {
	s.eval.SetVar(name, v)
}

// Eval parses and evaluates one expression against the bound variables.
func (s *Session) Eval(src string) (Result, error) {
	node, err := expr.Parse(src)
	if err != nil {
		return Result{}, err
	}
	v, err := s.eval.Eval(node)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: v.String(), Type: v.TypeName()}, nil
}

// DecodeValue parses value text for a declared primitive type name. It is
// pure and total: unparseable text or an unhandled type name yields no
// binding, never an error.
func DecodeValue(typeName, text string) (expr.Value, bool) {
	typeName = strings.TrimSpace(typeName)
	text = strings.TrimSpace(text)

	switch typeName {
	case "i8":
		n, err := strconv.ParseInt(text, 10, 8)
		return expr.I8{Value: int8(n)}, err == nil
	case "i16":
		n, err := strconv.ParseInt(text, 10, 16)
		return expr.I16{Value: int16(n)}, err == nil
	case "i32":
		n, err := strconv.ParseInt(text, 10, 32)
		return expr.I32{Value: int32(n)}, err == nil
	case "i64":
		n, err := strconv.ParseInt(text, 10, 64)
		return expr.I64{Value: n}, err == nil
	case "isize":
		n, err := strconv.ParseInt(text, 10, strconv.IntSize)
		return expr.Isize{Value: int(n)}, err == nil
	case "u8":
		n, err := strconv.ParseUint(text, 10, 8)
		return expr.U8{Value: uint8(n)}, err == nil
	case "u16":
		n, err := strconv.ParseUint(text, 10, 16)
		return expr.U16{Value: uint16(n)}, err == nil
	case "u32":
		n, err := strconv.ParseUint(text, 10, 32)
		return expr.U32{Value: uint32(n)}, err == nil
	case "u64":
		n, err := strconv.ParseUint(text, 10, 64)
		return expr.U64{Value: n}, err == nil
	case "usize":
		n, err := strconv.ParseUint(text, 10, strconv.IntSize)
		return expr.Usize{Value: uint(n)}, err == nil
	case "i128", "u128":
		n, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, false
		}
		v, ok := expr.ExactInt(typeName, n)
		return v, ok
	case "f32":
		f, err := strconv.ParseFloat(text, 32)
		return expr.F32{Value: float32(f)}, err == nil
	case "f64":
		f, err := strconv.ParseFloat(text, 64)
		return expr.F64{Value: f}, err == nil
	case "bool":
		switch text {
		case "true":
			return expr.Bool{Value: true}, true
		case "false":
			return expr.Bool{Value: false}, true
		}
		return nil, false
	}
	return nil, false
}
