// Package expr parses and evaluates debugger expressions against a set of
// named, already-typed runtime values.
//
// The surface grammar is parsed by go/parser; the resulting go/ast tree is
// narrowed into a small restricted AST which a single-pass recursive walk
// evaluates with the strict numeric semantics of the debuggee language:
// fixed-width integers, same-type operand requirements, checked arithmetic
// through a signed 128-bit intermediate, and explicit truncating casts.
package expr

import (
	"fmt"
	"math/big"
	"strconv"
)

// Value is a runtime value with the strict typing of the debuggee language.
// Values are immutable once constructed.
type Value interface {
	// TypeName returns the stable, human-readable name of the value's type,
	// distinguishing every variant and every integer/float width.
	TypeName() string
	// String renders the value for display.
	String() string

	value()
}

// Signed integers.

type I8 struct{ Value int8 }
type I16 struct{ Value int16 }
type I32 struct{ Value int32 }
type I64 struct{ Value int64 }

// I128 holds a signed 128-bit integer. The payload must not be mutated after
// construction; every operation allocates a fresh big.Int.
type I128 struct{ Value *big.Int }

// Isize is the pointer-width signed integer.
type Isize struct{ Value int }

// Unsigned integers.

type U8 struct{ Value uint8 }
type U16 struct{ Value uint16 }
type U32 struct{ Value uint32 }
type U64 struct{ Value uint64 }

// U128 holds an unsigned 128-bit integer. Same aliasing rule as I128.
type U128 struct{ Value *big.Int }

// Usize is the pointer-width unsigned integer.
type Usize struct{ Value uint }

// Floating point.

type F32 struct{ Value float32 }
type F64 struct{ Value float64 }

// Other primitives.

type Bool struct{ Value bool }
type Char struct{ Value rune }
type Str struct{ Value string }

// Unit is the empty value.
type Unit struct{}

// RemoteRef is a placeholder for a value the evaluator cannot interpret
// itself: an address in the debuggee plus the declared type name, kept only
// for display.
type RemoteRef struct {
	Address uint64
	Type    string
}

func (I8) value()        {}
func (I16) value()       {}
func (I32) value()       {}
func (I64) value()       {}
func (I128) value()      {}
func (Isize) value()     {}
func (U8) value()        {}
func (U16) value()       {}
func (U32) value()       {}
func (U64) value()       {}
func (U128) value()      {}
func (Usize) value()     {}
func (F32) value()       {}
func (F64) value()       {}
func (Bool) value()      {}
func (Char) value()      {}
func (Str) value()       {}
func (Unit) value()      {}
func (RemoteRef) value() {}

func (I8) TypeName() string        { return "i8" }
func (I16) TypeName() string       { return "i16" }
func (I32) TypeName() string       { return "i32" }
func (I64) TypeName() string       { return "i64" }
func (I128) TypeName() string      { return "i128" }
func (Isize) TypeName() string     { return "isize" }
func (U8) TypeName() string        { return "u8" }
func (U16) TypeName() string       { return "u16" }
func (U32) TypeName() string       { return "u32" }
func (U64) TypeName() string       { return "u64" }
func (U128) TypeName() string      { return "u128" }
func (Usize) TypeName() string     { return "usize" }
func (F32) TypeName() string       { return "f32" }
func (F64) TypeName() string       { return "f64" }
func (Bool) TypeName() string      { return "bool" }
func (Char) TypeName() string      { return "char" }
func (Str) TypeName() string       { return "String" }
func (Unit) TypeName() string      { return "()" }
func (RemoteRef) TypeName() string { return "ref" }

func (v I8) String() string    { return strconv.FormatInt(int64(v.Value), 10) }
func (v I16) String() string   { return strconv.FormatInt(int64(v.Value), 10) }
func (v I32) String() string   { return strconv.FormatInt(int64(v.Value), 10) }
func (v I64) String() string   { return strconv.FormatInt(v.Value, 10) }
func (v I128) String() string  { return v.Value.String() }
func (v Isize) String() string { return strconv.Itoa(v.Value) }
func (v U8) String() string    { return strconv.FormatUint(uint64(v.Value), 10) }
func (v U16) String() string   { return strconv.FormatUint(uint64(v.Value), 10) }
func (v U32) String() string   { return strconv.FormatUint(uint64(v.Value), 10) }
func (v U64) String() string   { return strconv.FormatUint(v.Value, 10) }
func (v U128) String() string  { return v.Value.String() }
func (v Usize) String() string { return strconv.FormatUint(uint64(v.Value), 10) }
func (v F32) String() string   { return strconv.FormatFloat(float64(v.Value), 'g', -1, 32) }
func (v F64) String() string   { return strconv.FormatFloat(v.Value, 'g', -1, 64) }
func (v Bool) String() string  { return strconv.FormatBool(v.Value) }
func (v Char) String() string  { return "'" + string(v.Value) + "'" }
func (v Str) String() string   { return strconv.Quote(v.Value) }
func (Unit) String() string    { return "()" }
func (v RemoteRef) String() string {
	return fmt.Sprintf("&%s @ 0x%x", v.Type, v.Address)
}

// IsInteger reports whether v is one of the fixed-width integer kinds.
func IsInteger(v Value) bool {
	switch v.(type) {
	case I8, I16, I32, I64, I128, Isize, U8, U16, U32, U64, U128, Usize:
		return true
	}
	return false
}

// IsSigned reports whether v is a signed integer.
func IsSigned(v Value) bool {
	switch v.(type) {
	case I8, I16, I32, I64, I128, Isize:
		return true
	}
	return false
}

// IsNumeric reports whether v is an integer or a float.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case F32, F64:
		return true
	}
	return IsInteger(v)
}

// The evaluator's common arithmetic currency is a signed 128-bit window.
var (
	maxWide = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minWide = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

func fitsWide(n *big.Int) bool {
	return n.Cmp(minWide) >= 0 && n.Cmp(maxWide) <= 0
}

// AsWide widens an integer value into the signed 128-bit intermediate used
// for checked arithmetic. The result is exact whenever ok is true; u128
// values above the signed window report false.
func AsWide(v Value) (*big.Int, bool) {
	switch v := v.(type) {
	case I8:
		return big.NewInt(int64(v.Value)), true
	case I16:
		return big.NewInt(int64(v.Value)), true
	case I32:
		return big.NewInt(int64(v.Value)), true
	case I64:
		return big.NewInt(v.Value), true
	case I128:
		return new(big.Int).Set(v.Value), true
	case Isize:
		return big.NewInt(int64(v.Value)), true
	case U8:
		return big.NewInt(int64(v.Value)), true
	case U16:
		return big.NewInt(int64(v.Value)), true
	case U32:
		return big.NewInt(int64(v.Value)), true
	case U64:
		return new(big.Int).SetUint64(v.Value), true
	case U128:
		if v.Value.Cmp(maxWide) > 0 {
			return nil, false
		}
		return new(big.Int).Set(v.Value), true
	case Usize:
		return new(big.Int).SetUint64(uint64(v.Value)), true
	}
	return nil, false
}

// AsFloat64 extracts the payload of a float value. There is no implicit
// integer-to-float coercion.
func AsFloat64(v Value) (float64, bool) {
	switch v := v.(type) {
	case F32:
		return float64(v.Value), true
	case F64:
		return v.Value, true
	}
	return 0, false
}

// AsBool extracts the payload of a boolean value.
func AsBool(v Value) (bool, bool) {
	if b, ok := v.(Bool); ok {
		return b.Value, true
	}
	return false, false
}

type intSpec struct {
	bits   uint
	signed bool
}

// intSpecs maps every integer type name to its width and signedness. The
// pointer-width kinds take the platform word size.
var intSpecs = map[string]intSpec{
	"i8":    {8, true},
	"i16":   {16, true},
	"i32":   {32, true},
	"i64":   {64, true},
	"i128":  {128, true},
	"isize": {uint(strconv.IntSize), true},
	"u8":    {8, false},
	"u16":   {16, false},
	"u32":   {32, false},
	"u64":   {64, false},
	"u128":  {128, false},
	"usize": {uint(strconv.IntSize), false},
}

func isPrimitiveTypeName(name string) bool {
	if _, ok := intSpecs[name]; ok {
		return true
	}
	return name == "f32" || name == "f64"
}

func specBounds(spec intSpec) (min, max *big.Int) {
	if spec.signed {
		min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), spec.bits-1))
		max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), spec.bits-1), big.NewInt(1))
		return min, max
	}
	min = big.NewInt(0)
	max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), spec.bits), big.NewInt(1))
	return min, max
}

func fitsSpec(n *big.Int, spec intSpec) bool {
	min, max := specBounds(spec)
	return n.Cmp(min) >= 0 && n.Cmp(max) <= 0
}

// truncate reinterprets the low bits of n as an integer of the given width,
// using two's-complement semantics for signed kinds.
func truncate(n *big.Int, spec intSpec) *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), spec.bits), big.NewInt(1))
	low := new(big.Int).And(n, mask)
	if spec.signed && low.Bit(int(spec.bits)-1) == 1 {
		low.Sub(low, new(big.Int).Lsh(big.NewInt(1), spec.bits))
	}
	return low
}

// makeInt builds the named integer kind from the low bits of n. High-order
// bits are dropped; this is the deliberate truncation shared by arithmetic
// re-narrowing, bitwise ops and casts.
func makeInt(typeName string, n *big.Int) (Value, bool) {
	spec, ok := intSpecs[typeName]
	if !ok {
		return nil, false
	}
	low := truncate(n, spec)
	switch typeName {
	case "i8":
		return I8{Value: int8(low.Int64())}, true
	case "i16":
		return I16{Value: int16(low.Int64())}, true
	case "i32":
		return I32{Value: int32(low.Int64())}, true
	case "i64":
		return I64{Value: low.Int64()}, true
	case "i128":
		return I128{Value: low}, true
	case "isize":
		return Isize{Value: int(low.Int64())}, true
	case "u8":
		return U8{Value: uint8(low.Uint64())}, true
	case "u16":
		return U16{Value: uint16(low.Uint64())}, true
	case "u32":
		return U32{Value: uint32(low.Uint64())}, true
	case "u64":
		return U64{Value: low.Uint64()}, true
	case "u128":
		return U128{Value: low}, true
	case "usize":
		return Usize{Value: uint(low.Uint64())}, true
	}
	return nil, false
}

// ExactInt builds the named integer kind from n when n is representable at
// that width, without truncation.
func ExactInt(typeName string, n *big.Int) (Value, bool) {
	spec, ok := intSpecs[typeName]
	if !ok || !fitsSpec(n, spec) {
		return nil, false
	}
	return makeInt(typeName, n)
}
