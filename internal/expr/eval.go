package expr

import (
	"math"
	"math/big"
	"strings"
)

// Env maps variable names to their values for one evaluation. The evaluator
// never mutates it during Eval.
type Env map[string]Value

// Evaluator walks a restricted AST against a variable environment. Each Eval
// call is a single-pass recursive walk with no state carried between calls;
// concurrent evaluations need separate Evaluator instances.
type Evaluator struct {
	vars Env
}

// New returns an evaluator with an empty environment.
func New() *Evaluator {
	return &Evaluator{vars: Env{}}
}

// WithVars returns an evaluator over the given environment. The evaluator
// takes ownership; callers must not mutate vars while evaluating.
func WithVars(vars Env) *Evaluator {
	if vars == nil {
		vars = Env{}
	}
	return &Evaluator{vars: vars}
}

// SetVar adds or replaces a variable binding.
func (e *Evaluator) SetVar(name string, v Value) {
	e.vars[name] = v
}

// Eval computes the typed result of an expression. A failed sub-evaluation
// aborts the whole walk and returns its error unchanged.
func (e *Evaluator) Eval(expr Expr) (Value, error) {
	switch n := expr.(type) {
	case *Path:
		return e.evalPath(n.Segments)
	case *Binary:
		left, err := e.Eval(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		return applyBinary(left, n.Op, right)
	case *Unary:
		v, err := e.Eval(n.X)
		if err != nil {
			return nil, err
		}
		return applyUnary(n.Op, v)
	case *IntLit:
		return intLitValue(n.Value), nil
	case *FloatLit:
		return F64{Value: n.Value}, nil
	case *BoolLit:
		return Bool{Value: n.Value}, nil
	case *CharLit:
		return Char{Value: n.Value}, nil
	case *StrLit:
		return Str{Value: n.Value}, nil
	case *Paren:
		return e.Eval(n.X)
	case *Cast:
		v, err := e.Eval(n.X)
		if err != nil {
			return nil, err
		}
		return castValue(v, n.Type)
	case nil:
		return nil, &InternalError{Message: "nil expression"}
	default:
		return nil, &InternalError{Message: "unhandled expression node"}
	}
}

func (e *Evaluator) evalPath(segments []PathSegment) (Value, error) {
	if len(segments) == 0 {
		return nil, &InternalError{Message: "empty path"}
	}
	first, ok := segments[0].(*Ident)
	if !ok {
		return nil, &InternalError{Message: "path must start with identifier"}
	}
	v, ok := e.vars[first.Name]
	if !ok {
		return nil, &UnknownVariableError{Name: first.Name}
	}
	// Resolving further segments needs live-value introspection.
	if len(segments) > 1 {
		return nil, unsupported("field access")
	}
	return v, nil
}

// intLitValue picks the narrowest default width that holds the literal:
// i32, then i64, then i128.
func intLitValue(n *big.Int) Value {
	if fitsSpec(n, intSpecs["i32"]) {
		return I32{Value: int32(n.Int64())}
	}
	if fitsSpec(n, intSpecs["i64"]) {
		return I64{Value: n.Int64()}
	}
	return I128{Value: new(big.Int).Set(n)}
}

// applyBinary enforces the strict same-type operand rule before dispatching.
// There is no implicit numeric promotion across a binary operator.
func applyBinary(left Value, op BinOp, right Value) (Value, error) {
	if left.TypeName() != right.TypeName() {
		return nil, invalidOp(op.String(), left.TypeName(), right.TypeName())
	}
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpRem:
		return applyArithmetic(left, op, right)
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return applyComparison(left, op, right)
	case OpAnd, OpOr:
		return applyLogical(left, op, right)
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		return applyBitwise(left, op, right)
	default:
		return nil, &InternalError{Message: "unhandled binary operator"}
	}
}

func applyArithmetic(left Value, op BinOp, right Value) (Value, error) {
	if l, lok := AsWide(left); lok {
		r, rok := AsWide(right)
		if !rok {
			return nil, invalidOp(op.String(), left.TypeName(), right.TypeName())
		}
		result := new(big.Int)
		switch op {
		case OpAdd:
			result.Add(l, r)
		case OpSub:
			result.Sub(l, r)
		case OpMul:
			result.Mul(l, r)
		case OpDiv:
			if r.Sign() == 0 {
				return nil, ErrDivisionByZero
			}
			result.Quo(l, r)
		case OpRem:
			if r.Sign() == 0 {
				return nil, ErrDivisionByZero
			}
			result.Rem(l, r)
		}
		// Overflow is detected at the 128-bit window; narrower widths wrap
		// on re-narrowing.
		if !fitsWide(result) {
			return nil, &InternalError{Message: "overflow"}
		}
		out, ok := makeInt(left.TypeName(), result)
		if !ok {
			return nil, &InternalError{Message: "unhandled integer type " + left.TypeName()}
		}
		return out, nil
	}

	if l, lok := AsFloat64(left); lok {
		r, _ := AsFloat64(right)
		var result float64
		switch op {
		case OpAdd:
			result = l + r
		case OpSub:
			result = l - r
		case OpMul:
			result = l * r
		case OpDiv:
			result = l / r
		case OpRem:
			result = math.Mod(l, r)
		}
		if _, ok := left.(F32); ok {
			return F32{Value: float32(result)}, nil
		}
		return F64{Value: result}, nil
	}

	return nil, invalidOp(op.String(), left.TypeName(), right.TypeName())
}

func applyComparison(left Value, op BinOp, right Value) (Value, error) {
	if l, lok := AsWide(left); lok {
		r, rok := AsWide(right)
		if !rok {
			return nil, invalidOp(op.String(), left.TypeName(), right.TypeName())
		}
		c := l.Cmp(r)
		var result bool
		switch op {
		case OpEq:
			result = c == 0
		case OpNe:
			result = c != 0
		case OpLt:
			result = c < 0
		case OpLe:
			result = c <= 0
		case OpGt:
			result = c > 0
		case OpGe:
			result = c >= 0
		}
		return Bool{Value: result}, nil
	}

	if l, lok := AsFloat64(left); lok {
		r, _ := AsFloat64(right)
		var result bool
		switch op {
		case OpEq:
			result = l == r
		case OpNe:
			result = l != r
		case OpLt:
			result = l < r
		case OpLe:
			result = l <= r
		case OpGt:
			result = l > r
		case OpGe:
			result = l >= r
		}
		return Bool{Value: result}, nil
	}

	if l, lok := AsBool(left); lok {
		r, _ := AsBool(right)
		switch op {
		case OpEq:
			return Bool{Value: l == r}, nil
		case OpNe:
			return Bool{Value: l != r}, nil
		default:
			return nil, invalidOp(op.String(), "bool", "bool")
		}
	}

	return nil, invalidOp(op.String(), left.TypeName(), right.TypeName())
}

func applyLogical(left Value, op BinOp, right Value) (Value, error) {
	l, lok := AsBool(left)
	r, rok := AsBool(right)
	if !lok || !rok {
		return nil, invalidOp(op.String(), left.TypeName(), right.TypeName())
	}
	// Both operands are already evaluated; there is no short-circuit.
	switch op {
	case OpAnd:
		return Bool{Value: l && r}, nil
	default:
		return Bool{Value: l || r}, nil
	}
}

func applyBitwise(left Value, op BinOp, right Value) (Value, error) {
	l, lok := AsWide(left)
	r, rok := AsWide(right)
	if !lok || !rok {
		return nil, invalidOp(op.String(), left.TypeName(), right.TypeName())
	}
	result := new(big.Int)
	switch op {
	case OpBitAnd:
		result.And(l, r)
	case OpBitOr:
		result.Or(l, r)
	case OpBitXor:
		result.Xor(l, r)
	case OpShl:
		result.Lsh(l, shiftAmount(r))
	case OpShr:
		result.Rsh(l, shiftAmount(r))
	}
	out, ok := makeInt(left.TypeName(), result)
	if !ok {
		return nil, &InternalError{Message: "unhandled integer type " + left.TypeName()}
	}
	return out, nil
}

// shiftAmount takes the right operand's low 7 bits, mod 128 in
// two's-complement terms.
func shiftAmount(r *big.Int) uint {
	return uint(new(big.Int).And(r, big.NewInt(127)).Uint64())
}

func applyUnary(op UnaryOp, v Value) (Value, error) {
	switch op {
	case OpNeg:
		if IsInteger(v) {
			if !IsSigned(v) {
				return nil, invalidOp("-", v.TypeName(), "")
			}
			wide, _ := AsWide(v)
			neg := new(big.Int).Neg(wide)
			// Negating the minimum value of the operand's own width has no
			// representation at that width.
			if !fitsSpec(neg, intSpecs[v.TypeName()]) {
				return nil, &InternalError{Message: "overflow"}
			}
			out, _ := makeInt(v.TypeName(), neg)
			return out, nil
		}
		if f, ok := AsFloat64(v); ok {
			if _, ok := v.(F32); ok {
				return F32{Value: float32(-f)}, nil
			}
			return F64{Value: -f}, nil
		}
		return nil, invalidOp("-", v.TypeName(), "")

	case OpNot:
		if b, ok := AsBool(v); ok {
			return Bool{Value: !b}, nil
		}
		if wide, ok := AsWide(v); ok {
			out, mok := makeInt(v.TypeName(), new(big.Int).Not(wide))
			if !mok {
				return nil, &InternalError{Message: "unhandled integer type " + v.TypeName()}
			}
			return out, nil
		}
		return nil, invalidOp("!", v.TypeName(), "")

	case OpDeref, OpRef:
		return nil, unsupported("dereference and reference operators")

	default:
		return nil, &InternalError{Message: "unhandled unary operator"}
	}
}

// castValue converts a numeric value to the named primitive type. Integer
// narrowing truncates high bits; float to integer saturates and truncates
// toward zero; the target name is re-validated here, not at conversion time.
func castValue(v Value, typeName string) (Value, error) {
	typeName = strings.TrimSpace(typeName)

	if wide, ok := AsWide(v); ok {
		if out, ok := makeInt(typeName, wide); ok {
			return out, nil
		}
		switch typeName {
		case "f32":
			f, _ := new(big.Float).SetInt(wide).Float32()
			return F32{Value: f}, nil
		case "f64":
			f, _ := new(big.Float).SetInt(wide).Float64()
			return F64{Value: f}, nil
		}
		return nil, unsupportedf("cast to %s", typeName)
	}

	if f, ok := AsFloat64(v); ok {
		if spec, ok := intSpecs[typeName]; ok {
			out, mok := makeInt(typeName, floatToInt(f, spec))
			if !mok {
				return nil, &InternalError{Message: "unhandled integer type " + typeName}
			}
			return out, nil
		}
		switch typeName {
		case "f32":
			return F32{Value: float32(f)}, nil
		case "f64":
			return F64{Value: f}, nil
		}
		return nil, unsupportedf("cast to %s", typeName)
	}

	return nil, unsupportedf("cast from %s to %s", v.TypeName(), typeName)
}

// floatToInt converts a float to an integer of the given width with
// saturating semantics: NaN becomes zero, infinities and out-of-range values
// clamp to the width's bounds, finite values truncate toward zero.
func floatToInt(f float64, spec intSpec) *big.Int {
	min, max := specBounds(spec)
	switch {
	case math.IsNaN(f):
		return big.NewInt(0)
	case math.IsInf(f, 1):
		return max
	case math.IsInf(f, -1):
		return min
	}
	n, _ := big.NewFloat(math.Trunc(f)).Int(nil)
	if n.Cmp(min) < 0 {
		return min
	}
	if n.Cmp(max) > 0 {
		return max
	}
	return n
}
