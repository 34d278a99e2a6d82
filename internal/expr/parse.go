package expr

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math/big"
	"strconv"
	"strings"
)

// Parse parses a source expression with go/parser and narrows the resulting
// parse tree into the restricted AST. A syntax error from the grammar engine
// surfaces as *ParseError with the engine's message unchanged; a recognized
// but unimplemented construct surfaces as *UnsupportedError. Failures are
// terminal: no partial tree is returned.
func Parse(src string) (Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, &ParseError{Message: err.Error()}
	}
	return Convert(node)
}

// Convert narrows a full-grammar parse tree into the supported subset.
func Convert(node ast.Expr) (Expr, error) {
	switch n := node.(type) {
	case *ast.BinaryExpr:
		op, err := convertBinOp(n.Op)
		if err != nil {
			return nil, err
		}
		left, err := Convert(n.X)
		if err != nil {
			return nil, err
		}
		right, err := Convert(n.Y)
		if err != nil {
			return nil, err
		}
		return &Binary{Left: left, Op: op, Right: right}, nil

	case *ast.UnaryExpr:
		op, err := convertUnaryOp(n.Op)
		if err != nil {
			return nil, err
		}
		x, err := Convert(n.X)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, X: x}, nil

	case *ast.StarExpr:
		x, err := Convert(n.X)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OpDeref, X: x}, nil

	case *ast.BasicLit:
		return convertLit(n)

	case *ast.Ident:
		// The grammar engine delivers boolean literals as identifiers.
		switch n.Name {
		case "true":
			return &BoolLit{Value: true}, nil
		case "false":
			return &BoolLit{Value: false}, nil
		}
		return &Path{Segments: []PathSegment{&Ident{Name: n.Name}}}, nil

	case *ast.SelectorExpr:
		segs, err := pathSegments(n.X)
		if err != nil {
			return nil, err
		}
		segs = append(segs, &Ident{Name: n.Sel.Name})
		return &Path{Segments: segs}, nil

	case *ast.IndexExpr:
		segs, err := pathSegments(n.X)
		if err != nil {
			return nil, err
		}
		idx, err := literalIndex(n.Index)
		if err != nil {
			return nil, err
		}
		segs = append(segs, &Index{Value: idx})
		return &Path{Segments: segs}, nil

	case *ast.ParenExpr:
		inner, err := Convert(n.X)
		if err != nil {
			return nil, err
		}
		return &Paren{X: inner}, nil

	case *ast.CallExpr:
		return convertCall(n)

	case *ast.FuncLit:
		return nil, unsupported("closures")

	case *ast.CompositeLit:
		return nil, unsupported("composite literals")

	case *ast.SliceExpr:
		return nil, unsupported("slice expressions")

	case *ast.TypeAssertExpr:
		return nil, unsupported("type assertions")

	case nil:
		return nil, &InternalError{Message: "nil expression node"}

	default:
		return nil, unsupported(nodeKind(node))
	}
}

// convertCall distinguishes casts from calls: a callee naming one of the
// primitive types with exactly one argument is a conversion; everything else
// is a call and calls are not evaluated.
func convertCall(call *ast.CallExpr) (Expr, error) {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		if isPrimitiveTypeName(fn.Name) && len(call.Args) == 1 {
			x, err := Convert(call.Args[0])
			if err != nil {
				return nil, err
			}
			return &Cast{X: x, Type: fn.Name}, nil
		}
		return nil, unsupported("function calls")
	case *ast.SelectorExpr:
		return nil, unsupported("method calls")
	default:
		return nil, unsupported("function calls")
	}
}

// pathSegments resolves the base of a field/index chain into path segments.
func pathSegments(node ast.Expr) ([]PathSegment, error) {
	switch n := node.(type) {
	case *ast.Ident:
		return []PathSegment{&Ident{Name: n.Name}}, nil
	case *ast.SelectorExpr:
		segs, err := pathSegments(n.X)
		if err != nil {
			return nil, err
		}
		return append(segs, &Ident{Name: n.Sel.Name}), nil
	case *ast.IndexExpr:
		segs, err := pathSegments(n.X)
		if err != nil {
			return nil, err
		}
		idx, err := literalIndex(n.Index)
		if err != nil {
			return nil, err
		}
		return append(segs, &Index{Value: idx}), nil
	case *ast.StarExpr:
		segs, err := pathSegments(n.X)
		if err != nil {
			return nil, err
		}
		return append([]PathSegment{&Deref{}}, segs...), nil
	default:
		return nil, unsupported("complex path expressions")
	}
}

// literalIndex requires a statically-known non-negative index. Anything
// computed needs live-value access the evaluator does not have.
func literalIndex(node ast.Expr) (int, error) {
	lit, ok := node.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, unsupported("dynamic index expressions")
	}
	idx, err := strconv.ParseInt(lit.Value, 0, strconv.IntSize)
	if err != nil {
		return 0, &ParseError{Message: err.Error()}
	}
	return int(idx), nil
}

func convertBinOp(tok token.Token) (BinOp, error) {
	switch tok {
	case token.ADD:
		return OpAdd, nil
	case token.SUB:
		return OpSub, nil
	case token.MUL:
		return OpMul, nil
	case token.QUO:
		return OpDiv, nil
	case token.REM:
		return OpRem, nil
	case token.EQL:
		return OpEq, nil
	case token.NEQ:
		return OpNe, nil
	case token.LSS:
		return OpLt, nil
	case token.LEQ:
		return OpLe, nil
	case token.GTR:
		return OpGt, nil
	case token.GEQ:
		return OpGe, nil
	case token.LAND:
		return OpAnd, nil
	case token.LOR:
		return OpOr, nil
	case token.AND:
		return OpBitAnd, nil
	case token.OR:
		return OpBitOr, nil
	case token.XOR:
		return OpBitXor, nil
	case token.SHL:
		return OpShl, nil
	case token.SHR:
		return OpShr, nil
	case token.AND_NOT:
		return 0, unsupported("and-not operator")
	default:
		return 0, unsupportedf("operator %s", tok)
	}
}

func convertUnaryOp(tok token.Token) (UnaryOp, error) {
	switch tok {
	case token.SUB:
		return OpNeg, nil
	case token.NOT:
		return OpNot, nil
	case token.XOR:
		// ^x is the surface spelling of bitwise complement; the evaluator
		// dispatches Not on the operand type.
		return OpNot, nil
	case token.AND:
		return OpRef, nil
	default:
		return 0, unsupportedf("unary operator %s", tok)
	}
}

func convertLit(lit *ast.BasicLit) (Expr, error) {
	switch lit.Kind {
	case token.INT:
		n, ok := new(big.Int).SetString(lit.Value, 0)
		if !ok {
			return nil, &ParseError{Message: fmt.Sprintf("invalid integer literal %s", lit.Value)}
		}
		if !fitsWide(n) {
			return nil, &ParseError{Message: fmt.Sprintf("integer literal %s out of range", lit.Value)}
		}
		return &IntLit{Value: n}, nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return nil, &ParseError{Message: err.Error()}
		}
		return &FloatLit{Value: f}, nil
	case token.CHAR:
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid char literal %s", lit.Value)}
		}
		r := []rune(s)
		if len(r) != 1 {
			return nil, &ParseError{Message: fmt.Sprintf("invalid char literal %s", lit.Value)}
		}
		return &CharLit{Value: r[0]}, nil
	case token.STRING:
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid string literal %s", lit.Value)}
		}
		return &StrLit{Value: s}, nil
	case token.IMAG:
		return nil, unsupported("imaginary literals")
	default:
		return nil, unsupportedf("%s literals", strings.ToLower(lit.Kind.String()))
	}
}

func nodeKind(node ast.Expr) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", node), "*ast.")
}
