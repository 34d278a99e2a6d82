package expr

import (
	"math/big"
	"strconv"
	"testing"
)

func TestTypeNames(t *testing.T) {
	testCases := []struct {
		value    Value
		expected string
	}{
		{I8{Value: 1}, "i8"},
		{I16{Value: 1}, "i16"},
		{I32{Value: 1}, "i32"},
		{I64{Value: 1}, "i64"},
		{I128{Value: big.NewInt(1)}, "i128"},
		{Isize{Value: 1}, "isize"},
		{U8{Value: 1}, "u8"},
		{U16{Value: 1}, "u16"},
		{U32{Value: 1}, "u32"},
		{U64{Value: 1}, "u64"},
		{U128{Value: big.NewInt(1)}, "u128"},
		{Usize{Value: 1}, "usize"},
		{F32{Value: 1}, "f32"},
		{F64{Value: 1}, "f64"},
		{Bool{Value: true}, "bool"},
		{Char{Value: 'a'}, "char"},
		{Str{Value: "a"}, "String"},
		{Unit{}, "()"},
		{RemoteRef{Address: 0x1000, Type: "Foo"}, "ref"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if actual := tc.value.TypeName(); actual != tc.expected {
				t.Errorf("Expected type name %q, got %q", tc.expected, actual)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	testCases := []struct {
		name     string
		value    Value
		expected string
	}{
		{"negative int", I32{Value: -42}, "-42"},
		{"unsigned", U64{Value: 18446744073709551615}, "18446744073709551615"},
		{"float", F64{Value: 3.14}, "3.14"},
		{"bool", Bool{Value: false}, "false"},
		{"char", Char{Value: 'x'}, "'x'"},
		{"string", Str{Value: `a "b"`}, `"a \"b\""`},
		{"unit", Unit{}, "()"},
		{"remote ref", RemoteRef{Address: 0xdeadbeef, Type: "Vec<u8>"}, "&Vec<u8> @ 0xdeadbeef"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if actual := tc.value.String(); actual != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, actual)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	testCases := []struct {
		name    string
		value   Value
		integer bool
		signed  bool
		numeric bool
	}{
		{"i8", I8{}, true, true, true},
		{"u128", U128{Value: big.NewInt(0)}, true, false, true},
		{"usize", Usize{}, true, false, true},
		{"f32", F32{}, false, false, true},
		{"bool", Bool{}, false, false, false},
		{"string", Str{}, false, false, false},
		{"remote ref", RemoteRef{}, false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if actual := IsInteger(tc.value); actual != tc.integer {
				t.Errorf("IsInteger: expected %v, got %v", tc.integer, actual)
			}
			if actual := IsSigned(tc.value); actual != tc.signed {
				t.Errorf("IsSigned: expected %v, got %v", tc.signed, actual)
			}
			if actual := IsNumeric(tc.value); actual != tc.numeric {
				t.Errorf("IsNumeric: expected %v, got %v", tc.numeric, actual)
			}
		})
	}
}

func TestAsWide(t *testing.T) {
	u128Max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	testCases := []struct {
		name     string
		value    Value
		expected string
		ok       bool
	}{
		{"negative i8", I8{Value: -128}, "-128", true},
		{"u64 max", U64{Value: 18446744073709551615}, "18446744073709551615", true},
		{"i128 min", I128{Value: new(big.Int).Set(minWide)}, minWide.String(), true},
		{"u128 within window", U128{Value: new(big.Int).Set(maxWide)}, maxWide.String(), true},
		{"u128 above window", U128{Value: u128Max}, "", false},
		{"float", F64{Value: 1}, "", false},
		{"bool", Bool{Value: true}, "", false},
		{"char", Char{Value: 'a'}, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wide, ok := AsWide(tc.value)
			if ok != tc.ok {
				t.Fatalf("Expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && wide.String() != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, wide.String())
			}
		})
	}
}

func TestMakeIntTruncates(t *testing.T) {
	testCases := []struct {
		name     string
		typeName string
		input    int64
		expected string
	}{
		{"u8 wraps", "u8", 300, "44"},
		{"i8 wraps to negative", "i8", 128, "-128"},
		{"i16 keeps low bits", "i16", 0x12345, "9029"},
		{"u16 exact", "u16", 65535, "65535"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := makeInt(tc.typeName, big.NewInt(tc.input))
			if !ok {
				t.Fatalf("makeInt(%q) failed", tc.typeName)
			}
			if actual := v.String(); actual != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, actual)
			}
			if actual := v.TypeName(); actual != tc.typeName {
				t.Errorf("Expected type %s, got %s", tc.typeName, actual)
			}
		})
	}
}

func TestExactInt(t *testing.T) {
	if _, ok := ExactInt("i8", big.NewInt(128)); ok {
		t.Errorf("Expected 128 to be rejected for i8")
	}
	if _, ok := ExactInt("u8", big.NewInt(-1)); ok {
		t.Errorf("Expected -1 to be rejected for u8")
	}
	if _, ok := ExactInt("node", big.NewInt(0)); ok {
		t.Errorf("Expected unknown type name to be rejected")
	}
	v, ok := ExactInt("i8", big.NewInt(-128))
	if !ok {
		t.Fatalf("Expected -128 to fit i8")
	}
	if v.String() != "-128" {
		t.Errorf("Expected -128, got %s", v.String())
	}
}

func TestPointerWidthSpecs(t *testing.T) {
	// isize/usize follow the platform word size.
	if spec := intSpecs["isize"]; spec.bits != uint(strconv.IntSize) || !spec.signed {
		t.Errorf("unexpected isize spec: %+v", spec)
	}
	if spec := intSpecs["usize"]; spec.bits != uint(strconv.IntSize) || spec.signed {
		t.Errorf("unexpected usize spec: %+v", spec)
	}
}
