// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package elab

import (
	"math/big"
	"testing"
)

func intc(v int64) Expr {
	return IntConstant(big.NewInt(v))
}

// Applying any smart constructor to constant operands must yield a constant:
// identical literals on both instants.
func TestConstantFoldingClosure(t *testing.T) {
	tests := []struct {
		actual   func() (Expr, error)
		expected string
	}{
		{func() (Expr, error) { return Add(intc(1), intc(2)) }, "3"},
		{func() (Expr, error) { return Sub(intc(1), intc(2)) }, "-1"},
		{func() (Expr, error) { return Mul(intc(3), intc(4)) }, "12"},
		{func() (Expr, error) { return Div(intc(7), intc(2)) }, "3"},
		{func() (Expr, error) { return Div(intc(-7), intc(2)) }, "-4"},
		{func() (Expr, error) { return Mod(intc(-7), intc(2)) }, "1"},
		{func() (Expr, error) { return Neg(intc(5)) }, "-5"},
		{func() (Expr, error) { return LessThan(intc(1), intc(2)) }, "true"},
		{func() (Expr, error) { return Equals(intc(1), intc(2)) }, "false"},
		{func() (Expr, error) { return And(BoolConstant(true), BoolConstant(false)) }, "false"},
		{func() (Expr, error) { return Xor(BoolConstant(true), BoolConstant(false)) }, "true"},
		{func() (Expr, error) { return Implies(BoolConstant(false), BoolConstant(false)) }, "true"},
		{func() (Expr, error) { return Not(BoolConstant(true)) }, "false"},
		{func() (Expr, error) { return ToReal(intc(2)) }, "2"},
		{func() (Expr, error) { return ToInt(RealConstant(big.NewRat(7, 2))) }, "3"},
	}
	//
	for _, test := range tests {
		e, err := test.actual()
		//
		if err != nil {
			t.Errorf("unexpected error: %s", err)
			continue
		}
		//
		if e.Init.String() != test.expected || e.Step.String() != test.expected {
			t.Errorf("expected %s on both instants, got %s / %s", test.expected, e.Init, e.Step)
		}
	}
}

func TestBooleanIdentityLaws(t *testing.T) {
	x := Variable(NewIdent("x"), TheBoolType)
	//
	tests := []struct {
		actual   func() (Expr, error)
		expected string
	}{
		{func() (Expr, error) { return And(BoolConstant(true), x) }, "x"},
		{func() (Expr, error) { return And(x, BoolConstant(false)) }, "false"},
		{func() (Expr, error) { return Or(BoolConstant(false), x) }, "x"},
		{func() (Expr, error) { return Or(x, BoolConstant(true)) }, "true"},
		{func() (Expr, error) { return Implies(BoolConstant(true), x) }, "x"},
		{func() (Expr, error) { return Implies(BoolConstant(false), x) }, "true"},
		{func() (Expr, error) { return Xor(BoolConstant(false), x) }, "x"},
		{func() (Expr, error) { return Xor(x, BoolConstant(true)) }, "(not x)"},
	}
	//
	for _, test := range tests {
		e, err := test.actual()
		//
		if err != nil {
			t.Errorf("unexpected error: %s", err)
		} else if e.Step.String() != test.expected {
			t.Errorf("expected %s, got %s", test.expected, e.Step)
		}
	}
}

func TestTypeMismatches(t *testing.T) {
	x := Variable(NewIdent("x"), TheBoolType)
	n := Variable(NewIdent("n"), TheIntType)
	r := Variable(NewIdent("r"), TheRealType)
	//
	if _, err := Add(x, n); err == nil {
		t.Errorf("bool + int should be rejected")
	}
	//
	if _, err := Add(n, r); err == nil {
		t.Errorf("mixed int/real arithmetic should be rejected")
	}
	//
	if _, err := And(n, x); err == nil {
		t.Errorf("int and bool should be rejected")
	}
	//
	if _, err := Mod(r, r); err == nil {
		t.Errorf("real mod should be rejected")
	}
	//
	if _, err := Ite(n, n, n); err == nil {
		t.Errorf("non-bool guard should be rejected")
	}
	//
	if _, err := Equals(x, n); err == nil {
		t.Errorf("equality across kinds should be rejected")
	}
}

func TestRangeWidening(t *testing.T) {
	a := Variable(NewIdent("a"), rng(0, 10))
	b := Variable(NewIdent("b"), rng(5, 6))
	//
	sum, err := Add(a, b)
	//
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	if !sum.Type.Equals(TheIntType) {
		t.Errorf("subrange arithmetic should widen to int, got %s", sum.Type)
	}
}

func TestPreOnVariable(t *testing.T) {
	v := Variable(NewIdent("v"), TheIntType)
	//
	e, err := Pre(v)
	//
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	if _, ok := e.Init.(*UndefTerm); !ok {
		t.Errorf("initial instant of pre should be undefined")
	}
	//
	if e.Step.String() != "pre v" {
		t.Errorf("unexpected step term %s", e.Step)
	}
	//
	if !e.PreVars.Contains("v") {
		t.Errorf("pre variable not recorded")
	}
}

func TestPreRejectsCompound(t *testing.T) {
	v := Variable(NewIdent("v"), TheIntType)
	//
	sum, err := Add(v, intc(1))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	if _, err := Pre(sum); err == nil {
		t.Errorf("pre of a compound expression should be rejected")
	}
}

func TestArrowPairsInstants(t *testing.T) {
	v := Variable(NewIdent("v"), TheIntType)
	//
	pv, err := Pre(v)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	e, err := Arrow(intc(0), pv)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	if e.Init.String() != "0" || e.Step.String() != "pre v" {
		t.Errorf("unexpected pair %s / %s", e.Init, e.Step)
	}
	// The guard discharges the undefined initial instant.
	if TermHasUndef(e.Init) {
		t.Errorf("guarded pre still undefined initially")
	}
}

// Nested arrows distribute such that the result is always init -> step.
func TestArrowDistribution(t *testing.T) {
	a := Variable(NewIdent("a"), TheIntType)
	b := Variable(NewIdent("b"), TheIntType)
	c := Variable(NewIdent("c"), TheIntType)
	//
	inner, err := Arrow(b, c)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	outer, err := Arrow(a, inner)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	if outer.Init.String() != "a" || outer.Step.String() != "c" {
		t.Errorf("unexpected pair %s / %s", outer.Init, outer.Step)
	}
}

func TestCurrentVarsExcludePre(t *testing.T) {
	v := Variable(NewIdent("v"), TheIntType)
	w := Variable(NewIdent("w"), TheIntType)
	//
	pv, err := Pre(v)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	sum, err := Add(pv, w)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	vars := sum.CurrentVars()
	//
	if _, ok := vars["w"]; !ok {
		t.Errorf("current variable w missing")
	}
	//
	if _, ok := vars["v"]; ok {
		t.Errorf("variable read under pre wrongly counted as current")
	}
}

func TestAsIntConstant(t *testing.T) {
	if v, ok := intc(42).AsIntConstant(); !ok || v.Int64() != 42 {
		t.Errorf("literal not recognised as constant")
	}
	//
	x := Variable(NewIdent("x"), TheIntType)
	//
	if _, ok := x.AsIntConstant(); ok {
		t.Errorf("variable wrongly recognised as constant")
	}
}

func TestBigLiterals(t *testing.T) {
	// Range bounds beyond 64 bits must survive arithmetic untouched.
	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	//
	sum, err := Add(IntConstant(huge), intc(1))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	expected := "340282366920938463463374607431768211457"
	//
	if sum.Step.String() != expected {
		t.Errorf("expected %s, got %s", expected, sum.Step)
	}
}
