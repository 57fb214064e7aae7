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
package elab_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/consensys/go-lustre/pkg/lustre/ast"
	"github.com/consensys/go-lustre/pkg/lustre/elab"
	"github.com/consensys/go-lustre/pkg/lustre/parser"
	"github.com/consensys/go-lustre/pkg/util/source"
)

// compile parses and elaborates a source fragment.
func compile(t *testing.T, src string) (*elab.Context, []elab.Warning, []elab.SyntaxError) {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test.lus", []byte(src))
	//
	program, err := parser.Parse(srcfile)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	//
	return elab.ElaborateProgram(program)
}

// compileOk parses and elaborates a source fragment, requiring success.
func compileOk(t *testing.T, src string) *elab.Context {
	t.Helper()
	//
	ctx, _, errs := compile(t, src)
	//
	if len(errs) > 0 {
		t.Fatalf("unexpected elaboration error: %s", errs[0].Msg)
	}
	//
	return ctx
}

// compileErr parses and elaborates a source fragment, requiring a failure of
// the given kind.
func compileErr(t *testing.T, src string, kind elab.ErrorKind) elab.SyntaxError {
	t.Helper()
	//
	_, _, errs := compile(t, src)
	//
	if len(errs) == 0 {
		t.Fatalf("expected %s error, got none", kind)
	}
	//
	if errs[0].Kind != kind {
		t.Fatalf("expected %s error, got %s: %s", kind, errs[0].Kind, errs[0].Msg)
	}
	//
	return errs[0]
}

func lookup(t *testing.T, ctx *elab.Context, name string) *elab.Node {
	t.Helper()
	//
	node, ok := ctx.LookupNode(name)
	if !ok {
		t.Fatalf("node %s missing from context", name)
	}
	//
	return node
}

// equations renders a node's equations in their emitted order.
func equations(node *elab.Node) []string {
	lines := make([]string, len(node.Equations))
	for i, eq := range node.Equations {
		lines[i] = fmt.Sprintf("%s = %s", eq.Lhs, eq.Rhs)
	}
	//
	return lines
}

// ============================================================================
// Elaboration scenarios
// ============================================================================

func TestBasicIncrement(t *testing.T) {
	ctx := compileOk(t, `
		node d(incr: bool) returns (out: int);
		let
			out = 0 -> if incr then pre out + 1 else pre out;
			--%PROPERTY out >= 0;
		tel`)
	//
	node := lookup(t, ctx, "d")
	//
	if len(node.Equations) != 1 {
		t.Fatalf("expected one equation, got %d", len(node.Equations))
	}
	//
	expected := "out = (0 -> (if incr then (pre out + 1) else pre out))"
	//
	if got := equations(node)[0]; got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	//
	if len(node.Properties) != 1 {
		t.Errorf("property annotation lost")
	}
}

func TestRecordFlattening(t *testing.T) {
	ctx := compileOk(t, `
		type T = { a: int; b: bool };
		node f(x: T) returns (y: T);
		let y = x; tel`)
	//
	node := lookup(t, ctx, "f")
	// Signature leaves.
	inputs := node.InputLeaves()
	//
	if len(inputs) != 2 || inputs[0].String() != "x.a" || inputs[1].String() != "x.b" {
		t.Fatalf("unexpected input leaves %v", inputs)
	}
	//
	got := equations(node)
	expected := []string{"y.a = x.a", "y.b = x.b"}
	//
	if len(got) != 2 || got[0] != expected[0] || got[1] != expected[1] {
		t.Errorf("expected %v, got %v", expected, got)
	}
	// Every equation's sides are scalar.
	for _, eq := range node.Equations {
		if !eq.Rhs.Type.IsScalar() {
			t.Errorf("aggregate type survived into equation %s", eq.Lhs)
		}
	}
}

func TestSubrangeRelaxation(t *testing.T) {
	ctx := compileOk(t, `
		node g(x: int) returns (o: subrange [0,10] of int);
		let o = x + 1; tel`)
	//
	node := lookup(t, ctx, "g")
	// The output was retyped to int.
	if !node.Outputs[0].Leaves[0].Value.Equals(elab.TheIntType) {
		t.Errorf("output not relaxed to int: %s", node.Outputs[0].Leaves[0].Value)
	}
	// A range property was injected.
	if len(node.Properties) != 1 {
		t.Fatalf("expected one injected property, got %d", len(node.Properties))
	}
	//
	if got := node.Properties[0].Step.String(); got != "((0 <= o) and (o <= 10))" {
		t.Errorf("unexpected range property %s", got)
	}
}

func TestPreOnCompoundExpression(t *testing.T) {
	ctx := compileOk(t, `
		node h(a: int; b: int) returns (y: int);
		let y = 0 -> pre (a + b); tel`)
	//
	node := lookup(t, ctx, "h")
	// A fresh local abstracts the argument of the pre.
	if len(node.Locals) != 1 || node.Locals[0].Id.String() != "__abs.0" {
		t.Fatalf("expected fresh local __abs.0, got %v", node.Locals)
	}
	//
	got := equations(node)
	expected := []string{"__abs.0 = (a + b)", "y = (0 -> pre __abs.0)"}
	//
	if len(got) != 2 || got[0] != expected[0] || got[1] != expected[1] {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestForwardReference(t *testing.T) {
	err := compileErr(t, `
		node top(x: int) returns (z: int);
		let z = lower(x); tel
		node lower(x: int) returns (y: int);
		let y = x; tel`, elab.ForwardReference)
	//
	if !strings.Contains(err.Msg, "forward reference to node lower") {
		t.Errorf("unexpected message %q", err.Msg)
	}
}

func TestUndefinedNode(t *testing.T) {
	err := compileErr(t, `
		node top(x: int) returns (z: int);
		let z = missing(x); tel`, elab.Undeclared)
	//
	if !strings.Contains(err.Msg, "missing") {
		t.Errorf("unexpected message %q", err.Msg)
	}
}

func TestFbyRejected(t *testing.T) {
	err := compileErr(t, `
		node k(x: int) returns (y: int);
		let y = fby(x, 1, 0); tel`, elab.Unsupported)
	//
	if err.Msg != "Fby operator not implemented" {
		t.Errorf("unexpected message %q", err.Msg)
	}
}

// ============================================================================
// Further behaviour
// ============================================================================

func TestNodeCall(t *testing.T) {
	ctx := compileOk(t, `
		node sum(x: int) returns (s: int);
		let s = x -> pre s + x; tel
		node top(x: int) returns (o: int);
		let o = sum(x) + sum(x); tel`)
	//
	node := lookup(t, ctx, "top")
	//
	if len(node.Calls) != 2 {
		t.Fatalf("expected two call sites, got %d", len(node.Calls))
	}
	// Call sites into the same node number consecutively.
	if got := node.Calls[0].Outputs[0].String(); got != "sum.__returns.0.s" {
		t.Errorf("unexpected bound output %s", got)
	}
	//
	if got := node.Calls[1].Outputs[0].String(); got != "sum.__returns.1.s" {
		t.Errorf("unexpected bound output %s", got)
	}
	// Bound outputs were registered as locals.
	if len(node.Locals) != 2 {
		t.Errorf("bound outputs not registered as locals: %v", node.Locals)
	}
	// A plain call is always active.
	if got := node.Calls[0].Activation.Step.String(); got != "true" {
		t.Errorf("unexpected activation %s", got)
	}
}

func TestCondact(t *testing.T) {
	ctx := compileOk(t, `
		node sum(x: int) returns (s: int);
		let s = x -> pre s + x; tel
		node top(x: int; c: bool) returns (o: int);
		let o = condact(c, sum(x), 0); tel`)
	//
	node := lookup(t, ctx, "top")
	//
	if len(node.Calls) != 1 {
		t.Fatalf("expected one call site, got %d", len(node.Calls))
	}
	//
	call := node.Calls[0]
	//
	if call.Activation.Step.String() != "c" {
		t.Errorf("unexpected activation %s", call.Activation.Step)
	}
	//
	if len(call.Defaults) != 1 || call.Defaults[0].Step.String() != "0" {
		t.Errorf("unexpected defaults %v", call.Defaults)
	}
}

func TestMultiOutputCall(t *testing.T) {
	ctx := compileOk(t, `
		node two(x: int) returns (a: int; b: int);
		let a = x; b = x + 1; tel
		node use(x: int) returns (p: int; q: int);
		let p, q = two(x); tel`)
	//
	node := lookup(t, ctx, "use")
	//
	got := equations(node)
	expected := []string{"p = two.__returns.0.a", "q = two.__returns.0.b"}
	//
	if len(got) != 2 || got[0] != expected[0] || got[1] != expected[1] {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestOutputInputDependencies(t *testing.T) {
	ctx := compileOk(t, `
		node f(a: int; b: int) returns (x: int; y: int);
		let
			x = a + 1;
			y = 0 -> pre b;
		tel`)
	//
	node := lookup(t, ctx, "f")
	// x depends on a instantaneously; y reads b only under a pre.
	if len(node.OutputInputDep) != 2 {
		t.Fatalf("expected two dependency vectors")
	}
	//
	if len(node.OutputInputDep[0]) != 1 || node.OutputInputDep[0][0] != 0 {
		t.Errorf("unexpected vector for x: %v", node.OutputInputDep[0])
	}
	//
	if len(node.OutputInputDep[1]) != 0 {
		t.Errorf("unexpected vector for y: %v", node.OutputInputDep[1])
	}
}

func TestDependencySorting(t *testing.T) {
	ctx := compileOk(t, `
		node chain(x: int) returns (o: int);
		var a: int; b: int;
		let
			o = b + 1;
			b = a + 1;
			a = x + 1;
		tel`)
	//
	node := lookup(t, ctx, "chain")
	//
	got := equations(node)
	expected := []string{"a = (x + 1)", "b = (a + 1)", "o = (b + 1)"}
	//
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}

func TestCyclicDependencyRejected(t *testing.T) {
	compileErr(t, `
		node c(x: int) returns (y: int);
		let y = y + 1; tel`, elab.CyclicDependency)
}

func TestCycleThroughPreAccepted(t *testing.T) {
	// A dependency through a pre is not instantaneous.
	compileOk(t, `
		node c(x: int) returns (y: int);
		let y = 0 -> pre y + 1; tel`)
}

func TestUnguardedPreWarning(t *testing.T) {
	_, warnings, errs := compile(t, `
		node w(x: int) returns (y: int);
		let y = pre x; tel`)
	//
	if len(errs) > 0 {
		t.Fatalf("unexpected error: %s", errs[0].Msg)
	}
	//
	if len(warnings) != 1 || warnings[0].Msg != "unguarded pre" {
		t.Errorf("expected an unguarded pre warning, got %v", warnings)
	}
}

func TestEnumConstants(t *testing.T) {
	ctx := compileOk(t, `
		type color = enum { red, green, blue };
		node e(c: color) returns (is_red: bool);
		let is_red = c = red; tel`)
	//
	node := lookup(t, ctx, "e")
	//
	if got := equations(node)[0]; got != "is_red = (c = red)" {
		t.Errorf("unexpected equation %q", got)
	}
}

func TestEnumConstantConflictRejected(t *testing.T) {
	compileErr(t, `
		type color = enum { red, green };
		type fruit = enum { red, apple };`, elab.Redeclaration)
}

func TestConstantsAndArrays(t *testing.T) {
	ctx := compileOk(t, `
		const N = 3;
		node a(x: int^3) returns (y: int);
		let y = x[N - 1]; tel`)
	//
	node := lookup(t, ctx, "a")
	//
	if got := equations(node)[0]; got != "y = x.2" {
		t.Errorf("unexpected equation %q", got)
	}
	//
	if len(node.InputLeaves()) != 3 {
		t.Errorf("array input not flattened to 3 leaves")
	}
}

func TestRecordConstructor(t *testing.T) {
	ctx := compileOk(t, `
		type T = { a: int; b: bool };
		node mk(u: int; v: bool) returns (y: T);
		let y = T { a = u; b = v }; tel`)
	//
	node := lookup(t, ctx, "mk")
	//
	got := equations(node)
	expected := []string{"y.a = u", "y.b = v"}
	//
	if len(got) != 2 || got[0] != expected[0] || got[1] != expected[1] {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestMissingRecordField(t *testing.T) {
	compileErr(t, `
		type T = { a: int; b: bool };
		node f(x: T) returns (y: int);
		let y = x.c; tel`, elab.TypeMismatch)
}

func TestNonConstantArraySize(t *testing.T) {
	compileErr(t, `
		node f(x: int) returns (y: int^2);
		let y = x ^ x; tel`, elab.ConstantRequired)
}

func TestRedeclarationRejected(t *testing.T) {
	compileErr(t, `
		node f(x: int; x: bool) returns (y: int);
		let y = 0; tel`, elab.Redeclaration)
}

func TestReservedPrefixRejected(t *testing.T) {
	compileErr(t, `
		node f(__abs: int) returns (y: int);
		let y = 0; tel`, elab.Redeclaration)
}

func TestDoubleUnderscoreNamesAllowed(t *testing.T) {
	// Only the generated "__abs"/"__returns" prefixes are reserved.
	compileOk(t, `
		const __internal: int = 0;
		node f(x: int) returns (y: int);
		let y = x + __internal; tel`)
}

func TestClockedInputRejected(t *testing.T) {
	compileErr(t, `
		node f(x: int; c: bool; z: int when c) returns (y: int);
		let y = 0; tel`, elab.Unsupported)
}

func TestWhenRejected(t *testing.T) {
	compileErr(t, `
		node f(x: bool; c: bool) returns (y: bool);
		let y = x when c; tel`, elab.Unsupported)
}

func TestCurrentRejected(t *testing.T) {
	compileErr(t, `
		node f(x: bool) returns (y: bool);
		let y = current x; tel`, elab.Unsupported)
}

func TestSliceRejected(t *testing.T) {
	compileErr(t, `
		node f(x: int^4) returns (y: int^2);
		let y = x[1 .. 2]; tel`, elab.Unsupported)
}

func TestAssertMustBeBool(t *testing.T) {
	compileErr(t, `
		node f(x: int) returns (y: int);
		let
			assert x;
			y = x;
		tel`, elab.TypeMismatch)
}

func TestContract(t *testing.T) {
	ctx := compileOk(t, `
		node f(x: int) returns (y: int);
		--@require x >= 0;
		--@ensure y >= x;
		let y = x + 1; tel`)
	//
	node := lookup(t, ctx, "f")
	//
	if len(node.Requires) != 1 || len(node.Ensures) != 1 {
		t.Errorf("contract lost: %d requires, %d ensures", len(node.Requires), len(node.Ensures))
	}
}

func TestMainAnnotation(t *testing.T) {
	ctx := compileOk(t, `
		node f(x: int) returns (y: int);
		let
			y = x;
			--%MAIN;
		tel`)
	//
	if node := lookup(t, ctx, "f"); !node.Main {
		t.Errorf("main annotation lost")
	}
}

func TestFreeTypes(t *testing.T) {
	ctx := compileOk(t, `
		type opaque;
		node f(x: opaque) returns (y: opaque);
		let y = x; tel`)
	//
	node := lookup(t, ctx, "f")
	//
	if got := node.Inputs[0].Leaves[0].Value.String(); got != "opaque" {
		t.Errorf("unexpected input type %s", got)
	}
}

func TestTupleEquation(t *testing.T) {
	ctx := compileOk(t, `
		node f(x: int) returns (a: int; b: int);
		let a, b = (x + 1, x + 2); tel`)
	//
	node := lookup(t, ctx, "f")
	//
	got := equations(node)
	expected := []string{"a = (x + 1)", "b = (x + 2)"}
	//
	if len(got) != 2 || got[0] != expected[0] || got[1] != expected[1] {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestCasts(t *testing.T) {
	ctx := compileOk(t, `
		node f(r: real; n: int) returns (i: int; x: real);
		let
			i = int(r) + n;
			x = real(n);
		tel`)
	//
	node := lookup(t, ctx, "f")
	//
	got := equations(node)
	expected := []string{"i = ((int r) + n)", "x = (real n)"}
	//
	if got[0] != expected[0] || got[1] != expected[1] {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestParametricNodeRejected(t *testing.T) {
	decl := &ast.NodeDecl{NodeName: "f", Params: []string{"n"}}
	//
	_, _, errs := elab.ElaborateNode(elab.NewContext(), decl)
	//
	if len(errs) == 0 || errs[0].Kind != elab.Unsupported {
		t.Errorf("parametric node not rejected")
	}
}

// Two elaborations of equal programs must produce structurally equal output,
// including identifier numbering and equation ordering.
func TestDeterminism(t *testing.T) {
	src := `
		node sum(x: int) returns (s: int);
		let s = x -> pre s + x; tel
		node top(a: int; b: int) returns (o: int);
		var t: int;
		let
			t = sum(a) + sum(b);
			o = 0 -> pre (t + 1);
		tel`
	//
	first := compileOk(t, src)
	second := compileOk(t, src)
	//
	render := func(ctx *elab.Context) string {
		var builder strings.Builder
		//
		for _, node := range ctx.Nodes() {
			builder.WriteString(node.Name)
			builder.WriteString(strings.Join(equations(node), ";"))
			//
			for _, call := range node.Calls {
				for _, out := range call.Outputs {
					builder.WriteString(out.String())
				}
			}
			//
			for _, local := range node.Locals {
				builder.WriteString(local.Id.String())
			}
		}
		//
		return builder.String()
	}
	//
	if render(first) != render(second) {
		t.Errorf("elaboration is not deterministic")
	}
}
