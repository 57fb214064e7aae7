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
package parser

import (
	"testing"

	"github.com/consensys/go-lustre/pkg/lustre/ast"
	"github.com/consensys/go-lustre/pkg/util/source"
)

func parseString(t *testing.T, src string) *ast.Program {
	t.Helper()
	//
	program, err := Parse(source.NewSourceFile("test.lus", []byte(src)))
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	//
	return program
}

func parseFails(t *testing.T, src string) {
	t.Helper()
	//
	if _, err := Parse(source.NewSourceFile("test.lus", []byte(src))); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestParseDeclarations(t *testing.T) {
	program := parseString(t, `
		type T = { a: int; b: bool };
		type opaque;
		const N: int = 3;
		node f(x: T) returns (y: T);
		let y = x; tel`)
	//
	if len(program.Declarations) != 4 {
		t.Fatalf("expected 4 declarations, got %d", len(program.Declarations))
	}
	//
	if _, ok := program.Declarations[0].(*ast.TypeDecl); !ok {
		t.Errorf("expected a type declaration")
	}
	//
	free := program.Declarations[1].(*ast.TypeDecl)
	if free.Body != nil {
		t.Errorf("free type should have no body")
	}
	//
	konst := program.Declarations[2].(*ast.ConstDecl)
	if konst.Type == nil || konst.Value == nil {
		t.Errorf("typed constant lost its parts")
	}
	//
	node := program.Declarations[3].(*ast.NodeDecl)
	if node.NodeName != "f" || len(node.Inputs) != 1 || len(node.Outputs) != 1 {
		t.Errorf("unexpected node signature")
	}
}

func TestParseTypeExpressions(t *testing.T) {
	program := parseString(t, `
		type A = int^3;
		type B = subrange [-1, 10] of int;
		type C = enum { on, off };
		type D = [int, bool];`)
	//
	decls := program.Declarations
	//
	if _, ok := decls[0].(*ast.TypeDecl).Body.(*ast.ArrayType); !ok {
		t.Errorf("expected an array type")
	}
	//
	if _, ok := decls[1].(*ast.TypeDecl).Body.(*ast.SubrangeType); !ok {
		t.Errorf("expected a subrange type")
	}
	//
	enum, ok := decls[2].(*ast.TypeDecl).Body.(*ast.EnumType)
	if !ok || len(enum.Cases) != 2 {
		t.Errorf("expected an enum with 2 constructors")
	}
	//
	tuple, ok := decls[3].(*ast.TypeDecl).Body.(*ast.TupleType)
	if !ok || len(tuple.Elems) != 2 {
		t.Errorf("expected a tuple of 2 components")
	}
}

func TestParsePrecedence(t *testing.T) {
	program := parseString(t, `
		node f(a: int; b: int) returns (y: int);
		let y = 0 -> pre a + b * 2; tel`)
	//
	node := program.Declarations[0].(*ast.NodeDecl)
	eq := node.Body[0].(*ast.Equation)
	// The arrow binds loosest.
	arrow, ok := eq.Rhs.(*ast.BinaryExpr)
	if !ok || arrow.Op != ast.ARROW {
		t.Fatalf("expected an arrow at the top")
	}
	// Addition next.
	add, ok := arrow.Rhs.(*ast.BinaryExpr)
	if !ok || add.Op != ast.ADD {
		t.Fatalf("expected addition below the arrow")
	}
	// Pre binds tighter than addition.
	if _, ok := add.Lhs.(*ast.UnaryExpr); !ok {
		t.Errorf("expected pre on the left of the addition")
	}
	// Multiplication tighter still.
	mul, ok := add.Rhs.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.MUL {
		t.Errorf("expected multiplication on the right")
	}
}

func TestParseConditionalInOperand(t *testing.T) {
	program := parseString(t, `
		node f(c: bool) returns (y: int);
		let y = 0 -> if c then 1 else 2; tel`)
	//
	node := program.Declarations[0].(*ast.NodeDecl)
	eq := node.Body[0].(*ast.Equation)
	//
	arrow := eq.Rhs.(*ast.BinaryExpr)
	//
	if _, ok := arrow.Rhs.(*ast.IfExpr); !ok {
		t.Errorf("expected a conditional on the right of the arrow")
	}
}

func TestParseAnnotations(t *testing.T) {
	program := parseString(t, `
		node f(x: int) returns (y: int);
		--@require x >= 0;
		--@ensure y > x;
		let
			-- a plain comment
			y = x + 1;
			--%PROPERTY y > 0;
			--%MAIN;
		tel`)
	//
	node := program.Declarations[0].(*ast.NodeDecl)
	//
	if len(node.Requires) != 1 || len(node.Ensures) != 1 {
		t.Errorf("contract annotations lost")
	}
	//
	if len(node.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(node.Body))
	}
	//
	if _, ok := node.Body[1].(*ast.Property); !ok {
		t.Errorf("expected a property statement")
	}
	//
	if _, ok := node.Body[2].(*ast.Main); !ok {
		t.Errorf("expected a main statement")
	}
}

func TestParseCalls(t *testing.T) {
	program := parseString(t, `
		node f(x: int; c: bool) returns (y: int; z: int);
		let
			y = condact(c, g(x, x + 1), 0);
			z = fby(x, 1, 0);
		tel`)
	//
	node := program.Declarations[0].(*ast.NodeDecl)
	//
	condact := node.Body[0].(*ast.Equation).Rhs.(*ast.CondactExpr)
	//
	if condact.Name != "g" || len(condact.Args) != 2 || len(condact.Defaults) != 1 {
		t.Errorf("condact parsed incorrectly")
	}
	//
	fby := node.Body[1].(*ast.Equation).Rhs.(*ast.FbyExpr)
	//
	if len(fby.Args) != 3 {
		t.Errorf("fby parsed incorrectly")
	}
}

func TestParseProjectionsAndSlices(t *testing.T) {
	program := parseString(t, `
		node f(x: int^4) returns (y: int);
		let y = x[0] + x[1 .. 2][0]; tel`)
	//
	node := program.Declarations[0].(*ast.NodeDecl)
	add := node.Body[0].(*ast.Equation).Rhs.(*ast.BinaryExpr)
	//
	if _, ok := add.Lhs.(*ast.IndexAccess); !ok {
		t.Errorf("expected an index access")
	}
	//
	outer := add.Rhs.(*ast.IndexAccess)
	//
	if _, ok := outer.Arg.(*ast.SliceExpr); !ok {
		t.Errorf("expected a slice below the projection")
	}
}

func TestParseRecordConstructor(t *testing.T) {
	program := parseString(t, `
		node f(u: int) returns (y: int);
		let y = T { a = u; b = true }.a; tel`)
	//
	node := program.Declarations[0].(*ast.NodeDecl)
	access := node.Body[0].(*ast.Equation).Rhs.(*ast.RecordAccess)
	//
	record, ok := access.Arg.(*ast.RecordExpr)
	if !ok || record.Name != "T" || len(record.Fields) != 2 {
		t.Errorf("record constructor parsed incorrectly")
	}
}

func TestParseSpansAttached(t *testing.T) {
	src := `node f(x: int) returns (y: int); let y = x; tel`
	program := parseString(t, src)
	//
	node := program.Declarations[0].(*ast.NodeDecl)
	span := node.Span()
	//
	if span.Start() != 0 || span.End() < span.Start() {
		t.Errorf("node span looks wrong: %d:%d", span.Start(), span.End())
	}
	//
	eq := node.Body[0].(*ast.Equation)
	//
	if src[eq.Rhs.Span().Start():eq.Rhs.Span().End()] != "x" {
		t.Errorf("expression span does not cover its text")
	}
}

func TestParseErrors(t *testing.T) {
	parseFails(t, `node f(x: int) returns (y: int); let y = ; tel`)
	parseFails(t, `node f(x int) returns (y: int); let y = x; tel`)
	parseFails(t, `node f(x: int) returns (y: int); let y = x`)
	parseFails(t, `type = int;`)
	parseFails(t, `const C;`)
}

func TestLexerRejectsUnknownCharacter(t *testing.T) {
	if _, err := Lex(source.NewSourceFile("test.lus", []byte("x ? y"))); err == nil {
		t.Fatalf("expected a lex error")
	}
}
