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

	"github.com/consensys/go-lustre/pkg/lustre/ast"
)

// ElaborateProgram processes the top-level declarations of a parsed program
// in order, growing the typing context monotonically.  On success the
// returned context maps every node name to its elaborated record.  The first
// fatal condition aborts elaboration; a ForwardReference raised by a node is
// translated here, by inspecting the remaining declarations, into either a
// forward-reference or an undefined-node diagnostic.
func ElaborateProgram(program *ast.Program) (*Context, []Warning, []SyntaxError) {
	ctx := NewContext()
	//
	var warnings []Warning
	//
	for i, decl := range program.Declarations {
		var errs []SyntaxError
		//
		switch d := decl.(type) {
		case *ast.TypeDecl:
			errs = elaborateType(ctx, d)
		case *ast.ConstDecl:
			errs = elaborateConst(ctx, d)
		case *ast.NodeDecl:
			var (
				node   *Node
				warns  []Warning
				callee string
			)
			//
			node, warns, errs = ElaborateNode(ctx, d)
			//
			if len(errs) > 0 && errs[0].Kind == ForwardReference {
				callee = errs[0].Callee
				//
				if declaredLater(program.Declarations[i+1:], callee) {
					errs = errorAt(ForwardReference, errs[0].Span,
						"forward reference to node %s in %s", callee, d.NodeName)
				} else {
					errs = errorAt(Undeclared, errs[0].Span, "node %s not defined", callee)
				}
			} else if len(errs) == 0 {
				if _, ok := ctx.LookupNode(d.NodeName); ok {
					errs = errorAt(Redeclaration, d.Span(), "node %s already declared", d.NodeName)
				} else {
					warnings = append(warnings, warns...)
					ctx.BindNode(node)
				}
			}
		default:
			panic("unknown declaration")
		}
		//
		if len(errs) > 0 {
			return nil, warnings, errs
		}
	}
	//
	return ctx, warnings, nil
}

// declaredLater checks whether a callee is declared as a node further down
// the program.
func declaredLater(decls []ast.Declaration, callee string) bool {
	for _, decl := range decls {
		if node, ok := decl.(*ast.NodeDecl); ok && node.NodeName == callee {
			return true
		}
	}
	//
	return false
}

// ============================================================================
// Type declarations
// ============================================================================

func elaborateType(ctx *Context, decl *ast.TypeDecl) []SyntaxError {
	if IsReservedName(decl.TypeName) {
		return errorAt(Redeclaration, decl.Span(), "type %s uses a reserved prefix", decl.TypeName)
	}
	//
	if ctx.TypeInContext(decl.TypeName) {
		return errorAt(Redeclaration, decl.Span(), "type %s already declared", decl.TypeName)
	}
	// A bodyless declaration introduces a free type.
	if decl.Body == nil {
		ctx.BindFreeType(decl.TypeName)
		return nil
	}
	//
	expander := &typeExpander{ctx, func(e ast.Expr) (*big.Int, []SyntaxError) {
		eval := evaluator{ctx, nil, nil, true}
		return eval.EvalConstInt(e)
	}}
	//
	leaves, errs := expander.Expand(decl.Body)
	//
	if len(errs) > 0 {
		return errs
	}
	//
	root := NewIdent(decl.TypeName)
	//
	for _, leaf := range leaves {
		ctx.BindTypeLeaf(root.PushAll(leaf.Path), leaf.Value)
		//
		if errs := ctx.AddEnumToContext(leaf.Value, decl.Span()); len(errs) > 0 {
			return errs
		}
	}
	//
	return nil
}

// ============================================================================
// Constant declarations
// ============================================================================

// elaborateConst processes one constant declaration, shared between the
// top-level loop and node-local constants.  Free constants (no value) bind
// symbolic leaves of their declared type; valued constants are evaluated in
// constants-only mode and bound leaf by leaf.
func elaborateConst(ctx *Context, decl *ast.ConstDecl) []SyntaxError {
	if IsReservedName(decl.ConstName) {
		return errorAt(Redeclaration, decl.Span(), "constant %s uses a reserved prefix", decl.ConstName)
	}
	//
	root := NewIdent(decl.ConstName)
	//
	if ctx.IdentInContext(root) {
		return errorAt(Redeclaration, decl.Span(), "constant %s already declared", decl.ConstName)
	}
	//
	expander := &typeExpander{ctx, func(e ast.Expr) (*big.Int, []SyntaxError) {
		eval := evaluator{ctx, nil, nil, true}
		return eval.EvalConstInt(e)
	}}
	// A free constant has a declared type but no value; its leaves stay
	// symbolic.
	if decl.Value == nil {
		leaves, errs := expander.Expand(decl.Type)
		//
		if len(errs) > 0 {
			return errs
		}
		//
		for _, leaf := range leaves {
			ctx.BindValue(root.PushAll(leaf.Path), leaf.Value)
			//
			if errs := ctx.AddEnumToContext(leaf.Value, decl.Span()); len(errs) > 0 {
				return errs
			}
		}
		//
		return nil
	}
	// Evaluate the value in constants-only mode.
	eval := evaluator{ctx, nil, nil, true}
	//
	results, errs := eval.Eval(decl.Value)
	//
	if len(errs) > 0 {
		return errs
	}
	// Against a declared type, check leaf for leaf; otherwise infer.
	if decl.Type != nil {
		leaves, errs := expander.Expand(decl.Type)
		//
		if len(errs) > 0 {
			return errs
		}
		//
		if len(results) != len(leaves) {
			return errorAt(TypeMismatch, decl.Span(), "constant %s expects %d components, got %d",
				decl.ConstName, len(leaves), len(results))
		}
		//
		for i, leaf := range leaves {
			if ComparePath(results[i].Path, leaf.Path) != 0 {
				return errorAt(TypeMismatch, decl.Span(), "constant %s misaligned at component %s",
					decl.ConstName, NewIndexedIdent(decl.ConstName, leaf.Path))
			}
			//
			if !CheckType(results[i].Value.Type, leaf.Value) {
				return errorAt(TypeMismatch, decl.Span(), "constant %s expects %s, got %s",
					decl.ConstName, leaf.Value, results[i].Value.Type)
			}
			//
			leafId := root.PushAll(leaf.Path)
			ctx.BindValue(leafId, leaf.Value)
			ctx.BindConst(leafId, results[i].Value)
		}
		//
		return nil
	}
	//
	for _, r := range results {
		leafId := root.PushAll(r.Path)
		ctx.BindValue(leafId, r.Value.Type)
		ctx.BindConst(leafId, r.Value)
	}
	//
	return nil
}
