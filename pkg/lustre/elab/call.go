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
	"github.com/consensys/go-lustre/pkg/lustre/ast"
	"github.com/consensys/go-lustre/pkg/util/source"
)

// Call records one extracted call site: the identifiers its output leaves are
// bound to, the Boolean activation condition, the callee, the flat input
// expressions in callee leaf order, and (for a condact) the default values
// supplied for the initial inactive instants.  Downstream, the record is
// elaborated into guarded initial/step equations over the bound outputs.
type Call struct {
	Outputs    []Ident
	Activation Expr
	Callee     string
	Inputs     []Expr
	Defaults   []Expr
}

func (p *evaluator) evalCall(e *ast.CallExpr) ([]IndexedExpr, []SyntaxError) {
	return p.call(e.Name, e.Args, nil, nil, e.Span())
}

func (p *evaluator) evalCondact(e *ast.CondactExpr) ([]IndexedExpr, []SyntaxError) {
	cond, errs := p.scalarBool(e.Cond, "condact activation")
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return p.call(e.Name, e.Args, &cond, e.Defaults, e.Span())
}

// call elaborates a (possibly guarded) node invocation: the callee is looked
// up, the arguments are flattened and checked leaf-for-leaf against its input
// signature, and each output leaf is bound to a fresh identifier under the
// call's "__returns" root.  The result is the list of bound-output variable
// references, indexed to match the aggregate shape the caller expects.
func (p *evaluator) call(callee string, args []ast.Expr, activation *Expr, defaults []ast.Expr,
	span source.Span) ([]IndexedExpr, []SyntaxError) {
	//
	if p.constOnly {
		return nil, errorAt(ConstantRequired, span, "expression must be a constant integer")
	}
	//
	node, ok := p.ctx.LookupNode(callee)
	//
	if !ok {
		return nil, forwardReference(span, callee)
	}
	// Flatten and check the input arguments.
	args = flattenList(args)
	//
	if len(args) != len(node.Inputs) {
		return nil, errorAt(TypeMismatch, span, "node %s expects %d arguments, got %d",
			callee, len(node.Inputs), len(args))
	}
	//
	var inputs []Expr
	//
	for i, arg := range args {
		flat, errs := p.bindLeaves(arg, node.Inputs[i].Leaves, "argument", callee)
		//
		if len(errs) > 0 {
			return nil, errs
		}
		//
		inputs = append(inputs, flat...)
	}
	// Allocate the call root and bind each output leaf.
	root := p.fresh.FreshCall(callee)
	//
	var (
		bound   []Ident
		results []IndexedExpr
	)
	//
	for i, output := range node.Outputs {
		for _, leaf := range output.Leaves {
			outLeaf := output.Id.PushAll(leaf.Path)
			id := root.Push(IdentIndex{outLeaf})
			//
			p.ctx.BindValue(id, leaf.Value)
			bound = append(bound, id)
			// Shape the result as the caller sees it: a single output keeps
			// its own leaf paths, multiple outputs form a tuple.
			path := leaf.Path
			if len(node.Outputs) > 1 {
				path = prependStep(PosIndex(i), leaf.Path)
			}
			//
			results = append(results, IndexedExpr{path, Variable(id, leaf.Value)})
		}
	}
	// Evaluate any condact defaults against the output signature.
	var flatDefaults []Expr
	//
	if defaults != nil {
		defaults = flattenList(defaults)
		//
		if len(defaults) != len(node.Outputs) {
			return nil, errorAt(TypeMismatch, span, "condact of %s expects %d defaults, got %d",
				callee, len(node.Outputs), len(defaults))
		}
		//
		for i, def := range defaults {
			flat, errs := p.bindLeaves(def, node.Outputs[i].Leaves, "default", callee)
			//
			if len(errs) > 0 {
				return nil, errs
			}
			//
			flatDefaults = append(flatDefaults, flat...)
		}
	}
	// Record the call site.
	act := BoolConstant(true)
	if activation != nil {
		act = *activation
	}
	//
	p.residue.NewCalls = append(p.residue.NewCalls, Call{bound, act, callee, inputs, flatDefaults})
	//
	return sortByPath(results), nil
}

// bindLeaves evaluates one argument expression and checks it leaf-for-leaf
// against a declared signal's leaves.  Matching is index-exact: each
// component's remaining index path must equal the corresponding leaf's path.
func (p *evaluator) bindLeaves(arg ast.Expr, leaves []TypeLeaf, what string,
	callee string) ([]Expr, []SyntaxError) {
	//
	results, errs := p.Eval(arg)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if len(results) != len(leaves) {
		return nil, errorAt(TypeMismatch, arg.Span(), "%s of %s expects %d components, got %d",
			what, callee, len(leaves), len(results))
	}
	//
	flat := make([]Expr, len(results))
	//
	for i := range results {
		if ComparePath(results[i].Path, leaves[i].Path) != 0 {
			return nil, errorAt(TypeMismatch, arg.Span(), "%s of %s misaligned at component %s",
				what, callee, NewIndexedIdent("_", leaves[i].Path))
		}
		//
		if !CheckType(results[i].Value.Type, leaves[i].Value) {
			return nil, errorAt(TypeMismatch, arg.Span(), "%s of %s expects %s, got %s",
				what, callee, leaves[i].Value, results[i].Value.Type)
		}
		//
		flat[i] = results[i].Value
	}
	//
	return flat, nil
}

// prependStep places a step at the front of a path, leaving the original
// untouched.
func prependStep(step Index, path []Index) []Index {
	npath := make([]Index, 0, len(path)+1)
	npath = append(npath, step)
	//
	return append(npath, path...)
}
