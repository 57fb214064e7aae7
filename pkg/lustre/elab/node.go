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
	"slices"

	"github.com/consensys/go-lustre/pkg/lustre/ast"
	"github.com/consensys/go-lustre/pkg/util/source"
)

// Signal is one declared input, output or local of a node: its root
// identifier and the scalar leaves its declared type flattened into.  For
// inputs, Const distinguishes constant inputs.
type Signal struct {
	Id     Ident
	Leaves []TypeLeaf
	Const  bool
}

// LeafIdents returns the fully-qualified leaf identifiers of this signal.
func (p *Signal) LeafIdents() []Ident {
	ids := make([]Ident, len(p.Leaves))
	for i, leaf := range p.Leaves {
		ids[i] = p.Id.PushAll(leaf.Path)
	}
	//
	return ids
}

// Equation binds one scalar leaf to a flat expression.
type Equation struct {
	Lhs Ident
	Rhs Expr
}

// Node is the elaborated record of one node declaration: flattened
// signature, contract, equations in dependency order, extracted call sites,
// and the per-output input-dependency vectors callers use to solve their own
// graphs.
type Node struct {
	Name string
	// Inputs and outputs in source order; locals in introduction order.
	Inputs  []Signal
	Outputs []Signal
	Locals  []Signal
	// Assumptions, obligations and the contract.
	Asserts    []Expr
	Properties []Expr
	Requires   []Expr
	Ensures    []Expr
	// Equations, in dependency-sorted order after analysis.
	Equations []Equation
	// Call sites in source order.
	Calls []Call
	// Main marks the verification entry point.
	Main bool
	// OutputInputDep lists, for each output leaf (in flattened order), the
	// positions of the input leaves it transitively depends on.
	OutputInputDep [][]uint
}

// InputLeaves returns the flattened input leaf identifiers, in source order.
func (p *Node) InputLeaves() []Ident {
	var ids []Ident
	for i := range p.Inputs {
		ids = append(ids, p.Inputs[i].LeafIdents()...)
	}
	//
	return ids
}

// OutputLeaves returns the flattened output leaf identifiers, in source
// order.
func (p *Node) OutputLeaves() []Ident {
	var ids []Ident
	for i := range p.Outputs {
		ids = append(ids, p.Outputs[i].LeafIdents()...)
	}
	//
	return ids
}

// ============================================================================
// Assembly
// ============================================================================

// section identifies which part of a node a declared leaf lives in.
type section uint

const (
	sectionInput section = iota
	sectionOutput
	sectionLocal
)

// leafRef locates one declared leaf, so that the subrange relaxation can
// rewrite its recorded type in place.
type leafRef struct {
	section section
	signal  int
	leaf    int
}

// assembler orchestrates the elaboration of one node declaration.  It owns a
// clone of the typing context, so the node's signals never leak out.
type assembler struct {
	ctx   *Context
	node  *Node
	fresh *FreshGenerator
	// Locates every declared leaf by canonical identifier.
	owners map[string]leafRef
	// Leaves already defined by an equation or call.
	defined map[string]bool
	// Collected non-fatal diagnostics.
	warnings []Warning
}

// ElaborateNode elaborates a single node declaration against the given
// context, producing the immutable node record and any warnings.  The given
// context is left unchanged: all signal bindings are made on a clone, and
// registering the node is left to the caller.
func ElaborateNode(ctx *Context, decl *ast.NodeDecl) (*Node, []Warning, []SyntaxError) {
	if len(decl.Params) > 0 {
		return nil, nil, errorAt(Unsupported, decl.Span(), "parametric nodes not supported")
	}
	//
	p := &assembler{
		ctx:     ctx.Clone(),
		node:    &Node{Name: decl.NodeName},
		fresh:   NewFreshGenerator(),
		owners:  make(map[string]leafRef),
		defined: make(map[string]bool),
	}
	//
	if errs := p.declareSignals(decl.Inputs, sectionInput); len(errs) > 0 {
		return nil, nil, errs
	}
	//
	if errs := p.declareSignals(decl.Outputs, sectionOutput); len(errs) > 0 {
		return nil, nil, errs
	}
	// The contract is elaborated before locals come into scope, so it can
	// only reference inputs and outputs.
	if errs := p.contract(decl); len(errs) > 0 {
		return nil, nil, errs
	}
	//
	if errs := p.declareSignals(decl.Locals, sectionLocal); len(errs) > 0 {
		return nil, nil, errs
	}
	//
	for i := range decl.LocalConsts {
		if errs := p.localConst(&decl.LocalConsts[i]); len(errs) > 0 {
			return nil, nil, errs
		}
	}
	//
	for _, stmt := range decl.Body {
		if errs := p.statement(stmt); len(errs) > 0 {
			return nil, nil, errs
		}
	}
	// Solve the dependency graph and order the equations.
	if errs := p.analyze(decl.Span()); len(errs) > 0 {
		return nil, nil, errs
	}
	//
	return p.node, p.warnings, nil
}

// evaluator constructs a fresh evaluator over this assembler's state.
func (p *assembler) evaluator(residue *Residue) *evaluator {
	return &evaluator{p.ctx, p.fresh, residue, false}
}

// expander constructs a type expander over this assembler's state.
func (p *assembler) expander() *typeExpander {
	return &typeExpander{p.ctx, func(e ast.Expr) (*big.Int, []SyntaxError) {
		eval := evaluator{p.ctx, nil, nil, true}
		return eval.EvalConstInt(e)
	}}
}

// ============================================================================
// Declarations
// ============================================================================

func (p *assembler) declareSignals(groups []ast.VarGroup, sec section) []SyntaxError {
	for _, group := range groups {
		if group.Clock != nil {
			return errorAt(Unsupported, group.Span(), "clocked signals not supported")
		}
		//
		leaves, errs := p.expander().Expand(group.Type)
		//
		if len(errs) > 0 {
			return errs
		}
		//
		for _, name := range group.Names {
			if errs := p.declareSignal(name, leaves, group.Const, sec, group.Span()); len(errs) > 0 {
				return errs
			}
		}
	}
	//
	return nil
}

func (p *assembler) declareSignal(name string, leaves []TypeLeaf, isConst bool, sec section,
	span source.Span) []SyntaxError {
	//
	if IsReservedName(name) {
		return errorAt(Redeclaration, span, "identifier %s uses a reserved prefix", name)
	}
	//
	id := NewIdent(name)
	//
	if p.ctx.IdentInContext(id) {
		return errorAt(Redeclaration, span, "identifier %s already declared", name)
	}
	//
	for _, leaf := range leaves {
		p.ctx.BindValue(id.PushAll(leaf.Path), leaf.Value)
		//
		if errs := p.ctx.AddEnumToContext(leaf.Value, span); len(errs) > 0 {
			return errs
		}
	}
	//
	signal := Signal{id, slices.Clone(leaves), isConst}
	//
	var index int
	//
	switch sec {
	case sectionInput:
		index = len(p.node.Inputs)
		p.node.Inputs = append(p.node.Inputs, signal)
	case sectionOutput:
		index = len(p.node.Outputs)
		p.node.Outputs = append(p.node.Outputs, signal)
	case sectionLocal:
		index = len(p.node.Locals)
		p.node.Locals = append(p.node.Locals, signal)
	}
	//
	for i, leaf := range leaves {
		p.owners[id.PushAll(leaf.Path).String()] = leafRef{sec, index, i}
	}
	//
	return nil
}

// localConst elaborates a node-local constant declaration.
func (p *assembler) localConst(decl *ast.ConstDecl) []SyntaxError {
	return elaborateConst(p.ctx, decl)
}

// contract elaborates the requires/ensures block.  Each expression must be a
// scalar Boolean over inputs and outputs.
func (p *assembler) contract(decl *ast.NodeDecl) []SyntaxError {
	for _, req := range decl.Requires {
		value, errs := p.statementBool(req, "require")
		//
		if len(errs) > 0 {
			return errs
		}
		//
		p.node.Requires = append(p.node.Requires, value)
	}
	//
	for _, ens := range decl.Ensures {
		value, errs := p.statementBool(ens, "ensure")
		//
		if len(errs) > 0 {
			return errs
		}
		//
		p.node.Ensures = append(p.node.Ensures, value)
	}
	//
	return nil
}

// ============================================================================
// Statements
// ============================================================================

func (p *assembler) statement(stmt ast.Statement) []SyntaxError {
	switch s := stmt.(type) {
	case *ast.Assert:
		value, errs := p.statementBool(s.Arg, "assert")
		//
		if len(errs) > 0 {
			return errs
		}
		//
		p.node.Asserts = append(p.node.Asserts, value)
		//
		return nil
	case *ast.Property:
		value, errs := p.statementBool(s.Arg, "property")
		//
		if len(errs) > 0 {
			return errs
		}
		//
		p.node.Properties = append(p.node.Properties, value)
		//
		return nil
	case *ast.Main:
		p.node.Main = true
		return nil
	case *ast.Equation:
		return p.equation(s)
	default:
		panic("unknown statement")
	}
}

// statementBool evaluates a statement-level expression demanded to be a
// scalar Boolean, folding any abstraction residue into the node.
func (p *assembler) statementBool(expr ast.Expr, what string) (Expr, []SyntaxError) {
	var residue Residue
	//
	value, errs := p.evaluator(&residue).scalarBool(expr, what)
	//
	if len(errs) > 0 {
		return Expr{}, errs
	}
	//
	p.foldResidue(&residue, expr.Span())
	p.checkGuarded(value, expr.Span())
	//
	return value, nil
}

// equation elaborates one defining statement.  The left pattern is resolved
// to declared leaves via outputs-then-locals; each right-hand-side component
// must be a subtype of its target, with the single recovered exception of an
// Int flowing into a subrange target, which relaxes the target to Int and
// injects a range property.
func (p *assembler) equation(s *ast.Equation) []SyntaxError {
	var residue Residue
	//
	eval := p.evaluator(&residue)
	//
	results, errs := eval.Eval(s.Rhs)
	//
	if len(errs) > 0 {
		return errs
	}
	//
	targets := make([]Ident, len(s.Lhs))
	//
	for i, lhs := range s.Lhs {
		id, errs := p.resolveTarget(lhs)
		//
		if len(errs) > 0 {
			return errs
		}
		//
		targets[i] = id
	}
	// A multi-variable pattern consumes the right-hand side as a tuple.
	for i, target := range targets {
		selected := results
		//
		if len(targets) > 1 {
			selected = selectStep(results, PosIndex(i))
		}
		//
		if errs := p.bindEquation(target, selected, s.Span()); len(errs) > 0 {
			return errs
		}
	}
	//
	p.foldResidue(&residue, s.Span())
	//
	return nil
}

// resolveTarget resolves a left-pattern entry to its root identifier.
func (p *assembler) resolveTarget(lhs ast.Expr) (Ident, []SyntaxError) {
	switch e := lhs.(type) {
	case *ast.VariableAccess:
		return NewIdent(e.Name), nil
	case *ast.RecordAccess:
		id, errs := p.resolveTarget(e.Arg)
		//
		if len(errs) > 0 {
			return Ident{}, errs
		}
		//
		return id.Push(FieldIndex(e.Field)), nil
	case *ast.IndexAccess:
		id, errs := p.resolveTarget(e.Arg)
		//
		if len(errs) > 0 {
			return Ident{}, errs
		}
		//
		eval := evaluator{p.ctx, nil, nil, true}
		//
		index, errs := eval.EvalConstInt(e.Index)
		//
		if len(errs) > 0 {
			return Ident{}, errs
		}
		//
		return id.Push(PosIndex(index.Int64())), nil
	default:
		return Ident{}, errorAt(TypeMismatch, lhs.Span(), "invalid equation target")
	}
}

// bindEquation pairs the flattened right-hand side against the target's
// declared leaves and appends one equation per leaf.
func (p *assembler) bindEquation(target Ident, results []IndexedExpr, span source.Span) []SyntaxError {
	leaves, errs := p.targetLeaves(target, span)
	//
	if len(errs) > 0 {
		return errs
	}
	//
	if len(results) != len(leaves) {
		return errorAt(TypeMismatch, span, "%s expects %d components, got %d",
			target, len(leaves), len(results))
	}
	//
	for i, leaf := range leaves {
		if ComparePath(results[i].Path, leaf.Path) != 0 {
			return errorAt(TypeMismatch, span, "%s has no component %s",
				target, NewIndexedIdent(target.String(), results[i].Path))
		}
		//
		lhs := target.PushAll(leaf.Path)
		//
		if errs := p.appendEquation(lhs, leaf.Value, results[i].Value, span); len(errs) > 0 {
			return errs
		}
	}
	//
	return nil
}

// targetLeaves determines the declared leaves below an equation target.
func (p *assembler) targetLeaves(target Ident, span source.Span) ([]TypeLeaf, []SyntaxError) {
	if datatype, ok := p.ctx.LookupValue(target); ok {
		return []TypeLeaf{{nil, datatype}}, nil
	}
	//
	if suffixes, ok := p.ctx.Suffixes(target); ok {
		leaves := make([]TypeLeaf, 0, len(suffixes))
		//
		for _, suffix := range suffixes {
			datatype, ok := p.ctx.LookupValue(target.PushAll(suffix))
			//
			if !ok {
				panic("missing leaf binding")
			}
			//
			leaves = append(leaves, TypeLeaf{suffix, datatype})
		}
		//
		slices.SortStableFunc(leaves, func(l TypeLeaf, r TypeLeaf) int {
			return ComparePath(l.Path, r.Path)
		})
		//
		return leaves, nil
	}
	//
	return nil, errorAt(Undeclared, span, "identifier %s not declared", target)
}

// appendEquation performs the subtype check for one leaf and appends its
// equation.
func (p *assembler) appendEquation(lhs Ident, declared Type, rhs Expr, span source.Span) []SyntaxError {
	key := lhs.String()
	//
	ref, ok := p.owners[key]
	//
	if !ok || ref.section == sectionInput {
		return errorAt(TypeMismatch, span, "%s is not an assignable output or local", lhs)
	}
	//
	if p.defined[key] {
		return errorAt(Redeclaration, span, "%s already defined", lhs)
	}
	//
	if !CheckType(rhs.Type, declared) {
		// The one recovered mismatch: Int flowing into a subrange relaxes the
		// target and injects a range property.
		subrange, ok := declared.(*IntRangeType)
		//
		if !ok || !rhs.Type.Equals(TheIntType) {
			return errorAt(TypeMismatch, span, "%s expects %s, got %s", lhs, declared, rhs.Type)
		}
		//
		p.relaxTarget(lhs, ref, subrange)
	}
	//
	p.defined[key] = true
	p.node.Equations = append(p.node.Equations, Equation{lhs, rhs})
	p.checkGuarded(rhs, span)
	//
	return nil
}

// relaxTarget widens a subrange-typed leaf to Int and appends the range
// property "lo <= v and v <= hi" to the node's obligations.
func (p *assembler) relaxTarget(lhs Ident, ref leafRef, subrange *IntRangeType) {
	var signal *Signal
	//
	switch ref.section {
	case sectionOutput:
		signal = &p.node.Outputs[ref.signal]
	case sectionLocal:
		signal = &p.node.Locals[ref.signal]
	default:
		panic("unreachable")
	}
	//
	signal.Leaves[ref.leaf].Value = TheIntType
	p.ctx.RetypeValue(lhs, TheIntType)
	//
	v := Variable(lhs, TheIntType)
	//
	lower, err := LessThanEquals(IntConstant(subrange.Lo), v)
	if err != nil {
		panic(err)
	}
	//
	upper, err := LessThanEquals(v, IntConstant(subrange.Hi))
	if err != nil {
		panic(err)
	}
	//
	rng, err := And(lower, upper)
	if err != nil {
		panic(err)
	}
	//
	p.node.Properties = append(p.node.Properties, rng)
}

// ============================================================================
// Residue folding
// ============================================================================

// foldResidue folds the abstraction by-products of one statement into the
// node: auxiliary variables become locals with their defining equations, and
// call sites are appended with their bound outputs registered as locals.
func (p *assembler) foldResidue(residue *Residue, span source.Span) {
	for _, def := range residue.NewVars {
		index := len(p.node.Locals)
		p.node.Locals = append(p.node.Locals, Signal{def.Id, []TypeLeaf{{nil, def.Type}}, false})
		p.owners[def.Id.String()] = leafRef{sectionLocal, index, 0}
		//
		p.defined[def.Id.String()] = true
		p.node.Equations = append(p.node.Equations, Equation{def.Id, def.Value})
		p.checkGuarded(def.Value, span)
	}
	//
	for _, call := range residue.NewCalls {
		for _, out := range call.Outputs {
			datatype, ok := p.ctx.LookupValue(out)
			//
			if !ok {
				panic("missing call output binding")
			}
			//
			index := len(p.node.Locals)
			p.node.Locals = append(p.node.Locals, Signal{out, []TypeLeaf{{nil, datatype}}, false})
			p.owners[out.String()] = leafRef{sectionLocal, index, 0}
			p.defined[out.String()] = true
		}
		//
		p.node.Calls = append(p.node.Calls, call)
	}
}

// checkGuarded reports the unguarded-pre warning for an expression whose
// initial instant is (partially) undefined.
func (p *assembler) checkGuarded(value Expr, span source.Span) {
	if TermHasUndef(value.Init) {
		p.warnings = append(p.warnings, Warning{span, "unguarded pre"})
	}
}
