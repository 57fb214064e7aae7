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

// IndexedExpr pairs the index path of one scalar component with its flat
// expression.
type IndexedExpr = Indexed[Expr]

// VarDef records one auxiliary variable introduced by the evaluator, together
// with its defining expression.
type VarDef struct {
	Id    Ident
	Type  Type
	Value Expr
}

// Residue accumulates the abstraction by-products of evaluating one
// statement: freshly introduced auxiliary variables and extracted call sites.
// The node assembler folds the residue into the node after each top-level
// statement, never mid-expression.
type Residue struct {
	NewVars  []VarDef
	NewCalls []Call
}

// evaluator is the recursive traversal consuming AST expressions and
// producing indexed flat expressions.  When constOnly is set, any attempt to
// introduce an auxiliary variable or call site fails instead, which is how
// compile-time constants (array sizes, range bounds, projection indices) are
// demanded.
type evaluator struct {
	ctx     *Context
	fresh   *FreshGenerator
	residue *Residue
	// constOnly suppresses all abstraction.
	constOnly bool
}

// Eval consumes an AST expression, producing one flat expression per scalar
// component, sorted by index path.
func (p *evaluator) Eval(expr ast.Expr) ([]IndexedExpr, []SyntaxError) {
	switch e := expr.(type) {
	case *ast.VariableAccess:
		return p.evalVariable(e)
	case *ast.BoolLiteral:
		return singleton(BoolConstant(e.Value)), nil
	case *ast.IntLiteral:
		return singleton(IntConstant(e.Value)), nil
	case *ast.RealLiteral:
		return singleton(RealConstant(e.Value)), nil
	case *ast.RecordAccess:
		return p.evalRecordAccess(e)
	case *ast.IndexAccess:
		return p.evalIndexAccess(e)
	case *ast.UnaryExpr:
		return p.evalUnary(e)
	case *ast.BinaryExpr:
		return p.evalBinary(e)
	case *ast.IfExpr:
		return p.evalIf(e)
	case *ast.TupleExpr:
		return p.evalTuple(e)
	case *ast.ArrayExpr:
		return p.evalArray(e)
	case *ast.RecordExpr:
		return p.evalRecord(e)
	case *ast.CallExpr:
		return p.evalCall(e)
	case *ast.CondactExpr:
		return p.evalCondact(e)
	case *ast.FbyExpr:
		return nil, errorAt(Unsupported, e.Span(), "Fby operator not implemented")
	case *ast.SliceExpr:
		return nil, errorAt(Unsupported, e.Span(), "Array slices not supported")
	default:
		panic("unknown expression")
	}
}

// EvalConstInt demands a compile-time integer constant: a single scalar
// result, no pre dependencies, identical integer literals on both instants.
func (p *evaluator) EvalConstInt(expr ast.Expr) (*big.Int, []SyntaxError) {
	q := evaluator{p.ctx, nil, nil, true}
	//
	results, errs := q.Eval(expr)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if len(results) == 1 && len(results[0].Path) == 0 {
		if value, ok := results[0].Value.AsIntConstant(); ok {
			return value, nil
		}
	}
	//
	return nil, errorAt(ConstantRequired, expr.Span(), "expression must be a constant integer")
}

// ============================================================================
// Identifiers & projections
// ============================================================================

func (p *evaluator) evalVariable(e *ast.VariableAccess) ([]IndexedExpr, []SyntaxError) {
	id := NewIdent(e.Name)
	//
	if IsReservedName(e.Name) {
		return nil, errorAt(Redeclaration, e.Span(), "identifier %s uses a reserved prefix", e.Name)
	}
	//
	return p.evalIdent(id, e.Span())
}

// evalIdent resolves a (possibly aggregate) identifier against the value
// tables.
func (p *evaluator) evalIdent(id Ident, span source.Span) ([]IndexedExpr, []SyntaxError) {
	// A scalar leaf resolves to its constant value, or a variable reference.
	if datatype, ok := p.ctx.LookupValue(id); ok {
		if value, ok := p.ctx.LookupConst(id); ok {
			return singleton(value), nil
		}
		//
		if p.constOnly {
			return nil, errorAt(ConstantRequired, span, "expression must be a constant integer")
		}
		//
		return singleton(Variable(id, datatype)), nil
	}
	// An identifier with descendants expands into one item per suffix,
	// preserving the outer prefix.
	if suffixes, ok := p.ctx.Suffixes(id); ok {
		var results []IndexedExpr
		//
		for _, suffix := range suffixes {
			leaf, errs := p.evalIdent(id.PushAll(suffix), span)
			//
			if len(errs) > 0 {
				return nil, errs
			}
			//
			results = append(results, reindex(suffix, leaf)...)
		}
		//
		return sortByPath(results), nil
	}
	//
	return nil, errorAt(Undeclared, span, "identifier %s not declared", id)
}

func (p *evaluator) evalRecordAccess(e *ast.RecordAccess) ([]IndexedExpr, []SyntaxError) {
	results, errs := p.Eval(e.Arg)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	selected := selectStep(results, FieldIndex(e.Field))
	//
	if len(selected) == 0 {
		return nil, errorAt(TypeMismatch, e.Span(), "field %s does not exist", e.Field)
	}
	//
	return selected, nil
}

func (p *evaluator) evalIndexAccess(e *ast.IndexAccess) ([]IndexedExpr, []SyntaxError) {
	index, errs := p.EvalConstInt(e.Index)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if index.Sign() < 0 || !index.IsInt64() {
		return nil, errorAt(TypeMismatch, e.Span(), "invalid projection index %s", index)
	}
	//
	results, errs := p.Eval(e.Arg)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	selected := selectStep(results, PosIndex(index.Int64()))
	//
	if len(selected) == 0 {
		return nil, errorAt(TypeMismatch, e.Span(), "position %s does not exist", index)
	}
	//
	return selected, nil
}

// ============================================================================
// Operators
// ============================================================================

func (p *evaluator) evalUnary(e *ast.UnaryExpr) ([]IndexedExpr, []SyntaxError) {
	switch e.Op {
	case ast.PRE:
		return p.evalPre(e)
	case ast.CURRENT:
		return nil, errorAt(Unsupported, e.Span(), "Current operator not supported")
	}
	//
	args, errs := p.Eval(e.Arg)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	var constructor func(Expr) (Expr, error)
	//
	switch e.Op {
	case ast.NEG:
		constructor = Neg
	case ast.NOT:
		constructor = Not
	case ast.TO_INT:
		constructor = ToInt
	case ast.TO_REAL:
		constructor = ToReal
	default:
		panic("unknown unary operator")
	}
	// Componentwise application.
	results := make([]IndexedExpr, len(args))
	//
	for i, arg := range args {
		value, err := constructor(arg.Value)
		//
		if err != nil {
			return nil, errorAt(TypeMismatch, e.Span(), "%s", err)
		}
		//
		results[i] = IndexedExpr{arg.Path, value}
	}
	//
	return results, nil
}

// evalPre evaluates the argument of a pre and reads each component on the
// previous instant.  A component which is not already a plain variable is
// first abstracted into a fresh auxiliary variable, so that pre only ever
// applies to variables.
func (p *evaluator) evalPre(e *ast.UnaryExpr) ([]IndexedExpr, []SyntaxError) {
	if p.constOnly {
		return nil, errorAt(ConstantRequired, e.Span(), "expression must be a constant integer")
	}
	//
	args, errs := p.Eval(e.Arg)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	results := make([]IndexedExpr, len(args))
	//
	for i, arg := range args {
		target := arg.Value
		//
		if _, ok := target.IsVar(); !ok {
			target = p.abstract(arg.Value)
		}
		//
		value, err := Pre(target)
		//
		if err != nil {
			return nil, errorAt(TypeMismatch, e.Span(), "%s", err)
		}
		//
		results[i] = IndexedExpr{arg.Path, value}
	}
	//
	return results, nil
}

// abstract binds an expression to a fresh auxiliary variable, emitting the
// defining equation into the residue, and returns a reference to the
// variable.
func (p *evaluator) abstract(value Expr) Expr {
	id := p.fresh.FreshVar()
	//
	p.ctx.BindValue(id, value.Type)
	p.residue.NewVars = append(p.residue.NewVars, VarDef{id, value.Type, value})
	//
	return Variable(id, value.Type)
}

func (p *evaluator) evalBinary(e *ast.BinaryExpr) ([]IndexedExpr, []SyntaxError) {
	var constructor func(Expr, Expr) (Expr, error)
	//
	switch e.Op {
	case ast.WHEN:
		return nil, errorAt(Unsupported, e.Span(), "When operator not supported")
	case ast.CONCAT:
		return nil, errorAt(Unsupported, e.Span(), "Array concatenation not supported")
	case ast.ARROW:
		constructor = Arrow
	case ast.ADD:
		constructor = Add
	case ast.SUB:
		constructor = Sub
	case ast.MUL:
		constructor = Mul
	case ast.DIV:
		constructor = Div
	case ast.MOD:
		constructor = Mod
	case ast.EQ:
		constructor = Equals
	case ast.NEQ:
		constructor = NotEquals
	case ast.LT:
		constructor = LessThan
	case ast.LTEQ:
		constructor = LessThanEquals
	case ast.GT:
		constructor = GreaterThan
	case ast.GTEQ:
		constructor = GreaterThanEquals
	case ast.AND:
		constructor = And
	case ast.OR:
		constructor = Or
	case ast.XOR:
		constructor = Xor
	case ast.IMPLIES:
		constructor = Implies
	default:
		panic("unknown binary operator")
	}
	//
	lhs, errs := p.Eval(e.Lhs)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	rhs, errs := p.Eval(e.Rhs)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return applyBinary(constructor, lhs, rhs, e.Span())
}

func (p *evaluator) evalIf(e *ast.IfExpr) ([]IndexedExpr, []SyntaxError) {
	cond, errs := p.scalarBool(e.Cond, "conditional guard")
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	then, errs := p.Eval(e.Then)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	orelse, errs := p.Eval(e.Else)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return applyBinary(func(l Expr, r Expr) (Expr, error) {
		return Ite(cond, l, r)
	}, then, orelse, e.Span())
}

// scalarBool evaluates an expression and demands a single Boolean component.
func (p *evaluator) scalarBool(expr ast.Expr, what string) (Expr, []SyntaxError) {
	results, errs := p.Eval(expr)
	//
	if len(errs) > 0 {
		return Expr{}, errs
	}
	//
	if len(results) != 1 || len(results[0].Path) != 0 || !results[0].Value.Type.Equals(TheBoolType) {
		return Expr{}, errorAt(TypeMismatch, expr.Span(), "%s must be a scalar bool", what)
	}
	//
	return results[0].Value, nil
}

// ============================================================================
// Aggregates
// ============================================================================

func (p *evaluator) evalTuple(e *ast.TupleExpr) ([]IndexedExpr, []SyntaxError) {
	elems := flattenList(e.Elems)
	// A singleton list is just its element.
	if len(elems) == 1 {
		return p.Eval(elems[0])
	}
	//
	var results []IndexedExpr
	//
	for i, elem := range elems {
		sub, errs := p.Eval(elem)
		//
		if len(errs) > 0 {
			return nil, errs
		}
		//
		results = append(results, reindex([]Index{PosIndex(i)}, sub)...)
	}
	//
	return sortByPath(results), nil
}

// flattenList flattens nested expression lists into a single sequence.
func flattenList(elems []ast.Expr) []ast.Expr {
	var flat []ast.Expr
	//
	for _, e := range elems {
		if tuple, ok := e.(*ast.TupleExpr); ok {
			flat = append(flat, flattenList(tuple.Elems)...)
		} else {
			flat = append(flat, e)
		}
	}
	//
	return flat
}

func (p *evaluator) evalArray(e *ast.ArrayExpr) ([]IndexedExpr, []SyntaxError) {
	size, errs := p.EvalConstInt(e.Size)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if size.Sign() <= 0 || !size.IsInt64() {
		return nil, errorAt(ConstantRequired, e.Span(), "invalid array size %s", size)
	}
	//
	element, errs := p.Eval(e.Element)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	var results []IndexedExpr
	//
	for i := int64(0); i < size.Int64(); i++ {
		results = append(results, reindex([]Index{PosIndex(i)}, element)...)
	}
	//
	return sortByPath(results), nil
}

func (p *evaluator) evalRecord(e *ast.RecordExpr) ([]IndexedExpr, []SyntaxError) {
	leaves, ok := p.ctx.TypeLeaves(e.Name)
	//
	if !ok {
		return nil, errorAt(Undeclared, e.Span(), "%s is not a record type", e.Name)
	}
	//
	var results []IndexedExpr
	//
	for _, field := range e.Fields {
		sub, errs := p.Eval(field.Value)
		//
		if len(errs) > 0 {
			return nil, errs
		}
		//
		results = append(results, reindex([]Index{FieldIndex(field.Name)}, sub)...)
	}
	//
	results = sortByPath(results)
	// Pair elements against the record's leaf table, which is already sorted.
	if len(results) != len(leaves) {
		return nil, errorAt(TypeMismatch, e.Span(),
			"record %s expects %d components, got %d", e.Name, len(leaves), len(results))
	}
	//
	for i, leaf := range leaves {
		if ComparePath(results[i].Path, leaf.Path) != 0 {
			return nil, errorAt(TypeMismatch, e.Span(), "record %s has no component %s",
				e.Name, NewIndexedIdent(e.Name, results[i].Path))
		}
		//
		if !CheckType(results[i].Value.Type, leaf.Value) {
			return nil, errorAt(TypeMismatch, e.Span(), "record %s component %s expects %s, got %s",
				e.Name, NewIndexedIdent(e.Name, leaf.Path), leaf.Value, results[i].Value.Type)
		}
	}
	//
	return results, nil
}

// ============================================================================
// Helpers
// ============================================================================

func singleton(value Expr) []IndexedExpr {
	return []IndexedExpr{{nil, value}}
}

// reindex prepends a prefix to the path of every result.
func reindex(prefix []Index, results []IndexedExpr) []IndexedExpr {
	if len(prefix) == 0 {
		return results
	}
	//
	nresults := make([]IndexedExpr, len(results))
	//
	for i, r := range results {
		nresults[i] = IndexedExpr{slices.Concat(prefix, r.Path), r.Value}
	}
	//
	return nresults
}

// selectStep keeps the results whose path begins with a given step, stripping
// that step.
func selectStep(results []IndexedExpr, step Index) []IndexedExpr {
	var selected []IndexedExpr
	//
	for _, r := range results {
		if len(r.Path) > 0 && CompareIndex(r.Path[0], step) == 0 {
			selected = append(selected, IndexedExpr{r.Path[1:], r.Value})
		}
	}
	//
	return selected
}

func sortByPath(results []IndexedExpr) []IndexedExpr {
	slices.SortStableFunc(results, func(l IndexedExpr, r IndexedExpr) int {
		return ComparePath(l.Path, r.Path)
	})
	//
	return results
}

// applyBinary applies a smart constructor leaf-wise across two operand lists,
// whose indexes must align component-wise.
func applyBinary(constructor func(Expr, Expr) (Expr, error), lhs []IndexedExpr, rhs []IndexedExpr,
	span source.Span) ([]IndexedExpr, []SyntaxError) {
	//
	if len(lhs) != len(rhs) {
		return nil, errorAt(TypeMismatch, span, "operands have %d and %d components", len(lhs), len(rhs))
	}
	//
	results := make([]IndexedExpr, len(lhs))
	//
	for i := range lhs {
		if ComparePath(lhs[i].Path, rhs[i].Path) != 0 {
			return nil, errorAt(TypeMismatch, span, "operand components misaligned at %s",
				NewIndexedIdent("_", lhs[i].Path))
		}
		//
		value, err := constructor(lhs[i].Value, rhs[i].Value)
		//
		if err != nil {
			return nil, errorAt(TypeMismatch, span, "%s", err)
		}
		//
		results[i] = IndexedExpr{lhs[i].Path, value}
	}
	//
	return results, nil
}
