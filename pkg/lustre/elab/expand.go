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
)

// typeExpander folds a (possibly nested) source type expression into the flat
// list of its scalar leaves.  Bound and size expressions are evaluated through
// the expression evaluator in constants-only mode.
type typeExpander struct {
	ctx *Context
	// constant evaluates an expression demanded to be a compile-time integer.
	constant func(ast.Expr) (*big.Int, []SyntaxError)
}

// Expand folds a source type expression, applying one leaf per scalar
// component.  Leaves are returned sorted by index path.
func (p *typeExpander) Expand(texpr ast.TypeExpr) ([]TypeLeaf, []SyntaxError) {
	leaves, errs := p.expand(nil, texpr)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	// Sort by index for determinism.
	slices.SortStableFunc(leaves, func(l TypeLeaf, r TypeLeaf) int {
		return ComparePath(l.Path, r.Path)
	})
	//
	return leaves, nil
}

func (p *typeExpander) expand(prefix []Index, texpr ast.TypeExpr) ([]TypeLeaf, []SyntaxError) {
	switch t := texpr.(type) {
	case *ast.BoolType:
		return []TypeLeaf{{prefix, TheBoolType}}, nil
	case *ast.IntType:
		return []TypeLeaf{{prefix, TheIntType}}, nil
	case *ast.RealType:
		return []TypeLeaf{{prefix, TheRealType}}, nil
	case *ast.SubrangeType:
		return p.expandSubrange(prefix, t)
	case *ast.EnumType:
		return p.expandEnum(prefix, t)
	case *ast.UserType:
		return p.expandUserType(prefix, t)
	case *ast.RecordType:
		return p.expandRecord(prefix, t)
	case *ast.TupleType:
		return p.expandTuple(prefix, t)
	case *ast.ArrayType:
		return p.expandArray(prefix, t)
	default:
		panic("unknown type expression")
	}
}

func (p *typeExpander) expandSubrange(prefix []Index, t *ast.SubrangeType) ([]TypeLeaf, []SyntaxError) {
	lo, errs := p.constant(t.Lo)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	hi, errs := p.constant(t.Hi)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if lo.Cmp(hi) > 0 {
		return nil, errorAt(TypeMismatch, t.Span(), "empty subrange [%s,%s]", lo, hi)
	}
	//
	return []TypeLeaf{{prefix, &IntRangeType{lo, hi}}}, nil
}

func (p *typeExpander) expandEnum(prefix []Index, t *ast.EnumType) ([]TypeLeaf, []SyntaxError) {
	cases := make([]Ident, len(t.Cases))
	for i, c := range t.Cases {
		cases[i] = NewIdent(c)
	}
	//
	return []TypeLeaf{{prefix, NewEnumType(cases)}}, nil
}

func (p *typeExpander) expandUserType(prefix []Index, t *ast.UserType) ([]TypeLeaf, []SyntaxError) {
	// A scalar alias contributes a single leaf.
	if scalar, ok := p.ctx.ScalarAlias(t.Name); ok {
		return []TypeLeaf{{prefix, scalar}}, nil
	}
	// An aggregate alias replays each of its leaves at the current prefix.
	if leaves, ok := p.ctx.TypeLeaves(t.Name); ok {
		nleaves := make([]TypeLeaf, len(leaves))
		//
		for i, leaf := range leaves {
			path := slices.Concat(prefix, leaf.Path)
			nleaves[i] = TypeLeaf{path, leaf.Value}
		}
		//
		return nleaves, nil
	}
	// A free type contributes an abstract leaf.
	if p.ctx.IsFreeType(t.Name) {
		return []TypeLeaf{{prefix, &FreeType{t.Name}}}, nil
	}
	//
	return nil, errorAt(Undeclared, t.Span(), "type %s not declared", t.Name)
}

func (p *typeExpander) expandRecord(prefix []Index, t *ast.RecordType) ([]TypeLeaf, []SyntaxError) {
	var leaves []TypeLeaf
	//
	for _, field := range t.Fields {
		path := slices.Concat(prefix, []Index{FieldIndex(field.Name)})
		//
		fleaves, errs := p.expand(path, field.Type)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		leaves = append(leaves, fleaves...)
	}
	//
	return leaves, nil
}

func (p *typeExpander) expandTuple(prefix []Index, t *ast.TupleType) ([]TypeLeaf, []SyntaxError) {
	var leaves []TypeLeaf
	//
	for i, elem := range t.Elems {
		path := slices.Concat(prefix, []Index{PosIndex(i)})
		//
		eleaves, errs := p.expand(path, elem)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		leaves = append(leaves, eleaves...)
	}
	//
	return leaves, nil
}

func (p *typeExpander) expandArray(prefix []Index, t *ast.ArrayType) ([]TypeLeaf, []SyntaxError) {
	size, errs := p.constant(t.Size)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if size.Sign() <= 0 || !size.IsInt64() {
		return nil, errorAt(ConstantRequired, t.Span(), "invalid array size %s", size)
	}
	//
	var leaves []TypeLeaf
	//
	for i := int64(0); i < size.Int64(); i++ {
		path := slices.Concat(prefix, []Index{PosIndex(i)})
		//
		eleaves, errs := p.expand(path, t.Element)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		leaves = append(leaves, eleaves...)
	}
	//
	return leaves, nil
}
