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
package ast

import (
	"github.com/consensys/go-lustre/pkg/util/source"
)

// TypeExpr is a source-level type expression, prior to expansion into scalar
// leaves.
type TypeExpr interface {
	Node
}

// ============================================================================
// Primitive types
// ============================================================================

// BoolType is the Boolean type.
type BoolType struct {
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *BoolType) Span() source.Span { return p.NodeSpan }

// IntType is the unbounded integer type.
type IntType struct {
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *IntType) Span() source.Span { return p.NodeSpan }

// RealType is the real type.
type RealType struct {
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *RealType) Span() source.Span { return p.NodeSpan }

// ============================================================================
// SubrangeType
// ============================================================================

// SubrangeType is an integer subrange with inclusive bound expressions, both
// of which must evaluate to compile-time integer constants.
type SubrangeType struct {
	Lo Expr
	Hi Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *SubrangeType) Span() source.Span { return p.NodeSpan }

// ============================================================================
// EnumType
// ============================================================================

// EnumType is an enumeration over named constructors.
type EnumType struct {
	Cases []string
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *EnumType) Span() source.Span { return p.NodeSpan }

// ============================================================================
// UserType
// ============================================================================

// UserType is a reference to a declared type by name.
type UserType struct {
	Name string
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *UserType) Span() source.Span { return p.NodeSpan }

// ============================================================================
// RecordType
// ============================================================================

// TypeField is one named field of a record type expression.
type TypeField struct {
	Name string
	Type TypeExpr
}

// RecordType is a record over named fields.
type RecordType struct {
	Fields []TypeField
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *RecordType) Span() source.Span { return p.NodeSpan }

// ============================================================================
// TupleType
// ============================================================================

// TupleType is a positional aggregate over component types.
type TupleType struct {
	Elems []TypeExpr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *TupleType) Span() source.Span { return p.NodeSpan }

// ============================================================================
// ArrayType
// ============================================================================

// ArrayType is a fixed-size array whose size expression must evaluate to a
// positive compile-time integer constant.
type ArrayType struct {
	Element TypeExpr
	Size    Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *ArrayType) Span() source.Span { return p.NodeSpan }
