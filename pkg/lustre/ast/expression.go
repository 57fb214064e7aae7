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
	"math/big"

	"github.com/consensys/go-lustre/pkg/util/source"
)

// Expr is a source-level expression.  The variant set is closed; the
// elaborator dispatches exhaustively over it, so adding a form here requires
// touching every handler.
type Expr interface {
	Node
}

// ============================================================================
// Atoms
// ============================================================================

// VariableAccess is a reference to a named signal, constant or enumeration
// constructor.
type VariableAccess struct {
	Name string
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *VariableAccess) Span() source.Span { return p.NodeSpan }

// BoolLiteral is a Boolean literal.
type BoolLiteral struct {
	Value bool
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *BoolLiteral) Span() source.Span { return p.NodeSpan }

// IntLiteral is an integer literal of arbitrary precision.
type IntLiteral struct {
	Value *big.Int
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *IntLiteral) Span() source.Span { return p.NodeSpan }

// RealLiteral is a real literal of arbitrary precision.
type RealLiteral struct {
	Value *big.Rat
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *RealLiteral) Span() source.Span { return p.NodeSpan }

// ============================================================================
// Projections
// ============================================================================

// RecordAccess projects a named field out of a record-valued expression.
type RecordAccess struct {
	Arg   Expr
	Field string
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *RecordAccess) Span() source.Span { return p.NodeSpan }

// IndexAccess projects a position out of a tuple- or array-valued expression.
// The index must evaluate to a compile-time integer constant.
type IndexAccess struct {
	Arg   Expr
	Index Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *IndexAccess) Span() source.Span { return p.NodeSpan }

// ============================================================================
// Operators
// ============================================================================

// UnaryOp identifies a source-level unary operator.
type UnaryOp uint

// The unary operators.
const (
	NEG UnaryOp = iota
	NOT
	PRE
	CURRENT
	TO_INT
	TO_REAL
)

// UnaryExpr applies a unary operator.
type UnaryExpr struct {
	Op  UnaryOp
	Arg Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *UnaryExpr) Span() source.Span { return p.NodeSpan }

// BinaryOp identifies a source-level binary operator.
type BinaryOp uint

// The binary operators.
const (
	ADD BinaryOp = iota
	SUB
	MUL
	DIV
	MOD
	EQ
	NEQ
	LT
	LTEQ
	GT
	GTEQ
	AND
	OR
	XOR
	IMPLIES
	ARROW
	WHEN
	CONCAT
)

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Op  BinaryOp
	Lhs Expr
	Rhs Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *BinaryExpr) Span() source.Span { return p.NodeSpan }

// IfExpr is a conditional expression.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *IfExpr) Span() source.Span { return p.NodeSpan }

// ============================================================================
// Aggregates
// ============================================================================

// TupleExpr aggregates a sequence of expressions positionally.  Expression
// lists are represented the same way; nested lists flatten during
// elaboration.
type TupleExpr struct {
	Elems []Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *TupleExpr) Span() source.Span { return p.NodeSpan }

// ArrayExpr replicates an element expression a constant number of times, as
// in "e ^ n".
type ArrayExpr struct {
	Element Expr
	Size    Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *ArrayExpr) Span() source.Span { return p.NodeSpan }

// FieldInit initialises one field of a record constructor.
type FieldInit struct {
	Name  string
	Value Expr
}

// RecordExpr constructs a value of a named record type.
type RecordExpr struct {
	Name   string
	Fields []FieldInit
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *RecordExpr) Span() source.Span { return p.NodeSpan }

// ============================================================================
// Calls
// ============================================================================

// CallExpr invokes a node.
type CallExpr struct {
	Name string
	Args []Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *CallExpr) Span() source.Span { return p.NodeSpan }

// CondactExpr invokes a node under a Boolean activation condition, with
// default values for the initial inactive instants.
type CondactExpr struct {
	Cond     Expr
	Name     string
	Args     []Expr
	Defaults []Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *CondactExpr) Span() source.Span { return p.NodeSpan }

// ============================================================================
// Rejected forms
// ============================================================================

// FbyExpr is the followed-by operator.  It parses but the elaborator rejects
// it.
type FbyExpr struct {
	Args []Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *FbyExpr) Span() source.Span { return p.NodeSpan }

// SliceExpr is an array slice.  It parses but the elaborator rejects it.
type SliceExpr struct {
	Arg Expr
	Lo  Expr
	Hi  Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *SliceExpr) Span() source.Span { return p.NodeSpan }
