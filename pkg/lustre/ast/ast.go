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

// Node is anything which occupies a span of some original source file.  Every
// construct of the abstract syntax tree implements this, so that diagnostics
// can always point back at the offending text.
type Node interface {
	// Span returns the span of this node in its originating source file.
	Span() source.Span
}

// Program is a parsed program: a sequence of top-level declarations in source
// order.
type Program struct {
	Declarations []Declaration
}

// Declaration is a top-level declaration: a type declaration, a constant
// declaration, or a node declaration.
type Declaration interface {
	Node
	// Name returns the declared name.
	Name() string
}

// ============================================================================
// TypeDecl
// ============================================================================

// TypeDecl declares a named type.  When Body is nil the declaration introduces
// a free (abstract) type; otherwise it aliases the given type expression.
type TypeDecl struct {
	TypeName string
	// Body is nil for a free type.
	Body TypeExpr
	//
	NodeSpan source.Span
}

// Name returns the declared name.
func (p *TypeDecl) Name() string { return p.TypeName }

// Span returns the span of this node in its originating source file.
func (p *TypeDecl) Span() source.Span { return p.NodeSpan }

// ============================================================================
// ConstDecl
// ============================================================================

// ConstDecl declares a named constant.  All three source forms are captured:
// free constants (a declared type but no value), untyped constants (a value
// but no declared type) and typed constants (both).
type ConstDecl struct {
	ConstName string
	// Type is nil for an untyped constant.
	Type TypeExpr
	// Value is nil for a free constant.
	Value Expr
	//
	NodeSpan source.Span
}

// Name returns the declared name.
func (p *ConstDecl) Name() string { return p.ConstName }

// Span returns the span of this node in its originating source file.
func (p *ConstDecl) Span() source.Span { return p.NodeSpan }

// ============================================================================
// NodeDecl
// ============================================================================

// VarGroup declares one or more signals sharing a type, as in "x, y : int".
// For inputs, Const marks a constant-input group and Clock (when non-nil)
// records a clock annotation; the elaborator rejects clocked signals.
type VarGroup struct {
	Names []string
	Type  TypeExpr
	Const bool
	// Clock is non-nil when the group carries a "when" annotation.
	Clock Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *VarGroup) Span() source.Span { return p.NodeSpan }

// NodeDecl declares a node: its signature, contract, locals and body.
// Params captures the static parameter list of the source syntax; it must be
// empty, since parametric nodes are rejected.
type NodeDecl struct {
	NodeName string
	Params   []string
	Inputs   []VarGroup
	Outputs  []VarGroup
	// Contract assumptions and guarantees.
	Requires []Expr
	Ensures  []Expr
	// Local signal and constant declarations.
	Locals      []VarGroup
	LocalConsts []ConstDecl
	// Body statements, in source order.
	Body []Statement
	//
	NodeSpan source.Span
}

// Name returns the declared name.
func (p *NodeDecl) Name() string { return p.NodeName }

// Span returns the span of this node in its originating source file.
func (p *NodeDecl) Span() source.Span { return p.NodeSpan }

// ============================================================================
// Statements
// ============================================================================

// Statement is a single statement of a node body.
type Statement interface {
	Node
}

// Equation defines one or more left-hand-side signals by a right-hand-side
// expression, as in "x, y = f(z)".
type Equation struct {
	// Left pattern: one expression per defined signal, each an identifier
	// possibly carrying projections.
	Lhs []Expr
	Rhs Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *Equation) Span() source.Span { return p.NodeSpan }

// Assert introduces an assumption over the node's signals.
type Assert struct {
	Arg Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *Assert) Span() source.Span { return p.NodeSpan }

// Property annotates a Boolean signal or expression as a proof obligation.
type Property struct {
	Arg Expr
	//
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *Property) Span() source.Span { return p.NodeSpan }

// Main marks the enclosing node as the verification entry point.
type Main struct {
	NodeSpan source.Span
}

// Span returns the span of this node in its originating source file.
func (p *Main) Span() source.Span { return p.NodeSpan }
