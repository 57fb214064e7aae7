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
	"fmt"

	"github.com/consensys/go-lustre/pkg/util/source"
)

// ErrorKind classifies the failures the elaborator can report.  The taxonomy
// is closed; every fatal condition carries exactly one of these kinds.
type ErrorKind uint

// The error kinds.
const (
	// Redeclaration of an identifier, type, enumeration constant, or use of a
	// reserved prefix.
	Redeclaration ErrorKind = iota
	// Undeclared identifier or type.
	Undeclared
	// TypeMismatch covers shape mismatches, arity mismatches, non-Boolean
	// guards and non-subtype assignments.
	TypeMismatch
	// ConstantRequired marks a position demanding a compile-time integer
	// constant which received something else.
	ConstantRequired
	// Unsupported marks a language construct this elaborator rejects.
	Unsupported
	// ForwardReference marks a call to a node not yet elaborated.  The
	// top-level driver distinguishes callees declared later in the program
	// from callees never declared at all.
	ForwardReference
	// CyclicDependency marks an instantaneous dependency cycle.
	CyclicDependency
)

func (k ErrorKind) String() string {
	switch k {
	case Redeclaration:
		return "redeclaration"
	case Undeclared:
		return "undeclared"
	case TypeMismatch:
		return "type mismatch"
	case ConstantRequired:
		return "constant required"
	case Unsupported:
		return "not supported"
	case ForwardReference:
		return "forward reference"
	case CyclicDependency:
		return "cyclic dependency"
	default:
		panic("unknown error kind")
	}
}

// SyntaxError is a structured elaboration failure: a kind from the closed
// taxonomy, a human-readable message, and the source span the failure arose
// at.  ForwardReference errors additionally carry the callee name, so the
// top-level driver can inspect the remaining declarations.
type SyntaxError struct {
	Kind ErrorKind
	Span source.Span
	Msg  string
	// Callee is only set for ForwardReference errors.
	Callee string
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d:%s", p.Span.Start(), p.Span.End(), p.Msg)
}

// errorAt constructs a positioned error of a given kind.
func errorAt(kind ErrorKind, span source.Span, format string, args ...any) []SyntaxError {
	return []SyntaxError{{kind, span, fmt.Sprintf(format, args...), ""}}
}

// forwardReference constructs the distinguished callee-lookup failure.
func forwardReference(span source.Span, callee string) []SyntaxError {
	msg := fmt.Sprintf("node %s not yet defined", callee)
	return []SyntaxError{{ForwardReference, span, msg, callee}}
}

// Warning is a non-fatal diagnostic, also tied to a source span.  The only
// warning the elaborator emits is the unguarded-pre condition.
type Warning struct {
	Span source.Span
	Msg  string
}

func (p *Warning) String() string {
	return fmt.Sprintf("%d:%d:%s", p.Span.Start(), p.Span.End(), p.Msg)
}
