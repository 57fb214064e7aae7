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
	"strconv"
	"strings"
)

// FreshVarPrefix is the reserved base name from which auxiliary variables are
// manufactured (e.g. those abstracting the argument of a pre).  Identifiers
// with this base can never be declared by the user.
const FreshVarPrefix = "__abs"

// FreshCallSuffix is the reserved segment used to name the outputs of a given
// call site, as in "f.__returns.0".
const FreshCallSuffix = "__returns"

// Index is a single step in the index path of an identifier.  A step is either
// a named record field, a non-negative integer position (tuple or array), or an
// embedded identifier (used when binding the outputs of a call site).
type Index interface {
	// Produce a string representation of this index step.
	String() string
	// rank disambiguates the variants for ordering purposes.
	rank() int
}

// ============================================================================
// PosIndex
// ============================================================================

// PosIndex is a non-negative integer position within a tuple or array.
type PosIndex uint

func (p PosIndex) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

func (p PosIndex) rank() int { return 0 }

// ============================================================================
// FieldIndex
// ============================================================================

// FieldIndex is a named record field.
type FieldIndex string

func (p FieldIndex) String() string {
	return string(p)
}

func (p FieldIndex) rank() int { return 1 }

// ============================================================================
// IdentIndex
// ============================================================================

// IdentIndex is an identifier embedded as an index step.
type IdentIndex struct {
	Ident Ident
}

func (p IdentIndex) String() string {
	return p.Ident.String()
}

func (p IdentIndex) rank() int { return 2 }

// CompareIndex imposes a total order on index steps: integer positions come
// first (in numeric order), then named fields (in lexicographic order), then
// embedded identifiers (ordered by their canonical string form).
func CompareIndex(l Index, r Index) int {
	if c := l.rank() - r.rank(); c != 0 {
		return c
	}
	//
	switch lhs := l.(type) {
	case PosIndex:
		rhs := r.(PosIndex)
		//
		switch {
		case lhs < rhs:
			return -1
		case lhs > rhs:
			return 1
		default:
			return 0
		}
	case FieldIndex:
		return strings.Compare(string(lhs), string(r.(FieldIndex)))
	case IdentIndex:
		return CompareIdent(lhs.Ident, r.(IdentIndex).Ident)
	default:
		panic("unreachable")
	}
}

// ComparePath compares two index paths lexicographically, using CompareIndex
// on each step.  A strict prefix orders before its extensions.
func ComparePath(l []Index, r []Index) int {
	n := min(len(l), len(r))
	//
	for i := 0; i < n; i++ {
		if c := CompareIndex(l[i], r[i]); c != 0 {
			return c
		}
	}
	//
	return len(l) - len(r)
}

// ============================================================================
// Ident
// ============================================================================

// Ident is a path-structured name: a base symbol plus an ordered list of index
// steps.  Identifiers are immutable value objects; the canonical string form
// is interned at construction so that comparisons and map lookups reduce to
// string operations.
type Ident struct {
	base string
	path []Index
	// Interned canonical form.
	str string
}

// NewIdent constructs an identifier with an empty index path.
func NewIdent(base string) Ident {
	return Ident{base, nil, base}
}

// NewIndexedIdent constructs an identifier over a given index path.
func NewIndexedIdent(base string, path []Index) Ident {
	id := Ident{base, path, ""}
	id.str = id.render()
	//
	return id
}

// Base returns the base symbol of this identifier.
func (p Ident) Base() string {
	return p.base
}

// Path returns the index path of this identifier.  The returned slice must not
// be mutated.
func (p Ident) Path() []Index {
	return p.path
}

// Split decomposes this identifier into its base and its suffix path.
func (p Ident) Split() (string, []Index) {
	return p.base, p.path
}

// Push appends a single step to the back of the index path, yielding a new
// identifier.
func (p Ident) Push(step Index) Ident {
	npath := make([]Index, len(p.path)+1)
	copy(npath, p.path)
	npath[len(p.path)] = step
	//
	return NewIndexedIdent(p.base, npath)
}

// PushAll appends a sequence of steps to the back of the index path.
func (p Ident) PushAll(steps []Index) Ident {
	if len(steps) == 0 {
		return p
	}
	//
	npath := make([]Index, 0, len(p.path)+len(steps))
	npath = append(npath, p.path...)
	npath = append(npath, steps...)
	//
	return NewIndexedIdent(p.base, npath)
}

// Equals holds iff both the base and the full index path coincide.
func (p Ident) Equals(other Ident) bool {
	return p.str == other.str
}

// IsLeaf reports whether this identifier has an empty index path.
func (p Ident) IsLeaf() bool {
	return len(p.path) == 0
}

// String returns the interned canonical form: the base followed by each index
// step, separated by dots (e.g. "x.a.0").
func (p Ident) String() string {
	return p.str
}

func (p Ident) render() string {
	if len(p.path) == 0 {
		return p.base
	}
	//
	var builder strings.Builder
	//
	builder.WriteString(p.base)
	//
	for _, step := range p.path {
		builder.WriteString(".")
		builder.WriteString(step.String())
	}
	//
	return builder.String()
}

// CompareIdent imposes a total order on identifiers: by base symbol first,
// then lexicographically on the index path.
func CompareIdent(l Ident, r Ident) int {
	if c := strings.Compare(l.base, r.base); c != 0 {
		return c
	}
	//
	return ComparePath(l.path, r.path)
}

// IsReservedName reports whether a base symbol is reserved for
// elaborator-generated identifiers.  Only the fresh-variable and fresh-call
// prefixes are reserved; other double-underscore names remain available to
// the user.
func IsReservedName(base string) bool {
	return strings.HasPrefix(base, FreshVarPrefix) || strings.HasPrefix(base, FreshCallSuffix)
}

// ============================================================================
// Fresh identifier generation
// ============================================================================

// FreshGenerator manufactures the identifiers introduced by the elaborator:
// auxiliary variables ("__abs.k") and call-site output roots
// ("callee.__returns.k").  Both counters are strictly monotonic, so two runs
// over the same AST yield identical names.  A generator is created fresh for
// each node; it must never be shared between nodes.
type FreshGenerator struct {
	// Next auxiliary variable number.
	vars uint
	// Next call-site number, per callee.
	calls map[string]uint
}

// NewFreshGenerator constructs an empty generator.
func NewFreshGenerator() *FreshGenerator {
	return &FreshGenerator{0, make(map[string]uint)}
}

// FreshVar allocates the next auxiliary variable identifier.
func (p *FreshGenerator) FreshVar() Ident {
	id := NewIndexedIdent(FreshVarPrefix, []Index{PosIndex(p.vars)})
	p.vars++
	//
	return id
}

// FreshCall allocates the next call-site root for a given callee, as in
// "callee.__returns.k".
func (p *FreshGenerator) FreshCall(callee string) Ident {
	k := p.calls[callee]
	p.calls[callee] = k + 1
	//
	return NewIndexedIdent(callee, []Index{FieldIndex(FreshCallSuffix), PosIndex(k)})
}

// ============================================================================
// Indexed values
// ============================================================================

// Indexed pairs an index path with some value, most commonly a scalar type (a
// type leaf) or a flat expression (an evaluation result).
type Indexed[T any] struct {
	Path  []Index
	Value T
}

// String produces a human-readable rendering for diagnostics.
func (p Indexed[T]) String() string {
	return fmt.Sprintf("%s:%v", NewIndexedIdent("_", p.Path).String(), p.Value)
}
