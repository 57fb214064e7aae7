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
	"math/big"
	"strings"
)

// Type is the closed set of types manipulated by the elaborator.  The scalar
// types (Bool, Int, Real, IntRange, Enum, Free) are the only types which
// survive into equations; the aggregate types (Record, Tuple, Array) exist
// purely for representation and are flattened away by the type expander.
type Type interface {
	// IsScalar reports whether this is a scalar type.  Aggregates answer
	// false.
	IsScalar() bool
	// Equals determines structural equality with another type.
	Equals(Type) bool
	// Produce a string representation of this type.
	String() string
}

// CheckType implements the subtype relation: it holds iff an expression of the
// first type can flow into a position declared with the second.  The relation
// is reflexive (structural equality); IntRange(a,b) ≤ Int always; and
// IntRange(a,b) ≤ IntRange(c,d) iff c ≤ a ∧ b ≤ d.  There are no other
// non-trivial cases and no implicit coercions.
func CheckType(sub Type, super Type) bool {
	if sub.Equals(super) {
		return true
	}
	//
	if lhs, ok := sub.(*IntRangeType); ok {
		switch rhs := super.(type) {
		case *IntType:
			return true
		case *IntRangeType:
			return rhs.Lo.Cmp(lhs.Lo) <= 0 && lhs.Hi.Cmp(rhs.Hi) <= 0
		}
	}
	//
	return false
}

// ============================================================================
// BoolType
// ============================================================================

// BoolType is the type of Booleans.
type BoolType struct{}

// TheBoolType is the unique Bool instance.
var TheBoolType = &BoolType{}

// IsScalar always holds for Bool.
func (p *BoolType) IsScalar() bool { return true }

// Equals determines structural equality with another type.
func (p *BoolType) Equals(other Type) bool {
	_, ok := other.(*BoolType)
	return ok
}

func (p *BoolType) String() string { return "bool" }

// ============================================================================
// IntType
// ============================================================================

// IntType is the type of unbounded mathematical integers.
type IntType struct{}

// TheIntType is the unique Int instance.
var TheIntType = &IntType{}

// IsScalar always holds for Int.
func (p *IntType) IsScalar() bool { return true }

// Equals determines structural equality with another type.
func (p *IntType) Equals(other Type) bool {
	_, ok := other.(*IntType)
	return ok
}

func (p *IntType) String() string { return "int" }

// ============================================================================
// RealType
// ============================================================================

// RealType is the type of reals.
type RealType struct{}

// TheRealType is the unique Real instance.
var TheRealType = &RealType{}

// IsScalar always holds for Real.
func (p *RealType) IsScalar() bool { return true }

// Equals determines structural equality with another type.
func (p *RealType) Equals(other Type) bool {
	_, ok := other.(*RealType)
	return ok
}

func (p *RealType) String() string { return "real" }

// ============================================================================
// IntRangeType
// ============================================================================

// IntRangeType is a subrange of the integers between two (arbitrary precision)
// bounds, both inclusive.
type IntRangeType struct {
	Lo *big.Int
	Hi *big.Int
}

// NewIntRangeType constructs a subrange type, checking the bound invariant.
func NewIntRangeType(lo *big.Int, hi *big.Int) *IntRangeType {
	if lo.Cmp(hi) > 0 {
		panic(fmt.Sprintf("invalid subrange [%s,%s]", lo, hi))
	}
	//
	return &IntRangeType{lo, hi}
}

// IsScalar always holds for subranges.
func (p *IntRangeType) IsScalar() bool { return true }

// Equals determines structural equality with another type.
func (p *IntRangeType) Equals(other Type) bool {
	if o, ok := other.(*IntRangeType); ok {
		return p.Lo.Cmp(o.Lo) == 0 && p.Hi.Cmp(o.Hi) == 0
	}
	//
	return false
}

func (p *IntRangeType) String() string {
	return fmt.Sprintf("subrange [%s,%s] of int", p.Lo, p.Hi)
}

// ============================================================================
// EnumType
// ============================================================================

// EnumType is an enumeration over a set of distinct constructor identifiers.
type EnumType struct {
	Cases []Ident
}

// NewEnumType constructs an enumeration type over the given constructors.
func NewEnumType(cases []Ident) *EnumType {
	return &EnumType{cases}
}

// IsScalar always holds for enumerations.
func (p *EnumType) IsScalar() bool { return true }

// Equals determines structural equality with another type.
func (p *EnumType) Equals(other Type) bool {
	o, ok := other.(*EnumType)
	//
	if !ok || len(p.Cases) != len(o.Cases) {
		return false
	}
	//
	for i := range p.Cases {
		if !p.Cases[i].Equals(o.Cases[i]) {
			return false
		}
	}
	//
	return true
}

func (p *EnumType) String() string {
	names := make([]string, len(p.Cases))
	for i, c := range p.Cases {
		names[i] = c.String()
	}
	//
	return fmt.Sprintf("enum { %s }", strings.Join(names, ", "))
}

// ============================================================================
// FreeType
// ============================================================================

// FreeType is an abstract (uninterpreted) type introduced by a free type
// declaration.
type FreeType struct {
	Name string
}

// IsScalar always holds for free types.
func (p *FreeType) IsScalar() bool { return true }

// Equals determines structural equality with another type.
func (p *FreeType) Equals(other Type) bool {
	if o, ok := other.(*FreeType); ok {
		return p.Name == o.Name
	}
	//
	return false
}

func (p *FreeType) String() string { return p.Name }

// ============================================================================
// RecordType
// ============================================================================

// RecordField is a single named field of a record type.
type RecordField struct {
	Name string
	Type Type
}

// RecordType is a record over an ordered set of named fields.  Records are
// representation-only; they never survive past the type expander.
type RecordType struct {
	Fields []RecordField
}

// IsScalar never holds for records.
func (p *RecordType) IsScalar() bool { return false }

// Equals determines structural equality with another type.
func (p *RecordType) Equals(other Type) bool {
	o, ok := other.(*RecordType)
	//
	if !ok || len(p.Fields) != len(o.Fields) {
		return false
	}
	//
	for i := range p.Fields {
		if p.Fields[i].Name != o.Fields[i].Name || !p.Fields[i].Type.Equals(o.Fields[i].Type) {
			return false
		}
	}
	//
	return true
}

func (p *RecordType) String() string {
	fields := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	//
	return fmt.Sprintf("struct { %s }", strings.Join(fields, "; "))
}

// ============================================================================
// TupleType
// ============================================================================

// TupleType is a positional aggregate over a sequence of component types.
// Tuples are representation-only; they never survive past the type expander.
type TupleType struct {
	Elems []Type
}

// IsScalar never holds for tuples.
func (p *TupleType) IsScalar() bool { return false }

// Equals determines structural equality with another type.
func (p *TupleType) Equals(other Type) bool {
	o, ok := other.(*TupleType)
	//
	if !ok || len(p.Elems) != len(o.Elems) {
		return false
	}
	//
	for i := range p.Elems {
		if !p.Elems[i].Equals(o.Elems[i]) {
			return false
		}
	}
	//
	return true
}

func (p *TupleType) String() string {
	elems := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		elems[i] = e.String()
	}
	//
	return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
}

// ============================================================================
// ArrayType
// ============================================================================

// ArrayType is a fixed-size array over an element type, with size at least
// one.  Arrays are representation-only; they never survive past the type
// expander.
type ArrayType struct {
	Element Type
	Size    uint
}

// NewArrayType constructs an array type, checking the size invariant.
func NewArrayType(element Type, size uint) *ArrayType {
	if size == 0 {
		panic("invalid array size")
	}
	//
	return &ArrayType{element, size}
}

// IsScalar never holds for arrays.
func (p *ArrayType) IsScalar() bool { return false }

// Equals determines structural equality with another type.
func (p *ArrayType) Equals(other Type) bool {
	if o, ok := other.(*ArrayType); ok {
		return p.Size == o.Size && p.Element.Equals(o.Element)
	}
	//
	return false
}

func (p *ArrayType) String() string {
	return fmt.Sprintf("%s^%d", p.Element, p.Size)
}
