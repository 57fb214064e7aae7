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
	"testing"
)

func rng(lo int64, hi int64) *IntRangeType {
	return NewIntRangeType(big.NewInt(lo), big.NewInt(hi))
}

func TestCheckTypeReflexive(t *testing.T) {
	types := []Type{
		TheBoolType, TheIntType, TheRealType, rng(-3, 7),
		&FreeType{"T"},
		NewEnumType([]Ident{NewIdent("red"), NewIdent("green")}),
	}
	//
	for _, typ := range types {
		if !CheckType(typ, typ) {
			t.Errorf("%s not a subtype of itself", typ)
		}
	}
}

func TestCheckTypeRanges(t *testing.T) {
	tests := []struct {
		sub, super Type
		expected   bool
	}{
		// Every subrange flows into int.
		{rng(0, 10), TheIntType, true},
		// Nested ranges.
		{rng(1, 5), rng(0, 10), true},
		{rng(0, 10), rng(1, 5), false},
		{rng(-5, 5), rng(0, 10), false},
		// Never the other way.
		{TheIntType, rng(0, 10), false},
		// No coercion across kinds.
		{TheIntType, TheRealType, false},
		{TheRealType, TheIntType, false},
		{TheBoolType, TheIntType, false},
	}
	//
	for _, test := range tests {
		if CheckType(test.sub, test.super) != test.expected {
			t.Errorf("CheckType(%s,%s) != %t", test.sub, test.super, test.expected)
		}
	}
}

func TestStructuralEquality(t *testing.T) {
	left := &RecordType{[]RecordField{{"a", TheIntType}, {"b", TheBoolType}}}
	right := &RecordType{[]RecordField{{"a", TheIntType}, {"b", TheBoolType}}}
	//
	if !left.Equals(right) {
		t.Errorf("structurally equal records compare unequal")
	}
	//
	if left.Equals(&RecordType{[]RecordField{{"a", TheIntType}}}) {
		t.Errorf("records of different shape compare equal")
	}
	//
	if !NewArrayType(TheIntType, 3).Equals(NewArrayType(TheIntType, 3)) {
		t.Errorf("equal arrays compare unequal")
	}
	//
	if NewArrayType(TheIntType, 3).Equals(NewArrayType(TheIntType, 4)) {
		t.Errorf("arrays of different size compare equal")
	}
}

func TestAggregatesAreNotScalar(t *testing.T) {
	aggregates := []Type{
		&RecordType{[]RecordField{{"a", TheIntType}}},
		&TupleType{[]Type{TheIntType, TheBoolType}},
		NewArrayType(TheBoolType, 2),
	}
	//
	for _, typ := range aggregates {
		if typ.IsScalar() {
			t.Errorf("%s claims to be scalar", typ)
		}
	}
}
