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
	"testing"
)

func TestIdentString(t *testing.T) {
	tests := []struct {
		id       Ident
		expected string
	}{
		{NewIdent("x"), "x"},
		{NewIdent("x").Push(FieldIndex("a")), "x.a"},
		{NewIdent("x").Push(PosIndex(0)).Push(FieldIndex("f")), "x.0.f"},
		{NewIdent("f").Push(FieldIndex("__returns")).Push(PosIndex(1)), "f.__returns.1"},
	}
	//
	for _, test := range tests {
		if test.id.String() != test.expected {
			t.Errorf("expected %s, got %s", test.expected, test.id.String())
		}
	}
}

func TestIdentPushImmutable(t *testing.T) {
	base := NewIdent("x").Push(FieldIndex("a"))
	one := base.Push(PosIndex(0))
	two := base.Push(PosIndex(1))
	//
	if one.String() != "x.a.0" || two.String() != "x.a.1" {
		t.Errorf("push mutated its receiver: %s / %s", one, two)
	}
	//
	if !base.Equals(NewIdent("x").Push(FieldIndex("a"))) {
		t.Errorf("base changed: %s", base)
	}
}

func TestIndexOrder(t *testing.T) {
	// Integer positions order before named fields, which order before
	// embedded identifiers.
	tests := []struct {
		l, r Index
		sign int
	}{
		{PosIndex(0), PosIndex(1), -1},
		{PosIndex(2), PosIndex(2), 0},
		{PosIndex(9), FieldIndex("a"), -1},
		{FieldIndex("a"), FieldIndex("b"), -1},
		{FieldIndex("z"), IdentIndex{NewIdent("a")}, -1},
		{IdentIndex{NewIdent("a")}, IdentIndex{NewIdent("b")}, -1},
	}
	//
	for _, test := range tests {
		c := CompareIndex(test.l, test.r)
		//
		if (c < 0) != (test.sign < 0) || (c == 0) != (test.sign == 0) {
			t.Errorf("CompareIndex(%s,%s) = %d, expected sign %d", test.l, test.r, c, test.sign)
		}
	}
}

func TestPathOrderPrefixFirst(t *testing.T) {
	shorter := []Index{FieldIndex("a")}
	longer := []Index{FieldIndex("a"), PosIndex(0)}
	//
	if ComparePath(shorter, longer) >= 0 {
		t.Errorf("prefix should order before its extension")
	}
}

func TestFreshVarGenerator(t *testing.T) {
	gen := NewFreshGenerator()
	//
	if id := gen.FreshVar(); id.String() != "__abs.0" {
		t.Errorf("expected __abs.0, got %s", id)
	}
	//
	if id := gen.FreshVar(); id.String() != "__abs.1" {
		t.Errorf("expected __abs.1, got %s", id)
	}
}

func TestFreshCallGeneratorPerCallee(t *testing.T) {
	gen := NewFreshGenerator()
	//
	if id := gen.FreshCall("f"); id.String() != "f.__returns.0" {
		t.Errorf("unexpected %s", id)
	}
	//
	if id := gen.FreshCall("g"); id.String() != "g.__returns.0" {
		t.Errorf("unexpected %s", id)
	}
	//
	if id := gen.FreshCall("f"); id.String() != "f.__returns.1" {
		t.Errorf("unexpected %s", id)
	}
}

func TestReservedNames(t *testing.T) {
	if !IsReservedName("__abs") || !IsReservedName("__returns") {
		t.Errorf("reserved prefixes not recognised")
	}
	//
	if IsReservedName("x") || IsReservedName("_x") {
		t.Errorf("user names wrongly reserved")
	}
	// Only the two generated prefixes are reserved; other double-underscore
	// names are legal user identifiers.
	if IsReservedName("__internal") || IsReservedName("__ret") {
		t.Errorf("double underscore alone should not be reserved")
	}
}
