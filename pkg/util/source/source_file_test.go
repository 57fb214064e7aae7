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
package source

import (
	"testing"
)

func TestLineColumn(t *testing.T) {
	srcfile := NewSourceFile("test", []byte("ab\ncde\n\nf"))
	//
	tests := []struct {
		index, line, column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline belongs to its line
		{3, 2, 1},
		{5, 2, 3},
		{7, 3, 1}, // empty line
		{8, 4, 1},
		// Beyond the end of the file maps onto the last line.
		{100, 4, 93},
	}
	//
	for _, test := range tests {
		line, column := srcfile.LineColumn(test.index)
		//
		if line != test.line || column != test.column {
			t.Errorf("LineColumn(%d) = %d:%d, expected %d:%d",
				test.index, line, column, test.line, test.column)
		}
	}
}

func TestFindFirstEnclosingLine(t *testing.T) {
	srcfile := NewSourceFile("test", []byte("ab\ncde\nf"))
	//
	line := srcfile.FindFirstEnclosingLine(NewSpan(4, 5))
	//
	if line.Number() != 2 || line.String() != "cde" {
		t.Errorf("unexpected line %d %q", line.Number(), line.String())
	}
	// The newline is excluded from the line's text.
	if line.Start() != 3 || line.Length() != 3 {
		t.Errorf("unexpected extent %d:%d", line.Start(), line.Length())
	}
	// A multi-line span reports its first line.
	if l := srcfile.FindFirstEnclosingLine(NewSpan(0, 8)); l.Number() != 1 {
		t.Errorf("expected line 1, got %d", l.Number())
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	srcfile := NewSourceFile("test.lus", []byte("ab\ncde\n"))
	//
	err := srcfile.SyntaxError(NewSpan(4, 6), "boom")
	//
	if err.Error() != "test.lus:2:2:boom" {
		t.Errorf("unexpected rendering %q", err.Error())
	}
	//
	enclosingLine := err.FirstEnclosingLine()
	if enclosingLine.Number() != 2 {
		t.Errorf("unexpected enclosing line")
	}
}

func TestSpans(t *testing.T) {
	span := NewSpan(2, 5)
	//
	if span.Length() != 3 {
		t.Errorf("unexpected length %d", span.Length())
	}
	//
	if !span.Contains(2) || !span.Contains(4) || span.Contains(5) {
		t.Errorf("containment check broken")
	}
	//
	joined := span.Join(NewSpan(4, 9))
	//
	if joined.Start() != 2 || joined.End() != 9 {
		t.Errorf("unexpected join %d:%d", joined.Start(), joined.End())
	}
}
