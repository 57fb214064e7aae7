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
	"fmt"
	"os"
	"sort"
)

// ReadFiles reads a given set of source files, or produces an error.
func ReadFiles(filenames ...string) ([]File, error) {
	files := make([]File, len(filenames))
	//
	for i, n := range filenames {
		bytes, err := os.ReadFile(n)
		if err != nil {
			return nil, err
		}
		//
		files[i] = *NewSourceFile(n, bytes)
	}
	//
	return files, nil
}

// File represents a given source file (typically stored on disk).  The
// starting offset of every line is computed once at construction, so that
// mapping an offset to its line and column (as every reported diagnostic
// does) is a binary search rather than a scan of the file.
type File struct {
	// File name for this source file.
	filename string
	// Contents of this file.
	contents []rune
	// Offset at which each line starts, in ascending order.  Always
	// non-empty, since even an empty file has one (empty) line.
	lines []int
}

// NewSourceFile constructs a new source file from a given byte array.
func NewSourceFile(filename string, bytes []byte) *File {
	// Convert bytes into runes for easier parsing
	contents := []rune(string(bytes))
	// Build the line table.
	lines := []int{0}
	//
	for i, c := range contents {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	//
	return &File{filename, contents, lines}
}

// Filename returns the filename associated with this source file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the contents of this source file.
func (s *File) Contents() []rune {
	return s.contents
}

// SyntaxError constructs a syntax error over a given span of this file with a
// given message.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// LineColumn converts an offset into a line and column, both counting from 1.
// An offset beyond the end of the file maps onto the last line.
func (s *File) LineColumn(index int) (int, int) {
	n := s.lineIndexOf(index)
	//
	return n + 1, index - s.lines[n] + 1
}

// FindFirstEnclosingLine determines the first line in this source file which
// encloses the start of a span.  Observe that, if the position is beyond the
// bounds of the source file then the last physical line is returned.  Also,
// the returned line is not guaranteed to enclose the entire span, as these
// can cross multiple lines.
func (s *File) FindFirstEnclosingLine(span Span) Line {
	return s.line(s.lineIndexOf(span.Start()))
}

// lineIndexOf determines the (zero-based) number of the line enclosing a
// given offset, i.e. the greatest line whose start does not exceed it.
func (s *File) lineIndexOf(index int) int {
	n := sort.Search(len(s.lines), func(i int) bool {
		return s.lines[i] > index
	})
	//
	return n - 1
}

// line constructs the nth (zero-based) line, excluding its terminating
// newline.
func (s *File) line(n int) Line {
	start := s.lines[n]
	end := len(s.contents)
	//
	if n+1 < len(s.lines) {
		// Exclude the newline itself.
		end = s.lines[n+1] - 1
	}
	//
	return Line{s.contents, NewSpan(start, end), n + 1}
}

// Line provides information about a given line within the original string.
// This includes the line number (counting from 1), and the span of the line
// within the original string.
type Line struct {
	// Original text
	text []rune
	// Span within original text of this line.
	span Span
	// Line number of this line (counting from 1).
	number int
}

// Get the string representing this line.
func (p *Line) String() string {
	// Extract runes representing line
	runes := p.text[p.span.start:p.span.end]
	// Convert into string
	return string(runes)
}

// Number gets the line number of this line, where the first line in a string
// has line number 1.
func (p *Line) Number() int {
	return p.number
}

// Start returns the starting index of this line in the original string.
func (p *Line) Start() int {
	return p.span.start
}

// Length returns the number of characters in this line.
func (p *Line) Length() int {
	return p.span.Length()
}

// SyntaxError is a structured error which retains the index into the original
// string where an error occurred, along with an error message.
type SyntaxError struct {
	srcfile *File
	// Byte index into string being parsed where error arose.
	span Span
	// Error message being reported
	msg string
}

// SourceFile returns the underlying source file that this syntax error covers.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface, reporting the position in
// line:column form.
func (p *SyntaxError) Error() string {
	line, column := p.srcfile.LineColumn(p.span.start)
	//
	return fmt.Sprintf("%s:%d:%d:%s", p.srcfile.filename, line, column, p.msg)
}

// FirstEnclosingLine determines the first line in this source file to which
// this error is associated.
func (p *SyntaxError) FirstEnclosingLine() Line {
	return p.srcfile.FindFirstEnclosingLine(p.span)
}
