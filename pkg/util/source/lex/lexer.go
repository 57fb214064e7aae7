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
package lex

import "github.com/consensys/go-lustre/pkg/util/source"

// Token associates a piece of information with a given range of characters in
// the string being scanned.
type Token struct {
	Kind uint
	Span source.Span
}

// LexRule is simply a rule for associating groups of characters with a given
// tag.
//
// nolint
type LexRule[T any] struct {
	scanner Scanner[T]
	tag     uint
}

// Rule constructs a new lexing rule which maps matching characters to a given
// tag.
func Rule[T any](scanner Scanner[T], tag uint) LexRule[T] {
	return LexRule[T]{scanner, tag}
}

// Lexer provides a top-level construct for tokenising a given input string.
// Rules are tried in order at each position.  Tags registered via Skip (e.g.
// whitespace and comments) are consumed silently, so consumers only ever see
// significant tokens.
type Lexer[T any] struct {
	items []T
	index int
	rules []LexRule[T]
	// Tags to drop silently.
	skip map[uint]bool
	// One-token lookahead.
	peeked *Token
}

// NewLexer constructs a new lexer with a given set of lexing rules.
func NewLexer[T any](input []T, rules ...LexRule[T]) *Lexer[T] {
	return &Lexer[T]{
		input,
		0,
		rules,
		nil,
		nil,
	}
}

// Skip registers token tags to be dropped silently, returning the lexer for
// chaining.
func (p *Lexer[T]) Skip(tags ...uint) *Lexer[T] {
	if p.skip == nil {
		p.skip = make(map[uint]bool)
	}
	//
	for _, tag := range tags {
		p.skip[tag] = true
	}
	//
	return p
}

// Index returns the current index within the items array.
func (p *Lexer[T]) Index() uint {
	return uint(p.index)
}

// Remaining determines how many characters from the original sequence were
// left.
func (p *Lexer[T]) Remaining() uint {
	return uint(max(0, len(p.items)-p.index))
}

// HasNext checks whether or not there are any (significant) items remaining
// to visit.
func (p *Lexer[T]) HasNext() bool {
	return p.peek() != nil
}

// Next returns the next significant token and advances the lexer.
func (p *Lexer[T]) Next() Token {
	next := *p.peek()
	p.peeked = nil
	//
	return next
}

// Collect is a convenience function which parses all remaining tokens in one
// go, producing an array of tokens.
func (p *Lexer[T]) Collect() []Token {
	var tokens []Token
	// Keep scanning
	for p.HasNext() {
		tokens = append(tokens, p.Next())
	}
	//
	return tokens
}

// peek advances through skipped tokens to the next significant one, caching
// it until consumed by Next.  Nil signals that no rule matched (end of input,
// or an unlexable character).
func (p *Lexer[T]) peek() *Token {
	for p.peeked == nil {
		token, ok := p.scan()
		//
		if !ok {
			return nil
		}
		// Advance past the matched characters.
		if p.index == len(p.items) {
			// EOF condition
			p.index++
		} else {
			p.index = token.Span.End()
		}
		//
		if !p.skip[token.Kind] {
			p.peeked = &token
		}
	}
	//
	return p.peeked
}

// scan matches a single token at the current position.
func (p *Lexer[T]) scan() (Token, bool) {
	if p.index <= len(p.items) {
		// Look for item
		for _, r := range p.rules {
			if n := r.scanner(p.items[p.index:]); n > 0 {
				end := min(len(p.items), p.index+int(n))
				//
				return Token{r.tag, source.NewSpan(p.index, end)}, true
			}
		}
	}
	//
	return Token{}, false
}
