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
package parser

import (
	"github.com/consensys/go-lustre/pkg/util/source"
	"github.com/consensys/go-lustre/pkg/util/source/lex"
)

// The token kinds produced by the Lustre lexer.  Keywords are not
// distinguished here; identifiers are classified against the keyword table by
// the parser.
const (
	// WHITESPACE must be filtered out before parsing.
	WHITESPACE uint = iota
	// COMMENT covers a line comment up to (but excluding) the newline.
	COMMENT
	// PROPERTY_ANNOT is the "--%PROPERTY" marker.
	PROPERTY_ANNOT
	// MAIN_ANNOT is the "--%MAIN" marker.
	MAIN_ANNOT
	// REQUIRE_ANNOT is the "--@require" contract marker.
	REQUIRE_ANNOT
	// ENSURE_ANNOT is the "--@ensure" contract marker.
	ENSURE_ANNOT
	// IDENT is an identifier (or keyword).
	IDENT
	// REAL_LIT is a real literal.
	REAL_LIT
	// INT_LIT is an integer literal.
	INT_LIT
	// Punctuation and operators.
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	LPAREN
	RPAREN
	SEMICOLON
	COLON
	COMMA
	DOT
	DOTDOT
	CARET
	PIPE
	EQUALS
	NOT_EQUALS
	LT
	LTEQ
	GT
	GTEQ
	PLUS
	MINUS
	STAR
	SLASH
	ARROW
	IMPLIES
	// END_OF signals the end of the token stream.
	END_OF
)

var (
	whitespace = lex.Many(lex.AnyOf(' ', '\t', '\r', '\n'))
	digit      = lex.Within('0', '9')
	letter     = lex.Or(lex.Within('a', 'z'), lex.Within('A', 'Z'), lex.AnyOf[rune]('_'))
	identifier = lex.Sequence(letter, lex.Many(lex.Or(letter, digit)))
	intLit     = lex.Sequence(digit, lex.Many(digit))
	realLit    = lex.Sequence(intLit, lex.AnyOf[rune]('.'), digit, lex.Many(digit))
	comment    = lex.Sequence(lex.String("--"), lex.Until('\n'))
)

// rules is the rule set for tokenising Lustre source.  Order matters: the
// annotation markers must fire before the comment rule, and multi-character
// operators before their prefixes.
var rules = []lex.LexRule[rune]{
	lex.Rule(lex.String("--%PROPERTY"), PROPERTY_ANNOT),
	lex.Rule(lex.String("--%MAIN"), MAIN_ANNOT),
	lex.Rule(lex.String("--@require"), REQUIRE_ANNOT),
	lex.Rule(lex.String("--@ensure"), ENSURE_ANNOT),
	lex.Rule(comment, COMMENT),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(realLit, REAL_LIT),
	lex.Rule(intLit, INT_LIT),
	lex.Rule(identifier, IDENT),
	lex.Rule(lex.String("->"), ARROW),
	lex.Rule(lex.String("=>"), IMPLIES),
	lex.Rule(lex.String("<>"), NOT_EQUALS),
	lex.Rule(lex.String("<="), LTEQ),
	lex.Rule(lex.String(">="), GTEQ),
	lex.Rule(lex.String(".."), DOTDOT),
	lex.Rule(lex.Unit('{'), LBRACE),
	lex.Rule(lex.Unit('}'), RBRACE),
	lex.Rule(lex.Unit('['), LBRACKET),
	lex.Rule(lex.Unit(']'), RBRACKET),
	lex.Rule(lex.Unit('('), LPAREN),
	lex.Rule(lex.Unit(')'), RPAREN),
	lex.Rule(lex.Unit(';'), SEMICOLON),
	lex.Rule(lex.Unit(':'), COLON),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(lex.Unit('.'), DOT),
	lex.Rule(lex.Unit('^'), CARET),
	lex.Rule(lex.Unit('|'), PIPE),
	lex.Rule(lex.Unit('='), EQUALS),
	lex.Rule(lex.Unit('<'), LT),
	lex.Rule(lex.Unit('>'), GT),
	lex.Rule(lex.Unit('+'), PLUS),
	lex.Rule(lex.Unit('-'), MINUS),
	lex.Rule(lex.Unit('*'), STAR),
	lex.Rule(lex.Unit('/'), SLASH),
	lex.Rule(lex.Eof[rune](), END_OF),
}

// Lex tokenises a source file, with whitespace and comments skipped by the
// lexer itself.  An unlexable character produces a positioned syntax error.
func Lex(srcfile *source.File) ([]lex.Token, *source.SyntaxError) {
	lexer := lex.NewLexer(srcfile.Contents(), rules...).Skip(WHITESPACE, COMMENT)
	//
	tokens := lexer.Collect()
	// Check the entire input was consumed.
	if lexer.Remaining() > 0 {
		start := int(lexer.Index())
		span := source.NewSpan(start, start+1)
		//
		return nil, srcfile.SyntaxError(span, "unexpected character")
	}
	//
	return tokens, nil
}
