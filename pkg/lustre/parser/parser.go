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
	"fmt"
	"math/big"

	"github.com/consensys/go-lustre/pkg/lustre/ast"
	"github.com/consensys/go-lustre/pkg/util/source"
	"github.com/consensys/go-lustre/pkg/util/source/lex"
)

// keywords reserved by the grammar.  Identifiers are classified against this
// table after lexing.
var keywords = map[string]bool{
	"type": true, "const": true, "node": true, "function": true,
	"returns": true, "var": true, "let": true, "tel": true,
	"if": true, "then": true, "else": true,
	"pre": true, "not": true, "and": true, "or": true, "xor": true,
	"div": true, "mod": true, "true": true, "false": true,
	"assert": true, "when": true, "current": true, "fby": true,
	"condact": true, "subrange": true, "of": true,
	"int": true, "bool": true, "real": true, "enum": true,
}

// Parse tokenises and parses a source file into a program.
func Parse(srcfile *source.File) (*ast.Program, *source.SyntaxError) {
	tokens, err := Lex(srcfile)
	//
	if err != nil {
		return nil, err
	}
	//
	p := &parser{srcfile, tokens, 0}
	//
	return p.parseProgram()
}

// parser is a recursive-descent parser over the lexed token stream.
type parser struct {
	srcfile *source.File
	tokens  []lex.Token
	index   int
}

// ============================================================================
// Token plumbing
// ============================================================================

func (p *parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

func (p *parser) next() lex.Token {
	token := p.tokens[p.index]
	p.index++
	//
	return token
}

func (p *parser) text(token lex.Token) string {
	contents := p.srcfile.Contents()
	return string(contents[token.Span.Start():token.Span.End()])
}

func (p *parser) match(kind uint) bool {
	if p.lookahead().Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

func (p *parser) expect(kind uint, what string) (lex.Token, *source.SyntaxError) {
	if p.lookahead().Kind != kind {
		return lex.Token{}, p.errorHere("expected %s", what)
	}
	//
	return p.next(), nil
}

// isKeyword checks whether the lookahead is a given keyword.
func (p *parser) isKeyword(word string) bool {
	token := p.lookahead()
	return token.Kind == IDENT && p.text(token) == word
}

func (p *parser) matchKeyword(word string) bool {
	if p.isKeyword(word) {
		p.index++
		return true
	}
	//
	return false
}

func (p *parser) expectKeyword(word string) (lex.Token, *source.SyntaxError) {
	if !p.isKeyword(word) {
		return lex.Token{}, p.errorHere("expected %s", word)
	}
	//
	return p.next(), nil
}

// expectName expects a non-keyword identifier.
func (p *parser) expectName(what string) (string, lex.Token, *source.SyntaxError) {
	token := p.lookahead()
	//
	if token.Kind != IDENT || keywords[p.text(token)] {
		return "", lex.Token{}, p.errorHere("expected %s", what)
	}
	//
	p.index++
	//
	return p.text(token), token, nil
}

func (p *parser) errorHere(format string, args ...any) *source.SyntaxError {
	return p.srcfile.SyntaxError(p.lookahead().Span, fmt.Sprintf(format, args...))
}

func spanBetween(from lex.Token, to lex.Token) source.Span {
	return source.NewSpan(from.Span.Start(), to.Span.End())
}

// ============================================================================
// Declarations
// ============================================================================

func (p *parser) parseProgram() (*ast.Program, *source.SyntaxError) {
	program := &ast.Program{}
	//
	for p.lookahead().Kind != END_OF {
		var (
			decl ast.Declaration
			err  *source.SyntaxError
		)
		//
		switch {
		case p.isKeyword("type"):
			decl, err = p.parseTypeDecl()
		case p.isKeyword("const"):
			decl, err = p.parseConstDecl()
		case p.isKeyword("node") || p.isKeyword("function"):
			decl, err = p.parseNodeDecl()
		default:
			return nil, p.errorHere("expected a type, const or node declaration")
		}
		//
		if err != nil {
			return nil, err
		}
		//
		program.Declarations = append(program.Declarations, decl)
	}
	//
	return program, nil
}

func (p *parser) parseTypeDecl() (*ast.TypeDecl, *source.SyntaxError) {
	start := p.next() // type
	//
	name, _, err := p.expectName("a type name")
	if err != nil {
		return nil, err
	}
	//
	var body ast.TypeExpr
	//
	if p.match(EQUALS) {
		if body, err = p.parseTypeExpr(); err != nil {
			return nil, err
		}
	}
	//
	end, err := p.expect(SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.TypeDecl{TypeName: name, Body: body, NodeSpan: spanBetween(start, end)}, nil
}

func (p *parser) parseConstDecl() (*ast.ConstDecl, *source.SyntaxError) {
	start := p.next() // const
	//
	decl, err := p.parseConstBody(start)
	if err != nil {
		return nil, err
	}
	//
	return decl, nil
}

// parseConstBody parses the remainder of a constant declaration, shared with
// node-local constants.
func (p *parser) parseConstBody(start lex.Token) (*ast.ConstDecl, *source.SyntaxError) {
	name, _, err := p.expectName("a constant name")
	if err != nil {
		return nil, err
	}
	//
	var (
		typ   ast.TypeExpr
		value ast.Expr
	)
	//
	if p.match(COLON) {
		if typ, err = p.parseTypeExpr(); err != nil {
			return nil, err
		}
	}
	//
	if p.match(EQUALS) {
		if value, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	//
	if typ == nil && value == nil {
		return nil, p.errorHere("constant needs a type or a value")
	}
	//
	end, err := p.expect(SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.ConstDecl{ConstName: name, Type: typ, Value: value, NodeSpan: spanBetween(start, end)}, nil
}

func (p *parser) parseNodeDecl() (*ast.NodeDecl, *source.SyntaxError) {
	start := p.next() // node or function
	//
	name, _, err := p.expectName("a node name")
	if err != nil {
		return nil, err
	}
	//
	decl := &ast.NodeDecl{NodeName: name}
	// Input signature.
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return nil, err
	}
	//
	if decl.Inputs, err = p.parseVarGroups(RPAREN); err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(RPAREN, "')'"); err != nil {
		return nil, err
	}
	// Output signature.
	if _, err := p.expectKeyword("returns"); err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return nil, err
	}
	//
	if decl.Outputs, err = p.parseVarGroups(RPAREN); err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(RPAREN, "')'"); err != nil {
		return nil, err
	}
	//
	p.match(SEMICOLON)
	// Contract annotations.
	for {
		if p.match(REQUIRE_ANNOT) {
			e, err := p.parseAnnotatedExpr()
			if err != nil {
				return nil, err
			}
			//
			decl.Requires = append(decl.Requires, e)
		} else if p.match(ENSURE_ANNOT) {
			e, err := p.parseAnnotatedExpr()
			if err != nil {
				return nil, err
			}
			//
			decl.Ensures = append(decl.Ensures, e)
		} else {
			break
		}
	}
	// Local declarations.
	for {
		if p.matchKeyword("var") {
			for {
				group, err := p.parseVarGroup()
				if err != nil {
					return nil, err
				}
				//
				if _, err := p.expect(SEMICOLON, "';'"); err != nil {
					return nil, err
				}
				//
				decl.Locals = append(decl.Locals, *group)
				// Groups continue until the next section keyword.
				if p.isKeyword("var") || p.isKeyword("const") || p.isKeyword("let") {
					break
				}
			}
		} else if p.isKeyword("const") {
			start := p.next()
			//
			local, err := p.parseConstBody(start)
			if err != nil {
				return nil, err
			}
			//
			decl.LocalConsts = append(decl.LocalConsts, *local)
		} else {
			break
		}
	}
	// Body.
	if _, err := p.expectKeyword("let"); err != nil {
		return nil, err
	}
	//
	for !p.isKeyword("tel") {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		//
		decl.Body = append(decl.Body, stmt)
	}
	//
	end := p.next() // tel
	p.match(SEMICOLON)
	//
	decl.NodeSpan = spanBetween(start, end)
	//
	return decl, nil
}

// parseVarGroups parses semicolon-separated variable groups up to (but
// excluding) a terminator.
func (p *parser) parseVarGroups(terminator uint) ([]ast.VarGroup, *source.SyntaxError) {
	var groups []ast.VarGroup
	//
	for p.lookahead().Kind != terminator {
		group, err := p.parseVarGroup()
		if err != nil {
			return nil, err
		}
		//
		groups = append(groups, *group)
		//
		if !p.match(SEMICOLON) {
			break
		}
	}
	//
	return groups, nil
}

// parseVarGroup parses "x, y : type" with an optional leading "const" and an
// optional trailing "when" clock annotation.
func (p *parser) parseVarGroup() (*ast.VarGroup, *source.SyntaxError) {
	start := p.lookahead()
	isConst := p.matchKeyword("const")
	//
	var names []string
	//
	for {
		name, _, err := p.expectName("a signal name")
		if err != nil {
			return nil, err
		}
		//
		names = append(names, name)
		//
		if !p.match(COMMA) {
			break
		}
	}
	//
	if _, err := p.expect(COLON, "':'"); err != nil {
		return nil, err
	}
	//
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	//
	var clock ast.Expr
	//
	if p.matchKeyword("when") {
		if clock, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	//
	end := p.tokens[p.index-1]
	//
	return &ast.VarGroup{Names: names, Type: typ, Const: isConst, Clock: clock,
		NodeSpan: spanBetween(start, end)}, nil
}

// ============================================================================
// Statements
// ============================================================================

func (p *parser) parseStatement() (ast.Statement, *source.SyntaxError) {
	start := p.lookahead()
	//
	switch {
	case p.matchKeyword("assert"):
		e, err := p.parseAnnotatedExpr()
		if err != nil {
			return nil, err
		}
		//
		return &ast.Assert{Arg: e, NodeSpan: spanBetween(start, p.tokens[p.index-1])}, nil
	case p.match(PROPERTY_ANNOT):
		e, err := p.parseAnnotatedExpr()
		if err != nil {
			return nil, err
		}
		//
		return &ast.Property{Arg: e, NodeSpan: spanBetween(start, p.tokens[p.index-1])}, nil
	case p.match(MAIN_ANNOT):
		end, err := p.expect(SEMICOLON, "';'")
		if err != nil {
			return nil, err
		}
		//
		return &ast.Main{NodeSpan: spanBetween(start, end)}, nil
	}
	// Otherwise, an equation.
	return p.parseEquation()
}

// parseAnnotatedExpr parses an expression followed by a semicolon.
func (p *parser) parseAnnotatedExpr() (ast.Expr, *source.SyntaxError) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	//
	return e, nil
}

func (p *parser) parseEquation() (*ast.Equation, *source.SyntaxError) {
	start := p.lookahead()
	// Left pattern, optionally parenthesised.
	parens := p.match(LPAREN)
	//
	var lhs []ast.Expr
	//
	for {
		ref, err := p.parseTargetRef()
		if err != nil {
			return nil, err
		}
		//
		lhs = append(lhs, ref)
		//
		if !p.match(COMMA) {
			break
		}
	}
	//
	if parens {
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return nil, err
		}
	}
	//
	if _, err := p.expect(EQUALS, "'='"); err != nil {
		return nil, err
	}
	//
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	//
	end, err := p.expect(SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.Equation{Lhs: lhs, Rhs: rhs, NodeSpan: spanBetween(start, end)}, nil
}

// parseTargetRef parses one left-pattern entry: an identifier with optional
// projections.
func (p *parser) parseTargetRef() (ast.Expr, *source.SyntaxError) {
	name, token, err := p.expectName("a signal name")
	if err != nil {
		return nil, err
	}
	//
	var target ast.Expr = &ast.VariableAccess{Name: name, NodeSpan: token.Span}
	//
	for {
		if p.match(DOT) {
			field, ftoken, err := p.expectName("a field name")
			if err != nil {
				return nil, err
			}
			//
			target = &ast.RecordAccess{Arg: target, Field: field,
				NodeSpan: source.NewSpan(token.Span.Start(), ftoken.Span.End())}
		} else if p.match(LBRACKET) {
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			//
			end, err := p.expect(RBRACKET, "']'")
			if err != nil {
				return nil, err
			}
			//
			target = &ast.IndexAccess{Arg: target, Index: index,
				NodeSpan: source.NewSpan(token.Span.Start(), end.Span.End())}
		} else {
			return target, nil
		}
	}
}

// ============================================================================
// Type expressions
// ============================================================================

func (p *parser) parseTypeExpr() (ast.TypeExpr, *source.SyntaxError) {
	base, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	// Array sizes bind left-to-right.
	for p.match(CARET) {
		size, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		//
		base = &ast.ArrayType{Element: base, Size: size,
			NodeSpan: source.NewSpan(base.Span().Start(), size.Span().End())}
	}
	//
	return base, nil
}

func (p *parser) parseBaseType() (ast.TypeExpr, *source.SyntaxError) {
	start := p.lookahead()
	//
	switch {
	case p.matchKeyword("bool"):
		return &ast.BoolType{NodeSpan: start.Span}, nil
	case p.matchKeyword("int"):
		return &ast.IntType{NodeSpan: start.Span}, nil
	case p.matchKeyword("real"):
		return &ast.RealType{NodeSpan: start.Span}, nil
	case p.matchKeyword("subrange"):
		return p.parseSubrangeType(start)
	case p.matchKeyword("enum"):
		return p.parseEnumType(start)
	case p.match(LBRACE):
		return p.parseRecordType(start)
	case p.match(LBRACKET):
		return p.parseTupleType(start)
	}
	//
	name, token, err := p.expectName("a type")
	if err != nil {
		return nil, err
	}
	//
	return &ast.UserType{Name: name, NodeSpan: token.Span}, nil
}

func (p *parser) parseSubrangeType(start lex.Token) (ast.TypeExpr, *source.SyntaxError) {
	if _, err := p.expect(LBRACKET, "'['"); err != nil {
		return nil, err
	}
	//
	lo, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(COMMA, "','"); err != nil {
		return nil, err
	}
	//
	hi, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(RBRACKET, "']'"); err != nil {
		return nil, err
	}
	//
	if _, err := p.expectKeyword("of"); err != nil {
		return nil, err
	}
	//
	end, err := p.expectKeyword("int")
	if err != nil {
		return nil, err
	}
	//
	return &ast.SubrangeType{Lo: lo, Hi: hi, NodeSpan: spanBetween(start, end)}, nil
}

func (p *parser) parseEnumType(start lex.Token) (ast.TypeExpr, *source.SyntaxError) {
	if _, err := p.expect(LBRACE, "'{'"); err != nil {
		return nil, err
	}
	//
	var cases []string
	//
	for {
		name, _, err := p.expectName("an enum constructor")
		if err != nil {
			return nil, err
		}
		//
		cases = append(cases, name)
		//
		if !p.match(COMMA) {
			break
		}
	}
	//
	end, err := p.expect(RBRACE, "'}'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.EnumType{Cases: cases, NodeSpan: spanBetween(start, end)}, nil
}

func (p *parser) parseRecordType(start lex.Token) (ast.TypeExpr, *source.SyntaxError) {
	var fields []ast.TypeField
	//
	for {
		name, _, err := p.expectName("a field name")
		if err != nil {
			return nil, err
		}
		//
		if _, err := p.expect(COLON, "':'"); err != nil {
			return nil, err
		}
		//
		typ, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		//
		fields = append(fields, ast.TypeField{Name: name, Type: typ})
		//
		if !p.match(SEMICOLON) {
			break
		}
		// Allow a trailing semicolon.
		if p.lookahead().Kind == RBRACE {
			break
		}
	}
	//
	end, err := p.expect(RBRACE, "'}'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.RecordType{Fields: fields, NodeSpan: spanBetween(start, end)}, nil
}

func (p *parser) parseTupleType(start lex.Token) (ast.TypeExpr, *source.SyntaxError) {
	var elems []ast.TypeExpr
	//
	for {
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		//
		elems = append(elems, elem)
		//
		if !p.match(COMMA) {
			break
		}
	}
	//
	end, err := p.expect(RBRACKET, "']'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.TupleType{Elems: elems, NodeSpan: spanBetween(start, end)}, nil
}

// ============================================================================
// Expressions
// ============================================================================

// parseExpr parses an expression at the lowest precedence level.
func (p *parser) parseExpr() (ast.Expr, *source.SyntaxError) {
	start := p.lookahead()
	// Conditionals sit at the lowest level.
	if p.matchKeyword("if") {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		//
		if _, err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		//
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		//
		if _, err := p.expectKeyword("else"); err != nil {
			return nil, err
		}
		//
		orelse, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		//
		return &ast.IfExpr{Cond: cond, Then: then, Else: orelse,
			NodeSpan: source.NewSpan(start.Span.Start(), orelse.Span().End())}, nil
	}
	//
	return p.parseImpliesExpr()
}

func binary(op ast.BinaryOp, lhs ast.Expr, rhs ast.Expr) ast.Expr {
	return &ast.BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs,
		NodeSpan: source.NewSpan(lhs.Span().Start(), rhs.Span().End())}
}

// Implication is right associative.
func (p *parser) parseImpliesExpr() (ast.Expr, *source.SyntaxError) {
	lhs, err := p.parseArrowExpr()
	if err != nil {
		return nil, err
	}
	//
	if p.match(IMPLIES) {
		rhs, err := p.parseImpliesExpr()
		if err != nil {
			return nil, err
		}
		//
		return binary(ast.IMPLIES, lhs, rhs), nil
	}
	//
	return lhs, nil
}

// The arrow is right associative.
func (p *parser) parseArrowExpr() (ast.Expr, *source.SyntaxError) {
	lhs, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	//
	if p.match(ARROW) {
		rhs, err := p.parseArrowExpr()
		if err != nil {
			return nil, err
		}
		//
		return binary(ast.ARROW, lhs, rhs), nil
	}
	//
	return lhs, nil
}

func (p *parser) parseOrExpr() (ast.Expr, *source.SyntaxError) {
	lhs, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	//
	for {
		var op ast.BinaryOp
		//
		switch {
		case p.matchKeyword("or"):
			op = ast.OR
		case p.matchKeyword("xor"):
			op = ast.XOR
		case p.matchKeyword("when"):
			op = ast.WHEN
		default:
			return lhs, nil
		}
		//
		rhs, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		//
		lhs = binary(op, lhs, rhs)
	}
}

func (p *parser) parseAndExpr() (ast.Expr, *source.SyntaxError) {
	lhs, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	//
	for p.matchKeyword("and") {
		rhs, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		//
		lhs = binary(ast.AND, lhs, rhs)
	}
	//
	return lhs, nil
}

func (p *parser) parseNotExpr() (ast.Expr, *source.SyntaxError) {
	start := p.lookahead()
	//
	if p.matchKeyword("not") {
		arg, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		//
		return &ast.UnaryExpr{Op: ast.NOT, Arg: arg,
			NodeSpan: source.NewSpan(start.Span.Start(), arg.Span().End())}, nil
	}
	//
	return p.parseRelationExpr()
}

func (p *parser) parseRelationExpr() (ast.Expr, *source.SyntaxError) {
	lhs, err := p.parseAddExpr()
	if err != nil {
		return nil, err
	}
	//
	var op ast.BinaryOp
	//
	switch {
	case p.match(EQUALS):
		op = ast.EQ
	case p.match(NOT_EQUALS):
		op = ast.NEQ
	case p.match(LT):
		op = ast.LT
	case p.match(LTEQ):
		op = ast.LTEQ
	case p.match(GT):
		op = ast.GT
	case p.match(GTEQ):
		op = ast.GTEQ
	default:
		return lhs, nil
	}
	//
	rhs, err := p.parseAddExpr()
	if err != nil {
		return nil, err
	}
	//
	return binary(op, lhs, rhs), nil
}

func (p *parser) parseAddExpr() (ast.Expr, *source.SyntaxError) {
	lhs, err := p.parseMulExpr()
	if err != nil {
		return nil, err
	}
	//
	for {
		var op ast.BinaryOp
		//
		switch {
		case p.match(PLUS):
			op = ast.ADD
		case p.match(MINUS):
			op = ast.SUB
		case p.match(PIPE):
			op = ast.CONCAT
		default:
			return lhs, nil
		}
		//
		rhs, err := p.parseMulExpr()
		if err != nil {
			return nil, err
		}
		//
		lhs = binary(op, lhs, rhs)
	}
}

func (p *parser) parseMulExpr() (ast.Expr, *source.SyntaxError) {
	lhs, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	//
	for {
		var op ast.BinaryOp
		//
		switch {
		case p.match(STAR):
			op = ast.MUL
		case p.match(SLASH), p.matchKeyword("div"):
			op = ast.DIV
		case p.matchKeyword("mod"):
			op = ast.MOD
		default:
			return lhs, nil
		}
		//
		rhs, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		//
		lhs = binary(op, lhs, rhs)
	}
}

func (p *parser) parseUnaryExpr() (ast.Expr, *source.SyntaxError) {
	start := p.lookahead()
	//
	var op ast.UnaryOp
	//
	switch {
	case p.match(MINUS):
		op = ast.NEG
	case p.matchKeyword("pre"):
		op = ast.PRE
	case p.matchKeyword("current"):
		op = ast.CURRENT
	default:
		return p.parsePostfixExpr()
	}
	//
	arg, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	//
	return &ast.UnaryExpr{Op: op, Arg: arg,
		NodeSpan: source.NewSpan(start.Span.Start(), arg.Span().End())}, nil
}

func (p *parser) parsePostfixExpr() (ast.Expr, *source.SyntaxError) {
	e, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	//
	for {
		start := e.Span().Start()
		//
		if p.match(DOT) {
			field, token, err := p.expectName("a field name")
			if err != nil {
				return nil, err
			}
			//
			e = &ast.RecordAccess{Arg: e, Field: field,
				NodeSpan: source.NewSpan(start, token.Span.End())}
		} else if p.match(LBRACKET) {
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			// A ".." marks an array slice, which parses but is rejected
			// during elaboration.
			if p.match(DOTDOT) {
				hi, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				//
				end, err := p.expect(RBRACKET, "']'")
				if err != nil {
					return nil, err
				}
				//
				e = &ast.SliceExpr{Arg: e, Lo: index, Hi: hi,
					NodeSpan: source.NewSpan(start, end.Span.End())}
			} else {
				end, err := p.expect(RBRACKET, "']'")
				if err != nil {
					return nil, err
				}
				//
				e = &ast.IndexAccess{Arg: e, Index: index,
					NodeSpan: source.NewSpan(start, end.Span.End())}
			}
		} else if p.match(CARET) {
			size, err := p.parseUnaryExpr()
			if err != nil {
				return nil, err
			}
			//
			e = &ast.ArrayExpr{Element: e, Size: size,
				NodeSpan: source.NewSpan(start, size.Span().End())}
		} else {
			return e, nil
		}
	}
}

func (p *parser) parsePrimaryExpr() (ast.Expr, *source.SyntaxError) {
	start := p.lookahead()
	// A conditional can sit in any operand position.
	if p.isKeyword("if") {
		return p.parseExpr()
	}
	//
	switch {
	case start.Kind == INT_LIT:
		p.index++
		//
		value, ok := new(big.Int).SetString(p.text(start), 10)
		if !ok {
			return nil, p.srcfile.SyntaxError(start.Span, "invalid integer literal")
		}
		//
		return &ast.IntLiteral{Value: value, NodeSpan: start.Span}, nil
	case start.Kind == REAL_LIT:
		p.index++
		//
		value, ok := new(big.Rat).SetString(p.text(start))
		if !ok {
			return nil, p.srcfile.SyntaxError(start.Span, "invalid real literal")
		}
		//
		return &ast.RealLiteral{Value: value, NodeSpan: start.Span}, nil
	case p.matchKeyword("true"):
		return &ast.BoolLiteral{Value: true, NodeSpan: start.Span}, nil
	case p.matchKeyword("false"):
		return &ast.BoolLiteral{Value: false, NodeSpan: start.Span}, nil
	case p.matchKeyword("int"):
		return p.parseCast(ast.TO_INT, start)
	case p.matchKeyword("real"):
		return p.parseCast(ast.TO_REAL, start)
	case p.matchKeyword("fby"):
		return p.parseFby(start)
	case p.matchKeyword("condact"):
		return p.parseCondact(start)
	case p.match(LPAREN):
		return p.parseParenExpr(start)
	case p.match(LBRACKET):
		return p.parseArrayLiteral(start)
	}
	//
	name, token, err := p.expectName("an expression")
	if err != nil {
		return nil, err
	}
	// A name may open a call or a record constructor.
	if p.lookahead().Kind == LPAREN {
		p.index++
		//
		args, end, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		//
		return &ast.CallExpr{Name: name, Args: args,
			NodeSpan: source.NewSpan(token.Span.Start(), end.Span.End())}, nil
	}
	//
	if p.lookahead().Kind == LBRACE {
		return p.parseRecordConstructor(name, token)
	}
	//
	return &ast.VariableAccess{Name: name, NodeSpan: token.Span}, nil
}

func (p *parser) parseCast(op ast.UnaryOp, start lex.Token) (ast.Expr, *source.SyntaxError) {
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return nil, err
	}
	//
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	//
	end, err := p.expect(RPAREN, "')'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.UnaryExpr{Op: op, Arg: arg, NodeSpan: spanBetween(start, end)}, nil
}

func (p *parser) parseFby(start lex.Token) (ast.Expr, *source.SyntaxError) {
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return nil, err
	}
	//
	args, end, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	//
	return &ast.FbyExpr{Args: args, NodeSpan: spanBetween(start, end)}, nil
}

// parseCondact parses "condact(cond, f(args), defaults...)".
func (p *parser) parseCondact(start lex.Token) (ast.Expr, *source.SyntaxError) {
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return nil, err
	}
	//
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(COMMA, "','"); err != nil {
		return nil, err
	}
	//
	name, _, err := p.expectName("a node name")
	if err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return nil, err
	}
	//
	args, _, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	//
	var defaults []ast.Expr
	//
	for p.match(COMMA) {
		def, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		//
		defaults = append(defaults, def)
	}
	//
	end, err := p.expect(RPAREN, "')'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.CondactExpr{Cond: cond, Name: name, Args: args, Defaults: defaults,
		NodeSpan: spanBetween(start, end)}, nil
}

// parseArgs parses a comma-separated argument list up to the closing
// parenthesis, which is consumed and returned.
func (p *parser) parseArgs() ([]ast.Expr, lex.Token, *source.SyntaxError) {
	var args []ast.Expr
	//
	if p.lookahead().Kind != RPAREN {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, lex.Token{}, err
			}
			//
			args = append(args, arg)
			//
			if !p.match(COMMA) {
				break
			}
		}
	}
	//
	end, err := p.expect(RPAREN, "')'")
	if err != nil {
		return nil, lex.Token{}, err
	}
	//
	return args, end, nil
}

// parseParenExpr parses a parenthesised expression or a tuple.
func (p *parser) parseParenExpr(start lex.Token) (ast.Expr, *source.SyntaxError) {
	var elems []ast.Expr
	//
	for {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		//
		elems = append(elems, elem)
		//
		if !p.match(COMMA) {
			break
		}
	}
	//
	end, err := p.expect(RPAREN, "')'")
	if err != nil {
		return nil, err
	}
	// A singleton is just a parenthesised expression.
	if len(elems) == 1 {
		return elems[0], nil
	}
	//
	return &ast.TupleExpr{Elems: elems, NodeSpan: spanBetween(start, end)}, nil
}

// parseArrayLiteral parses "[e1, ..., en]", a positional aggregate.
func (p *parser) parseArrayLiteral(start lex.Token) (ast.Expr, *source.SyntaxError) {
	var elems []ast.Expr
	//
	for {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		//
		elems = append(elems, elem)
		//
		if !p.match(COMMA) {
			break
		}
	}
	//
	end, err := p.expect(RBRACKET, "']'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.TupleExpr{Elems: elems, NodeSpan: spanBetween(start, end)}, nil
}

// parseRecordConstructor parses "T { a = e1; b = e2 }".
func (p *parser) parseRecordConstructor(name string, token lex.Token) (ast.Expr, *source.SyntaxError) {
	p.index++ // consume '{'
	//
	var fields []ast.FieldInit
	//
	for {
		fname, _, err := p.expectName("a field name")
		if err != nil {
			return nil, err
		}
		//
		if _, err := p.expect(EQUALS, "'='"); err != nil {
			return nil, err
		}
		//
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		//
		fields = append(fields, ast.FieldInit{Name: fname, Value: value})
		//
		if !p.match(SEMICOLON) {
			break
		}
		//
		if p.lookahead().Kind == RBRACE {
			break
		}
	}
	//
	end, err := p.expect(RBRACE, "'}'")
	if err != nil {
		return nil, err
	}
	//
	return &ast.RecordExpr{Name: name, Fields: fields,
		NodeSpan: source.NewSpan(token.Span.Start(), end.Span.End())}, nil
}
