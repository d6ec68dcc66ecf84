// Copyright 2026 The Wintermute Authors
// This file is part of the Wintermute engine.
//
// The Wintermute engine is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Wintermute engine is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Wintermute engine. If not, see <http://www.gnu.org/licenses/>.

// Package parser is a recursive-descent parser turning a token.Token
// stream into an ast.Program, in a single-pass, no-backtracking style
// over a C-family grammar.
package parser

import (
	"fmt"
	"strconv"

	"github.com/wintermute-engine/wme/script/ast"
	"github.com/wintermute-engine/wme/script/lexer"
	"github.com/wintermute-engine/wme/script/token"
)

// SyntaxError is one parse failure, carrying the source position so the
// compiler's caller can report file:line:col the way script compile errors
// are surfaced to the host log.
type SyntaxError struct {
	Pos token.Position
	Msg string
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

type Parser struct {
	l    *lexer.Lexer
	tok  token.Token
	errs []error
}

// Parse lexes and parses src (attributed to file) into a Program. Parse
// errors are collected rather than aborting immediately, so the compiler
// can report more than the first mistake per compile.
func Parse(file, src string) (*ast.Program, []error) {
	p := &Parser{l: lexer.New(file, src)}
	p.next()
	prog := &ast.Program{File: file}
	for p.tok.Type != token.EOF {
		if d := p.parseDecl(); d != nil {
			prog.Decls = append(prog.Decls, d)
		} else {
			p.next() // avoid an infinite loop on unrecoverable garbage
		}
	}
	return prog, p.errs
}

func (p *Parser) next() { p.tok = p.l.Next() }

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, &SyntaxError{Pos: p.tok.Pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(tt token.Type) token.Token {
	t := p.tok
	if t.Type != tt {
		p.errorf("expected %s, got %s %q", tt, t.Type, t.Lit)
	} else {
		p.next()
	}
	return t
}

// ---- Declarations -----------------------------------------------------------

func (p *Parser) parseDecl() ast.Declaration {
	pos := p.tok.Pos
	switch p.tok.Type {
	case token.KW_FUNCTION:
		p.next()
		return p.parseFunctionLike(pos, "function")
	case token.KW_METHOD:
		p.next()
		return p.parseFunctionLike(pos, "method")
	case token.KW_ON:
		p.next()
		return p.parseFunctionLike(pos, "event")
	case token.KW_EXTERNAL:
		return p.parseExternal(pos)
	case token.KW_GLOBAL, token.KW_CONST:
		return p.parseVarDecl()
	default:
		p.errorf("expected a declaration, got %s %q", p.tok.Type, p.tok.Lit)
		return nil
	}
}

func (p *Parser) parseFunctionLike(pos token.Position, kind string) ast.Declaration {
	var name string
	if kind == "event" && p.tok.Type == token.STRING {
		name = p.tok.Lit
		p.next()
	} else {
		name = p.expect(token.IDENT).Lit
	}
	var params []string
	if kind != "event" || p.tok.Type == token.LPAREN {
		params = p.parseParamList()
	}
	body := p.parseBlock()
	switch kind {
	case "function":
		return &ast.FunctionDecl{Position: pos, Name: name, Params: params, Body: body}
	case "method":
		return &ast.MethodDecl{Position: pos, Name: name, Params: params, Body: body}
	default:
		return &ast.EventDecl{Position: pos, Name: name, Params: params, Body: body}
	}
}

func (p *Parser) parseParamList() []string {
	p.expect(token.LPAREN)
	var params []string
	for p.tok.Type != token.RPAREN && p.tok.Type != token.EOF {
		params = append(params, p.expect(token.IDENT).Lit)
		if p.tok.Type == token.COMMA {
			p.next()
		}
	}
	p.expect(token.RPAREN)
	return params
}

// parseExternal parses `external "lib" name(params);`.
func (p *Parser) parseExternal(pos token.Position) ast.Declaration {
	p.next() // consume 'external'
	lib := p.expect(token.STRING).Lit
	name := p.expect(token.IDENT).Lit
	params := p.parseParamList()
	if p.tok.Type == token.SEMI {
		p.next()
	}
	return &ast.ExternalDecl{Position: pos, Lib: lib, Name: name, Params: params}
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	pos := p.tok.Pos
	kindTok := p.tok.Type
	p.next()
	kind := "var"
	switch kindTok {
	case token.KW_GLOBAL:
		kind = "global"
	case token.KW_CONST:
		kind = "const"
	}
	name := p.expect(token.IDENT).Lit
	var init ast.Expression
	if p.tok.Type == token.ASSIGN {
		p.next()
		init = p.parseExpression()
	}
	if p.tok.Type == token.SEMI {
		p.next()
	}
	return &ast.VarDecl{Position: pos, Kind: kind, Name: name, Init: init}
}

// ---- Statements --------------------------------------------------------------

func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.tok.Pos
	p.expect(token.LBRACE)
	b := &ast.BlockStmt{Position: pos}
	for p.tok.Type != token.RBRACE && p.tok.Type != token.EOF {
		b.Stmts = append(b.Stmts, p.parseStatement())
	}
	p.expect(token.RBRACE)
	return b
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.tok.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.KW_VAR, token.KW_CONST:
		return p.parseVarDecl()
	case token.KW_IF:
		return p.parseIf()
	case token.KW_WHILE:
		return p.parseWhile()
	case token.KW_FOR:
		return p.parseFor()
	case token.KW_SWITCH:
		return p.parseSwitch()
	case token.KW_RETURN:
		return p.parseReturn()
	case token.KW_BREAK:
		pos := p.tok.Pos
		p.next()
		if p.tok.Type == token.SEMI {
			p.next()
		}
		return &ast.BreakStmt{Position: pos}
	case token.KW_CONTINUE:
		pos := p.tok.Pos
		p.next()
		if p.tok.Type == token.SEMI {
			p.next()
		}
		return &ast.ContinueStmt{Position: pos}
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseExprStatement() ast.Statement {
	pos := p.tok.Pos
	x := p.parseExpression()
	if p.tok.Type == token.SEMI {
		p.next()
	}
	return &ast.ExprStmt{Position: pos, X: x}
}

func (p *Parser) parseIf() ast.Statement {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	then := p.parseBlock()
	var els ast.Statement
	if p.tok.Type == token.KW_ELSE {
		p.next()
		if p.tok.Type == token.KW_IF {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.IfStmt{Position: pos, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() ast.Statement {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.WhileStmt{Position: pos, Cond: cond, Body: body}
}

func (p *Parser) parseFor() ast.Statement {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	var init ast.Statement
	if p.tok.Type != token.SEMI {
		if p.tok.Type == token.KW_VAR {
			init = p.parseVarDecl()
		} else {
			init = p.parseExprStatement()
		}
	} else {
		p.next()
	}
	var cond ast.Expression
	if p.tok.Type != token.SEMI {
		cond = p.parseExpression()
	}
	p.expect(token.SEMI)
	var post ast.Statement
	if p.tok.Type != token.RPAREN {
		postPos := p.tok.Pos
		post = &ast.ExprStmt{Position: postPos, X: p.parseExpression()}
	}
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.ForStmt{Position: pos, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseSwitch() ast.Statement {
	pos := p.tok.Pos
	p.next()
	p.expect(token.LPAREN)
	tag := p.parseExpression()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	var cases []*ast.CaseClause
	for p.tok.Type == token.KW_CASE || p.tok.Type == token.KW_DEFAULT {
		cpos := p.tok.Pos
		var values []ast.Expression
		if p.tok.Type == token.KW_CASE {
			p.next()
			values = append(values, p.parseExpression())
			for p.tok.Type == token.COMMA {
				p.next()
				values = append(values, p.parseExpression())
			}
		} else {
			p.next()
		}
		p.expect(token.COLON)
		var body []ast.Statement
		for p.tok.Type != token.KW_CASE && p.tok.Type != token.KW_DEFAULT && p.tok.Type != token.RBRACE && p.tok.Type != token.EOF {
			body = append(body, p.parseStatement())
		}
		cases = append(cases, &ast.CaseClause{Position: cpos, Values: values, Body: body})
	}
	p.expect(token.RBRACE)
	return &ast.SwitchStmt{Position: pos, Tag: tag, Cases: cases}
}

func (p *Parser) parseReturn() ast.Statement {
	pos := p.tok.Pos
	p.next()
	var v ast.Expression
	if p.tok.Type != token.SEMI {
		v = p.parseExpression()
	}
	if p.tok.Type == token.SEMI {
		p.next()
	}
	return &ast.ReturnStmt{Position: pos, Value: v}
}

// ---- Expressions (precedence climbing) --------------------------------------

func (p *Parser) parseExpression() ast.Expression { return p.parseAssignment() }

var assignOps = map[token.Type]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN: true, token.SLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
}

func (p *Parser) parseAssignment() ast.Expression {
	lhs := p.parseTernary()
	if assignOps[p.tok.Type] {
		pos := p.tok.Pos
		op := p.tok.Type
		p.next()
		rhs := p.parseAssignment()
		return &ast.AssignExpr{Position: pos, Op: op, Target: lhs, Value: rhs}
	}
	return lhs
}

func (p *Parser) parseTernary() ast.Expression {
	cond := p.parseLogicalOr()
	if p.tok.Type == token.QUESTION {
		pos := p.tok.Pos
		p.next()
		then := p.parseAssignment()
		p.expect(token.COLON)
		els := p.parseAssignment()
		return &ast.TernaryExpr{Position: pos, Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expression {
	x := p.parseLogicalAnd()
	for p.tok.Type == token.OR_OR {
		pos := p.tok.Pos
		p.next()
		y := p.parseLogicalAnd()
		x = &ast.LogicalExpr{Position: pos, Op: token.OR_OR, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseLogicalAnd() ast.Expression {
	x := p.parseEquality()
	for p.tok.Type == token.AND_AND {
		pos := p.tok.Pos
		p.next()
		y := p.parseEquality()
		x = &ast.LogicalExpr{Position: pos, Op: token.AND_AND, X: x, Y: y}
	}
	return x
}

var equalityOps = map[token.Type]bool{token.EQ: true, token.NEQ: true, token.STRICT_EQ: true, token.STRICT_NEQ: true}
var relOps = map[token.Type]bool{token.LT: true, token.GT: true, token.LE: true, token.GE: true}
var addOps = map[token.Type]bool{token.PLUS: true, token.MINUS: true}
var mulOps = map[token.Type]bool{token.STAR: true, token.SLASH: true, token.PERCENT: true}

func (p *Parser) parseEquality() ast.Expression {
	x := p.parseRelational()
	for equalityOps[p.tok.Type] {
		pos, op := p.tok.Pos, p.tok.Type
		p.next()
		y := p.parseRelational()
		x = &ast.BinaryExpr{Position: pos, Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseRelational() ast.Expression {
	x := p.parseAdditive()
	for relOps[p.tok.Type] {
		pos, op := p.tok.Pos, p.tok.Type
		p.next()
		y := p.parseAdditive()
		x = &ast.BinaryExpr{Position: pos, Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseAdditive() ast.Expression {
	x := p.parseMultiplicative()
	for addOps[p.tok.Type] {
		pos, op := p.tok.Pos, p.tok.Type
		p.next()
		y := p.parseMultiplicative()
		x = &ast.BinaryExpr{Position: pos, Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseMultiplicative() ast.Expression {
	x := p.parseUnary()
	for mulOps[p.tok.Type] {
		pos, op := p.tok.Pos, p.tok.Type
		p.next()
		y := p.parseUnary()
		x = &ast.BinaryExpr{Position: pos, Op: op, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseUnary() ast.Expression {
	if p.tok.Type == token.NOT || p.tok.Type == token.MINUS {
		pos, op := p.tok.Pos, p.tok.Type
		p.next()
		x := p.parseUnary()
		return &ast.UnaryExpr{Position: pos, Op: op, X: x}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	x := p.parsePrimary()
	for {
		switch p.tok.Type {
		case token.DOT:
			p.next()
			pos := p.tok.Pos
			name := p.expect(token.IDENT).Lit
			if p.tok.Type == token.LPAREN {
				args := p.parseArgs()
				x = &ast.CallExpr{Position: pos, Recv: x, Name: name, Args: args}
			} else {
				x = &ast.MemberExpr{Position: pos, X: x, Name: name}
			}
		case token.LBRACKET:
			pos := p.tok.Pos
			p.next()
			idx := p.parseExpression()
			p.expect(token.RBRACKET)
			x = &ast.IndexExpr{Position: pos, X: x, Index: idx}
		case token.LPAREN:
			if id, ok := x.(*ast.Ident); ok {
				pos := id.Position
				args := p.parseArgs()
				x = &ast.CallExpr{Position: pos, Recv: nil, Name: id.Name, Args: args}
			} else {
				return x
			}
		default:
			return x
		}
	}
}

func (p *Parser) parseArgs() []ast.Expression {
	p.expect(token.LPAREN)
	var args []ast.Expression
	for p.tok.Type != token.RPAREN && p.tok.Type != token.EOF {
		args = append(args, p.parseAssignment())
		if p.tok.Type == token.COMMA {
			p.next()
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	pos := p.tok.Pos
	switch p.tok.Type {
	case token.INT:
		lit := p.tok.Lit
		p.next()
		n, _ := strconv.ParseInt(lit, 10, 64)
		return &ast.IntLit{Position: pos, Value: n}
	case token.FLOAT:
		lit := p.tok.Lit
		p.next()
		f, _ := strconv.ParseFloat(lit, 64)
		return &ast.FloatLit{Position: pos, Value: f}
	case token.STRING:
		lit := p.tok.Lit
		p.next()
		return &ast.StringLit{Position: pos, Value: lit}
	case token.KW_TRUE:
		p.next()
		return &ast.BoolLit{Position: pos, Value: true}
	case token.KW_FALSE:
		p.next()
		return &ast.BoolLit{Position: pos, Value: false}
	case token.KW_NULL:
		p.next()
		return &ast.NullLit{Position: pos}
	case token.KW_THIS:
		p.next()
		return &ast.ThisExpr{Position: pos}
	case token.KW_NEW:
		p.next()
		class := p.expect(token.IDENT).Lit
		args := p.parseArgs()
		return &ast.NewExpr{Position: pos, Class: class, Args: args}
	case token.IDENT:
		name := p.tok.Lit
		p.next()
		return &ast.Ident{Position: pos, Name: name}
	case token.LPAREN:
		p.next()
		x := p.parseExpression()
		p.expect(token.RPAREN)
		return x
	case token.LBRACKET:
		p.next()
		var elems []ast.Expression
		for p.tok.Type != token.RBRACKET && p.tok.Type != token.EOF {
			elems = append(elems, p.parseAssignment())
			if p.tok.Type == token.COMMA {
				p.next()
			}
		}
		p.expect(token.RBRACKET)
		return &ast.ArrayLit{Position: pos, Elems: elems}
	default:
		p.errorf("unexpected token %s %q in expression", p.tok.Type, p.tok.Lit)
		p.next()
		return &ast.NullLit{Position: pos}
	}
}
