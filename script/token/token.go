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

// Package token defines the lexical tokens of the scripting language, as
// a token-kind/Position split.
package token

import "fmt"

// Position locates a token in its source file for compiler diagnostics.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col) }

// Type enumerates every lexical token kind the lexer emits.
type Type int

const (
	ILLEGAL Type = iota
	EOF
	COMMENT

	// Literals and identifiers
	IDENT
	INT
	FLOAT
	STRING

	// Keywords
	KW_VAR
	KW_GLOBAL
	KW_CONST
	KW_FUNCTION
	KW_METHOD
	KW_EXTERNAL
	KW_ON
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_FOR
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_RETURN
	KW_BREAK
	KW_CONTINUE
	KW_NEW
	KW_TRUE
	KW_FALSE
	KW_NULL
	KW_THIS

	// Operators and punctuation
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	EQ
	NEQ
	STRICT_EQ
	STRICT_NEQ
	LT
	GT
	LE
	GE
	AND_AND
	OR_OR
	NOT
	QUESTION
	COLON
	COMMA
	DOT
	SEMI
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
)

var keywords = map[string]Type{
	"var": KW_VAR, "global": KW_GLOBAL, "const": KW_CONST,
	"function": KW_FUNCTION, "method": KW_METHOD, "external": KW_EXTERNAL,
	"on": KW_ON, "if": KW_IF, "else": KW_ELSE, "while": KW_WHILE, "for": KW_FOR,
	"switch": KW_SWITCH, "case": KW_CASE, "default": KW_DEFAULT,
	"return": KW_RETURN, "break": KW_BREAK, "continue": KW_CONTINUE,
	"new": KW_NEW, "true": KW_TRUE, "false": KW_FALSE, "null": KW_NULL, "this": KW_THIS,
}

// Lookup maps an identifier string to its keyword Type, or IDENT if it is
// not a reserved word.
func Lookup(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}

// Token is one lexed unit: its kind, literal text, and source position.
type Token struct {
	Type Type
	Lit  string
	Pos  Position
}

var typeNames = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	KW_VAR: "var", KW_GLOBAL: "global", KW_CONST: "const", KW_FUNCTION: "function",
	KW_METHOD: "method", KW_EXTERNAL: "external", KW_ON: "on", KW_IF: "if",
	KW_ELSE: "else", KW_WHILE: "while", KW_FOR: "for", KW_SWITCH: "switch",
	KW_CASE: "case", KW_DEFAULT: "default", KW_RETURN: "return", KW_BREAK: "break",
	KW_CONTINUE: "continue", KW_NEW: "new", KW_TRUE: "true", KW_FALSE: "false",
	KW_NULL: "null", KW_THIS: "this",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=",
	SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=",
	EQ: "==", NEQ: "!=", STRICT_EQ: "===", STRICT_NEQ: "!==",
	LT: "<", GT: ">", LE: "<=", GE: ">=", AND_AND: "&&", OR_OR: "||", NOT: "!",
	QUESTION: "?", COLON: ":", COMMA: ",", DOT: ".", SEMI: ";",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "?"
}
