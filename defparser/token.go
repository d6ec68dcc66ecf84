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

// Package defparser implements the textual scene/sprite/window descriptor
// format: a hand-written tokenizer feeding a simple block/key-value
// grammar. The tokenizer is a single-pass, no-backtracking rune scanner
// over this format's much smaller token set (no hex/address literals, no
// bitwise operators).
package defparser

import "fmt"

// TokenType identifies one lexical category.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL
	IDENT
	INT
	FLOAT
	STRING
	LBRACE    // {
	RBRACE    // }
	ASSIGN    // =
	LPAREN    // (
	RPAREN    // )
	COMMA     // ,
	SEMICOLON // ;
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	case ASSIGN:
		return "="
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case COMMA:
		return ","
	case SEMICOLON:
		return ";"
	default:
		return "?"
	}
}

// Position locates a token within its source file.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Token is one lexed unit: its type, literal text, and source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
