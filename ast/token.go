// Copyright (c) 2024 The ABLC Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package ast

import "ablc/utils"

// TokenKind enumerates every lexical token of ABC. The four maximal-munch
// pairs (assign/eq, less/less-equal, greater/greater-equal, bang/bang-equal)
// are declared adjacently and in that order so the lexer can compute the
// two-character variant as base+1 instead of a second switch.
type TokenKind int

const (
	TOKEN_ERROR TokenKind = iota
	TOKEN_EOF

	TOKEN_IDENT
	TOKEN_INT

	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_COMMA
	TOKEN_SEMICOLON

	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH

	TOKEN_ASSIGN // =
	TOKEN_EQ     // ==

	TOKEN_LESS          // <
	TOKEN_LESS_EQUAL    // <=
	TOKEN_GREATER       // >
	TOKEN_GREATER_EQUAL // >=

	TOKEN_BANG       // !
	TOKEN_BANG_EQUAL // !=

	KW_IF
	KW_ELSE
	KW_WHILE
	KW_PRINT
	KW_RETURN
	KW_INT
	KW_VOID
	KW_AND
	KW_OR
)

var keywords = map[string]TokenKind{
	"if":     KW_IF,
	"else":   KW_ELSE,
	"while":  KW_WHILE,
	"print":  KW_PRINT,
	"return": KW_RETURN,
	"int":    KW_INT,
	"void":   KW_VOID,
	"and":    KW_AND,
	"or":     KW_OR,
}

func (k TokenKind) String() string {
	switch k {
	case TOKEN_ERROR:
		return "<error>"
	case TOKEN_EOF:
		return "<eof>"
	case TOKEN_IDENT:
		return "<identifier>"
	case TOKEN_INT:
		return "<integer>"
	case TOKEN_LPAREN:
		return "("
	case TOKEN_RPAREN:
		return ")"
	case TOKEN_LBRACE:
		return "{"
	case TOKEN_RBRACE:
		return "}"
	case TOKEN_COMMA:
		return ","
	case TOKEN_SEMICOLON:
		return ";"
	case TOKEN_PLUS:
		return "+"
	case TOKEN_MINUS:
		return "-"
	case TOKEN_STAR:
		return "*"
	case TOKEN_SLASH:
		return "/"
	case TOKEN_ASSIGN:
		return "="
	case TOKEN_EQ:
		return "=="
	case TOKEN_LESS:
		return "<"
	case TOKEN_LESS_EQUAL:
		return "<="
	case TOKEN_GREATER:
		return ">"
	case TOKEN_GREATER_EQUAL:
		return ">="
	case TOKEN_BANG:
		return "!"
	case TOKEN_BANG_EQUAL:
		return "!="
	case KW_IF:
		return "if"
	case KW_ELSE:
		return "else"
	case KW_WHILE:
		return "while"
	case KW_PRINT:
		return "print"
	case KW_RETURN:
		return "return"
	case KW_INT:
		return "int"
	case KW_VOID:
		return "void"
	case KW_AND:
		return "and"
	case KW_OR:
		return "or"
	default:
		utils.Unimplement()
	}
	return ""
}

// Token is an immutable lexical unit: its kind, source line, and (for
// identifiers and integers) the payload the parser needs.
type Token struct {
	Kind     TokenKind
	Line     int
	Lexeme   string // source text of identifiers, keywords and integers; the diagnostic of an error token
	IntValue int64  // valid when Kind == TOKEN_INT
}
