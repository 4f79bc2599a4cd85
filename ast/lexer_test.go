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

import (
	"strings"
	"testing"
)

func lexAll(src string) []Token {
	l := NewLexer(strings.NewReader(src))
	var toks []Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == TOKEN_EOF {
			return toks
		}
	}
}

func TestLexerPunctuationAndKeywords(t *testing.T) {
	toks := lexAll("if (x <= 3) { return; }")
	want := []TokenKind{
		KW_IF, TOKEN_LPAREN, TOKEN_IDENT, TOKEN_LESS_EQUAL, TOKEN_INT, TOKEN_RPAREN,
		TOKEN_LBRACE, KW_RETURN, TOKEN_SEMICOLON, TOKEN_RBRACE, TOKEN_EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %s want %s", i, toks[i].Kind, k)
		}
	}
}

func TestLexerMaximalMunch(t *testing.T) {
	cases := []struct {
		src  string
		want TokenKind
	}{
		{"=", TOKEN_ASSIGN},
		{"==", TOKEN_EQ},
		{"<", TOKEN_LESS},
		{"<=", TOKEN_LESS_EQUAL},
		{">", TOKEN_GREATER},
		{">=", TOKEN_GREATER_EQUAL},
		{"!", TOKEN_BANG},
		{"!=", TOKEN_BANG_EQUAL},
	}
	for _, c := range cases {
		toks := lexAll(c.src)
		if toks[0].Kind != c.want {
			t.Fatalf("lex(%q): got %s want %s", c.src, toks[0].Kind, c.want)
		}
	}
}

func TestLexerPeekIsIdempotent(t *testing.T) {
	l := NewLexer(strings.NewReader("1 2"))
	first := l.Peek()
	second := l.Peek()
	if first.Kind != second.Kind || first.IntValue != second.IntValue {
		t.Fatalf("peek is not idempotent: %v vs %v", first, second)
	}
	consumed := l.Next()
	if consumed.IntValue != 1 {
		t.Fatalf("expected Next to return the buffered token, got %v", consumed)
	}
	if l.Next().IntValue != 2 {
		t.Fatalf("expected second integer literal")
	}
}

func TestLexerIntegerOverflow(t *testing.T) {
	toks := lexAll("99999999999999999999")
	if toks[0].Kind != TOKEN_ERROR {
		t.Fatalf("expected an error token for an overflowing literal, got %s", toks[0].Kind)
	}
}

func TestLexerUnknownCharacterIsAnError(t *testing.T) {
	toks := lexAll("1 @ 2")
	if toks[1].Kind != TOKEN_ERROR {
		t.Fatalf("expected an error token for '@', got %s", toks[1].Kind)
	}
	if toks[2].Kind != TOKEN_INT || toks[2].IntValue != 2 {
		t.Fatalf("expected lexing to continue past the bad character, got %v", toks[2])
	}
}

func TestLexerLineNumbers(t *testing.T) {
	toks := lexAll("1\n2\n3")
	for i, want := range []int{1, 2, 3} {
		if toks[i].Line != want {
			t.Fatalf("token %d: got line %d want %d", i, toks[i].Line, want)
		}
	}
}
