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

// Package ir is ABC's three-address intermediate representation: explicit
// basic blocks of statements with a single terminating tail, in A-normal
// form (every non-atomic operand is hoisted into a named temporary).
package ir

import (
	"fmt"

	"ablc/ast"
)

// AtomKind tags an Atom's payload.
type AtomKind int

const (
	AtomInt AtomKind = iota
	AtomName
)

// Atom is a cheap operand: either an integer literal or a name, never a
// compound expression.
type Atom struct {
	Kind   AtomKind
	IntVal int64
	Name   string
}

func (a Atom) String() string {
	if a.Kind == AtomInt {
		return fmt.Sprintf("%d", a.IntVal)
	}
	return a.Name
}

// Expr is any right-hand-side expression form. Every field that is not
// itself tagged Expr must be an Atom, per the A-normal-form invariant.
// Assign.Value is the sole exception, since the assignment is the
// statement-producing form and need not itself be atomized.
type Expr interface {
	irExprNode()
}

type BinExpr struct {
	Op       ast.TokenKind
	Lhs, Rhs Atom
}

type CmpExpr struct {
	Cmp      ast.TokenKind
	Lhs, Rhs Atom
}

type UnaryExpr struct {
	Op  ast.TokenKind
	Arg Atom
}

// AtomExpr wraps a bare Atom so it can be used wherever an Expr is expected
// (e.g. the right-hand side of a Decl with a literal initializer).
type AtomExpr struct {
	Atom Atom
}

type CallExpr struct {
	Callee string
	Args   []Atom
}

type AssignExpr struct {
	Target string
	Value  Expr
}

func (*BinExpr) irExprNode()    {}
func (*CmpExpr) irExprNode()    {}
func (*UnaryExpr) irExprNode()  {}
func (*AtomExpr) irExprNode()   {}
func (*CallExpr) irExprNode()   {}
func (*AssignExpr) irExprNode() {}

// Stmt is a non-terminating instruction inside a block.
type Stmt interface {
	irStmtNode()
}

// DeclStmt both reserves a new name and (if Init is non-nil) computes its
// initial value. Init is nil for `int x;` with no initializer.
type DeclStmt struct {
	Label string
	Ty    ast.Type
	Init  Expr
}

type ExprStmt struct {
	Expr Expr
}

type PrintStmt struct {
	Atom Atom
}

func (*DeclStmt) irStmtNode()  {}
func (*ExprStmt) irStmtNode()  {}
func (*PrintStmt) irStmtNode() {}

// Tail is the single terminator of a basic block.
type Tail interface {
	irTailNode()
}

type GotoTail struct {
	Label string
}

// RetTail's Atom is nil for a bare `return;`.
type RetTail struct {
	Atom *Atom
}

type IfTail struct {
	Atom       Atom
	Then, Else string
}

func (*GotoTail) irTailNode() {}
func (*RetTail) irTailNode()  {}
func (*IfTail) irTailNode()   {}

// Block is a maximal straight-line run of Stmts ending in exactly one Tail.
type Block struct {
	Label string
	Stmts []Stmt
	Tail  Tail
}

// Param is a function parameter already bound to its IR-level name.
type Param struct {
	Label string
	Ty    ast.Type
}

// Fun is one function: its ABI-facing shape plus its body as a flat,
// ordered list of blocks (the first is always the entry block).
type Fun struct {
	Label  string
	RetTy  ast.Type
	Params []Param
	Blocks []*Block
}

// Program is every function translated from one ast.Program.
type Program struct {
	Funs []*Fun
}
