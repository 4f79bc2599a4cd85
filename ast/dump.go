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
	"fmt"
	"strings"
)

// DumpProgram renders prog as an indented tree for --print-ast.
func DumpProgram(prog *Program) string {
	var b strings.Builder
	for _, fn := range prog.Funs {
		dumpFunDecl(&b, fn)
	}
	return b.String()
}

func dumpFunDecl(b *strings.Builder, fn *FunDecl) {
	fmt.Fprintf(b, "fun %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s %s", p.Ty, p.Name)
	}
	fmt.Fprintf(b, ") %s\n", fn.RetTy)
	dumpBlock(b, fn.Body, 1)
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func dumpBlock(b *strings.Builder, blk *BlockStmt, depth int) {
	indent(b, depth)
	b.WriteString("{\n")
	for _, d := range blk.Decls {
		dumpDecl(b, d, depth+1)
	}
	indent(b, depth)
	b.WriteString("}\n")
}

func dumpDecl(b *strings.Builder, d Decl, depth int) {
	switch n := d.(type) {
	case *VarDecl:
		indent(b, depth)
		fmt.Fprintf(b, "var %s %s", n.Ty, n.Name)
		if n.Init != nil {
			fmt.Fprintf(b, " = %s", dumpExpr(n.Init))
		}
		b.WriteString("\n")
	case *StmtDecl:
		dumpStmt(b, n.St, depth)
	}
}

func dumpStmt(b *strings.Builder, s Stmt, depth int) {
	indent(b, depth)
	switch n := s.(type) {
	case *ExprStmt:
		fmt.Fprintf(b, "%s\n", dumpExpr(n.Expr))
	case *PrintStmt:
		fmt.Fprintf(b, "print(%s)\n", dumpExpr(n.Expr))
	case *ReturnStmt:
		if n.Expr == nil {
			b.WriteString("return\n")
		} else {
			fmt.Fprintf(b, "return %s\n", dumpExpr(n.Expr))
		}
	case *IfStmt:
		fmt.Fprintf(b, "if %s\n", dumpExpr(n.Cond))
		dumpStmt(b, n.Then, depth+1)
		if n.Else != nil {
			indent(b, depth)
			b.WriteString("else\n")
			dumpStmt(b, n.Else, depth+1)
		}
	case *WhileStmt:
		fmt.Fprintf(b, "while %s\n", dumpExpr(n.Cond))
		dumpStmt(b, n.Body, depth+1)
	case *BlockStmt:
		b.WriteString("\n")
		dumpBlock(b, n, depth)
	}
}

func dumpExpr(e Expr) string {
	switch n := e.(type) {
	case *IntLitExpr:
		return fmt.Sprintf("%d", n.Value)
	case *IdentExpr:
		return n.Name
	case *GroupingExpr:
		return "(" + dumpExpr(n.Inner) + ")"
	case *UnaryExpr:
		return n.Op.String() + dumpExpr(n.Operand)
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", dumpExpr(n.Left), n.Op, dumpExpr(n.Right))
	case *CallExpr:
		var args []string
		for _, a := range n.Args {
			args = append(args, dumpExpr(a))
		}
		return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(args, ", "))
	case *AssignExpr:
		return fmt.Sprintf("%s = %s", n.Target, dumpExpr(n.Value))
	}
	return "?"
}
