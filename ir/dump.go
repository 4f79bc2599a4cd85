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
package ir

import (
	"fmt"
	"strings"
)

// DumpProgram renders prog's blocks in flat order, one instruction per
// line, in the same flat label-then-instructions shape the assembly printer
// uses, so the two dumps read side by side.
func DumpProgram(prog *Program) string {
	var b strings.Builder
	for _, fn := range prog.Funs {
		fmt.Fprintf(&b, "fun %s(", fn.Label)
		for i, p := range fn.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %s", p.Ty, p.Label)
		}
		fmt.Fprintf(&b, ") %s\n", fn.RetTy)
		for _, blk := range fn.Blocks {
			fmt.Fprintf(&b, "%s:\n", blk.Label)
			for _, s := range blk.Stmts {
				fmt.Fprintf(&b, "  %s\n", dumpStmt(s))
			}
			fmt.Fprintf(&b, "  %s\n", dumpTail(blk.Tail))
		}
	}
	return b.String()
}

func dumpStmt(s Stmt) string {
	switch n := s.(type) {
	case *DeclStmt:
		if n.Init == nil {
			return fmt.Sprintf("decl %s %s", n.Ty, n.Label)
		}
		return fmt.Sprintf("decl %s %s = %s", n.Ty, n.Label, dumpExpr(n.Init))
	case *ExprStmt:
		return dumpExpr(n.Expr)
	case *PrintStmt:
		return fmt.Sprintf("print(%s)", n.Atom)
	}
	return "?"
}

func dumpExpr(e Expr) string {
	switch n := e.(type) {
	case *AtomExpr:
		return n.Atom.String()
	case *BinExpr:
		return fmt.Sprintf("%s %s %s", n.Lhs, n.Op, n.Rhs)
	case *CmpExpr:
		return fmt.Sprintf("%s %s %s", n.Lhs, n.Cmp, n.Rhs)
	case *UnaryExpr:
		return fmt.Sprintf("%s%s", n.Op, n.Arg)
	case *CallExpr:
		var args []string
		for _, a := range n.Args {
			args = append(args, a.String())
		}
		return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(args, ", "))
	case *AssignExpr:
		return fmt.Sprintf("%s = %s", n.Target, dumpExpr(n.Value))
	}
	return "?"
}

func dumpTail(t Tail) string {
	switch n := t.(type) {
	case *GotoTail:
		return fmt.Sprintf("goto %s", n.Label)
	case *RetTail:
		if n.Atom == nil {
			return "ret"
		}
		return fmt.Sprintf("ret %s", n.Atom)
	case *IfTail:
		return fmt.Sprintf("if %s then %s else %s", n.Atom, n.Then, n.Else)
	}
	return "?"
}
