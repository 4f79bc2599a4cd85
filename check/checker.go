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
package check

import (
	"fmt"

	"github.com/samber/lo"

	"ablc/ast"
)

// Checker walks a Program, declaring functions as they are encountered (so
// a function may call itself, but not one declared later in the file) and
// annotating every Expr.Type along the way.
type Checker struct {
	vars     ScopeStack[ast.Type]
	funcs    ScopeStack[FuncSig]
	curFunc  *ast.FunDecl
	hasError bool
}

// NewChecker returns a Checker ready to check one Program.
func NewChecker() *Checker {
	c := &Checker{}
	c.funcs.PushScope()
	return c
}

// HasError reports whether any diagnostic was emitted.
func (c *Checker) HasError() bool { return c.hasError }

func (c *Checker) errorf(line int, format string, args ...interface{}) {
	c.hasError = true
	fmt.Printf("Error at line %d: %s\n", line, fmt.Sprintf(format, args...))
}

// Check typechecks an entire program, returning true if no diagnostic fired.
func Check(prog *ast.Program) bool {
	c := NewChecker()
	for _, fn := range prog.Funs {
		c.checkFunDecl(fn)
	}
	c.checkMainShape(prog)
	return !c.hasError
}

func (c *Checker) checkMainShape(prog *ast.Program) {
	sig, ok := c.funcs.Lookup("main")
	if !ok {
		c.hasError = true
		fmt.Println("Error: program has no main function")
		return
	}
	if sig.RetTy != ast.TVoid {
		c.hasError = true
		fmt.Println("Error: main must return void")
	}
	if len(sig.Params) != 0 {
		c.hasError = true
		fmt.Println("Error: main must take zero parameters")
	}
}

func (c *Checker) checkFunDecl(fn *ast.FunDecl) {
	sig := FuncSig{
		RetTy:  fn.RetTy,
		Params: lo.Map(fn.Params, func(p *ast.Param, _ int) ast.Type { return p.Ty }),
	}
	if !c.funcs.Declare(fn.Name, sig) {
		c.errorf(fn.Line, "%s defined multiple times", fn.Name)
		return
	}

	prevFunc := c.curFunc
	c.curFunc = fn
	c.vars.PushScope()
	for _, p := range fn.Params {
		if p.Ty == ast.TVoid {
			c.errorf(p.Line, "parameter %s cannot have type void", p.Name)
			continue
		}
		if !c.vars.Declare(p.Name, p.Ty) {
			c.errorf(p.Line, "%s defined multiple times", p.Name)
		}
	}
	c.checkBlock(fn.Body)
	c.vars.PopScope()
	c.curFunc = prevFunc
}

func (c *Checker) checkBlock(b *ast.BlockStmt) {
	c.vars.PushScope()
	for _, d := range b.Decls {
		c.checkDecl(d)
	}
	c.vars.PopScope()
}

func (c *Checker) checkDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(n)
	case *ast.StmtDecl:
		c.checkStmt(n.St)
	}
}

func (c *Checker) checkVarDecl(d *ast.VarDecl) {
	if d.Ty == ast.TVoid {
		c.errorf(d.Line, "variable %s cannot have type void", d.Name)
	}
	if d.Init != nil {
		initTy := c.checkExpr(d.Init)
		if d.Ty != ast.TVoid && initTy != d.Ty {
			c.errorf(d.Line, "cannot initialize %s of type %s with value of type %s", d.Name, d.Ty, initTy)
		}
	}
	if !c.vars.Declare(d.Name, d.Ty) {
		c.errorf(d.Line, "%s defined multiple times", d.Name)
	}
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		c.checkExpr(n.Expr)
	case *ast.IfStmt:
		if ty := c.checkExpr(n.Cond); ty != ast.TBool {
			c.errorf(n.Line, "if condition must be bool, got %s", ty)
		}
		c.checkStmt(n.Then)
		if n.Else != nil {
			c.checkStmt(n.Else)
		}
	case *ast.WhileStmt:
		if ty := c.checkExpr(n.Cond); ty != ast.TBool {
			c.errorf(n.Line, "while condition must be bool, got %s", ty)
		}
		c.checkStmt(n.Body)
	case *ast.BlockStmt:
		c.checkBlock(n)
	case *ast.PrintStmt:
		if ty := c.checkExpr(n.Expr); ty == ast.TVoid {
			c.errorf(n.Line, "cannot print a void value")
		}
	case *ast.ReturnStmt:
		c.checkReturn(n)
	}
}

func (c *Checker) checkReturn(n *ast.ReturnStmt) {
	retTy := c.curFunc.RetTy
	if n.Expr == nil {
		if retTy != ast.TVoid {
			c.errorf(n.Line, "function %s must return a value of type %s", c.curFunc.Name, retTy)
		}
		return
	}
	ty := c.checkExpr(n.Expr)
	if retTy == ast.TVoid {
		c.errorf(n.Line, "function %s returns void and cannot return a value", c.curFunc.Name)
		return
	}
	if ty != retTy {
		c.errorf(n.Line, "function %s must return %s, got %s", c.curFunc.Name, retTy, ty)
	}
}

// checkExpr annotates e.Type in place and returns it.
func (c *Checker) checkExpr(e ast.Expr) ast.Type {
	var ty ast.Type
	switch n := e.(type) {
	case *ast.IntLitExpr:
		ty = ast.TInt
	case *ast.IdentExpr:
		ty = c.checkIdent(n)
	case *ast.GroupingExpr:
		ty = c.checkExpr(n.Inner)
	case *ast.UnaryExpr:
		ty = c.checkUnary(n)
	case *ast.BinaryExpr:
		ty = c.checkBinary(n)
	case *ast.CallExpr:
		ty = c.checkCall(n)
	case *ast.AssignExpr:
		ty = c.checkAssign(n)
	default:
		ty = ast.TVoid
	}
	e.SetType(ty)
	return ty
}

func (c *Checker) checkIdent(n *ast.IdentExpr) ast.Type {
	ty, ok := c.vars.Lookup(n.Name)
	if !ok {
		c.errorf(n.Line, "undefined variable %s", n.Name)
		return ast.TInt
	}
	return ty
}

func (c *Checker) checkUnary(n *ast.UnaryExpr) ast.Type {
	operand := c.checkExpr(n.Operand)
	switch n.Op {
	case ast.TOKEN_BANG:
		if operand != ast.TBool {
			c.errorf(n.Line, "operand of ! must be bool, got %s", operand)
		}
		return ast.TBool
	case ast.TOKEN_MINUS:
		if operand != ast.TInt {
			c.errorf(n.Line, "operand of unary - must be int, got %s", operand)
		}
		return ast.TInt
	}
	return ast.TVoid
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) ast.Type {
	left := c.checkExpr(n.Left)
	right := c.checkExpr(n.Right)
	switch n.Op {
	case ast.KW_AND, ast.KW_OR:
		if left != ast.TBool || right != ast.TBool {
			c.errorf(n.Line, "operands of %s must be bool", n.Op)
		}
		return ast.TBool
	case ast.TOKEN_EQ, ast.TOKEN_BANG_EQUAL,
		ast.TOKEN_LESS, ast.TOKEN_LESS_EQUAL, ast.TOKEN_GREATER, ast.TOKEN_GREATER_EQUAL:
		if left != ast.TInt || right != ast.TInt {
			c.errorf(n.Line, "operands of %s must be int", n.Op)
		}
		return ast.TBool
	case ast.TOKEN_PLUS, ast.TOKEN_MINUS, ast.TOKEN_STAR, ast.TOKEN_SLASH:
		if left != ast.TInt || right != ast.TInt {
			c.errorf(n.Line, "operands of %s must be int", n.Op)
		}
		return ast.TInt
	}
	return ast.TVoid
}

func (c *Checker) checkCall(n *ast.CallExpr) ast.Type {
	sig, ok := c.funcs.Lookup(n.Callee)
	if !ok {
		c.errorf(n.Line, "undefined function %s", n.Callee)
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		return ast.TInt
	}
	if len(n.Args) != len(sig.Params) {
		c.errorf(n.Line, "%s expects %d arguments, got %d", n.Callee, len(sig.Params), len(n.Args))
	}
	for i, a := range n.Args {
		argTy := c.checkExpr(a)
		if i < len(sig.Params) && argTy != sig.Params[i] {
			c.errorf(a.SourceLine(), "argument %d of %s must be %s, got %s", i+1, n.Callee, sig.Params[i], argTy)
		}
	}
	return sig.RetTy
}

func (c *Checker) checkAssign(n *ast.AssignExpr) ast.Type {
	ty, ok := c.vars.Lookup(n.Target)
	if !ok {
		c.errorf(n.Line, "undefined variable %s", n.Target)
		c.checkExpr(n.Value)
		return ast.TInt
	}
	valTy := c.checkExpr(n.Value)
	if valTy != ty {
		c.errorf(n.Line, "cannot assign %s to %s of type %s", valTy, n.Target, ty)
	}
	return ty
}
