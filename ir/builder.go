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

	"github.com/samber/lo"

	"ablc/ast"
	"ablc/check"
	"ablc/utils"
)

// Builder lowers a type-checked ast.Program into a Program. Label counters
// are fields reset at the start of each function, not package-level
// statics, so translating one function never leaks numbering into the next.
type Builder struct {
	vars check.ScopeStack[string]

	curFun   *Fun
	curBlock *Block
	varSeq   int
	labSeq   int
}

// Build lowers prog, which must already have passed check.Check.
func Build(prog *ast.Program) *Program {
	b := &Builder{}
	out := &Program{}
	for _, fn := range prog.Funs {
		out.Funs = append(out.Funs, b.buildFun(fn))
	}
	return out
}

func (b *Builder) newVar() string {
	b.varSeq++
	return fmt.Sprintf("%s_var_%d", b.curFun.Label, b.varSeq)
}

func (b *Builder) newBlockLabel() string {
	b.labSeq++
	return fmt.Sprintf("%s_lab_%d", b.curFun.Label, b.labSeq)
}

func (b *Builder) startBlock(label string) *Block {
	blk := &Block{Label: label}
	b.curFun.Blocks = append(b.curFun.Blocks, blk)
	b.curBlock = blk
	return blk
}

func (b *Builder) emit(s Stmt) {
	b.curBlock.Stmts = append(b.curBlock.Stmts, s)
}

// sealBlock terminates the current block with a goto unless a return inside
// it already did: `if (n < 2) return n;` must keep its Ret tail rather than
// have it clobbered by the jump to the continuation block.
func (b *Builder) sealBlock(label string) {
	if b.curBlock.Tail == nil {
		b.curBlock.Tail = &GotoTail{Label: label}
	}
}

func (b *Builder) buildFun(fn *ast.FunDecl) *Fun {
	irFun := &Fun{Label: fn.Name, RetTy: fn.RetTy}
	b.curFun = irFun
	b.varSeq = 0
	b.labSeq = 0

	b.vars.PushScope()
	b.startBlock(b.newBlockLabel())
	irFun.Params = lo.Map(fn.Params, func(p *ast.Param, _ int) Param {
		label := b.newVar()
		b.vars.Declare(p.Name, label)
		return Param{Label: label, Ty: p.Ty}
	})
	b.translateBlock(fn.Body)
	if b.curBlock.Tail == nil {
		// Control fell off the end of the function. For a non-void function
		// this leaves %rax with whatever the last computation put there.
		b.curBlock.Tail = &RetTail{}
	}
	b.vars.PopScope()
	return irFun
}

func (b *Builder) translateBlock(blk *ast.BlockStmt) {
	b.vars.PushScope()
	for _, d := range blk.Decls {
		b.translateDecl(d)
	}
	b.vars.PopScope()
}

func (b *Builder) translateDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.VarDecl:
		label := b.newVar()
		var init Expr
		if n.Init != nil {
			init = b.translateExpr(n.Init)
		}
		b.emit(&DeclStmt{Label: label, Ty: n.Ty, Init: init})
		b.vars.Declare(n.Name, label)
	case *ast.StmtDecl:
		b.translateStmt(n.St)
	}
}

func (b *Builder) translateStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		b.emit(&ExprStmt{Expr: b.translateExpr(n.Expr)})
	case *ast.PrintStmt:
		e := b.translateExpr(n.Expr)
		a := b.atomize(e, n.Expr.GetType())
		b.emit(&PrintStmt{Atom: a})
	case *ast.ReturnStmt:
		b.translateReturn(n)
	case *ast.IfStmt:
		b.translateIf(n)
	case *ast.WhileStmt:
		b.translateWhile(n)
	case *ast.BlockStmt:
		b.translateBlock(n)
	}
}

func (b *Builder) translateReturn(n *ast.ReturnStmt) {
	if n.Expr == nil {
		b.curBlock.Tail = &RetTail{}
		return
	}
	e := b.translateExpr(n.Expr)
	a := b.atomize(e, n.Expr.GetType())
	b.curBlock.Tail = &RetTail{Atom: &a}
}

// translateIf lowers an if into cond/then/else/cont blocks. When there is no
// else clause the else block still exists (empty) and simply jumps to the
// continuation.
func (b *Builder) translateIf(n *ast.IfStmt) {
	thenLabel := b.newBlockLabel()
	elseLabel := b.newBlockLabel()
	contLabel := b.newBlockLabel()

	b.lowerPred(n.Cond, thenLabel, elseLabel)

	b.startBlock(thenLabel)
	b.translateStmt(n.Then)
	b.sealBlock(contLabel)

	b.startBlock(elseLabel)
	if n.Else != nil {
		b.translateStmt(n.Else)
	}
	b.sealBlock(contLabel)

	b.startBlock(contLabel)
}

func (b *Builder) translateWhile(n *ast.WhileStmt) {
	startLabel := b.newBlockLabel()
	bodyLabel := b.newBlockLabel()
	contLabel := b.newBlockLabel()

	b.sealBlock(startLabel)

	b.startBlock(startLabel)
	b.lowerPred(n.Cond, bodyLabel, contLabel)

	b.startBlock(bodyLabel)
	b.translateStmt(n.Body)
	b.sealBlock(startLabel)

	b.startBlock(contLabel)
}

// lowerPred translates a boolean expression directly into control flow
// instead of a value, the mechanism that keeps and/or out of IrExpr
// entirely: and/or are flattened here, never handed to translateExpr.
func (b *Builder) lowerPred(pred ast.Expr, success, fail string) {
	if bin, ok := pred.(*ast.BinaryExpr); ok {
		switch bin.Op {
		case ast.KW_AND:
			mid := b.newBlockLabel()
			b.lowerPred(bin.Left, mid, fail)
			b.startBlock(mid)
			b.lowerPred(bin.Right, success, fail)
			return
		case ast.KW_OR:
			mid := b.newBlockLabel()
			b.lowerPred(bin.Left, success, mid)
			b.startBlock(mid)
			b.lowerPred(bin.Right, success, fail)
			return
		}
	}
	e := b.translateExpr(pred)
	a := b.atomize(e, pred.GetType())
	b.curBlock.Tail = &IfTail{Atom: a, Then: success, Else: fail}
}

// translateExpr never itself starts a new block, with one narrow, documented
// exception: and/or used as a plain value (not as the direct condition of an
// if/while) still has to become a 0/1 result, so it goes through the same
// lowerPred control-flow split as a condition would, materializing the
// result into a fresh temporary. Every other case is a pure expression walk.
func (b *Builder) translateExpr(e ast.Expr) Expr {
	switch n := e.(type) {
	case *ast.IntLitExpr:
		return &AtomExpr{Atom: Atom{Kind: AtomInt, IntVal: n.Value}}
	case *ast.IdentExpr:
		label, _ := b.vars.Lookup(n.Name)
		return &AtomExpr{Atom: Atom{Kind: AtomName, Name: label}}
	case *ast.GroupingExpr:
		return b.translateExpr(n.Inner)
	case *ast.UnaryExpr:
		arg := b.atomize(b.translateExpr(n.Operand), n.Operand.GetType())
		return &UnaryExpr{Op: n.Op, Arg: arg}
	case *ast.BinaryExpr:
		return b.translateBinary(n)
	case *ast.CallExpr:
		args := lo.Map(n.Args, func(arg ast.Expr, _ int) Atom {
			return b.atomize(b.translateExpr(arg), arg.GetType())
		})
		return &CallExpr{Callee: n.Callee, Args: args}
	case *ast.AssignExpr:
		val := b.translateExpr(n.Value)
		label, _ := b.vars.Lookup(n.Target)
		return &AssignExpr{Target: label, Value: val}
	default:
		panic(fmt.Sprintf("ir: unhandled expr %T", e))
	}
}

func (b *Builder) translateBinary(n *ast.BinaryExpr) Expr {
	if n.Op == ast.KW_AND || n.Op == ast.KW_OR {
		return b.materializeBool(n)
	}
	lhs := b.atomize(b.translateExpr(n.Left), n.Left.GetType())
	rhs := b.atomize(b.translateExpr(n.Right), n.Right.GetType())
	if isComparison(n.Op) {
		return &CmpExpr{Cmp: n.Op, Lhs: lhs, Rhs: rhs}
	}
	return &BinExpr{Op: n.Op, Lhs: lhs, Rhs: rhs}
}

func isComparison(op ast.TokenKind) bool {
	return utils.Any(op, ast.TOKEN_EQ, ast.TOKEN_BANG_EQUAL,
		ast.TOKEN_LESS, ast.TOKEN_LESS_EQUAL, ast.TOKEN_GREATER, ast.TOKEN_GREATER_EQUAL)
}

func (b *Builder) materializeBool(pred ast.Expr) Expr {
	trueLabel := b.newBlockLabel()
	falseLabel := b.newBlockLabel()
	contLabel := b.newBlockLabel()
	tmp := b.newVar()

	b.lowerPred(pred, trueLabel, falseLabel)

	b.startBlock(trueLabel)
	b.emit(&ExprStmt{Expr: &AssignExpr{Target: tmp, Value: &AtomExpr{Atom: Atom{Kind: AtomInt, IntVal: 1}}}})
	b.curBlock.Tail = &GotoTail{Label: contLabel}

	b.startBlock(falseLabel)
	b.emit(&ExprStmt{Expr: &AssignExpr{Target: tmp, Value: &AtomExpr{Atom: Atom{Kind: AtomInt, IntVal: 0}}}})
	b.curBlock.Tail = &GotoTail{Label: contLabel}

	b.startBlock(contLabel)
	return &AtomExpr{Atom: Atom{Kind: AtomName, Name: tmp}}
}

// atomize hoists a non-atomic IrExpr into a fresh named temporary, returning
// an Atom that refers to it. An Expr that is already a bare AtomExpr is
// returned directly with no new Decl.
func (b *Builder) atomize(e Expr, ty ast.Type) Atom {
	if ae, ok := e.(*AtomExpr); ok {
		return ae.Atom
	}
	label := b.newVar()
	b.emit(&DeclStmt{Label: label, Ty: ty, Init: e})
	return Atom{Kind: AtomName, Name: label}
}
