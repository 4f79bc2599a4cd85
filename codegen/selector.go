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
package codegen

import (
	"ablc/ast"
	"ablc/internal/arena"
	"ablc/ir"
)

// argRegs holds the System V AMD64 integer argument registers, in order.
var argRegs = []Reg{RDI, RSI, RDX, RCX, R8, R9}

// Select lowers an ir.Program into pseudo x64 form: every variable reference
// becomes an Arg of tag Str, to be resolved by the register allocator and
// home-assignment pass.
func Select(prog *ir.Program) *Program {
	out := &Program{}
	for _, fn := range prog.Funs {
		out.Funs = append(out.Funs, selectFun(fn))
	}
	return out
}

func selectFun(fn *ir.Fun) *Fun {
	a := arena.New()
	out := &Fun{Label: fn.Label, Arena: a}
	for i, blk := range fn.Blocks {
		xblk := &Block{Label: blk.Label, Instrs: arena.NewVector[*Instr](a, len(blk.Stmts))}
		if i == 0 {
			selectParamHoming(xblk, fn.Params)
		}
		for _, stmt := range blk.Stmts {
			selectStmt(xblk, stmt)
		}
		selectTail(xblk, blk.Tail, fn.Label)
		out.Blocks = append(out.Blocks, xblk)
	}
	return out
}

// selectParamHoming moves each parameter out of its ABI location (a fixed
// register for the first six, a caller stack slot for the rest) into its
// Str placeholder.
func selectParamHoming(blk *Block, params []ir.Param) {
	total := len(params)
	for idx, p := range params {
		var src Arg
		if idx < 6 {
			src = R(argRegs[idx])
		} else {
			src = Deref(RBP, stackParamOffset(total, idx))
		}
		emit(blk, &Instr{Op: OpMovq, Src: src, Dst: Str(p.Label)})
	}
}

// stackParamOffset computes the %rbp-relative offset of the idx-th
// parameter (0-based, idx >= 6) among total parameters. The caller pushes
// spilled arguments in source order, so the 7th parameter ends up deepest
// and the final one sits closest to the return address, at 16(%rbp).
func stackParamOffset(total, idx int) int64 {
	numSpilled := total - 6
	k := idx - 6
	return 16 + int64(numSpilled-k-1)*8
}

func selectStmt(blk *Block, s ir.Stmt) {
	switch n := s.(type) {
	case *ir.DeclStmt:
		if n.Init != nil {
			selectExpr(blk, n.Init)
			emit(blk, &Instr{Op: OpMovq, Src: R(RAX), Dst: Str(n.Label)})
		}
	case *ir.ExprStmt:
		selectExpr(blk, n.Expr)
	case *ir.PrintStmt:
		selectPrint(blk, n.Atom)
	}
}

func argOf(a ir.Atom) Arg {
	if a.Kind == ir.AtomInt {
		return Imm(a.IntVal)
	}
	return Str(a.Name)
}

// selectPrint calls printf with the shared format string. %rsp sits 8 bytes
// off a 16-byte boundary everywhere inside a function body, so one filler
// push aligns the call; the filler is %rax (dead at a print site), popped
// back afterwards.
func selectPrint(blk *Block, a ir.Atom) {
	emit(blk, &Instr{Op: OpPushq, Dst: R(RAX)})
	emit(blk, &Instr{Op: OpLeaq, Label: "format_string", Dst: R(RDI)})
	emit(blk, &Instr{Op: OpMovq, Src: argOf(a), Dst: R(RSI)})
	emit(blk, &Instr{Op: OpMovq, Src: Imm(0), Dst: R(RAX)})
	emit(blk, &Instr{Op: OpCallq, Label: "printf"})
	emit(blk, &Instr{Op: OpPopq, Dst: R(RAX)})
}

// selectExpr leaves its result in %rax.
func selectExpr(blk *Block, e ir.Expr) {
	switch n := e.(type) {
	case *ir.AtomExpr:
		emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Atom), Dst: R(RAX)})
	case *ir.BinExpr:
		selectBin(blk, n)
	case *ir.CmpExpr:
		selectCmp(blk, n)
	case *ir.UnaryExpr:
		selectUnary(blk, n)
	case *ir.CallExpr:
		selectCall(blk, n)
	case *ir.AssignExpr:
		selectExpr(blk, n.Value)
		emit(blk, &Instr{Op: OpMovq, Src: R(RAX), Dst: Str(n.Target)})
	}
}

func selectBin(blk *Block, n *ir.BinExpr) {
	switch n.Op {
	case ast.TOKEN_PLUS:
		emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Lhs), Dst: R(RAX)})
		emit(blk, &Instr{Op: OpAddq, Src: argOf(n.Rhs), Dst: R(RAX)})
	case ast.TOKEN_MINUS:
		emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Lhs), Dst: R(RAX)})
		emit(blk, &Instr{Op: OpSubq, Src: argOf(n.Rhs), Dst: R(RAX)})
	case ast.TOKEN_STAR:
		emit(blk, &Instr{Op: OpXorq, Src: R(RDX), Dst: R(RDX)})
		emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Lhs), Dst: R(RAX)})
		emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Rhs), Dst: R(R15)})
		emit(blk, &Instr{Op: OpImulq, Src: R(R15)})
	case ast.TOKEN_SLASH:
		emit(blk, &Instr{Op: OpXorq, Src: R(RDX), Dst: R(RDX)})
		emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Lhs), Dst: R(RAX)})
		emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Rhs), Dst: R(R15)})
		emit(blk, &Instr{Op: OpIdivq, Src: R(R15)})
	}
}

var cmpToCc = map[ast.TokenKind]Cc{
	ast.TOKEN_EQ:            CcE,
	ast.TOKEN_BANG_EQUAL:    CcNE,
	ast.TOKEN_LESS:          CcL,
	ast.TOKEN_LESS_EQUAL:    CcLE,
	ast.TOKEN_GREATER:       CcG,
	ast.TOKEN_GREATER_EQUAL: CcGE,
}

func selectCmp(blk *Block, n *ir.CmpExpr) {
	emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Lhs), Dst: R(RAX)})
	emit(blk, &Instr{Op: OpCmpq, Src: argOf(n.Rhs), Dst: R(RAX)})
	emit(blk, &Instr{Op: OpSetcc, Cc: cmpToCc[n.Cmp]})
	emit(blk, &Instr{Op: OpMovzbq, Dst: R(RAX)})
}

func selectUnary(blk *Block, n *ir.UnaryExpr) {
	emit(blk, &Instr{Op: OpMovq, Src: argOf(n.Arg), Dst: R(RAX)})
	switch n.Op {
	case ast.TOKEN_MINUS:
		emit(blk, &Instr{Op: OpNegq, Dst: R(RAX)})
	case ast.TOKEN_BANG:
		emit(blk, &Instr{Op: OpXorq, Src: Imm(1), Dst: R(RAX)})
	}
}

// selectCall homes the first six arguments into the fixed argument
// registers and pushes the rest in source order, so the 7th argument lands
// deepest, mirroring stackParamOffset on the callee side. %rsp is 8 bytes
// off a 16-byte boundary inside a function body, so a filler push goes in
// first whenever the stack-argument count alone wouldn't realign the call.
func selectCall(blk *Block, n *ir.CallExpr) {
	regArgs := n.Args
	var stackArgs []ir.Atom
	if len(n.Args) > 6 {
		regArgs = n.Args[:6]
		stackArgs = n.Args[6:]
	}
	pushedBytes := int64(len(stackArgs)) * 8
	needsFiller := len(stackArgs)%2 == 0
	if needsFiller {
		emit(blk, &Instr{Op: OpPushq, Dst: R(RAX)})
		pushedBytes += 8
	}
	for _, a := range stackArgs {
		emit(blk, &Instr{Op: OpPushq, Dst: argOf(a)})
	}
	for i, a := range regArgs {
		emit(blk, &Instr{Op: OpMovq, Src: argOf(a), Dst: R(argRegs[i])})
	}
	emit(blk, &Instr{Op: OpCallq, Label: n.Callee})
	if pushedBytes > 0 {
		emit(blk, &Instr{Op: OpAddq, Src: Imm(pushedBytes), Dst: R(RSP)})
	}
}

func selectTail(blk *Block, t ir.Tail, funLabel string) {
	switch n := t.(type) {
	case *ir.GotoTail:
		emit(blk, &Instr{Op: OpJmp, Label: n.Label})
	case *ir.RetTail:
		if n.Atom != nil {
			emit(blk, &Instr{Op: OpMovq, Src: argOf(*n.Atom), Dst: R(RAX)})
		}
		emit(blk, &Instr{Op: OpJmp, Label: funLabel + "_epilogue"})
	case *ir.IfTail:
		emit(blk, &Instr{Op: OpCmpq, Src: Imm(1), Dst: argOf(n.Atom)})
		emit(blk, &Instr{Op: OpJcc, Cc: CcE, Label: n.Then})
		emit(blk, &Instr{Op: OpJmp, Label: n.Else})
	}
}

func emit(blk *Block, i *Instr) {
	blk.Instrs.Push(i)
}
