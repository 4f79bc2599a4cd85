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

// Package codegen lowers package ir's three-address form down to x86-64:
// a pseudo-instruction selector targeting symbolic Str placeholders, a
// linear-scan register allocator, home assignment with memory-memory
// patching, prologue/epilogue insertion, and an AT&T-syntax printer.
package codegen

import (
	"fmt"

	"ablc/internal/arena"
)

// Reg is a physical general-purpose register.
type Reg int

const (
	RAX Reg = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RSP
	RBP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

var regNames = map[Reg]string{
	RAX: "%rax", RBX: "%rbx", RCX: "%rcx", RDX: "%rdx",
	RSI: "%rsi", RDI: "%rdi", RSP: "%rsp", RBP: "%rbp",
	R8: "%r8", R9: "%r9", R10: "%r10", R11: "%r11",
	R12: "%r12", R13: "%r13", R14: "%r14", R15: "%r15",
}

func (r Reg) String() string { return regNames[r] }

// CallerSaved lists the registers a callee may clobber freely, in the
// allocator's tie-break preference order (lowest-ranked first, to minimize
// callee-saved usage and its associated save/restore traffic).
var CallerSaved = []Reg{RDI, RSI, RDX, RCX, R8, R9, R10, R11}

// CalleeSaved lists the registers a function must restore before returning,
// in the order the allocator offers them once CallerSaved is exhausted.
var CalleeSaved = []Reg{RBX, R12, R13, R14}

// Reserved registers are never allocated: RAX carries results and dividend
// halves, R15 is the selector's scratch for imul/idiv's second operand,
// RSP/RBP anchor the frame.
var Reserved = map[Reg]bool{RAX: true, R15: true, RSP: true, RBP: true}

// ArgKind tags an Arg's payload.
type ArgKind int

const (
	ArgStr ArgKind = iota // symbolic placeholder, pre-allocation only
	ArgReg
	ArgImm
	ArgDeref
)

// Arg is an instruction operand. Before register allocation every variable
// reference is ArgStr; after home assignment no ArgStr survives.
type Arg struct {
	Kind   ArgKind
	Str    string
	Reg    Reg
	Imm    int64
	Base   Reg // ArgDeref
	Offset int64
}

func Str(label string) Arg          { return Arg{Kind: ArgStr, Str: label} }
func R(r Reg) Arg                   { return Arg{Kind: ArgReg, Reg: r} }
func Imm(v int64) Arg               { return Arg{Kind: ArgImm, Imm: v} }
func Deref(base Reg, off int64) Arg { return Arg{Kind: ArgDeref, Base: base, Offset: off} }

func (a Arg) String() string {
	switch a.Kind {
	case ArgStr:
		return a.Str
	case ArgReg:
		return a.Reg.String()
	case ArgImm:
		return fmt.Sprintf("$%d", a.Imm)
	case ArgDeref:
		if a.Offset == 0 {
			return fmt.Sprintf("(%s)", a.Base)
		}
		return fmt.Sprintf("%d(%s)", a.Offset, a.Base)
	}
	return "?"
}

// IsDeref reports whether a is a memory operand.
func (a Arg) IsDeref() bool { return a.Kind == ArgDeref }

// Cc is a condition code for setcc/jcc.
type Cc int

const (
	CcE Cc = iota
	CcNE
	CcL
	CcLE
	CcG
	CcGE
)

var ccSuffix = map[Cc]string{CcE: "e", CcNE: "ne", CcL: "l", CcLE: "le", CcG: "g", CcGE: "ge"}

func (c Cc) String() string { return ccSuffix[c] }

// Op is an instruction's mnemonic group.
type Op int

const (
	OpMovq Op = iota
	OpAddq
	OpSubq
	OpXorq
	OpCmpq
	OpImulq
	OpIdivq
	OpPushq
	OpPopq
	OpLeaveq
	OpRetq
	OpMovzbq
	OpLeaq
	OpNegq
	OpSetcc
	OpJmp
	OpJcc
	OpCallq
)

// Instr is one pseudo (pre-allocation) or real (post-allocation) x64
// instruction. Which fields are meaningful depends on Op:
//   - binary ops (movq/addq/subq/xorq/cmpq): Src, Dst
//   - imulq/idivq: Src (implicit %rax/%rdx)
//   - pushq/popq: Dst
//   - leaveq/retq: none
//   - movzbq: Dst (src is always %al)
//   - leaq: Label, Dst
//   - negq: Dst
//   - setcc: Cc (dst is always %al)
//   - jmp/jcc: Label, Cc
//   - callq: Label
type Instr struct {
	Op    Op
	Src   Arg
	Dst   Arg
	Cc    Cc
	Label string
}

// Block mirrors ir.Block post-selection: a label and a flat instruction
// stream. x64 blocks have no separate "tail": Goto/If/Ret all lower to
// ordinary jmp/jcc/retq instructions at the end of Instrs. Instrs is an
// arena.Vector rather than a plain slice because the patch pass (pass.go)
// needs to splice a new instruction immediately before one it already holds
// a pointer to.
type Block struct {
	Label  string
	Instrs *arena.Vector[*Instr]
}

// Fun is one function's selected (and, later, allocated/patched) code.
type Fun struct {
	Label       string
	Arena       *arena.Arena
	Blocks      []*Block
	NumSpilled  int
	CalleeSaved []Reg
}

// Program is the whole translation unit's x64 form.
type Program struct {
	Funs []*Fun
}
