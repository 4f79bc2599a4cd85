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
	"ablc/internal/arena"
	"ablc/utils"
)

// Finish runs §4.9 end to end over an already-selected program: home
// assignment, memory-memory patching, and prologue/epilogue insertion, for
// every function of prog. It mutates each function's blocks in place.
func Finish(prog *Program) {
	for _, fn := range prog.Funs {
		homes, calleeSaved, numSpilled := Allocate(fn)
		homeAssign(fn, homes)
		patchMemMem(fn)
		addPrologueEpilogue(fn, calleeSaved, numSpilled)
	}
}

func homeOf(a Arg, homes map[string]Arg) Arg {
	if a.Kind != ArgStr {
		return a
	}
	home, ok := homes[a.Str]
	utils.Assert(ok, "no allocated home for %s", a.Str)
	return home
}

// homeAssign substitutes every Str operand with its allocated location. No
// Str survives this pass.
func homeAssign(fn *Fun, homes map[string]Arg) {
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs.Slice() {
			instr.Src = homeOf(instr.Src, homes)
			instr.Dst = homeOf(instr.Dst, homes)
		}
	}
}

func isMemMemOp(op Op) bool {
	return utils.Any(op, OpMovq, OpAddq, OpSubq, OpXorq, OpCmpq)
}

// patchMemMem rewrites any movq/addq/subq/xorq/cmpq whose operands both
// landed on a stack slot: x86-64 forbids two memory operands on one
// instruction. A movq through %rax is spliced in immediately before the
// offending instruction and its source rewritten to %rax.
func patchMemMem(fn *Fun) {
	for _, blk := range fn.Blocks {
		for i := 0; i < blk.Instrs.Len(); i++ {
			instr := *blk.Instrs.At(i)
			if !isMemMemOp(instr.Op) || !instr.Src.IsDeref() || !instr.Dst.IsDeref() {
				continue
			}
			where := blk.Instrs.At(i)
			blk.Instrs.InsertBefore(where, &Instr{Op: OpMovq, Src: instr.Src, Dst: R(RAX)})
			instr.Src = R(RAX)
			i++
		}
	}
}

// prologueK computes the subq/addq displacement K: num_spilled*8 bytes of
// spill storage, plus one more 8-byte slot of padding whenever the fixed
// frame (spill slots + callee-saved pushes + the pushed %rbp) isn't already
// 16-byte aligned, per original_source/src/codegen/x64.c's create_prelude.
func prologueK(numSpilled int, calleeSaved []Reg) int64 {
	base := (numSpilled + len(calleeSaved) + 1) * 8
	padding := utils.Align16(base) - base
	return int64(numSpilled*8 + padding)
}

// addPrologueEpilogue prepends "<fun>_prelude" and appends "<fun>_epilogue".
// No jmp bridges prelude into the function's own entry block, or epilogue
// into whatever follows: the printer lays every function's blocks out
// back-to-back in a single straight run, so falling off one label is falling
// into the next.
func addPrologueEpilogue(fn *Fun, calleeSaved []Reg, numSpilled int) {
	k := prologueK(numSpilled, calleeSaved)

	prelude := &Block{
		Label:  fn.Label + "_prelude",
		Instrs: arena.NewVector[*Instr](fn.Arena, 3+len(calleeSaved)),
	}
	emit(prelude, &Instr{Op: OpPushq, Dst: R(RBP)})
	emit(prelude, &Instr{Op: OpMovq, Src: R(RSP), Dst: R(RBP)})
	emit(prelude, &Instr{Op: OpSubq, Src: Imm(k), Dst: R(RSP)})
	for _, r := range calleeSaved {
		emit(prelude, &Instr{Op: OpPushq, Dst: R(r)})
	}

	epilogue := &Block{
		Label:  fn.Label + "_epilogue",
		Instrs: arena.NewVector[*Instr](fn.Arena, 3+len(calleeSaved)),
	}
	for i := len(calleeSaved) - 1; i >= 0; i-- {
		emit(epilogue, &Instr{Op: OpPopq, Dst: R(calleeSaved[i])})
	}
	emit(epilogue, &Instr{Op: OpAddq, Src: Imm(k), Dst: R(RSP)})
	emit(epilogue, &Instr{Op: OpPopq, Dst: R(RBP)})
	emit(epilogue, &Instr{Op: OpRetq})

	fn.Blocks = append([]*Block{prelude}, fn.Blocks...)
	fn.Blocks = append(fn.Blocks, epilogue)
	fn.NumSpilled = numSpilled
	fn.CalleeSaved = calleeSaved
}
