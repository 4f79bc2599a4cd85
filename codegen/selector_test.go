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
	"strings"
	"testing"

	"ablc/ast"
	"ablc/check"
	"ablc/ir"
)

func selectFrom(t *testing.T, src string) *Program {
	t.Helper()
	p := ast.NewParser(strings.NewReader(src))
	prog := p.ParseProgram()
	if p.HasError() {
		t.Fatalf("unexpected parse error")
	}
	if !check.Check(prog) {
		t.Fatalf("unexpected type error")
	}
	return Select(ir.Build(prog))
}

func findFun(t *testing.T, prog *Program, name string) *Fun {
	t.Helper()
	for _, f := range prog.Funs {
		if f.Label == name {
			return f
		}
	}
	t.Fatalf("no function named %s", name)
	return nil
}

// add8 takes 8 integer parameters, the last two spilled to the caller's
// stack.
func TestSelectorParamHomingSixRegistersThenStack(t *testing.T) {
	prog := selectFrom(t, `
		int add8(int a, int b, int c, int d, int e, int f, int g, int h) {
			return a + b + c + d + e + f + g + h;
		}
		void main() { return; }
	`)
	fn := findFun(t, prog, "add8")
	entry := fn.Blocks[0]
	instrs := entry.Instrs.Slice()
	if len(instrs) < 8 {
		t.Fatalf("expected at least 8 homing movs, got %d", len(instrs))
	}
	wantRegs := []Reg{RDI, RSI, RDX, RCX, R8, R9}
	for i, r := range wantRegs {
		if instrs[i].Src.Kind != ArgReg || instrs[i].Src.Reg != r {
			t.Fatalf("param %d: expected source %s, got %+v", i, r, instrs[i].Src)
		}
	}
	// g (7th) and h (8th) come off the stack, g deeper than h.
	g, h := instrs[6], instrs[7]
	if !g.Src.IsDeref() || !h.Src.IsDeref() {
		t.Fatalf("expected params 7 and 8 to be stack derefs, got %+v / %+v", g.Src, h.Src)
	}
	if g.Src.Offset != 24 || h.Src.Offset != 16 {
		t.Fatalf("expected offsets 24/16, got %d/%d", g.Src.Offset, h.Src.Offset)
	}
}

func TestSelectorDivisionZeroesRdxAndUsesR15Scratch(t *testing.T) {
	prog := selectFrom(t, `int f(int a, int b) { return a / b; } void main() { return; }`)
	fn := findFun(t, prog, "f")
	var sawXor, sawR15Mov, sawIdiv bool
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs.Slice() {
			switch {
			case instr.Op == OpXorq && instr.Dst.Kind == ArgReg && instr.Dst.Reg == RDX:
				sawXor = true
			case instr.Op == OpMovq && instr.Dst.Kind == ArgReg && instr.Dst.Reg == R15:
				sawR15Mov = true
			case instr.Op == OpIdivq:
				sawIdiv = true
				if instr.Src.Kind != ArgReg || instr.Src.Reg != R15 {
					t.Fatalf("expected idivq %%r15, got %+v", instr.Src)
				}
			}
		}
	}
	if !sawXor || !sawR15Mov || !sawIdiv {
		t.Fatalf("missing expected division sequence: xor=%v r15mov=%v idiv=%v", sawXor, sawR15Mov, sawIdiv)
	}
}

// callPushes collects the pushq operands emitted before the named callq.
func callPushes(t *testing.T, fn *Fun, callee string) []Arg {
	t.Helper()
	var pushes []Arg
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs.Slice() {
			if instr.Op == OpPushq {
				pushes = append(pushes, instr.Dst)
			}
			if instr.Op == OpCallq && instr.Label == callee {
				return pushes
			}
		}
	}
	t.Fatalf("expected a callq %s", callee)
	return nil
}

func TestSelectorCallPushesStackArgsInSourceOrder(t *testing.T) {
	prog := selectFrom(t, `
		int add8(int a, int b, int c, int d, int e, int f, int g, int h) { return a; }
		void main() { int r = add8(1, 2, 3, 4, 5, 6, 7, 8); print(r); return; }
	`)
	pushes := callPushes(t, findFun(t, prog, "main"), "add8")
	// Two stack args leave %rsp where it started, still 8 off a 16-byte
	// boundary, so a %rax filler goes in first; then $7 and $8 in source
	// order so the 7th argument lands deepest.
	if len(pushes) != 3 {
		t.Fatalf("expected 3 pushes (filler + two stack args), got %d: %+v", len(pushes), pushes)
	}
	if pushes[0].Kind != ArgReg || pushes[0].Reg != RAX {
		t.Fatalf("expected the filler push to be %%rax, got %+v", pushes[0])
	}
	if pushes[1].Kind != ArgImm || pushes[1].Imm != 7 || pushes[2].Kind != ArgImm || pushes[2].Imm != 8 {
		t.Fatalf("expected $7 then $8, got %+v / %+v", pushes[1], pushes[2])
	}
}

func TestSelectorCallOddStackArgCountNeedsNoFiller(t *testing.T) {
	prog := selectFrom(t, `
		int add7(int a, int b, int c, int d, int e, int f, int g) { return a; }
		void main() { int r = add7(1, 2, 3, 4, 5, 6, 7); print(r); return; }
	`)
	pushes := callPushes(t, findFun(t, prog, "main"), "add7")
	// One stack arg realigns the call on its own.
	if len(pushes) != 1 {
		t.Fatalf("expected a single push, got %d: %+v", len(pushes), pushes)
	}
	if pushes[0].Kind != ArgImm || pushes[0].Imm != 7 {
		t.Fatalf("expected the stack arg $7, got %+v", pushes[0])
	}
}

func TestSelectorCallWithRegisterArgsOnlyStillAligns(t *testing.T) {
	prog := selectFrom(t, `
		int id(int a) { return a; }
		void main() { int r = id(1); print(r); return; }
	`)
	pushes := callPushes(t, findFun(t, prog, "main"), "id")
	if len(pushes) != 1 || pushes[0].Kind != ArgReg || pushes[0].Reg != RAX {
		t.Fatalf("expected a lone %%rax filler push, got %+v", pushes)
	}
}

func TestSelectorIfTailComparesAgainstOne(t *testing.T) {
	prog := selectFrom(t, `void main() { if (1 > 0) print(1); return; }`)
	main := findFun(t, prog, "main")
	var sawCmp, sawJe, sawJmp bool
	for _, blk := range main.Blocks {
		for _, instr := range blk.Instrs.Slice() {
			switch instr.Op {
			case OpCmpq:
				if instr.Src.Kind == ArgImm && instr.Src.Imm == 1 {
					sawCmp = true
				}
			case OpJcc:
				if instr.Cc == CcE {
					sawJe = true
				}
			case OpJmp:
				sawJmp = true
			}
		}
	}
	if !sawCmp || !sawJe || !sawJmp {
		t.Fatalf("expected cmpq $1/je/jmp sequence for If, got cmp=%v je=%v jmp=%v", sawCmp, sawJe, sawJmp)
	}
}
