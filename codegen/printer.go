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
	"fmt"
	"strings"

	"ablc/utils"
)

// Target picks the symbol-mangling convention for user labels and external
// call targets. The printer takes it as an explicit parameter rather than
// consulting runtime.GOOS, so output stays deterministic independent of the
// machine running the compiler; cmd/ablc defaults it from the host OS.
type Target int

const (
	ELF Target = iota
	Darwin
)

// symbol applies Darwin's leading underscore to a user label or external
// call target; ELF output is unmangled.
func (t Target) symbol(name string) string {
	if t == Darwin {
		return "_" + name
	}
	return name
}

// Print renders prog (already homed, patched, and wrapped in
// prologue/epilogue blocks by Finish) as AT&T-syntax assembly text.
func Print(prog *Program, target Target) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".data\nformat_string: .asciz \"%%ld\\n\"\n\n")
	fmt.Fprintf(&b, ".text\n.global %s\n\n", target.symbol("main"))

	for _, fn := range prog.Funs {
		fmt.Fprintf(&b, "%s:\n", target.symbol(fn.Label))
		for _, blk := range fn.Blocks {
			fmt.Fprintf(&b, "%s:\n", target.symbol(blk.Label))
			for _, instr := range blk.Instrs.Slice() {
				b.WriteByte('\t')
				printInstr(&b, instr, target)
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func printInstr(b *strings.Builder, instr *Instr, target Target) {
	switch instr.Op {
	case OpMovq:
		fmt.Fprintf(b, "movq %s, %s", instr.Src, instr.Dst)
	case OpAddq:
		fmt.Fprintf(b, "addq %s, %s", instr.Src, instr.Dst)
	case OpSubq:
		fmt.Fprintf(b, "subq %s, %s", instr.Src, instr.Dst)
	case OpXorq:
		fmt.Fprintf(b, "xorq %s, %s", instr.Src, instr.Dst)
	case OpCmpq:
		fmt.Fprintf(b, "cmpq %s, %s", instr.Src, instr.Dst)
	case OpImulq:
		fmt.Fprintf(b, "imulq %s", instr.Src)
	case OpIdivq:
		fmt.Fprintf(b, "idivq %s", instr.Src)
	case OpPushq:
		fmt.Fprintf(b, "pushq %s", instr.Dst)
	case OpPopq:
		fmt.Fprintf(b, "popq %s", instr.Dst)
	case OpLeaveq:
		b.WriteString("leaveq")
	case OpRetq:
		b.WriteString("retq")
	case OpMovzbq:
		fmt.Fprintf(b, "movzbq %%al, %s", instr.Dst)
	case OpLeaq:
		fmt.Fprintf(b, "leaq %s(%%rip), %s", instr.Label, instr.Dst)
	case OpNegq:
		fmt.Fprintf(b, "negq %s", instr.Dst)
	case OpSetcc:
		fmt.Fprintf(b, "set%s %%al", instr.Cc)
	case OpJmp:
		fmt.Fprintf(b, "jmp %s", target.symbol(instr.Label))
	case OpJcc:
		fmt.Fprintf(b, "j%s %s", instr.Cc, target.symbol(instr.Label))
	case OpCallq:
		fmt.Fprintf(b, "callq %s", target.symbol(instr.Label))
	default:
		utils.ShouldNotReachHere()
	}
}
