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
)

func TestPrintIncludesDataSectionAndGlobalMain(t *testing.T) {
	prog := selectFrom(t, `void main() { print(1); return; }`)
	Finish(prog)
	out := Print(prog, ELF)
	if !strings.Contains(out, ".data\nformat_string: .asciz \"%ld\\n\"") {
		t.Fatalf("missing .data section:\n%s", out)
	}
	if !strings.Contains(out, ".text\n.global main") {
		t.Fatalf("missing .text/.global main:\n%s", out)
	}
	if !strings.Contains(out, "main:\n") {
		t.Fatalf("missing the function's own label:\n%s", out)
	}
	if !strings.Contains(out, "main_prelude:\n") || !strings.Contains(out, "main_epilogue:\n") {
		t.Fatalf("missing prelude/epilogue labels:\n%s", out)
	}
}

func TestPrintDarwinManglesLabelsAndCallTargets(t *testing.T) {
	prog := selectFrom(t, `void main() { print(1); return; }`)
	Finish(prog)
	out := Print(prog, Darwin)
	if !strings.Contains(out, ".global _main") {
		t.Fatalf("expected _main in .global line:\n%s", out)
	}
	if !strings.Contains(out, "_main:\n") {
		t.Fatalf("expected the function label itself to be mangled:\n%s", out)
	}
	if !strings.Contains(out, "callq _printf") {
		t.Fatalf("expected printf's call target to be mangled on Darwin:\n%s", out)
	}
}

func TestPrintElfLeavesLabelsUnmangled(t *testing.T) {
	prog := selectFrom(t, `void main() { print(1); return; }`)
	Finish(prog)
	out := Print(prog, ELF)
	if strings.Contains(out, "_main") {
		t.Fatalf("did not expect any underscore-mangled symbol on ELF:\n%s", out)
	}
	if !strings.Contains(out, "callq printf") {
		t.Fatalf("expected an unmangled callq printf:\n%s", out)
	}
}
