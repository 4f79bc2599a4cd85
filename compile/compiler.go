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

// Package compile wires ast, check, ir, and codegen into one pipeline:
// lex/parse errors abort before typechecking, typecheck errors abort before
// IR generation, and anything IR generation or codegen would reject is an
// internal invariant violation (the typechecker has already ruled it out),
// so those stages panic instead of producing a diagnostic.
package compile

import (
	"fmt"
	"io"

	"ablc/ast"
	"ablc/check"
	"ablc/codegen"
	"ablc/ir"
)

// Options controls the driver's debug output and the output target.
type Options struct {
	PrintAST bool
	PrintIR  bool
	PrintAsm bool
	Target   codegen.Target
}

// Result is everything CompileSource produced along the way, for a caller
// (cmd/ablc) that wants to print intermediate stages as well as the final
// assembly.
type Result struct {
	AST string
	IR  string
	Asm string
}

// CompileSource runs the full pipeline over r. ok is false if a lex, parse,
// or type error was diagnosed; in that case Asm is empty and diagnostics
// have already been printed to stdout by the stage that found them.
func CompileSource(r io.Reader, opts Options) (Result, bool) {
	var res Result

	p := ast.NewParser(r)
	prog := p.ParseProgram()
	if p.HasError() {
		return res, false
	}
	if opts.PrintAST {
		res.AST = ast.DumpProgram(prog)
		fmt.Print(res.AST)
	}

	if !check.Check(prog) {
		return res, false
	}

	irProg := ir.Build(prog)
	if opts.PrintIR {
		res.IR = ir.DumpProgram(irProg)
		fmt.Print(res.IR)
	}

	x64 := codegen.Select(irProg)
	codegen.Finish(x64)
	res.Asm = codegen.Print(x64, opts.Target)
	if opts.PrintAsm {
		fmt.Print(res.Asm)
	}
	return res, true
}
