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
	"strings"
	"testing"

	"ablc/ast"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := ast.NewParser(strings.NewReader(src))
	prog := p.ParseProgram()
	if p.HasError() {
		t.Fatalf("unexpected parse error for %q", src)
	}
	return prog
}

func TestCheckValidProgram(t *testing.T) {
	prog := parse(t, `
		int add(int a, int b) { return a + b; }
		void main() { print(add(1, 2)); }
	`)
	if !Check(prog) {
		t.Fatalf("expected a well-typed program to check cleanly")
	}
}

func TestCheckRedefinitionIsAnError(t *testing.T) {
	prog := parse(t, `void main() { int x; int x; }`)
	if Check(prog) {
		t.Fatalf("expected redefinition of x to be rejected")
	}
}

func TestCheckMainMustExist(t *testing.T) {
	prog := parse(t, `int f() { return 1; }`)
	if Check(prog) {
		t.Fatalf("expected a missing main to be rejected")
	}
}

func TestCheckMainMustReturnVoid(t *testing.T) {
	prog := parse(t, `int main() { return 1; }`)
	if Check(prog) {
		t.Fatalf("expected a non-void main to be rejected")
	}
}

func TestCheckConditionMustBeBool(t *testing.T) {
	prog := parse(t, `void main() { if (1) { } }`)
	if Check(prog) {
		t.Fatalf("expected an int condition to be rejected")
	}
}

func TestCheckShortCircuitOperandsMustBeBool(t *testing.T) {
	prog := parse(t, `void main() { int x = 0; if (x != 0 and 1) { } }`)
	if Check(prog) {
		t.Fatalf("expected an int operand of and to be rejected")
	}
}

func TestCheckAnnotatesExprTypes(t *testing.T) {
	prog := parse(t, `void main() { int x = 1 + 2; }`)
	if !Check(prog) {
		t.Fatalf("unexpected type error")
	}
	decl := prog.Funs[0].Body.Decls[0].(*ast.VarDecl)
	if decl.Init.GetType() != ast.TInt {
		t.Fatalf("expected 1 + 2 to be annotated Int, got %s", decl.Init.GetType())
	}
}

func TestCheckRecursiveCallIsAllowed(t *testing.T) {
	prog := parse(t, `
		int fact(int n) { if (n <= 1) return 1; return n * fact(n - 1); }
		void main() { print(fact(5)); }
	`)
	if !Check(prog) {
		t.Fatalf("expected a self-recursive function to check cleanly")
	}
}

func TestCheckArityMismatch(t *testing.T) {
	prog := parse(t, `
		int add(int a, int b) { return a + b; }
		void main() { print(add(1)); }
	`)
	if Check(prog) {
		t.Fatalf("expected an arity mismatch to be rejected")
	}
}

func TestCheckVoidVariableRejected(t *testing.T) {
	prog := parse(t, `void main() { void x; }`)
	if Check(prog) {
		t.Fatalf("expected a void-typed variable to be rejected")
	}
}
