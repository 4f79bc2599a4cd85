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
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"ablc/codegen"
	"ablc/compile"
)

func defaultTarget() codegen.Target {
	if runtime.GOOS == "darwin" {
		return codegen.Darwin
	}
	return codegen.ELF
}

var command = &cobra.Command{
	Use:  "ablc source.al [--print-ast] [--print-ir] [--print-asm] (--skip-output | --output FILE)",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printAST, _ := cmd.PersistentFlags().GetBool("print-ast")
		printIR, _ := cmd.PersistentFlags().GetBool("print-ir")
		printAsm, _ := cmd.PersistentFlags().GetBool("print-asm")
		skipOutput, _ := cmd.PersistentFlags().GetBool("skip-output")
		output, _ := cmd.PersistentFlags().GetString("output")

		if !skipOutput && output == "" {
			fmt.Fprintln(os.Stderr, "usage: ablc source.al (--output FILE | --skip-output)")
			os.Exit(1)
		}

		src := args[0]
		f, err := os.Open(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()

		res, ok := compile.CompileSource(f, compile.Options{
			PrintAST: printAST,
			PrintIR:  printIR,
			PrintAsm: printAsm,
			Target:   defaultTarget(),
		})
		if !ok {
			os.Exit(1)
		}
		if skipOutput {
			return
		}
		if err := os.WriteFile(output, []byte(res.Asm), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	command.PersistentFlags().BoolP("print-ast", "a", false, "print the parsed AST before typechecking")
	command.PersistentFlags().BoolP("print-ir", "i", false, "print the three-address IR before code generation")
	command.PersistentFlags().BoolP("print-asm", "x", false, "print the generated assembly")
	command.PersistentFlags().BoolP("skip-output", "s", false, "don't write an assembly file")
	command.PersistentFlags().StringP("output", "o", "", "output assembly file path")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
