// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/consensys/go-lustre/pkg/lustre/elab"
	"github.com/consensys/go-lustre/pkg/lustre/parser"
	"github.com/consensys/go-lustre/pkg/util/source"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] source_file...",
	Short: "Parse and elaborate one or more Lustre files.",
	Long: `Parse and elaborate one or more Lustre files, reporting any
	diagnostics against the original source.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		stats := getFlag(cmd, "stats")
		//
		srcfiles, err := source.ReadFiles(args...)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		ok := true
		//
		for i := range srcfiles {
			ok = checkSourceFile(&srcfiles[i], stats) && ok
		}
		//
		if !ok {
			os.Exit(1)
		}
	},
}

// checkSourceFile parses and elaborates one file, reporting diagnostics.
func checkSourceFile(srcfile *source.File, stats bool) bool {
	log.Debugf("parsing %s", srcfile.Filename())
	//
	program, err := parser.Parse(srcfile)
	//
	if err != nil {
		reportDiagnostic(srcfile, err.Span(), "error", err.Message())
		return false
	}
	//
	log.Debugf("elaborating %s (%d declarations)", srcfile.Filename(), len(program.Declarations))
	//
	ctx, warnings, errs := elab.ElaborateProgram(program)
	//
	for _, w := range warnings {
		reportDiagnostic(srcfile, w.Span, "warning", w.Msg)
	}
	//
	if len(errs) > 0 {
		for _, e := range errs {
			reportDiagnostic(srcfile, e.Span, "error", fmt.Sprintf("%s: %s", e.Kind, e.Msg))
		}
		//
		return false
	}
	//
	for _, node := range ctx.Nodes() {
		log.Infof("node %s: %d inputs, %d outputs, %d locals, %d equations, %d calls",
			node.Name, len(node.Inputs), len(node.Outputs), len(node.Locals),
			len(node.Equations), len(node.Calls))
		//
		if stats {
			fmt.Printf("%s: %d equations, %d properties\n", node.Name,
				len(node.Equations), len(node.Properties))
		}
	}
	//
	return true
}

// reportDiagnostic prints a positioned diagnostic, highlighting the enclosing
// source line when attached to an ANSI terminal.
func reportDiagnostic(srcfile *source.File, span source.Span, severity string, msg string) {
	line := srcfile.FindFirstEnclosingLine(span)
	number, column := srcfile.LineColumn(span.Start())
	//
	fmt.Printf("%s:%d:%d: %s: %s\n", srcfile.Filename(), number, column, severity, msg)
	fmt.Println(line.String())
	// Underline the offending span.
	width := min(span.Length(), line.Length()-column+1)
	marker := strings.Repeat(" ", column-1) + strings.Repeat("^", max(width, 1))
	//
	if term.IsTerminal(int(os.Stdout.Fd())) {
		colour := "\033[31m"
		if severity == "warning" {
			colour = "\033[33m"
		}
		//
		fmt.Printf("%s%s\033[0m\n", colour, marker)
	} else {
		fmt.Println(marker)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("stats", false, "print per-node statistics")
}
