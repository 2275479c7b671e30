// Package repl drives a live runtime from an interactive prompt. Each line is
// parsed as one statement and executed against the program's root scope; the
// state map is printed whenever a statement actually changed something.
package repl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bryanhoulton/giast/internal/parser"
	"github.com/bryanhoulton/giast/internal/runtime"
)

const PROMPT = ">> "

// Start reads statements from in until EOF. The runtime must already be
// constructed; Start runs its init block before accepting input.
func Start(rt *runtime.Runtime, in io.Reader, out io.Writer) error {
	if err := rt.Run(); err != nil {
		return err
	}
	printState(out, rt)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		stmt, err := parser.ParseStatement(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		before := rt.StateVersion()
		if err := rt.EvaluateStmt(stmt); err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if rt.StateVersion() != before {
			printState(out, rt)
		}
	}
}

func printState(out io.Writer, rt *runtime.Runtime) {
	encoded, err := json.Marshal(rt.GetState())
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	fmt.Fprintln(out, string(encoded))
}
