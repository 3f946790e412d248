// Command sqlcore compiles entity persist requests for a model directory
// and prints the SQL each dialect would run.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sqlcore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sqlcore:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
