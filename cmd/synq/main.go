// Command synq corrupts real datasets, runs sweep plans and inspects the
// computation ledger.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/synq/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
