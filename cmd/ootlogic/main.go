// Command ootlogic compiles randomizer access rules, searches world graphs
// and computes sphere logs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/ootlogic/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
