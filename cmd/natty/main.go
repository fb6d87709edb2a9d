// Command natty runs keyboard and mouse input commands: remapping and
// randomized-rate autoclicking.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/natty/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "natty:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
