// Command specq compiles and runs query specifications against CUE entity
// models.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/specq/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
