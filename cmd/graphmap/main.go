// Command graphmap is a developer tool for graphmap schema documents: it
// validates declarations and prints the Cypher a view compiles to.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/graphmap/internal/commands"
)

func main() {
	root := &cobra.Command{
		Use:           "graphmap",
		Short:         "Inspect graphmap schema documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		commands.NewValidateCommand(),
		commands.NewExplainCommand(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "graphmap:", err)
		os.Exit(1)
	}
}
