package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/graphmap/dialect/cypher"
	"github.com/syssam/graphmap/schema"
	"github.com/syssam/graphmap/schema/load"
)

// ExplainOptions holds options for the explain command.
type ExplainOptions struct {
	Schema string // schema document path
	View   string // view to compile
	Depths map[string]int
	Sorts  []string // path:property[:asc]
}

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	opts := &ExplainOptions{}
	var sortFlags []string
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the read statement a view compiles to",
		Long: `Compile the named view's read statement and print it. Compilation
is deterministic, so the output is stable and diff-friendly; it is the
exact text a Load for this view sends to the store.`,
		Example: `  # Print the Issue view's read statement
  graphmap explain --schema graphmap.schema.yaml --view Issue

  # Sort a collection relationship in the projection
  graphmap explain --view Issue --sort assignedTo:name:asc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load.ParseFile(opts.Schema)
			if err != nil {
				return err
			}
			reg, err := doc.Registry()
			if err != nil {
				return err
			}
			v, err := reg.View(opts.View)
			if err != nil {
				return err
			}
			sorts, err := parseSorts(sortFlags)
			if err != nil {
				return err
			}
			stmt, err := cypher.CompileRead(v, cypher.ReadOptions{
				Sorts:  sorts,
				Depths: opts.Depths,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stmt.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Schema, "schema", "graphmap.schema.yaml", "schema document")
	cmd.Flags().StringVar(&opts.View, "view", "", "view to compile (required)")
	cmd.Flags().StringToIntVar(&opts.Depths, "depth", nil, "max depth overrides, path=depth")
	cmd.Flags().StringArrayVar(&sortFlags, "sort", nil, "collection sorts, path:property[:asc]")
	cobra.CheckErr(cmd.MarkFlagRequired("view"))
	return cmd
}

func parseSorts(flags []string) ([]schema.SortSpec, error) {
	specs := make([]schema.SortSpec, 0, len(flags))
	for _, f := range flags {
		var s schema.SortSpec
		parts := strings.Split(f, ":")
		switch len(parts) {
		case 2:
			s = schema.SortSpec{Path: parts[0], Property: parts[1]}
		case 3:
			if parts[2] != "asc" && parts[2] != "desc" {
				return nil, fmt.Errorf("bad sort direction %q in %q", parts[2], f)
			}
			s = schema.SortSpec{Path: parts[0], Property: parts[1], Ascending: parts[2] == "asc"}
		default:
			return nil, fmt.Errorf("bad sort %q, want path:property[:asc|desc]", f)
		}
		specs = append(specs, s)
	}
	return specs, nil
}
