// internal/cli/runs.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rbh/internal/config"
)

// Runs is the parsed `rbh runs` invocation.
type Runs struct {
	DB      string
	Limit   int
	RunID   string
	Partner string
	Output  string
	Header  bool
}

func newRunsCmd(h Handlers, code *int) *cobra.Command {
	var (
		o        Runs
		noHeader bool
	)
	cmd := &cobra.Command{
		Use:   "runs --db FILE [--run ID | --partner ACC]",
		Short: "list stored runs, or the pairs of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.DB == "" {
				o.DB = os.Getenv(config.EnvPrefix + "_DB")
			}
			if o.DB == "" {
				return fmt.Errorf("--db is required")
			}
			switch o.Output {
			case config.OutputText, config.OutputJSON, config.OutputJSONL:
			default:
				return fmt.Errorf("--output must be %s | %s | %s, got %q", config.OutputText, config.OutputJSON, config.OutputJSONL, o.Output)
			}
			if o.RunID != "" && o.Partner != "" {
				return fmt.Errorf("--run and --partner are mutually exclusive")
			}
			if o.Limit < 0 {
				return fmt.Errorf("--limit must be >= 0, got %d", o.Limit)
			}
			o.Header = !noHeader
			*code = h.Runs(cmd.Context(), o)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&o.DB, "db", "", "SQLite database written by resolve --db (or RBH_DB) [*]")
	fs.IntVar(&o.Limit, "limit", 20, "newest runs to list (0 = all)")
	fs.StringVar(&o.RunID, "run", "", "list the pairs of this run id")
	fs.StringVar(&o.Partner, "partner", "", "list stored pairs of any run that contain this accession")
	fs.StringVarP(&o.Output, "output", "o", config.OutputText, "output format: text | json | jsonl")
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line")
	return cmd
}
