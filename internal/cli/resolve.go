// internal/cli/resolve.go
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rbh/internal/config"
)

func addResolveFlags(fs *pflag.FlagSet) {
	d := config.Default()

	fs.String("config", "", "YAML config file (flags > RBH_* env > file > defaults)")

	// input
	fs.String("forward", "", "A->B hit table, outfmt 6/7 (gz/zst ok, '-' = stdin) [*]")
	fs.String("reverse", "", "B->A hit table, outfmt 6/7 (gz/zst ok, '-' = stdin) [*]")
	fs.String("on-malformed", d.OnMalformed, "malformed rows: fail | skip")

	// resolution
	fs.String("evalue-cutoff", d.EValueCutoff, "largest e-value either supporting hit may have (inclusive)")
	fs.String("policy", d.Policy, "acceptance policy: strict | top-n | mutual")
	fs.Int("top-n", d.TopN, "reverse hits considered by --policy top-n")
	fs.Float64("min-bitscore", d.MinBitScore, "minimum bit score for --policy mutual")
	fs.Bool("bidirectional", false, "also resolve from the B side; pairs found twice are reported once")
	fs.Int("threads", 0, "number of worker threads (0 = all CPUs)")

	// output
	fs.StringP("output", "o", d.Output, "output format: text | json | jsonl")
	fs.Bool("sort", false, "sort output by (id_a, id_b)")
	fs.Bool("no-header", false, "suppress header line in text/TSV")
	fs.String("diagnostics", "", "write per-accession outcomes (TSV) to this path")
	fs.String("db", "", "store the run and its pairs in this SQLite database")
	fs.String("metrics-file", "", "write Prometheus textfile metrics to this path")

	// logging and exit status
	fs.String("log-level", d.LogLevel, "log level: debug | info | warn | error")
	fs.String("log-format", d.LogFormat, "log format: text | json")
	fs.Int("no-match-exit-code", d.NoMatchExitCode, "exit code when no pair is found (0..255)")
}

func loadViper(cmd *cobra.Command, stderr io.Writer) (*viper.Viper, error) {
	path, _ := cmd.Flags().GetString("config")
	return newViper(cmd.Flags(), stderr, path)
}

func newResolveCmd(stderr io.Writer, h Handlers, code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve --forward A2B.tsv --reverse B2A.tsv",
		Short: "resolve reciprocal best-hit pairs",
		Example: `  rbh resolve --forward a_vs_b.tsv --reverse b_vs_a.tsv
  rbh resolve --forward a_vs_b.tsv.gz --reverse b_vs_a.tsv.gz --evalue-cutoff 1e-10 -o jsonl
  RBH_POLICY=top-n RBH_TOP_N=2 rbh resolve --config rbh.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadViper(cmd, stderr)
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			*code = h.Resolve(cmd.Context(), cfg)
			return nil
		},
	}
	addResolveFlags(cmd.Flags())
	return cmd
}

func newConfigCmd(stderr io.Writer, h Handlers, code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective resolve configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadViper(cmd, stderr)
			if err != nil {
				return err
			}
			var cfg config.Config
			if err := v.Unmarshal(&cfg); err != nil {
				return err
			}
			*code = h.Config(cfg)
			return nil
		},
	}
	addResolveFlags(cmd.Flags())
	return cmd
}
