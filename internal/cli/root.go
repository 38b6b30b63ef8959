// Package cli declares the rbh command tree. Commands parse and validate
// their settings and hand them to Handlers; they never run the work
// themselves.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rbh/internal/cmdutil"
	"rbh/internal/config"
	"rbh/internal/version"
)

// Handlers receive parsed settings and return a process exit code.
type Handlers struct {
	Resolve func(ctx context.Context, cfg config.Config) int
	Inspect func(ctx context.Context, o Inspect) int
	Runs    func(ctx context.Context, o Runs) int
	Config  func(cfg config.Config) int
}

// NewRootCommand builds the command tree. The exit code chosen by a handler
// is stored in *code; errors returned by Execute are usage errors.
func NewRootCommand(stdout, stderr io.Writer, h Handlers, code *int) *cobra.Command {
	root := &cobra.Command{
		Use:   "rbh",
		Short: "reciprocal best-hit orthology resolver",
		Long: `rbh - reciprocal best-hit orthology resolver
  - reads two BLAST-style tabular hit tables (A->B and B->A)
  - reports accession pairs that are each other's best hit`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("rbh version {{.Version}}\n")

	root.AddCommand(newResolveCmd(stderr, h, code))
	root.AddCommand(newConfigCmd(stderr, h, code))
	root.AddCommand(newInspectCmd(h, code))
	root.AddCommand(newRunsCmd(h, code))
	root.AddCommand(newVersionCmd(stdout))
	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(stdout, "rbh version %s\n", version.Version)
			return err
		},
	}
}

// newViper merges flags, RBH_* env vars and an optional config file.
func newViper(fs *pflag.FlagSet, stderr io.Writer, configPath string) (*viper.Viper, error) {
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		quiet := v.GetString("log-level") == "error"
		for _, k := range v.AllKeys() {
			if fs.Lookup(k) == nil {
				cmdutil.Warnf(stderr, quiet, "%s: unknown key %q ignored", configPath, k)
			}
		}
	}
	return v, nil
}
