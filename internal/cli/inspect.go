// internal/cli/inspect.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rbh-core/hit"
	"rbh/internal/config"
)

// Inspect is the parsed `rbh inspect` invocation.
type Inspect struct {
	Hits          string
	Origin        hit.Origin
	Accessions    []string
	Header        bool
	SkipMalformed bool
	LogLevel      string
	LogFormat     string
}

func newInspectCmd(h Handlers, code *int) *cobra.Command {
	var (
		o           Inspect
		origin      string
		noHeader    bool
		onMalformed string
	)
	cmd := &cobra.Command{
		Use:   "inspect --hits FILE [--origin A|B] ACCESSION...",
		Short: "print the ranked hits of accessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.Hits == "" {
				return fmt.Errorf("--hits is required")
			}
			og, err := hit.ParseOrigin(origin)
			if err != nil {
				return err
			}
			switch onMalformed {
			case config.MalformedFail, config.MalformedSkip:
			default:
				return fmt.Errorf("--on-malformed must be %s | %s, got %q", config.MalformedFail, config.MalformedSkip, onMalformed)
			}
			o.Origin = og
			o.Accessions = args
			o.Header = !noHeader
			o.SkipMalformed = onMalformed == config.MalformedSkip
			o.LogLevel, o.LogFormat, err = inspectLogging(cmd)
			if err != nil {
				return err
			}
			*code = h.Inspect(cmd.Context(), o)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&o.Hits, "hits", "", "hit table to index (gz/zst ok, '-' = stdin) [*]")
	fs.StringVar(&origin, "origin", "A", "origin of the table: A (A->B) | B (B->A)")
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line")
	fs.StringVar(&onMalformed, "on-malformed", config.MalformedFail, "malformed rows: fail | skip")
	fs.String("log-level", "warn", "log level: debug | info | warn | error")
	fs.String("log-format", "text", "log format: text | json")
	return cmd
}

// inspectLogging resolves the logging flags against RBH_LOG_* env vars.
func inspectLogging(cmd *cobra.Command) (level, format string, err error) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, k := range []string{"log-level", "log-format"} {
		if err := v.BindPFlag(k, cmd.Flags().Lookup(k)); err != nil {
			return "", "", err
		}
	}
	return v.GetString("log-level"), v.GetString("log-format"), nil
}
