// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"rbh/internal/appcore"
	"rbh/internal/cli"
	"rbh/internal/config"
	"rbh/internal/logging"
	"rbh/internal/pipeline"
	"rbh/internal/writers"
)

// RunContext executes argv and returns the process exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	code := appcore.ExitOK
	root := cli.NewRootCommand(stdout, stderr, handlers(stdout, stderr), &code)
	root.SetArgs(argv)
	if err := root.ExecuteContext(parent); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		_, _ = fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
		return appcore.ExitUsage
	}
	return code
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func handlers(stdout, stderr io.Writer) cli.Handlers {
	return cli.Handlers{
		Resolve: func(ctx context.Context, cfg config.Config) int {
			log, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				_, _ = fmt.Fprintln(stderr, err)
				return appcore.ExitUsage
			}
			o := appcore.Options{
				Pipeline: pipeline.Config{
					Forward:       cfg.Forward,
					Reverse:       cfg.Reverse,
					SkipMalformed: cfg.OnMalformed == config.MalformedSkip,
				},
				Resolve:         cfg.Options(),
				PolicyName:      cfg.ParsedPolicy.Name,
				Cutoff:          cfg.EValueCutoff,
				Diagnostics:     cfg.Diagnostics,
				DB:              cfg.DB,
				MetricsFile:     cfg.MetricsFile,
				NoMatchExitCode: cfg.NoMatchExitCode,
			}
			wf := appcore.NewPairWriterFactory(cfg.Output, cfg.Sort, !cfg.NoHeader)
			return appcore.Run(ctx, stdout, stderr, o, wf, log)
		},
		Inspect: func(ctx context.Context, o cli.Inspect) int {
			log, err := logging.New(stderr, o.LogLevel, o.LogFormat)
			if err != nil {
				_, _ = fmt.Fprintln(stderr, err)
				return appcore.ExitUsage
			}
			return appcore.Inspect(ctx, stdout, stderr, appcore.InspectOptions{
				Hits:          o.Hits,
				Origin:        o.Origin,
				Accessions:    o.Accessions,
				Header:        o.Header,
				SkipMalformed: o.SkipMalformed,
			}, config.Default().NoMatchExitCode, log)
		},
		Runs: func(ctx context.Context, o cli.Runs) int {
			return appcore.Runs(ctx, stdout, stderr, appcore.RunsOptions{
				DB:      o.DB,
				Limit:   o.Limit,
				RunID:   o.RunID,
				Partner: o.Partner,
				Output:  o.Output,
				Header:  o.Header,
			})
		},
		Config: func(cfg config.Config) int {
			outw := bufio.NewWriter(stdout)
			err := config.WriteYAML(outw, cfg)
			if err == nil {
				err = outw.Flush()
			}
			if writers.IsBrokenPipe(err) {
				return appcore.ExitOK
			} else if err != nil {
				_, _ = fmt.Fprintln(stderr, err)
				return appcore.ExitRuntime
			}
			return appcore.ExitOK
		},
	}
}
