package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/mdxmend/internal"
	pkgconfig "github.com/starford/mdxmend/pkg/config"
)

var version = "dev"

// options loads the config file (defaults when absent), applies flag
// overrides, and returns the options shared by every command.
func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if dir := cmd.String("dir"); dir != "" {
		cfg.Docs.Path = dir
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lvl, err)
		}
	}
	if cmd.Bool("auto-fix") {
		cfg.Watch.AutoFix = true
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.App.HTTP.Port = int(port)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithAssumeYes(cmd.Bool("yes")),
		internal.WithDryRun(cmd.Bool("dry-run")),
		internal.WithVersion(version),
	}, nil
}

type entryFunc func(ctx context.Context, opts ...internal.Option) error

func action(fn entryFunc, extra ...internal.Option) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		if err := fn(ctx, append(opts, extra...)...); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func history(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.History(ctx, cmd.Int("run"), int(cmd.Int("limit")), opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "mdxmend",
		Usage:   "Find and repair broken front-matter titles and link/tag spacing in .mdx documents",
		Version: version,
		Action:  action(internal.Run),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when it does not exist)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("MDXMEND_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Document directory (overrides docs.path)",
				Sources: cli.EnvVars("MDXMEND_DIR"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Apply repairs without asking",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would change without writing",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Validate documents and print findings; never writes",
				Action: action(internal.Check),
			},
			{
				Name:   "repair",
				Usage:  "Join broken titles and fix syntax in every document",
				Action: action(internal.Repair),
			},
			{
				Name:   "titles",
				Usage:  "Run only the title join pass",
				Action: action(internal.Repair, internal.WithPasses(true, false)),
			},
			{
				Name:   "syntax",
				Usage:  "Run only the syntax fix pass",
				Action: action(internal.Repair, internal.WithPasses(false, true)),
			},
			{
				Name:  "watch",
				Usage: "Re-check documents as they change",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "auto-fix", Usage: "Repair changed documents in place"},
				},
				Action: action(internal.Watch),
			},
			{
				Name:  "serve",
				Usage: "Serve the HTTP API with live events",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "auto-fix", Usage: "Repair changed documents in place"},
					&cli.IntFlag{Name: "port", Usage: "HTTP port (overrides app.http.port)"},
				},
				Action: action(internal.Serve),
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: action(internal.ServeMCP),
			},
			{
				Name:  "history",
				Usage: "List recorded repair runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of runs"},
					&cli.IntFlag{Name: "run", Usage: "Show the outcomes of one run"},
				},
				Action: history,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
