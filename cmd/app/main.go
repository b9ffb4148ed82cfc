package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/othala/internal"
	pkgconfig "github.com/starford/othala/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), "", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("data"); dir != "" {
		cfg.Data.Dir = dir
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := internal.Import(ctx, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("import error: %w", err)
	}
	fmt.Printf("%d people imported\n", n)
	return nil
}

func runFetch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rawURL := cmd.String("url")
	if rawURL == "" {
		rawURL = cfg.Source.URL
	}
	if rawURL == "" {
		return fmt.Errorf("fetch: --url or source.url is required")
	}
	out, err := internal.Fetch(ctx, rawURL, cmd.String("out"), internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("fetch error: %w", err)
	}
	fmt.Printf("saved %s\n", out)
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:   "othala",
		Usage:  "People directory with parent linking, filters and sorting over JSON/YAML datasets",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Override the dataset directory",
				Sources: cli.EnvVars("OTHALA_DATA_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Sync the dataset directory into SQLite once and exit",
				Action: runImport,
			},
			{
				Name:   "fetch",
				Usage:  "Download a people API payload into the dataset directory",
				Action: runFetch,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "People API URL (defaults to source.url)",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Target file name inside the dataset directory",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
