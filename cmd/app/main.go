package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/munin/internal"
	"github.com/starford/munin/internal/backup"
	"github.com/starford/munin/internal/links"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/tidy"
	pkgconfig "github.com/starford/munin/pkg/config"
)

// loadConfig reads the YAML config, falling back to defaults plus
// plain env vars (VAULT_PATH, OPENAI_API_KEY, OPENAI_MODEL) when the
// file is absent and the flag was not set explicitly.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if err := pkgconfig.Load(path, cfg); err != nil {
		if cmd.IsSet("config") || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// reviewWindow builds the window from the review command flags.
func reviewWindow(cmd *cli.Command, cfg *internal.Config) (models.ReviewWindow, error) {
	w := models.ReviewWindow{Days: cfg.Review.DefaultDays}
	if cmd.Bool("all") {
		w = models.ReviewWindow{AllTime: true}
	} else if cmd.IsSet("days") {
		days := int(cmd.Int("days"))
		if days < 1 {
			return w, fmt.Errorf("--days must be at least 1")
		}
		w.Days = days
	}
	if date := cmd.String("date"); date != "" {
		ref, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return w, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
		}
		// End of day, so notes modified on the reference date count.
		w.Reference = ref.Add(24*time.Hour - time.Second)
	}
	return w, nil
}

func runReview(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg)

	v, err := internal.OpenVault(cfg)
	if err != nil {
		return err
	}
	pipe, err := internal.NewPipeline(cfg, v, nil, logger)
	if err != nil {
		return err
	}
	window, err := reviewWindow(cmd, cfg)
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		res, err := pipe.Render(ctx, window)
		if err != nil {
			return err
		}
		fmt.Print(res.Document)
		return nil
	}

	res, err := pipe.Run(ctx, window)
	if err != nil {
		return err
	}
	fmt.Printf("Review written to %s (%d notes", res.Path, len(res.Review.Entries))
	if res.Failures > 0 {
		fmt.Printf(", %d failed", res.Failures)
	}
	if res.NotesSkipped > 0 {
		fmt.Printf(", %d unreadable and skipped", res.NotesSkipped)
	}
	fmt.Println(")")
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func runTidy(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg)
	v, err := internal.OpenVault(cfg)
	if err != nil {
		return err
	}
	st, err := tidy.New(v, logger, cmd.Bool("dry-run")).Run(ctx)
	if err != nil {
		return err
	}
	mode := "Tidied"
	if cmd.Bool("dry-run") {
		mode = "Would tidy"
	}
	fmt.Printf("%s %d files: %d frontmatter added, %d tag sets merged, %d renamed, %d errors\n",
		mode, st.FilesProcessed, st.FrontmatterAdded, st.TagsMerged, st.FilesRenamed, st.Errors)
	return nil
}

func runLinks(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg)
	v, err := internal.OpenVault(cfg)
	if err != nil {
		return err
	}
	checker := links.New(v, logger)
	rep, err := checker.Run(ctx)
	if err != nil {
		return err
	}
	path, err := checker.Write(rep)
	if err != nil {
		return err
	}
	fmt.Printf("Checked %d links in %d files, %d broken. Report: %s\n",
		rep.LinksChecked, rep.FilesScanned, len(rep.Broken), path)
	return nil
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}
	v, err := internal.OpenVault(cfg)
	if err != nil {
		return err
	}
	if err := v.EnsureStructure(); err != nil {
		return err
	}
	created, err := v.WriteTemplates()
	if err != nil {
		return err
	}
	fmt.Printf("Vault initialized at %s (%d templates written)\n", cfg.Vault.Path, len(created))
	return nil
}

func runBackup(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dest, err := backup.Snapshot(cfg.Vault.Path, cmd.String("dest"))
	if err != nil {
		return err
	}
	fmt.Printf("Vault backed up to %s\n", dest)
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "munin",
		Usage: "Observation-note review agent for a Markdown vault",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "review",
				Usage:  "Analyze recent observation notes and write a weekly review",
				Action: runReview,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Usage: "Trailing window in days"},
					&cli.BoolFlag{Name: "all", Usage: "Review all notes regardless of age"},
					&cli.StringFlag{Name: "date", Usage: "Reference end date (YYYY-MM-DD), defaults to today"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Print the review instead of writing it"},
				},
			},
			{
				Name:   "serve",
				Usage:  "Start the HTTP chat shell",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Start the MCP server on stdio",
				Action: runMCP,
			},
			{
				Name:   "tidy",
				Usage:  "Normalize frontmatter, tags, and file names across the vault",
				Action: runTidy,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "Report changes without writing"},
				},
			},
			{
				Name:   "links",
				Usage:  "Write a broken-wikilinks report for the vault",
				Action: runLinks,
			},
			{
				Name:   "init",
				Usage:  "Create the vault structure and starter templates",
				Action: runInit,
			},
			{
				Name:   "backup",
				Usage:  "Snapshot the vault to a timestamped sibling directory",
				Action: runBackup,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dest", Usage: "Directory to place the backup in"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
