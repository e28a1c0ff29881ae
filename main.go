package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/comb/internal/core/config"
	corediff "github.com/colonyops/comb/internal/core/diff"
	"github.com/colonyops/comb/internal/core/git"
	"github.com/colonyops/comb/internal/core/highlight"
	"github.com/colonyops/comb/internal/core/review"
	"github.com/colonyops/comb/internal/core/styles"
	"github.com/colonyops/comb/internal/core/tmux"
	tuidiff "github.com/colonyops/comb/internal/tui/diff"
	"github.com/colonyops/comb/pkg/executil"
	"github.com/colonyops/comb/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

type flags struct {
	LogLevel    string
	LogFile     string
	ConfigPath  string
	RepoDir     string
	BaseRef     string
	Uncommitted bool
	TmuxPane    string
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "comb.log")
	}
	return filepath.Join(dir, "comb", "comb.log")
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		f         = &flags{}
	)

	app := &cli.Command{
		Name:      "comb",
		Usage:     "Review git changes with inline comments",
		UsageText: "comb [options]",
		Description: `Comb opens an interactive diff viewer over the changes in a git
repository. Move through files and lines, attach comments to single lines or
ranges, and submit the collected feedback as a markdown review document to
the clipboard or straight into an AI agent's tmux pane.

By default comb diffs the working tree against the repository's default
branch. Use --uncommitted to review only uncommitted work, or --base to pick
a different merge base.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "repo",
				Aliases:     []string{"r"},
				Usage:       "path to the git repository",
				Value:       ".",
				Destination: &f.RepoDir,
			},
			&cli.StringFlag{
				Name:        "base",
				Aliases:     []string{"b"},
				Usage:       "base ref to diff against (defaults to the repo's default branch)",
				Destination: &f.BaseRef,
			},
			&cli.BoolFlag{
				Name:        "uncommitted",
				Aliases:     []string{"u"},
				Usage:       "review uncommitted changes only (diff against HEAD)",
				Destination: &f.Uncommitted,
			},
			&cli.StringFlag{
				Name:        "tmux-pane",
				Usage:       "tmux pane target (session:window.pane) to send the review to",
				Sources:     cli.EnvVars("COMB_TMUX_PANE"),
				Destination: &f.TmuxPane,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("COMB_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("COMB_LOG_FILE"),
				Value:       defaultLogFile(),
				Destination: &f.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("COMB_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &f.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Logs go to a file only; stdout belongs to the TUI.
			logger, closer, err := logutils.New(f.LogLevel, f.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unknown command %q. Run 'comb --help' for usage", c.Args().First())
			}
			return run(ctx, f)
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, f *flags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("comb requires an interactive terminal")
	}

	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	palette, ok := styles.GetPalette(cfg.TUI.Theme)
	if !ok {
		log.Warn().Str("theme", cfg.TUI.Theme).Msg("unknown theme, using default")
		palette, _ = styles.GetPalette(styles.DefaultTheme)
	}
	styles.SetTheme(palette)

	exec := &executil.RealExecutor{}
	vcs := git.NewExecutor(f.RepoDir, cfg.GitPath, exec)
	hl := highlight.New(cfg.TUI.SyntaxStyle)

	engine := corediff.NewEngine(corediff.Options{
		Limits: corediff.Limits{
			MaxFileBytes: cfg.Review.MaxFileBytes,
			MaxDiffLines: cfg.Review.MaxDiffLines,
		},
		Exclude: cfg.Excluded,
	}, hl, hl)

	req := corediff.Request{BaseRef: f.BaseRef, Uncommitted: f.Uncommitted}
	result, err := engine.ListFiles(ctx, vcs, req)
	if err != nil {
		return err
	}
	if len(result.Files) == 0 {
		fmt.Printf("No changes to review (%s..%s)\n", result.BaseRef, result.TargetRef)
		return nil
	}

	agent := tmux.New(exec)
	pane := f.TmuxPane
	if pane != "" && !agent.HasPane(ctx, pane) {
		log.Warn().Str("pane", pane).Msg("tmux pane not found, agent submission disabled")
		pane = ""
	}

	m := tuidiff.New(result, tuidiff.Options{
		Engine:        engine,
		VCS:           vcs,
		Store:         review.NewStore(),
		Clipboard:     review.NewClipboard(cfg.CopyCommand, exec),
		Agent:         agent,
		AgentPane:     pane,
		Request:       req,
		CacheCapacity: cfg.Review.CacheCapacity,
		ScrollMargin:  cfg.Review.ScrollMargin,
	})

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run review TUI: %w", err)
	}
	return nil
}
