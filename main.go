package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	wcapapp "github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/commands"
	"github.com/colonyops/wcap/internal/core/config"
	"github.com/colonyops/wcap/internal/core/eventbus"
	"github.com/colonyops/wcap/internal/core/styles"
	"github.com/colonyops/wcap/internal/store/jsonfile"
	"github.com/colonyops/wcap/internal/sync"
	"github.com/colonyops/wcap/pkg/logutils"
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

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
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

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		wcap      = &wcapapp.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "wcap",
		Usage:     "Capture and triage workflow items",
		UsageText: "wcap [global options] command [command options]",
		Description: `wcap is a capture-first task tool. Anything on your mind goes into the
inbox with 'wcap capture'; 'wcap triage' later clarifies each item into
reference material, a next action, something delegated, or the trash.

Items live in a single JSON file in the data directory and can be
replicated to other devices through 'wcap serve' and 'wcap sync'.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("WCAP_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/wcap.log)",
				Sources:     cli.EnvVars("WCAP_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("WCAP_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("WCAP_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/wcap.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "wcap.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			bus := eventbus.New()
			eventbus.RegisterDebugLogger(bus, log.Logger)

			store := jsonfile.NewItemStore(filepath.Join(cfg.DataDir, cfg.Storage.File), bus, log.Logger)

			// Replicate writes to the configured sync server when this
			// device has connected before. Best effort; failures only log.
			var replicator *sync.Replicator
			if cfg.Sync.Endpoint != "" {
				if token, err := os.ReadFile(filepath.Join(cfg.DataDir, "sync-token")); err == nil {
					client := sync.NewClient(strings.TrimRight(cfg.Sync.Endpoint, "/"), strings.TrimSpace(string(token)))
					replicator = sync.NewReplicator(client, bus, log.Logger)
					replicator.Attach()
				}
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*wcap = *wcapapp.New(cfg, bus, store, log.Logger)
			wcap.Replicator = replicator

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewCaptureCmd(flags, wcap).Register(app)
	app = commands.NewLsCmd(flags, wcap).Register(app)
	app = commands.NewShowCmd(flags, wcap).Register(app)
	app = commands.NewTriageCmd(flags, wcap).Register(app)
	app = commands.NewTagsCmd(flags, wcap).Register(app)
	app = commands.NewIOCmd(flags, wcap).Register(app)
	app = commands.NewServeCmd(flags, wcap).Register(app)
	app = commands.NewSyncCmd(flags, wcap).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
