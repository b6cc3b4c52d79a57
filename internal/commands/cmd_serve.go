package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/core/styles"
	"github.com/colonyops/wcap/internal/store/jsonfile"
	"github.com/colonyops/wcap/internal/sync"
)

type ServeCmd struct {
	flags *Flags
	app   *app.App

	// flags
	addr      string
	issueCode string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags, app *app.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run a sync server for other devices",
		UsageText: "wcap serve [--addr host:port] [--issue-code user]",
		Description: `Hosts the sync API other wcap instances connect to. Documents are
persisted in the data directory; sync.token_secret must be set in the
config file.

With --issue-code, a fresh sync code for the given user is printed at
startup. Clients exchange it for a bearer token with 'wcap sync connect'.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to sync.listen_addr)",
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "issue-code",
				Usage:       "print a sync code for this user at startup",
				Destination: &cmd.issueCode,
			},
		},
		Action: cmd.run,
	})

	return root
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	conf := cmd.flags.Config
	if conf.Sync.TokenSecret == "" {
		return fmt.Errorf("sync.token_secret must be set to run a sync server")
	}

	addr := cmd.addr
	if addr == "" {
		addr = conf.Sync.ListenAddr
	}

	docs := jsonfile.NewDocStore(filepath.Join(conf.DataDir, "sync-docs.json"), log.Logger)
	server := sync.NewServer(
		addr,
		docs,
		sync.NewCodeRegistry(docs, conf.Sync.CodeTTL),
		sync.NewTokenSigner(conf.Sync.TokenSecret, conf.Sync.TokenTTL),
		log.Logger,
	)

	if err := server.Start(ctx); err != nil {
		return err
	}

	out := c.Root().Writer
	fmt.Fprintf(out, "%s http://%s\n", styles.Success.Render("sync server listening on"), server.Addr())

	if cmd.issueCode != "" {
		code, err := server.IssueCode(ctx, cmd.issueCode)
		if err != nil {
			return fmt.Errorf("issue sync code: %w", err)
		}
		fmt.Fprintf(out, "%s %s\n", styles.Title.Render("sync code:"), code)
		fmt.Fprintf(out, "%s\n", styles.Muted.Render(fmt.Sprintf("valid for %s, single use", conf.Sync.CodeTTL)))
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
