package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/core/item"
	"github.com/colonyops/wcap/internal/core/styles"
	"github.com/colonyops/wcap/internal/sync"
)

const tokenFileName = "sync-token"

type SyncCmd struct {
	flags *Flags
	app   *app.App

	// flags
	endpoint string
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags, app *app.App) *SyncCmd {
	return &SyncCmd{flags: flags, app: app}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(root *cli.Command) *cli.Command {
	endpointFlag := &cli.StringFlag{
		Name:        "endpoint",
		Usage:       "sync server base URL (defaults to sync.endpoint)",
		Destination: &cmd.endpoint,
	}

	root.Commands = append(root.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Sync items with a remote server",
		UsageText: "wcap sync <connect|push|pull> [options]",
		Description: `Moves items between this device and a sync server hosted with
'wcap serve'. Connect once with a sync code; the bearer token is kept
in the data directory for later pushes and pulls.`,
		Commands: []*cli.Command{
			{
				Name:      "connect",
				Usage:     "Exchange a sync code for a bearer token",
				UsageText: "wcap sync connect [--endpoint url] <code>",
				Flags:     []cli.Flag{endpointFlag},
				Action:    cmd.runConnect,
			},
			{
				Name:      "push",
				Usage:     "Upload all local items to the server",
				UsageText: "wcap sync push [--endpoint url]",
				Flags:     []cli.Flag{endpointFlag},
				Action:    cmd.runPush,
			},
			{
				Name:      "pull",
				Usage:     "Download remote items into the local store",
				UsageText: "wcap sync pull [--endpoint url]",
				Flags:     []cli.Flag{endpointFlag},
				Action:    cmd.runPull,
			},
		},
	})

	return root
}

func (cmd *SyncCmd) runConnect(ctx context.Context, c *cli.Command) error {
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("sync code is required")
	}

	client := sync.NewClient(cmd.resolveEndpoint(), "")
	token, err := client.Connect(ctx, code)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := cmd.writeToken(token); err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "%s\n", styles.Success.Render("connected, token saved"))
	return nil
}

func (cmd *SyncCmd) runPush(ctx context.Context, c *cli.Command) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}

	items, err := cmd.app.Store.Fetch(ctx, item.Filters{})
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	if err := client.Push(ctx, items); err != nil {
		return fmt.Errorf("push: %w", err)
	}

	fmt.Fprintf(c.Root().Writer, "%s %d item(s)\n", styles.Success.Render("pushed"), len(items))
	return nil
}

func (cmd *SyncCmd) runPull(ctx context.Context, c *cli.Command) error {
	client, err := cmd.client()
	if err != nil {
		return err
	}

	items, err := client.Pull(ctx)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	// Pulled items must not be echoed back to the server through the
	// background replicator.
	if rep := cmd.app.Replicator; rep != nil {
		rep.Detach()
		defer rep.Attach()
	}

	for _, it := range items {
		if _, err := cmd.app.Store.Upsert(ctx, it); err != nil {
			return fmt.Errorf("store pulled item %q: %w", it.ID, err)
		}
	}

	fmt.Fprintf(c.Root().Writer, "%s %d item(s)\n", styles.Success.Render("pulled"), len(items))
	return nil
}

func (cmd *SyncCmd) client() (*sync.Client, error) {
	token, err := cmd.readToken()
	if err != nil {
		return nil, err
	}
	return sync.NewClient(cmd.resolveEndpoint(), token), nil
}

func (cmd *SyncCmd) resolveEndpoint() string {
	if cmd.endpoint != "" {
		return strings.TrimRight(cmd.endpoint, "/")
	}
	return strings.TrimRight(cmd.flags.Config.Sync.Endpoint, "/")
}

func (cmd *SyncCmd) tokenPath() string {
	return filepath.Join(cmd.flags.Config.DataDir, tokenFileName)
}

func (cmd *SyncCmd) writeToken(token string) error {
	if err := os.MkdirAll(cmd.flags.Config.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(cmd.tokenPath(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (cmd *SyncCmd) readToken() (string, error) {
	data, err := os.ReadFile(cmd.tokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("not connected, run 'wcap sync connect <code>' first")
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
