package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/core/item"
	"github.com/colonyops/wcap/internal/core/styles"
	"github.com/colonyops/wcap/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *app.App

	// flags
	itemType   string
	stage      string
	tag        string
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *app.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List items, newest first",
		UsageText: "wcap ls [--type t] [--stage s] [--tag name] [--json]",
		Description: `Displays a table of captured items with their stage, type, and tags.

Filters combine: an item must match every filter given. Use --json for
machine-readable output, one item per line.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Usage:       "filter by item type",
				Destination: &cmd.itemType,
			},
			&cli.StringFlag{
				Name:        "stage",
				Usage:       "filter by pipeline stage",
				Destination: &cmd.stage,
			},
			&cli.StringFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "filter by user tag",
				Destination: &cmd.tag,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return root
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	filters := item.Filters{
		Type:  item.Type(cmd.itemType),
		Stage: item.Stage(cmd.stage),
		Tag:   cmd.tag,
	}

	items, err := cmd.app.Store.Fetch(ctx, filters)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, it := range items {
			if err := iojson.WriteLine(out, it); err != nil {
				return fmt.Errorf("encode item: %w", err)
			}
		}
		return nil
	}

	if len(items) == 0 {
		fmt.Fprintf(os.Stderr, "No items found\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTAGE\tTYPE\tTEXT\tTAGS")

	for _, it := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			it.ID,
			styles.StageBadge(it.EffectiveStage()),
			it.Type,
			truncate(it.Text, 60),
			styles.Muted.Render(strings.Join(it.Tags, ",")),
		)
	}

	return w.Flush()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
