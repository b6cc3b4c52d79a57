package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/core/item"
	"github.com/colonyops/wcap/internal/core/styles"
	"github.com/colonyops/wcap/pkg/iojson"
)

type TagsCmd struct {
	flags *Flags
	app   *app.App

	// flags
	jsonOutput bool
}

// NewTagsCmd creates the tags and stages commands
func NewTagsCmd(flags *Flags, app *app.App) *TagsCmd {
	return &TagsCmd{flags: flags, app: app}
}

// Register adds the tags and stages commands to the application
func (cmd *TagsCmd) Register(root *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON",
		Destination: &cmd.jsonOutput,
	}

	root.Commands = append(root.Commands,
		&cli.Command{
			Name:        "tags",
			Usage:       "List all user tags in use",
			UsageText:   "wcap tags [--json]",
			Description: "Prints the distinct user tags across all items, sorted. System tags are excluded.",
			Flags:       []cli.Flag{jsonFlag},
			Action:      cmd.runTags,
		},
		&cli.Command{
			Name:        "stages",
			Usage:       "Show item counts per pipeline stage",
			UsageText:   "wcap stages [--json]",
			Description: "Prints how many items sit in each stage. Items without a stage count as inbox.",
			Flags:       []cli.Flag{jsonFlag},
			Action:      cmd.runStages,
		},
	)

	return root
}

func (cmd *TagsCmd) runTags(ctx context.Context, c *cli.Command) error {
	tags, err := cmd.app.Store.AllTags(ctx)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.WriteLine(out, tags)
	}

	for _, tag := range tags {
		fmt.Fprintln(out, tag)
	}
	return nil
}

func (cmd *TagsCmd) runStages(ctx context.Context, c *cli.Command) error {
	counts, err := cmd.app.Store.StageCounts(ctx)
	if err != nil {
		return fmt.Errorf("stage counts: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.WriteLine(out, counts)
	}

	// Stable pipeline order, not map order.
	for _, stage := range item.Stages() {
		fmt.Fprintf(out, "%s\t%d\n", styles.StageBadge(stage), counts[stage])
	}
	return nil
}
