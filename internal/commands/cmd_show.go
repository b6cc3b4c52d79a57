package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/core/styles"
	"github.com/colonyops/wcap/pkg/iojson"
)

type ShowCmd struct {
	flags *Flags
	app   *app.App

	// flags
	jsonOutput bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *app.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:        "show",
		Usage:       "Show a single item",
		UsageText:   "wcap show [--json] <id>",
		Description: "Renders one item in full, including tags, stages, and delegation details.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the raw item as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return root
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("item id is required")
	}

	it, err := cmd.app.Store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("show item %q: %w", id, err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, it)
	}

	var md strings.Builder
	if it.Title != "" {
		fmt.Fprintf(&md, "# %s\n\n", it.Title)
	}
	md.WriteString(it.Text)
	md.WriteString("\n")
	if it.URL != "" {
		fmt.Fprintf(&md, "\n<%s>\n", it.URL)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}

	rendered, err := r.Render(md.String())
	if err != nil {
		return fmt.Errorf("render item: %w", err)
	}

	fmt.Fprint(out, rendered)

	fmt.Fprintf(out, "%s  %s %s  %s %s\n",
		styles.StageBadge(it.EffectiveStage()),
		styles.Muted.Render("type:"), it.Type,
		styles.Muted.Render("id:"), it.ID,
	)
	if len(it.Tags) > 0 {
		fmt.Fprintf(out, "%s %s\n", styles.Muted.Render("tags:"), strings.Join(it.Tags, ", "))
	}
	if len(it.SystemTags) > 0 {
		fmt.Fprintf(out, "%s %s\n", styles.Muted.Render("system:"), strings.Join(it.SystemTags, ", "))
	}
	if it.WaitingFor != "" {
		fmt.Fprintf(out, "%s %s", styles.Muted.Render("waiting for:"), it.WaitingFor)
		if it.WaitingUntil != "" {
			fmt.Fprintf(out, " %s %s", styles.Muted.Render("until"), it.WaitingUntil)
		}
		fmt.Fprintln(out)
	}
	if it.ReviewedAt != nil {
		fmt.Fprintf(out, "%s %s\n", styles.Muted.Render("reviewed:"), it.ReviewedAt.Format("2006-01-02 15:04"))
	}

	return nil
}
