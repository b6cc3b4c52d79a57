package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/core/item"
	"github.com/colonyops/wcap/internal/core/styles"
)

type CaptureCmd struct {
	flags *Flags
	app   *app.App

	// flags
	title    string
	url      string
	itemType string
	tags     []string
}

// NewCaptureCmd creates a new capture command
func NewCaptureCmd(flags *Flags, app *app.App) *CaptureCmd {
	return &CaptureCmd{flags: flags, app: app}
}

// Register adds the capture command to the application
func (cmd *CaptureCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "capture",
		Usage:     "Capture a new item into the inbox",
		UsageText: "wcap capture [options] [text...]",
		Description: `Captures a thought, link, or task into the inbox for later triage.

Text can be given as arguments. When omitted, an interactive form
prompts for it.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Usage:       "optional short title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "url",
				Usage:       "source URL the item was captured from",
				Destination: &cmd.url,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "item type (todo, inprogress, waiting, completed)",
				Destination: &cmd.itemType,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "tag to attach (repeatable)",
				Destination: &cmd.tags,
			},
		},
		Action: cmd.run,
	})

	return root
}

func (cmd *CaptureCmd) run(ctx context.Context, c *cli.Command) error {
	text := strings.Join(c.Args().Slice(), " ")

	if strings.TrimSpace(text) == "" {
		var err error
		text, err = cmd.runForm()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}

	saved, err := cmd.app.Items.Capture(ctx, app.CaptureOptions{
		Text:  text,
		Title: cmd.title,
		URL:   cmd.url,
		Type:  item.Type(cmd.itemType),
		Tags:  cmd.tags,
	})
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	fmt.Fprintf(c.Root().Writer, "%s %s\n", styles.Success.Render("captured"), saved.ID)
	return nil
}

func (cmd *CaptureCmd) runForm() (string, error) {
	var text string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What's on your mind?").
				Description("Captured into the inbox for later triage").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("text is required")
					}
					return nil
				}).
				Value(&text),
		),
	).Run()

	return text, err
}
