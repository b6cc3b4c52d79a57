package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/core/styles"
)

type IOCmd struct {
	flags *Flags
	app   *app.App

	// flags
	output string
}

// NewIOCmd creates the import and export commands
func NewIOCmd(flags *Flags, app *app.App) *IOCmd {
	return &IOCmd{flags: flags, app: app}
}

// Register adds the import and export commands to the application
func (cmd *IOCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands,
		&cli.Command{
			Name:      "import",
			Usage:     "Import items from a JSON file",
			UsageText: "wcap import <file | ->",
			Description: `Reads a JSON array of items and writes them into the store.

Malformed records are skipped and reported; valid records around them
still import. Use "-" to read from stdin.`,
			Action: cmd.runImport,
		},
		&cli.Command{
			Name:      "export",
			Usage:     "Export all items as JSON",
			UsageText: "wcap export [-o file]",
			Description: `Writes the full item list as pretty-printed JSON.

Without -o the export goes to a dated file in the current directory,
e.g. workflow-items-2026-08-30.json. Use "-o -" for stdout.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "output",
					Aliases:     []string{"o"},
					Usage:       "output file, or - for stdout",
					Destination: &cmd.output,
				},
			},
			Action: cmd.runExport,
		},
	)

	return root
}

func (cmd *IOCmd) runImport(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("input file is required (use - for stdin)")
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	report, err := cmd.app.Items.Import(ctx, r, cmd.flags.Config.Import.BatchSize)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	fmt.Fprintf(out, "%s %d item(s)\n", styles.Success.Render("imported"), report.Imported)

	for _, rej := range report.Rejected {
		label := fmt.Sprintf("record %d", rej.Index)
		if rej.ID != "" {
			label += " (" + rej.ID + ")"
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", styles.Error.Render("skipped"), label, rej.Reason)
	}

	if len(report.Rejected) > 0 {
		fmt.Fprintf(os.Stderr, "%d record(s) skipped\n", len(report.Rejected))
	}

	return nil
}

func (cmd *IOCmd) runExport(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	target := cmd.output
	if target == "" {
		target = cmd.app.Items.ExportFilename()
	}

	var w io.Writer = os.Stdout
	if target != "-" {
		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	count, err := cmd.app.Items.Export(ctx, w)
	if err != nil {
		return err
	}

	if target != "-" {
		fmt.Fprintf(out, "%s %d item(s) to %s\n", styles.Success.Render("exported"), count, target)
	}

	return nil
}
