package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/core/styles"
	"github.com/colonyops/wcap/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags *Flags

	// flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "wcap config validate [options]",
				Description: "Validates the configuration file, checking field values, file paths, and the sync endpoint.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return root
}

type fieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	err := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)
	issues := collectIssues(err)

	out := c.Root().Writer

	if cmd.format == "json" {
		result := struct {
			Valid  bool         `json:"valid"`
			Errors []fieldIssue `json:"errors,omitempty"`
		}{
			Valid:  len(issues) == 0,
			Errors: issues,
		}
		if werr := iojson.WriteWith(out, c.Root().ErrWriter, result); werr != nil {
			return werr
		}
		if len(issues) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	if len(issues) == 0 {
		fmt.Fprintf(out, "%s\n", styles.Success.Render("Configuration is valid"))
		return nil
	}

	for _, issue := range issues {
		fmt.Fprintf(out, "%s %s: %s\n", styles.Error.Render("error"), issue.Field, issue.Message)
	}
	fmt.Fprintf(out, "\n%s\n", styles.Error.Render(fmt.Sprintf("%d error(s) found", len(issues))))

	return cli.Exit("", 1)
}

// collectIssues flattens a validation error into displayable field
// issues. Non-field errors surface under a generic "config" field.
func collectIssues(err error) []fieldIssue {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		issues := make([]fieldIssue, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			issues = append(issues, fieldIssue{Field: fe.Field, Message: fe.Err.Error()})
		}
		return issues
	}

	return []fieldIssue{{Field: "config", Message: err.Error()}}
}
