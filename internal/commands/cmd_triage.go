package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wcap/internal/app"
	"github.com/colonyops/wcap/internal/core/styles"
	"github.com/colonyops/wcap/internal/core/triage"
)

// sentinel answers shared by the wizard steps.
const (
	answerBack   = "back"
	answerCancel = "cancel"
)

type TriageCmd struct {
	flags *Flags
	app   *app.App
}

// NewTriageCmd creates a new triage command
func NewTriageCmd(flags *Flags, app *app.App) *TriageCmd {
	return &TriageCmd{flags: flags, app: app}
}

// Register adds the triage command to the application
func (cmd *TriageCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "triage",
		Usage:     "Triage an inbox item interactively",
		UsageText: "wcap triage <id>",
		Description: `Walks one item through the clarification questions: is it actionable,
can it be done in two minutes, and who should do it. The answers
reclassify the item into its pipeline stage.

Every step offers going back to the previous question or canceling the
session without touching the item.`,
		Action: cmd.run,
	})

	return root
}

func (cmd *TriageCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("item id is required")
	}

	it, err := cmd.app.Store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("triage item %q: %w", id, err)
	}

	out := c.Root().Writer
	fmt.Fprintf(out, "%s %s\n\n", styles.Title.Render("Triaging:"), truncate(it.Text, 70))

	session := triage.NewSession(cmd.app.Store, it)
	trashed := false

	for !session.Done() && !session.Canceled() {
		var stepErr error

		switch session.State() {
		case triage.StateActionable:
			stepErr = cmd.stepActionable(ctx, session)
		case triage.StateNonActionable:
			stepErr = cmd.stepNonActionable(ctx, session, &trashed)
		case triage.StateTwoMinute:
			stepErr = cmd.stepTwoMinute(ctx, session)
		case triage.StateDelegationDecision:
			stepErr = cmd.stepDelegation(ctx, session)
		case triage.StateDelegationForm:
			stepErr = cmd.stepDelegationForm(ctx, session)
		default:
			return fmt.Errorf("unexpected triage state %q", session.State())
		}

		if stepErr != nil {
			if errors.Is(stepErr, huh.ErrUserAborted) {
				session.Cancel()
				break
			}
			return stepErr
		}
	}

	if session.Canceled() {
		fmt.Fprintf(out, "%s\n", styles.Muted.Render("triage canceled, item unchanged"))
		return nil
	}

	if trashed {
		fmt.Fprintf(out, "%s %s\n", styles.Warning.Render("trashed"), id)
		return nil
	}

	reviewed, err := cmd.app.Items.Review(ctx, id)
	if err != nil {
		return fmt.Errorf("stamp review: %w", err)
	}

	fmt.Fprintf(out, "%s %s\n", styles.Success.Render("triaged into"), styles.StageBadge(reviewed.EffectiveStage()))
	return nil
}

func (cmd *TriageCmd) stepActionable(_ context.Context, session *triage.Session) error {
	answer, err := askSelect("Is this actionable?", []huh.Option[string]{
		huh.NewOption("Yes, something needs to happen", "yes"),
		huh.NewOption("No, nothing to do", "no"),
	}, false)
	if err != nil {
		return err
	}

	switch answer {
	case answerCancel:
		session.Cancel()
		return nil
	case answerBack:
		session.Back()
		return nil
	default:
		return session.AnswerActionable(answer == "yes")
	}
}

func (cmd *TriageCmd) stepNonActionable(ctx context.Context, session *triage.Session, trashed *bool) error {
	answer, err := askSelect("What should happen to it?", []huh.Option[string]{
		huh.NewOption("Trash it", string(triage.OptionTrash)),
		huh.NewOption("Keep as reference", string(triage.OptionReference)),
		huh.NewOption("Someday / maybe", string(triage.OptionSomeday)),
	}, true)
	if err != nil {
		return err
	}

	switch answer {
	case answerCancel:
		session.Cancel()
		return nil
	case answerBack:
		session.Back()
		return nil
	default:
		opt := triage.NonActionableOption(answer)
		if opt == triage.OptionTrash {
			*trashed = true
		}
		return session.ChooseNonActionable(ctx, opt)
	}
}

func (cmd *TriageCmd) stepTwoMinute(ctx context.Context, session *triage.Session) error {
	answer, err := askSelect("Can it be done in two minutes?", []huh.Option[string]{
		huh.NewOption("Yes, doing it now", "yes"),
		huh.NewOption("No, it needs more time", "no"),
	}, true)
	if err != nil {
		return err
	}

	switch answer {
	case answerCancel:
		session.Cancel()
		return nil
	case answerBack:
		session.Back()
		return nil
	default:
		return session.AnswerTwoMinute(ctx, answer == "yes")
	}
}

func (cmd *TriageCmd) stepDelegation(ctx context.Context, session *triage.Session) error {
	answer, err := askSelect("Who will do it?", []huh.Option[string]{
		huh.NewOption("Me, next action", string(triage.DelegateSelf)),
		huh.NewOption("Someone else", string(triage.DelegateOther)),
	}, true)
	if err != nil {
		return err
	}

	switch answer {
	case answerCancel:
		session.Cancel()
		return nil
	case answerBack:
		session.Back()
		return nil
	default:
		return session.ChooseDelegation(ctx, triage.DelegationChoice(answer))
	}
}

func (cmd *TriageCmd) stepDelegationForm(ctx context.Context, session *triage.Session) error {
	var name, followUp, notes string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Who is it delegated to?").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}).
				Value(&name),
			huh.NewInput().
				Title("Follow up date").
				Description("Free-form, e.g. 2026-09-15 or 'next friday'").
				Value(&followUp),
			huh.NewText().
				Title("Notes").
				Description("Optional, appended to the item text").
				Value(&notes),
		),
	).Run()
	if err != nil {
		// Treat an aborted form as stepping back to the delegation
		// question rather than killing the whole session.
		if errors.Is(err, huh.ErrUserAborted) {
			session.Back()
			return nil
		}
		return err
	}

	if err := session.SubmitDelegation(ctx, name, followUp, notes); err != nil {
		if errors.Is(err, triage.ErrNameRequired) {
			return cmd.stepDelegationForm(ctx, session)
		}
		return err
	}

	return nil
}

// askSelect runs a single-question select with the shared back/cancel
// options appended.
func askSelect(title string, options []huh.Option[string], withBack bool) (string, error) {
	if withBack {
		options = append(options, huh.NewOption("← Go back", answerBack))
	}
	options = append(options, huh.NewOption("Cancel triage", answerCancel))

	var answer string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&answer),
		),
	).Run()

	return answer, err
}
