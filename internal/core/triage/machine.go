// Package triage implements the GTD processing wizard as a finite-state
// machine over a single item.
//
// A Session walks one item through the fixed decision tree: is it
// actionable, can it be done in two minutes, who does it, and so on.
// Terminal answers reclassify the item and write it back through the
// store; the session itself is transient and never persisted.
package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/colonyops/wcap/internal/core/item"
)

// State identifies a wizard step.
type State string

const (
	// StateActionable asks whether the item requires any action.
	StateActionable State = "actionable-question"
	// StateNonActionable offers trash/reference/someday for inert items.
	StateNonActionable State = "non-actionable-options"
	// StateTwoMinute asks whether the action fits the two-minute rule.
	StateTwoMinute State = "two-minute-question"
	// StateDelegationDecision asks who will do the work.
	StateDelegationDecision State = "delegation-decision"
	// StateDelegationForm collects the delegate name and follow-up date.
	StateDelegationForm State = "delegation-form"
	// StateDone marks a finished session. No further inputs are accepted.
	StateDone State = "done"
	// StateCanceled marks a discarded session.
	StateCanceled State = "canceled"
)

// NonActionableOption is the disposition for a non-actionable item.
type NonActionableOption string

const (
	OptionTrash     NonActionableOption = "trash"
	OptionReference NonActionableOption = "reference"
	OptionSomeday   NonActionableOption = "someday"
)

// DelegationChoice answers who will do the work.
type DelegationChoice string

const (
	DelegateSelf  DelegationChoice = "self"
	DelegateOther DelegationChoice = "other"
)

var (
	// ErrNameRequired is returned when the delegation form is submitted
	// without a delegate name. The session stays on the form and the
	// item is not touched.
	ErrNameRequired = errors.New("delegate name is required")
	// ErrInvalidTransition is returned when an input does not apply to
	// the session's current state.
	ErrInvalidTransition = errors.New("input not valid in current state")
)

// Session is one in-flight triage interaction. It holds the item under
// triage and the current wizard step; it is discarded on completion or
// cancellation. All item writes go through the store's Upsert, never
// direct mutation.
type Session struct {
	store item.Store
	item  item.Item
	state State
	trail []State
}

// NewSession starts a triage session for the given item. The entry state
// is always the actionable question.
func NewSession(store item.Store, it item.Item) *Session {
	return &Session{
		store: store,
		item:  it,
		state: StateActionable,
	}
}

// State returns the current wizard step.
func (s *Session) State() State { return s.state }

// Item returns the item under triage. After a terminal transition this
// is the saved, reclassified item.
func (s *Session) Item() item.Item { return s.item }

// Done reports whether the session reached a terminal outcome.
func (s *Session) Done() bool { return s.state == StateDone }

// Canceled reports whether the session was discarded.
func (s *Session) Canceled() bool { return s.state == StateCanceled }

// AnswerActionable handles the entry question. Actionable items move to
// the two-minute question, everything else to the non-actionable options.
func (s *Session) AnswerActionable(actionable bool) error {
	if s.state != StateActionable {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, s.state)
	}
	if actionable {
		s.advance(StateTwoMinute)
	} else {
		s.advance(StateNonActionable)
	}
	return nil
}

// ChooseNonActionable resolves a non-actionable item. All three options
// are terminal: trash deletes the item, reference and someday
// reclassify it.
func (s *Session) ChooseNonActionable(ctx context.Context, opt NonActionableOption) error {
	if s.state != StateNonActionable {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, s.state)
	}

	switch opt {
	case OptionTrash:
		if err := s.store.Delete(ctx, s.item.ID); err != nil {
			return fmt.Errorf("trash item: %w", err)
		}
		s.state = StateDone
		return nil
	case OptionReference:
		return s.reclassify(ctx, func(it *item.Item) {
			it.Stage = item.StageReference
			it.SystemTags = it.WithSystemTags(item.TagReference)
		})
	case OptionSomeday:
		return s.reclassify(ctx, func(it *item.Item) {
			it.Stage = item.StageSomeday
			it.SystemTags = it.WithSystemTags(item.TagSomeday)
		})
	default:
		return fmt.Errorf("%w: unknown option %q", ErrInvalidTransition, opt)
	}
}

// AnswerTwoMinute handles the two-minute rule. Quick items complete
// immediately; longer ones move to the delegation decision.
func (s *Session) AnswerTwoMinute(ctx context.Context, canDoQuickly bool) error {
	if s.state != StateTwoMinute {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, s.state)
	}

	if !canDoQuickly {
		s.advance(StateDelegationDecision)
		return nil
	}

	return s.reclassify(ctx, func(it *item.Item) {
		it.Stage = item.StageCompleted
		it.Type = item.TypeCompleted
		it.SystemTags = it.WithSystemTags(item.TagCompleted, item.TagTwoMinuteRule)
	})
}

// ChooseDelegation resolves who does the work. Self is terminal (next
// action); other opens the delegation form.
func (s *Session) ChooseDelegation(ctx context.Context, choice DelegationChoice) error {
	if s.state != StateDelegationDecision {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, s.state)
	}

	switch choice {
	case DelegateSelf:
		return s.reclassify(ctx, func(it *item.Item) {
			it.Stage = item.StageNextActions
			it.SystemTags = it.WithSystemTags(item.TagNextAction)
		})
	case DelegateOther:
		s.advance(StateDelegationForm)
		return nil
	default:
		return fmt.Errorf("%w: unknown choice %q", ErrInvalidTransition, choice)
	}
}

// SubmitDelegation completes the wizard for delegated work. The name is
// required; a validation failure leaves the session on the form and the
// item untouched. Optional notes are appended to the item body.
func (s *Session) SubmitDelegation(ctx context.Context, name, followUpDate, notes string) error {
	if s.state != StateDelegationForm {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, s.state)
	}

	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}

	return s.reclassify(ctx, func(it *item.Item) {
		it.Stage = item.StageWaitingFor
		it.Type = item.TypeWaiting
		it.SystemTags = it.WithSystemTags(item.TagWaitingFor)
		it.WaitingFor = name
		it.WaitingUntil = followUpDate
		if notes != "" {
			it.Text = fmt.Sprintf("%s\n\nWaiting for: %s\nFollow up: %s\nNotes: %s",
				it.Text, name, followUpDate, notes)
		}
	})
}

// Back returns to the previous step. It is a no-op at the entry state or
// after a terminal transition, and never mutates the item.
func (s *Session) Back() {
	if s.state == StateDone || s.state == StateCanceled {
		return
	}
	if n := len(s.trail); n > 0 {
		s.state = s.trail[n-1]
		s.trail = s.trail[:n-1]
	}
}

// Cancel discards the session without mutating the item. Accepted from
// any state.
func (s *Session) Cancel() {
	if s.state == StateDone {
		return
	}
	s.state = StateCanceled
}

func (s *Session) advance(next State) {
	s.trail = append(s.trail, s.state)
	s.state = next
}

// reclassify builds a revised copy of the item, saves it through the
// store, and finishes the session.
func (s *Session) reclassify(ctx context.Context, mutate func(*item.Item)) error {
	revised := s.item
	mutate(&revised)

	saved, err := s.store.Upsert(ctx, revised)
	if err != nil {
		return fmt.Errorf("save triaged item: %w", err)
	}

	s.item = saved
	s.state = StateDone
	return nil
}
