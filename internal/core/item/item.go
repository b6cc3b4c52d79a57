// Package item defines the captured-item domain model for GTD triage.
package item

import (
	"slices"
	"time"
)

// Type classifies an item's workflow status.
type Type string

const (
	TypeTodo       Type = "todo"
	TypeInProgress Type = "inprogress"
	TypeWaiting    Type = "waiting"
	TypeCompleted  Type = "completed"
)

// IsValid reports whether the type is one of the known values.
func (t Type) IsValid() bool {
	switch t {
	case TypeTodo, TypeInProgress, TypeWaiting, TypeCompleted:
		return true
	}
	return false
}

// Stage is an item's position in the GTD pipeline.
type Stage string

const (
	StageInbox       Stage = "inbox"
	StageActionable  Stage = "actionable"
	StageNextActions Stage = "next-actions"
	StageWaitingFor  Stage = "waiting-for"
	StageSomeday     Stage = "someday"
	StageReference   Stage = "reference"
	StageCompleted   Stage = "completed"
)

// IsValid reports whether the stage is one of the known values.
func (s Stage) IsValid() bool {
	switch s {
	case StageInbox, StageActionable, StageNextActions, StageWaitingFor,
		StageSomeday, StageReference, StageCompleted:
		return true
	}
	return false
}

// Stages lists all pipeline stages in processing order.
func Stages() []Stage {
	return []Stage{
		StageInbox,
		StageActionable,
		StageNextActions,
		StageWaitingFor,
		StageSomeday,
		StageReference,
		StageCompleted,
	}
}

// System tags applied by the triage wizard. These accumulate on an item
// and are never removed by re-triage.
const (
	TagReference     = "gtd:reference"
	TagSomeday       = "gtd:someday"
	TagCompleted     = "gtd:completed"
	TagTwoMinuteRule = "gtd:two-minute-rule"
	TagNextAction    = "gtd:next-action"
	TagWaitingFor    = "gtd:waiting-for"
)

// Item is a single captured piece of web content moving through triage.
type Item struct {
	ID           string         `json:"id"`
	Type         Type           `json:"type"`
	Text         string         `json:"text"`
	URL          string         `json:"url"`
	Title        string         `json:"title"`
	Screenshot   string         `json:"screenshot,omitempty"`
	Tags         []string       `json:"tags"`
	SystemTags   []string       `json:"systemTags"`
	Stage        Stage          `json:"gtdStage"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	ReviewedAt   *time.Time     `json:"reviewedAt"`
	WaitingFor   string         `json:"waitingFor,omitempty"`
	WaitingUntil string         `json:"waitingUntil,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// EffectiveStage returns the item's stage, defaulting missing or
// unrecognized values to the inbox.
func (i Item) EffectiveStage() Stage {
	if i.Stage.IsValid() {
		return i.Stage
	}
	return StageInbox
}

// HasTag reports whether the user tag is present on the item.
func (i Item) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// HasSystemTag reports whether the system tag is present on the item.
func (i Item) HasSystemTag(tag string) bool {
	return slices.Contains(i.SystemTags, tag)
}

// WithSystemTags returns a copy of the item's system tags with the given
// tags appended. System tags behave as a set: already-present tags are
// not duplicated.
func (i Item) WithSystemTags(tags ...string) []string {
	out := slices.Clone(i.SystemTags)
	for _, tag := range tags {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// Filters narrows a fetch. Zero-value fields are ignored; set fields
// are ANDed together.
type Filters struct {
	Type  Type
	Stage Stage
	Tag   string
}

// Match reports whether the item satisfies every set filter.
func (f Filters) Match(i Item) bool {
	if f.Type != "" && i.Type != f.Type {
		return false
	}
	if f.Stage != "" && i.EffectiveStage() != f.Stage {
		return false
	}
	if f.Tag != "" && !i.HasTag(f.Tag) {
		return false
	}
	return true
}
