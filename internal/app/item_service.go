package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/wcap/internal/core/item"
)

// ErrTextRequired is returned when a capture has no text.
var ErrTextRequired = errors.New("item text is required")

// ItemService implements the item workflows above the raw store:
// capture, review stamping, and bulk import/export.
type ItemService struct {
	store item.Store
	log   zerolog.Logger
}

// NewItemService creates an item service over the given store.
func NewItemService(store item.Store, log zerolog.Logger) *ItemService {
	return &ItemService{
		store: store,
		log:   log.With().Str("cmp", "item-service").Logger(),
	}
}

// CaptureOptions are the fields a capture can set. Everything omitted
// takes the store defaults: todo type, inbox stage, generated ID.
type CaptureOptions struct {
	Text  string
	Title string
	URL   string
	Type  item.Type
	Tags  []string
}

// Capture creates a new inbox item from the given options.
func (s *ItemService) Capture(ctx context.Context, opts CaptureOptions) (item.Item, error) {
	text := strings.TrimSpace(opts.Text)
	if text == "" {
		return item.Item{}, ErrTextRequired
	}

	if opts.Type != "" && !opts.Type.IsValid() {
		return item.Item{}, fmt.Errorf("invalid item type %q", opts.Type)
	}

	saved, err := s.store.Upsert(ctx, item.Item{
		Text:  text,
		Title: strings.TrimSpace(opts.Title),
		URL:   strings.TrimSpace(opts.URL),
		Type:  opts.Type,
		Tags:  opts.Tags,
	})
	if err != nil {
		return item.Item{}, fmt.Errorf("capture item: %w", err)
	}

	s.log.Debug().Str("id", saved.ID).Msg("item captured")
	return saved, nil
}

// Review stamps the item's reviewed time to now and persists it.
func (s *ItemService) Review(ctx context.Context, id string) (item.Item, error) {
	it, err := s.store.Get(ctx, id)
	if err != nil {
		return item.Item{}, err
	}

	now := time.Now()
	it.ReviewedAt = &now

	return s.store.Upsert(ctx, it)
}

// RecordError describes one rejected import record.
type RecordError struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Imported int           `json:"imported"`
	Rejected []RecordError `json:"rejected,omitempty"`
}

// Import reads a JSON array of items and upserts them in batches.
// Malformed records are rejected individually and reported; valid
// records around them still import. The run is not atomic: records
// already written stay written if a later batch fails.
func (s *ItemService) Import(ctx context.Context, r io.Reader, batchSize int) (ImportReport, error) {
	if batchSize < 1 {
		batchSize = 20
	}

	var records []item.Item
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return ImportReport{}, fmt.Errorf("import: not a JSON item array: %w", err)
	}

	var report ImportReport
	valid := make([]item.Item, 0, len(records))
	for i, rec := range records {
		if reason := validateRecord(rec); reason != "" {
			report.Rejected = append(report.Rejected, RecordError{Index: i, ID: rec.ID, Reason: reason})
			continue
		}
		valid = append(valid, rec)
	}

	for start := 0; start < len(valid); start += batchSize {
		end := min(start+batchSize, len(valid))
		for _, rec := range valid[start:end] {
			if _, err := s.store.Upsert(ctx, rec); err != nil {
				return report, fmt.Errorf("import record %q: %w", rec.ID, err)
			}
			report.Imported++
		}
		s.log.Debug().Int("imported", report.Imported).Int("total", len(valid)).Msg("import batch written")
	}

	return report, nil
}

func validateRecord(rec item.Item) string {
	if strings.TrimSpace(rec.Text) == "" {
		return "missing text"
	}
	if rec.Type != "" && !rec.Type.IsValid() {
		return fmt.Sprintf("unknown type %q", rec.Type)
	}
	if rec.Stage != "" && !rec.Stage.IsValid() {
		return fmt.Sprintf("unknown stage %q", rec.Stage)
	}
	return ""
}

// Export writes the full item list to w as pretty-printed JSON,
// newest first, matching the on-disk file format.
func (s *ItemService) Export(ctx context.Context, w io.Writer) (int, error) {
	items, err := s.store.Fetch(ctx, item.Filters{})
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	return len(items), nil
}

// ExportFilename returns the conventional export file name for today,
// e.g. "workflow-items-2026-01-31.json".
func (s *ItemService) ExportFilename() string {
	return fmt.Sprintf("workflow-items-%s.json", time.Now().Format("2006-01-02"))
}
