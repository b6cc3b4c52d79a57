package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// codesParent scopes sync-code documents in the DocStore.
const codesParent = "sync-codes"

// ErrCodeInvalid is returned when a sync code does not exist, has
// expired, or was already used.
var ErrCodeInvalid = errors.New("invalid or expired sync code")

type codeRecord struct {
	UserID  string    `json:"user_id"`
	Created time.Time `json:"created"`
	Expires time.Time `json:"expires"`
}

// CodeRegistry issues and redeems short-lived, single-use sync codes
// that link an external client to a user's remote data.
type CodeRegistry struct {
	docs DocStore
	ttl  time.Duration
	now  func() time.Time
}

// NewCodeRegistry creates a registry storing codes in the given DocStore
// with the given lifetime.
func NewCodeRegistry(docs DocStore, ttl time.Duration) *CodeRegistry {
	return &CodeRegistry{docs: docs, ttl: ttl, now: time.Now}
}

// Issue creates a sync code for the user and returns it.
func (r *CodeRegistry) Issue(ctx context.Context, userID string) (string, error) {
	now := r.now()
	rec := codeRecord{
		UserID:  userID,
		Created: now,
		Expires: now.Add(r.ttl),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal sync code: %w", err)
	}

	code := uuid.NewString()
	if err := r.docs.Upsert(ctx, Document{Parent: codesParent, ID: code, Data: data}); err != nil {
		return "", fmt.Errorf("store sync code: %w", err)
	}

	return code, nil
}

// Exchange redeems a sync code for its user ID. Codes are single-use:
// a successful exchange consumes the code, and expired codes are
// rejected and removed.
func (r *CodeRegistry) Exchange(ctx context.Context, code string) (string, error) {
	doc, err := r.docs.Get(ctx, codesParent, code)
	if err != nil {
		if errors.Is(err, ErrDocNotFound) {
			return "", ErrCodeInvalid
		}
		return "", fmt.Errorf("look up sync code: %w", err)
	}

	var rec codeRecord
	if err := json.Unmarshal(doc.Data, &rec); err != nil {
		return "", ErrCodeInvalid
	}

	if r.now().After(rec.Expires) {
		_ = r.docs.Delete(ctx, codesParent, code)
		return "", ErrCodeInvalid
	}

	if err := r.docs.Delete(ctx, codesParent, code); err != nil {
		return "", fmt.Errorf("consume sync code: %w", err)
	}

	return rec.UserID, nil
}
