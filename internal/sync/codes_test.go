package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CodeRegistry_issue_and_exchange(t *testing.T) {
	ctx := context.Background()
	reg := NewCodeRegistry(NewMemDocStore(), 15*time.Minute)

	code, err := reg.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, code)

	userID, err := reg.Exchange(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func Test_CodeRegistry_codes_are_single_use(t *testing.T) {
	ctx := context.Background()
	reg := NewCodeRegistry(NewMemDocStore(), 15*time.Minute)

	code, err := reg.Issue(ctx, "user-1")
	require.NoError(t, err)

	_, err = reg.Exchange(ctx, code)
	require.NoError(t, err)

	_, err = reg.Exchange(ctx, code)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func Test_CodeRegistry_unknown_code_rejected(t *testing.T) {
	reg := NewCodeRegistry(NewMemDocStore(), 15*time.Minute)

	_, err := reg.Exchange(context.Background(), "no-such-code")
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func Test_CodeRegistry_expired_code_rejected_and_removed(t *testing.T) {
	ctx := context.Background()
	docs := NewMemDocStore()
	reg := NewCodeRegistry(docs, 15*time.Minute)

	code, err := reg.Issue(ctx, "user-1")
	require.NoError(t, err)

	reg.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	_, err = reg.Exchange(ctx, code)
	assert.ErrorIs(t, err, ErrCodeInvalid)

	_, err = docs.Get(ctx, codesParent, code)
	assert.ErrorIs(t, err, ErrDocNotFound)
}

func Test_CodeRegistry_codes_are_unique(t *testing.T) {
	ctx := context.Background()
	reg := NewCodeRegistry(NewMemDocStore(), 15*time.Minute)

	seen := map[string]bool{}
	for range 20 {
		code, err := reg.Issue(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, seen[code])
		seen[code] = true
	}
}
