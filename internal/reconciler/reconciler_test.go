package reconciler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnkvreels/vreels-backend/internal/config"
	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/reconciler"
	"github.com/mnkvreels/vreels-backend/internal/store"
	"github.com/mnkvreels/vreels-backend/internal/testutil"
)

type fakeRecounter struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeRecounter) Recount(_ context.Context, userID string) (domain.Counts, error) {
	f.calls = append(f.calls, userID)
	if f.fail[userID] {
		return domain.Counts{}, errors.New("boom")
	}
	return domain.Counts{UserID: userID}, nil
}

func TestReconcileRecountsHotUsers(t *testing.T) {
	_, client := testutil.NewRedis(t)
	s := store.NewRedisCountStoreFromClient(client, 0)
	ctx := context.Background()

	for _, id := range []string{"a", "a", "a", "b", "b", "c"} {
		require.NoError(t, s.RecordAccess(ctx, id))
	}

	rc := &fakeRecounter{fail: map[string]bool{"a": true}}
	n := reconciler.New(s, rc, config.ReconcilerConfig{TopN: 2}).Reconcile(ctx)

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a", "b"}, rc.calls)

	top, err := s.GetTopHotKeys(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestReconcileWithoutHotKeys(t *testing.T) {
	_, client := testutil.NewRedis(t)
	s := store.NewRedisCountStoreFromClient(client, 0)

	rc := &fakeRecounter{}
	assert.Zero(t, reconciler.New(s, rc, config.ReconcilerConfig{}).Reconcile(context.Background()))
	assert.Empty(t, rc.calls)
}
