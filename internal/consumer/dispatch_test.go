package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

type fakeHandler struct {
	upserted []*domain.User
	deleted  []string
	err      error
}

func (h *fakeHandler) UpsertUser(_ context.Context, u *domain.User) error {
	h.upserted = append(h.upserted, u)
	return h.err
}

func (h *fakeHandler) DeleteUser(_ context.Context, id string) error {
	h.deleted = append(h.deleted, id)
	return h.err
}

func decode(t *testing.T, raw string) *DebeziumMessage {
	t.Helper()
	var msg DebeziumMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	return &msg
}

func TestApplyUpsert(t *testing.T) {
	h := &fakeHandler{}
	msg := decode(t, `{"payload":{"op":"u","after":{"id":"u1","username":"alice","phone":"+100","account_type":"private"}}}`)

	require.NoError(t, Apply(context.Background(), h, msg))
	require.Len(t, h.upserted, 1)
	assert.Equal(t, "alice", h.upserted[0].Username)
	assert.Equal(t, "+100", h.upserted[0].Phone)
	assert.Equal(t, domain.AccountPrivate, h.upserted[0].AccountType)
	assert.Empty(t, h.deleted)
}

func TestApplyDeletes(t *testing.T) {
	h := &fakeHandler{}
	ctx := context.Background()

	require.NoError(t, Apply(ctx, h, decode(t, `{"payload":{"op":"u","after":{"id":"u1","deleted_at":"2024-01-01T00:00:00Z"}}}`)))
	require.NoError(t, Apply(ctx, h, decode(t, `{"payload":{"op":"d","before":{"id":"u2"}}}`)))

	assert.Equal(t, []string{"u1", "u2"}, h.deleted)
	assert.Empty(t, h.upserted)
}

func TestApplySkipsIncompleteEvents(t *testing.T) {
	h := &fakeHandler{}
	ctx := context.Background()

	require.NoError(t, Apply(ctx, h, decode(t, `{"payload":{"op":"c"}}`)))
	require.NoError(t, Apply(ctx, h, decode(t, `{"payload":{"op":"d"}}`)))
	require.NoError(t, Apply(ctx, h, decode(t, `{"payload":{"op":"t"}}`)))

	assert.Empty(t, h.upserted)
	assert.Empty(t, h.deleted)
}

func TestApplyReturnsHandlerError(t *testing.T) {
	h := &fakeHandler{err: errors.New("db down")}
	err := Apply(context.Background(), h, decode(t, `{"payload":{"op":"r","after":{"id":"u1"}}}`))
	assert.EqualError(t, err, "db down")
}

func TestDecodeMessage(t *testing.T) {
	event, err := decodeMessage(nil)
	require.NoError(t, err)
	assert.Nil(t, event)

	_, err = decodeMessage([]byte("{not json"))
	assert.Error(t, err)

	event, err = decodeMessage([]byte(`{"payload":{"op":"c","ts_ms":42,"after":{"id":"u1"}}}`))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "c", event.Payload.Op)
	assert.EqualValues(t, 42, event.Payload.TsMs)
}
