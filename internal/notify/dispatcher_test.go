package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnkvreels/vreels-backend/pkg/pubsub"
)

type published struct {
	channel string
	event   *pubsub.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	sent   []published
	err    error
	closed bool
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, event *pubsub.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, published{channel, event})
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func TestNotifyPublishesToRecipient(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	d.Notify(ctx, pubsub.EventFollowAccepted, "target", "requester")
	// The request context ending must not abort the publish.
	cancel()
	d.Wait()

	require.Len(t, pub.sent, 1)
	got := pub.sent[0]
	assert.Equal(t, pubsub.UserNotificationChannel("requester"), got.channel)
	assert.Equal(t, "target", got.event.ActorID)

	var payload pubsub.FollowPayload
	require.NoError(t, got.event.UnmarshalPayload(&payload))
	assert.Equal(t, pubsub.FollowPayload{FollowerID: "requester", FollowingID: "target"}, payload)

	require.NoError(t, d.Close())
	assert.True(t, pub.closed)
}

func TestNotifySwallowsPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("bus down")}
	d := NewDispatcher(pub, 0)

	d.Notify(context.Background(), pubsub.EventFollowCreated, "a", "b")
	d.Wait()

	require.Len(t, pub.sent, 1)
	var payload pubsub.FollowPayload
	require.NoError(t, pub.sent[0].event.UnmarshalPayload(&payload))
	assert.Equal(t, pubsub.FollowPayload{FollowerID: "a", FollowingID: "b"}, payload)
}
