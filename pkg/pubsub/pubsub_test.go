package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelToTopicAndKey(t *testing.T) {
	topic, key, err := channelToTopicAndKey(UserNotificationChannel("U123"))
	require.NoError(t, err)
	assert.Equal(t, "notify-user", topic)
	assert.Equal(t, "U123", key)

	for _, bad := range []string{"", "notify:user", "notify::U1", "a:b:c:d"} {
		_, _, err := channelToTopicAndKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent(EventFollowCreated, "a", "b", FollowPayload{FollowerID: "a", FollowingID: "b"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())

	var p FollowPayload
	require.NoError(t, e.UnmarshalPayload(&p))
	assert.Equal(t, FollowPayload{FollowerID: "a", FollowingID: "b"}, p)

	e, err = NewEvent(EventFollowCreated, "a", "b", nil)
	require.NoError(t, err)
	assert.Nil(t, e.Payload)
}

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	pub, err := NewRedisPublisher(RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer pub.Close()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps := sub.Subscribe(ctx, UserNotificationChannel("b"))
	defer ps.Close()
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	event, err := NewEvent(EventFollowRequested, "a", "b", nil)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, UserNotificationChannel("b"), event))

	select {
	case msg := <-ps.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, EventFollowRequested, got.Type)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestNewPublisherDrivers(t *testing.T) {
	p, err := NewPublisher(Config{Driver: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)

	_, err = NewPublisher(Config{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}
