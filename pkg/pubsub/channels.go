package pubsub

import (
	"fmt"
	"strings"
)

// ChannelUserNotifications carries events addressed to one user.
const ChannelUserNotifications = "notify:user:%s"

// Social graph event types.
const (
	EventFollowCreated   = "follow.created"
	EventFollowRequested = "follow.requested"
	EventFollowAccepted  = "follow.accepted"
)

// UserNotificationChannel returns the channel for events addressed to userID.
func UserNotificationChannel(userID string) string {
	return fmt.Sprintf(ChannelUserNotifications, userID)
}

// channelToTopicAndKey maps a Redis-style channel onto a Kafka topic and a
// partition key, so per-user ordering survives on Kafka.
//
//	"notify:user:U123" -> topic "notify-user", key "U123"
func channelToTopicAndKey(channel string) (topic, key string, err error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[0] + "-" + parts[1], parts[2], nil
}

// FollowPayload is attached to follow.* events.
type FollowPayload struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}
