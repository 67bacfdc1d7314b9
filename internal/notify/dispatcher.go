// Package notify publishes follow notifications to the event bus.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/mnkvreels/vreels-backend/internal/metrics"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
	"github.com/mnkvreels/vreels-backend/pkg/pubsub"
)

const defaultTimeout = 3 * time.Second

// Dispatcher sends follow.* events to the recipient's notification channel.
// Each Notify returns immediately; publishing happens on its own goroutine
// bounded by timeout.
type Dispatcher struct {
	publisher pubsub.Publisher
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over publisher.
func NewDispatcher(publisher pubsub.Publisher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{publisher: publisher, timeout: timeout}
}

// payloadFor returns the follow edge an event is about. For accepted
// requests the actor is the followed user.
func payloadFor(eventType, actorID, recipientID string) pubsub.FollowPayload {
	if eventType == pubsub.EventFollowAccepted {
		return pubsub.FollowPayload{FollowerID: recipientID, FollowingID: actorID}
	}
	return pubsub.FollowPayload{FollowerID: actorID, FollowingID: recipientID}
}

// Notify publishes eventType from actorID to recipientID in the background.
func (d *Dispatcher) Notify(ctx context.Context, eventType, actorID, recipientID string) {
	l := pkglog.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, actorID, recipientID, payloadFor(eventType, actorID, recipientID))
	if err != nil {
		metrics.RecordNotification(eventType, err)
		l.Error().Err(err).Str("event_type", eventType).Msg("failed to build notification")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		err := d.publisher.Publish(pctx, pubsub.UserNotificationChannel(recipientID), event)
		metrics.RecordNotification(eventType, err)
		if err != nil {
			l.Warn().Err(err).
				Str("event_type", eventType).
				Str(pkglog.FieldTargetID, recipientID).
				Msg("failed to publish notification")
		}
	}()
}

// Wait blocks until every in-flight publish has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close waits for in-flight publishes and closes the publisher.
func (d *Dispatcher) Close() error {
	d.wg.Wait()
	return d.publisher.Close()
}
