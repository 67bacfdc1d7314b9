package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
)

const (
	maxHandleAttempts = 3
	retryBackoff      = 200 * time.Millisecond
)

// ConfluentConsumer implements CDCEventConsumer for the users table using
// confluent-kafka-go. Offsets are committed after each message is handled.
type ConfluentConsumer struct {
	consumer *kafka.Consumer
	topic    string
	handler  UserEventHandler
	doneCh   chan struct{}
}

// NewConfluentConsumer creates a new Kafka consumer for user CDC events.
func NewConfluentConsumer(brokers, topic, groupID string, handler UserEventHandler) (*ConfluentConsumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &ConfluentConsumer{
		consumer: c,
		topic:    topic,
		handler:  handler,
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins consuming CDC messages from Kafka.
func (cc *ConfluentConsumer) Start(ctx context.Context) error {
	if err := cc.consumer.Subscribe(cc.topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", cc.topic, err)
	}

	l := pkglog.L()
	l.Info().Str("topic", cc.topic).Msg("kafka user CDC consumer started")

	go cc.consumeLoop(ctx)

	return nil
}

func (cc *ConfluentConsumer) consumeLoop(ctx context.Context) {
	l := pkglog.L()
	defer close(cc.doneCh)

	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("kafka CDC consumer shutting down")
			return
		default:
			msg, err := cc.consumer.ReadMessage(100 * time.Millisecond)
			if err != nil {
				var kerr kafka.Error
				if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				l.Error().Err(err).Msg("kafka CDC consumer error")
				continue
			}

			cc.processMessage(context.WithoutCancel(ctx), msg)
			if _, err := cc.consumer.CommitMessage(msg); err != nil {
				l.Error().Err(err).Msg("failed to commit CDC offset")
			}
		}
	}
}

// decodeMessage parses a Debezium envelope. Tombstones (empty values) and
// undecodable payloads yield nil.
func decodeMessage(value []byte) (*DebeziumMessage, error) {
	if len(value) == 0 {
		return nil, nil
	}
	var event DebeziumMessage
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// processMessage applies one message, retrying handler failures up to
// maxHandleAttempts times. The offset is committed by the caller either way.
func (cc *ConfluentConsumer) processMessage(ctx context.Context, msg *kafka.Message) {
	l := pkglog.L()

	event, err := decodeMessage(msg.Value)
	if err != nil {
		l.Error().Err(err).Int64("offset", int64(msg.TopicPartition.Offset)).Msg("failed to unmarshal debezium CDC event")
		return
	}
	if event == nil {
		return
	}

	l.Debug().
		Str("op", event.Payload.Op).
		Int64("ts_ms", event.Payload.TsMs).
		Msg("received user CDC event")

	hctx := pkglog.WithLogger(ctx, l)
	for attempt := 1; ; attempt++ {
		err := Apply(hctx, cc.handler, event)
		if err == nil {
			return
		}
		l.Error().Err(err).
			Str("op", event.Payload.Op).
			Int("attempt", attempt).
			Msg("failed to handle user CDC event")
		if attempt == maxHandleAttempts {
			return
		}
		time.Sleep(time.Duration(attempt) * retryBackoff)
	}
}

// Close waits for the consume loop to exit, so the context passed to Start
// must be cancelled first, then closes the underlying consumer.
func (cc *ConfluentConsumer) Close() error {
	<-cc.doneCh
	if err := cc.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	return nil
}
