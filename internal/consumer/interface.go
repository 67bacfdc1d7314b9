package consumer

import (
	"context"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

// DebeziumUserRecord is a row of the identity service's users table as
// carried in a Debezium change event.
type DebeziumUserRecord struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Phone       *string `json:"phone"`
	AvatarURL   string  `json:"avatar_url"`
	Bio         string  `json:"bio"`
	AccountType string  `json:"account_type"`
	DeletedAt   *string `json:"deleted_at"` // non-nil = soft-deleted
}

// ToDomain converts the record to a graph user. Counters are not carried.
func (r *DebeziumUserRecord) ToDomain() *domain.User {
	u := &domain.User{
		ID:          r.ID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		Bio:         r.Bio,
		AccountType: domain.AccountType(r.AccountType).Normalize(),
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	return u
}

// DebeziumPayload is the payload field of a Debezium CDC message.
type DebeziumPayload struct {
	Before *DebeziumUserRecord `json:"before"`
	After  *DebeziumUserRecord `json:"after"`
	Op     string              `json:"op"` // "c"=create, "u"=update, "d"=delete, "r"=snapshot
	TsMs   int64               `json:"ts_ms"`
}

// DebeziumMessage is the top-level Debezium CDC message envelope.
type DebeziumMessage struct {
	Payload DebeziumPayload `json:"payload"`
}

// UserEventHandler applies user changes to the graph.
type UserEventHandler interface {
	UpsertUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, userID string) error
}

// CDCEventConsumer manages the Kafka consumer lifecycle.
type CDCEventConsumer interface {
	Start(ctx context.Context) error
	Close() error
}
