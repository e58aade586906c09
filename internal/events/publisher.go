package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type EventPublisher interface {
	PublishUserRegistered(userID uuid.UUID, username, email string) error
	PublishPasswordChanged(userID uuid.UUID) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type UserRegisteredEvent struct {
	EventType    string    `json:"event_type"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type PasswordChangedEvent struct {
	EventType string    `json:"event_type"`
	UserID    uuid.UUID `json:"user_id"`
	ChangedAt time.Time `json:"changed_at"`
}

func (p *NatsPublisher) PublishUserRegistered(userID uuid.UUID, username, email string) error {
	event := UserRegisteredEvent{
		EventType:    "user.registered",
		UserID:       userID,
		Username:     username,
		Email:        email,
		RegisteredAt: time.Now(),
	}

	return p.publish("user.registered", event)
}

func (p *NatsPublisher) PublishPasswordChanged(userID uuid.UUID) error {
	event := PasswordChangedEvent{
		EventType: "user.password_changed",
		UserID:    userID,
		ChangedAt: time.Now(),
	}

	return p.publish("user.password_changed", event)
}

func (p *NatsPublisher) publish(subject string, event any) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		slog.Error("marshalling event", "subject", subject, "error", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		slog.Error("publishing to NATS", "subject", subject, "error", err)
		return err
	}

	return nil
}
