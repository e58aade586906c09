package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"account-service/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUserRegisteredEvent_Marshal(t *testing.T) {
	ev := events.UserRegisteredEvent{
		EventType:    "user.registered",
		UserID:       uuid.New(),
		Username:     "alice",
		Email:        "a@x.com",
		RegisteredAt: time.Now(),
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "user.registered", decoded["event_type"])
	require.Equal(t, "alice", decoded["username"])
}

func TestPasswordChangedEvent_Marshal(t *testing.T) {
	uid := uuid.New()
	ev := events.PasswordChangedEvent{
		EventType: "user.password_changed",
		UserID:    uid,
		ChangedAt: time.Now(),
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "user.password_changed", decoded["event_type"])
	require.Equal(t, uid.String(), decoded["user_id"])
}
