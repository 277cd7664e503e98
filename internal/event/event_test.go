package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/colocmatching/internal/domain"
)

func TestDispatcher_RunsSubscribersInOrder(t *testing.T) {
	d := NewDispatcher(nil)

	var calls []string
	d.Subscribe(NameResourceVisited, func(context.Context, Event) error {
		calls = append(calls, "visit-1")
		return nil
	})
	d.SubscribeAll(func(_ context.Context, e Event) error {
		calls = append(calls, "all:"+e.Name())
		return nil
	})
	d.Subscribe(NameResourceVisited, func(context.Context, Event) error {
		calls = append(calls, "visit-2")
		return nil
	})
	d.Subscribe(NameUserRegistered, func(context.Context, Event) error {
		calls = append(calls, "registered")
		return nil
	})

	d.Publish(context.Background(), ResourceVisited{VisitedType: domain.VisitableGroup, VisitedID: 1, VisitorID: 2})

	assert.Equal(t, []string{"visit-1", "all:resource.visited", "visit-2"}, calls)
}

func TestDispatcher_SubscriberErrorDoesNotStopOthers(t *testing.T) {
	d := NewDispatcher(nil)

	var reached bool
	d.SubscribeAll(func(context.Context, Event) error { return errors.New("mail server down") })
	d.SubscribeAll(func(context.Context, Event) error {
		reached = true
		return nil
	})

	d.Publish(context.Background(), UserRegistered{UserID: 1})
	assert.True(t, reached)
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() { d.Publish(context.Background(), UserRegistered{}) })
}

func TestRedisSink_Encode(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &RedisSink{channel: "events", now: func() time.Time { return at }}

	body, err := s.Encode(InvitationAnswered{
		InvitationID:  4,
		InvitableType: domain.InvitableGroup,
		InvitableID:   9,
		Status:        domain.InvitationAccepted,
		Answerer:      Party{ID: 2, Email: "hidden@example.com", Name: "Ann"},
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, NameInvitationAnswered, decoded["name"])
	assert.Equal(t, "2026-03-01T12:00:00Z", decoded["occurred_at"])

	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "ACCEPTED", payload["status"])
	assert.NotContains(t, string(body), "hidden@example.com", "emails never leave the process")
}

func TestNewRedisSink_InvalidURL(t *testing.T) {
	_, err := NewRedisSink(context.Background(), "not-a-url", "events")
	assert.Error(t, err)
}
