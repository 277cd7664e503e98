// Package event dispatches domain events to in-process subscribers.
package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/simp-lee/colocmatching/internal/domain"
)

// Event names.
const (
	NameUserRegistered     = "user.registered"
	NameInvitationCreated  = "invitation.created"
	NameInvitationAnswered = "invitation.answered"
	NameResourceVisited    = "resource.visited"
)

// Event is anything published through a Dispatcher.
type Event interface {
	Name() string
}

// UserRegistered is published once a user account is created.
type UserRegistered struct {
	UserID      uint      `json:"user_id"`
	Email       string    `json:"-"`
	DisplayName string    `json:"display_name"`
	Token       string    `json:"-"`
	ExpiresAt   time.Time `json:"-"`
}

func (UserRegistered) Name() string { return NameUserRegistered }

// Party is a user to notify about an event.
type Party struct {
	ID    uint   `json:"id"`
	Email string `json:"-"`
	Name  string `json:"name"`
}

// InvitationCreated is published when an invitation is sent or a user applies.
// Notify is the party expected to answer.
type InvitationCreated struct {
	InvitationID  uint                        `json:"invitation_id"`
	InvitableType domain.InvitableType        `json:"invitable_type"`
	InvitableID   uint                        `json:"invitable_id"`
	SourceType    domain.InvitationSourceType `json:"source_type"`
	Message       string                      `json:"message,omitempty"`
	Sender        Party                       `json:"sender"`
	Notify        Party                       `json:"notify"`
}

func (InvitationCreated) Name() string { return NameInvitationCreated }

// InvitationAnswered is published after an invitation is accepted or refused.
// Notify is the party that initiated it.
type InvitationAnswered struct {
	InvitationID  uint                    `json:"invitation_id"`
	InvitableType domain.InvitableType    `json:"invitable_type"`
	InvitableID   uint                    `json:"invitable_id"`
	Status        domain.InvitationStatus `json:"status"`
	Answerer      Party                   `json:"answerer"`
	Notify        Party                   `json:"notify"`
}

func (InvitationAnswered) Name() string { return NameInvitationAnswered }

// ResourceVisited is published when a user reads a visitable resource.
// OwnerID is the user the resource belongs to.
type ResourceVisited struct {
	VisitedType domain.VisitableType `json:"visited_type"`
	VisitedID   uint                 `json:"visited_id"`
	OwnerID     uint                 `json:"owner_id"`
	VisitorID   uint                 `json:"visitor_id"`
	VisitedAt   time.Time            `json:"visited_at"`
}

func (ResourceVisited) Name() string { return NameResourceVisited }

// Handler reacts to an event.
type Handler func(ctx context.Context, e Event) error

type subscription struct {
	name    string
	handler Handler
}

// Dispatcher runs subscribers synchronously, in registration order.
// Subscriber errors are logged and never reach the publisher.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Subscribe registers h for events called name.
func (d *Dispatcher) Subscribe(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, subscription{name: name, handler: h})
}

// SubscribeAll registers h for every event.
func (d *Dispatcher) SubscribeAll(h Handler) {
	d.Subscribe("", h)
}

// Publish delivers e to its subscribers. A nil dispatcher drops events.
func (d *Dispatcher) Publish(ctx context.Context, e Event) {
	if d == nil || e == nil {
		return
	}
	d.mu.RLock()
	subs := make([]subscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()

	for _, s := range subs {
		if s.name != "" && s.name != e.Name() {
			continue
		}
		if err := s.handler(ctx, e); err != nil {
			d.logger.ErrorContext(ctx, "event subscriber failed", "event", e.Name(), "error", err)
		}
	}
}
