package nimbus

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Session holds conversation history and shared state under a unique ID.
type Session interface {
	ID() string
	State() State
	History() []*Message
	PutState(key string, value any)
	Append(ctx context.Context, messages []*Message) error
}

// NewSession creates an in-memory Session with an auto-generated UUID and
// optional initial state maps.
func NewSession(states ...map[string]any) Session {
	session := &sessionInMemory{id: uuid.NewString(), state: State{}}
	for _, state := range states {
		for k, v := range state {
			session.state[k] = v
		}
	}
	return session
}

type ctxSessionKey struct{}

// NewSessionContext returns a new Context that carries the session value.
func NewSessionContext(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, session)
}

// FromSessionContext retrieves the Session from the context.
func FromSessionContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(ctxSessionKey{}).(Session)
	return session, ok
}

type sessionInMemory struct {
	id      string
	state   State
	history []*Message
	m       sync.RWMutex
}

func (s *sessionInMemory) ID() string {
	return s.id
}

func (s *sessionInMemory) State() State {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.state.Clone()
}

func (s *sessionInMemory) History() []*Message {
	s.m.RLock()
	defer s.m.RUnlock()
	return slices.Clone(s.history)
}

func (s *sessionInMemory) PutState(key string, value any) {
	s.m.Lock()
	defer s.m.Unlock()
	s.state[key] = value
}

func (s *sessionInMemory) Append(ctx context.Context, messages []*Message) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.history = append(s.history, messages...)
	return nil
}
