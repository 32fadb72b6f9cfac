// Package store holds the session and generated-pool stores. Both are
// injected abstractions with explicit expiry: the hosting layer decides
// whether state lives in Redis (server deployments) or in process memory
// (tests), and the exam core never reaches into shared global state.
package store

import (
	"context"
	"errors"

	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/model"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("not found in store")

// SessionState is what the session store persists between requests: the
// exam session plus the ID of the generated pool it runs against. An empty
// PoolID means the standard pool.
type SessionState struct {
	PoolID  string       `json:"pool_id,omitempty"`
	Session exam.Session `json:"session"`
}

// SessionStore persists exam sessions keyed by the opaque session ID
// issued in the client cookie. Put refreshes the entry's TTL.
type SessionStore interface {
	Get(ctx context.Context, id string) (*SessionState, error)
	Put(ctx context.Context, id string, state *SessionState) error
	Delete(ctx context.Context, id string) error
}

// PoolStore holds generated question pools until a session claims them or
// they expire.
type PoolStore interface {
	Get(ctx context.Context, id string) ([]model.Question, error)
	Put(ctx context.Context, id string, questions []model.Question) error
	Delete(ctx context.Context, id string) error
}
