// Package session holds per-user purchase state and its storage backends.
package session

import (
	"context"
	"errors"
	"time"
)

// State is the position of a user in the purchase conversation.
type State string

const (
	StateNone              State = ""
	StateWaitingPayment    State = "waiting_payment"
	StateWaitingLogin      State = "waiting_login"
	StateWaitingPassword   State = "waiting_password"
	StateWaitingActivation State = "waiting_activation"
	StateCompleted         State = "completed"
)

// Session is one user's conversation and order record. A new purchase
// attempt overwrites it wholesale: at most one outstanding order per user.
type Session struct {
	ChatID        int64  `json:"chat_id"`
	State         State  `json:"state"`
	OrderID       string `json:"order_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	SpotifyLogin  string `json:"spotify_login,omitempty"`
	// The password must never reach durable storage, hence json:"-".
	// It only lives in process memory between the password message and
	// the admin notification.
	SpotifyPassword  string    `json:"-"`
	PaymentConfirmed bool      `json:"payment_confirmed,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

var ErrNotFound = errors.New("session not found")

// Store is the session persistence contract. Implementations return
// ErrNotFound from Get/FindByOrder when no session matches.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, chatID int64) error
	// FindByOrder scans for a session whose order or transaction
	// identifier equals id. Session counts are small, a linear scan is
	// fine.
	FindByOrder(ctx context.Context, id string) (*Session, error)
}

// Matches reports whether id refers to this session's payment attempt.
func (s *Session) Matches(id string) bool {
	if id == "" {
		return false
	}
	return s.OrderID == id || s.TransactionID == id
}
