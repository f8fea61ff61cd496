// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"time"

	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
)

// Slot names one credential kept by the credential store.
type Slot string

const (
	SlotSessionID Slot = "session_id"
	SlotToken     Slot = "token"
	SlotSession   Slot = "session"
)

// AllSlots lists every credential slot in write order.
var AllSlots = []Slot{SlotSession, SlotSessionID, SlotToken}

// CredentialChannel is one storage medium for credentials. The client-only
// channel is read by the session engine; the edge-readable channel is read by
// the edge access filter.
type CredentialChannel interface {
	// Get returns the stored value and whether the slot is populated.
	Get(ctx context.Context, slot Slot) (string, bool, error)

	// Set stores value with the given lifetime. A zero ttl means the channel default.
	Set(ctx context.Context, slot Slot, value string, ttl time.Duration) error

	// Delete removes the slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context, slot Slot) error
}

// LaunchExtractor turns raw launch context into an identity claim.
// The boolean is false whenever any required field is missing or malformed.
type LaunchExtractor interface {
	Extract(launch domainauth.Launch) (domainauth.IdentityClaim, bool)
}

// AuthGateway is the backend's auth surface as consumed by the session engine.
// Non-success HTTP statuses are returned as errors; a 2xx answer whose
// success flag is false is returned as a response.
type AuthGateway interface {
	ValidateTelegram(ctx context.Context, claim domainauth.IdentityClaim) (domainauth.AuthResponse, error)
	LoginWithCode(ctx context.Context, code int) (domainauth.AuthResponse, error)
	LookupSession(ctx context.Context, creds domainauth.Credentials) (domainauth.SessionResponse, error)
	VerifyToken(ctx context.Context, token string) (domainauth.TokenVerifyResponse, error)
	Logout(ctx context.Context, creds domainauth.Credentials) (domainauth.LogoutResponse, error)
	LogoutAll(ctx context.Context, creds domainauth.Credentials, telegramID int64) (domainauth.LogoutResponse, error)
}
