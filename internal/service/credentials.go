package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	"github.com/naidizakupku/portal/internal/ports"
)

// DefaultCredentialTTL is the lifetime of stored credentials.
const DefaultCredentialTTL = 30 * 24 * time.Hour

// CredentialStoreOptions groups dependencies for CredentialStore.
type CredentialStoreOptions struct {
	// Client is the client-only channel read by the session engine.
	Client ports.CredentialChannel
	// Edge is the edge-readable channel read by the access filter.
	Edge ports.CredentialChannel
	TTL  time.Duration
	Now  func() time.Time
}

// CredentialStore mirrors every write and delete to both channels within the
// same call. Reads come from the client channel only; the store is a mirror,
// not a source of truth.
type CredentialStore struct {
	mu     sync.Mutex
	client ports.CredentialChannel
	edge   ports.CredentialChannel
	ttl    time.Duration
	now    func() time.Time
}

// NewCredentialStore constructs a CredentialStore.
func NewCredentialStore(opts CredentialStoreOptions) *CredentialStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &CredentialStore{
		client: opts.Client,
		edge:   opts.Edge,
		ttl:    ttl,
		now:    now,
	}
}

// Get reads slot from the client-only channel.
func (s *CredentialStore) Get(ctx context.Context, slot ports.Slot) (string, bool, error) {
	v, ok, err := s.client.Get(ctx, slot)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", slot, err)
	}
	return v, ok && v != "", nil
}

// Set writes value to the client channel, then mirrors it to the edge
// channel. When the mirror fails the client slot is rolled back to its
// previous value so the channels never disagree after the call returns.
func (s *CredentialStore) Set(ctx context.Context, slot ports.Slot, value string) error {
	if value == "" {
		return s.Clear(ctx, slot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev, err := s.client.Get(ctx, slot)
	if err != nil {
		return fmt.Errorf("read %s before write: %w", slot, err)
	}

	ttl, live := s.ttlFor(slot, value)
	if !live {
		return s.clearLocked(ctx, slot)
	}
	if err := s.client.Set(ctx, slot, value, ttl); err != nil {
		return fmt.Errorf("write %s: %w", slot, err)
	}
	if err := s.edge.Set(ctx, slot, value, ttl); err != nil {
		mirrorErr := fmt.Errorf("mirror %s: %w", slot, err)
		var rollbackErr error
		if prevTTL, prevLive := s.ttlFor(slot, prev); hadPrev && prev != "" && prevLive {
			rollbackErr = s.client.Set(ctx, slot, prev, prevTTL)
		} else {
			rollbackErr = s.client.Delete(ctx, slot)
		}
		if rollbackErr != nil {
			return errors.Join(mirrorErr, fmt.Errorf("roll back %s: %w", slot, rollbackErr))
		}
		return mirrorErr
	}
	return nil
}

// Clear deletes slot from both channels. Both deletes are always attempted.
func (s *CredentialStore) Clear(ctx context.Context, slot ports.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx, slot)
}

func (s *CredentialStore) clearLocked(ctx context.Context, slot ports.Slot) error {
	var errs []error
	if err := s.client.Delete(ctx, slot); err != nil {
		errs = append(errs, fmt.Errorf("clear %s: %w", slot, err))
	}
	if err := s.edge.Delete(ctx, slot); err != nil {
		errs = append(errs, fmt.Errorf("clear mirrored %s: %w", slot, err))
	}
	return errors.Join(errs...)
}

// ClearAll deletes every slot from both channels and reports every failure.
func (s *CredentialStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, slot := range ports.AllSlots {
		if err := s.clearLocked(ctx, slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Credentials returns the stored session id and bearer token.
func (s *CredentialStore) Credentials(ctx context.Context) (domainauth.Credentials, error) {
	var creds domainauth.Credentials
	sid, _, err := s.Get(ctx, ports.SlotSessionID)
	if err != nil {
		return creds, err
	}
	token, _, err := s.Get(ctx, ports.SlotToken)
	if err != nil {
		return creds, err
	}
	creds.SessionID = sid
	creds.Token = token
	return creds, nil
}

// CachedSession decodes the stored session snapshot. A missing or
// undecodable snapshot yields nil.
func (s *CredentialStore) CachedSession(ctx context.Context) (*domainauth.Session, error) {
	raw, ok, err := s.Get(ctx, ports.SlotSession)
	if err != nil || !ok {
		return nil, err
	}
	var sess domainauth.Session
	if json.Unmarshal([]byte(raw), &sess) != nil {
		return nil, nil
	}
	return &sess, nil
}

// SaveSession stores the session snapshot.
func (s *CredentialStore) SaveSession(ctx context.Context, sess domainauth.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.Set(ctx, ports.SlotSession, string(data))
}

// SaveLogin stores the outcome of a successful login: the session snapshot,
// then the session id, then the token. Slots the login did not issue are
// cleared so credentials of a previous identity never linger.
func (s *CredentialStore) SaveLogin(ctx context.Context, sess domainauth.Session, token string) error {
	if err := s.SaveSession(ctx, sess); err != nil {
		return err
	}
	if err := s.Set(ctx, ports.SlotSessionID, sess.SessionID); err != nil {
		return err
	}
	return s.Set(ctx, ports.SlotToken, token)
}

// ttlFor caps a JWT bearer token's lifetime at its own exp claim. The token
// is parsed without verification; the backend owns that. live is false for a
// token that has already expired.
func (s *CredentialStore) ttlFor(slot ports.Slot, value string) (ttl time.Duration, live bool) {
	if slot != ports.SlotToken {
		return s.ttl, true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(value, claims); err != nil {
		return s.ttl, true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return s.ttl, true
	}
	remaining := exp.Sub(s.now())
	switch {
	case remaining <= 0:
		return 0, false
	case remaining < s.ttl:
		return remaining, true
	default:
		return s.ttl, true
	}
}
