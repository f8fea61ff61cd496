// Package auth contains domain-level types for Telegram identities and portal sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"strings"
	"time"
)

// State is the rest or transitional state of the session engine.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
)

// TokenBasedSessionID marks a session synthesized from a verified bearer token.
const TokenBasedSessionID = "token-based"

// TelegramUser is the nested user object of a Mini App launch.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// ChatInfo describes the chat a Mini App was opened from.
type ChatInfo struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// IdentityClaim is the unsigned identity extracted from Telegram launch data.
// It is forwarded to the backend for signature verification and never stored.
type IdentityClaim struct {
	ID           int64         `json:"id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name,omitempty"`
	Username     string        `json:"username,omitempty"`
	PhotoURL     string        `json:"photo_url,omitempty"`
	AuthDate     int64         `json:"auth_date"`
	Hash         string        `json:"hash"`
	QueryID      string        `json:"query_id,omitempty"`
	User         *TelegramUser `json:"user,omitempty"`
	Receiver     *TelegramUser `json:"receiver,omitempty"`
	Chat         *ChatInfo     `json:"chat,omitempty"`
	ChatType     string        `json:"chat_type,omitempty"`
	ChatInstance string        `json:"chat_instance,omitempty"`
	StartParam   string        `json:"start_param,omitempty"`
	CanSendAfter int64         `json:"can_send_after,omitempty"`
	Lang         string        `json:"lang,omitempty"`
}

// Launch is the ambient launch context of one client. Present is derived
// once from the raw init data and never re-checked.
type Launch struct {
	InitData string
	Present  bool
}

// NewLaunch derives the launch context from raw Mini App init data.
func NewLaunch(initData string) Launch {
	initData = strings.TrimSpace(initData)
	return Launch{InitData: initData, Present: initData != ""}
}

// Session is the backend-confirmed identity held after login or recovery.
type Session struct {
	SessionID      string    `json:"sessionId"`
	TelegramID     int64     `json:"telegramId"`
	Username       string    `json:"username,omitempty"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName,omitempty"`
	PhotoURL       string    `json:"photoUrl,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      Timestamp `json:"createdAt"`
	LastActivityAt Timestamp `json:"lastActivityAt"`
}

// IsTokenBased reports whether the session was synthesized from a token check.
func (s Session) IsTokenBased() bool { return s.SessionID == TokenBasedSessionID }

// VerifiedUser is the identity confirmed by a bearer-token verification.
type VerifiedUser struct {
	TelegramID int64  `json:"telegramId"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName,omitempty"`
}

// SessionAt synthesizes a token-based session stamped with now.
func (u VerifiedUser) SessionAt(now time.Time) Session {
	ts := Timestamp{Time: now.UTC()}
	return Session{
		SessionID:      TokenBasedSessionID,
		TelegramID:     u.TelegramID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		IsActive:       true,
		CreatedAt:      ts,
		LastActivityAt: ts,
	}
}

// Credentials are the values sent as auth headers on backend calls.
type Credentials struct {
	SessionID string
	Token     string
}

// Empty reports whether neither credential is known.
func (c Credentials) Empty() bool { return c.SessionID == "" && c.Token == "" }

// Snapshot is the externally visible engine state.
type Snapshot struct {
	State            State    `json:"state"`
	Session          *Session `json:"session,omitempty"`
	IsTelegramLaunch bool     `json:"isTelegramApp"`
}

// Authenticated reports whether the snapshot is in the authenticated state.
func (s Snapshot) Authenticated() bool { return s.State == StateAuthenticated }
