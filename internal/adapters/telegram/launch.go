// Package telegram extracts identity claims from Telegram Mini App launch data.
package telegram

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	"github.com/naidizakupku/portal/internal/ports"
)

var _ ports.LaunchExtractor = Extractor{}

// Extractor parses the query-string encoded init data a Mini App receives.
// It does not verify the hash; the backend does.
type Extractor struct{}

// NewExtractor returns a launch extractor.
func NewExtractor() Extractor { return Extractor{} }

// Extract returns the identity claim carried by launch, or false when the
// launch is absent or any required field (id, first name, hash) is missing
// or malformed.
func (Extractor) Extract(launch domainauth.Launch) (domainauth.IdentityClaim, bool) {
	if !launch.Present {
		return domainauth.IdentityClaim{}, false
	}
	return ParseInitData(launch.InitData)
}

// ParseInitData parses raw init data. Identity fields may arrive flat
// (id, first_name, ...) or inside the JSON "user" object; flat fields win.
func ParseInitData(raw string) (domainauth.IdentityClaim, bool) {
	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return domainauth.IdentityClaim{}, false
	}

	var user *domainauth.TelegramUser
	if rawUser := values.Get("user"); rawUser != "" {
		user = &domainauth.TelegramUser{}
		if err := json.Unmarshal([]byte(rawUser), user); err != nil {
			return domainauth.IdentityClaim{}, false
		}
	}

	claim := domainauth.IdentityClaim{
		Hash:         values.Get("hash"),
		QueryID:      values.Get("query_id"),
		ChatType:     values.Get("chat_type"),
		ChatInstance: values.Get("chat_instance"),
		StartParam:   values.Get("start_param"),
		Lang:         values.Get("lang"),
		User:         user,
	}

	id, ok := parseID(values, user)
	if !ok {
		return domainauth.IdentityClaim{}, false
	}
	claim.ID = id

	if v := values.Get("auth_date"); v != "" {
		authDate, err := strconv.ParseInt(v, 10, 64)
		if err != nil || authDate < 0 {
			return domainauth.IdentityClaim{}, false
		}
		claim.AuthDate = authDate
	}
	if v := values.Get("can_send_after"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			claim.CanSendAfter = n
		}
	}

	claim.FirstName = firstNonEmpty(values.Get("first_name"), userField(user, func(u *domainauth.TelegramUser) string { return u.FirstName }))
	claim.LastName = firstNonEmpty(values.Get("last_name"), userField(user, func(u *domainauth.TelegramUser) string { return u.LastName }))
	claim.Username = firstNonEmpty(values.Get("username"), userField(user, func(u *domainauth.TelegramUser) string { return u.Username }))
	claim.PhotoURL = firstNonEmpty(values.Get("photo_url"), userField(user, func(u *domainauth.TelegramUser) string { return u.PhotoURL }))
	if claim.Lang == "" && user != nil {
		claim.Lang = user.LanguageCode
	}

	claim.Receiver = optionalJSON[domainauth.TelegramUser](values.Get("receiver"))
	claim.Chat = optionalJSON[domainauth.ChatInfo](values.Get("chat"))

	if claim.FirstName == "" || claim.Hash == "" {
		return domainauth.IdentityClaim{}, false
	}
	return claim, true
}

// parseID reads the flat id, falling back to user.id. A present but
// non-numeric flat id is malformed even if the user object has one.
func parseID(values url.Values, user *domainauth.TelegramUser) (int64, bool) {
	var id int64
	if v := values.Get("id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	} else if user != nil {
		id = user.ID
	}
	return id, id > 0
}

func userField(u *domainauth.TelegramUser, get func(*domainauth.TelegramUser) string) string {
	if u == nil {
		return ""
	}
	return get(u)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// optionalJSON decodes an optional JSON object; malformed input is dropped.
func optionalJSON[T any](raw string) *T {
	if raw == "" {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return &v
}
