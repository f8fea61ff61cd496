package auth

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewLaunch(t *testing.T) {
	if NewLaunch("  ").Present {
		t.Fatalf("blank init data must not count as a Telegram launch")
	}
	l := NewLaunch(" query_id=AA&hash=abc ")
	if !l.Present || l.InitData != "query_id=AA&hash=abc" {
		t.Fatalf("unexpected launch: %+v", l)
	}
}

func TestVerifiedUser_SessionAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	s := VerifiedUser{TelegramID: 42, Username: "ivan", FirstName: "Ivan"}.SessionAt(now)

	if !s.IsTokenBased() || s.SessionID != "token-based" {
		t.Fatalf("expected token-based session, got %q", s.SessionID)
	}
	if s.TelegramID != 42 || s.FirstName != "Ivan" || s.Username != "ivan" || !s.IsActive {
		t.Fatalf("unexpected session: %+v", s)
	}
	if !s.CreatedAt.Equal(now) || !s.LastActivityAt.Equal(now) {
		t.Fatalf("timestamps must be now: %v %v", s.CreatedAt, s.LastActivityAt)
	}
	if s.PhotoURL != "" {
		t.Fatalf("token sessions carry no photo")
	}
}

func TestTimestamp_UnmarshalFormats(t *testing.T) {
	want := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	inputs := []string{
		`"2025-03-01T09:30:00Z"`,
		`"2025-03-01T12:30:00+03:00"`,
		`"2025-03-01T09:30:00"`,
		`"2025-03-01 09:30:00"`,
		`1740821400000`,
	}
	for _, in := range inputs {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("unmarshal %s: got %v want %v", in, ts.Time, want)
		}
	}

	var zero Timestamp
	if err := json.Unmarshal([]byte(`null`), &zero); err != nil || !zero.IsZero() {
		t.Fatalf("null must decode to zero: %v %v", zero, err)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &zero); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestSession_JSONShape(t *testing.T) {
	raw := `{"sessionId":"s-1","telegramId":7,"firstName":"Anna","isActive":true,` +
		`"createdAt":"2025-01-01T00:00:00Z","lastActivityAt":null}`
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.SessionID != "s-1" || s.TelegramID != 7 || !s.LastActivityAt.IsZero() {
		t.Fatalf("unexpected session: %+v", s)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(out, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	if generic["lastActivityAt"] != nil {
		t.Fatalf("zero timestamps must encode as null, got %v", generic["lastActivityAt"])
	}
	if _, ok := generic["username"]; ok {
		t.Fatalf("empty optional fields must be omitted")
	}
}

func TestAuthResponse_Reason(t *testing.T) {
	if got := (AuthResponse{Message: "m", Error: "e"}).Reason(); got != "e" {
		t.Fatalf("expected error to win, got %q", got)
	}
	if got := (AuthResponse{Message: "m"}).Reason(); got != "m" {
		t.Fatalf("expected message fallback, got %q", got)
	}
}
