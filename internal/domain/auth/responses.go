package auth

// AuthResponse is returned by the Telegram validate and bot-code login endpoints.
type AuthResponse struct {
	Success bool     `json:"success"`
	Session *Session `json:"session,omitempty"`
	Token   string   `json:"token,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Reason returns the backend supplied explanation, preferring error over message.
func (r AuthResponse) Reason() string { return reason(r.Error, r.Message) }

// SessionResponse is returned by the session lookup endpoint.
type SessionResponse struct {
	Success bool     `json:"success"`
	Session *Session `json:"session,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Reason returns the backend supplied explanation, preferring error over message.
func (r SessionResponse) Reason() string { return reason(r.Error, r.Message) }

// TokenVerifyResponse is returned by the bearer-token verification endpoint.
type TokenVerifyResponse struct {
	Success bool          `json:"success"`
	Valid   bool          `json:"valid"`
	User    *VerifiedUser `json:"user,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Reason returns the backend supplied explanation, preferring error over message.
func (r TokenVerifyResponse) Reason() string { return reason(r.Error, r.Message) }

// LogoutResponse is returned by both logout endpoints.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Reason returns the backend supplied explanation, preferring error over message.
func (r LogoutResponse) Reason() string { return reason(r.Error, r.Message) }

func reason(errText, message string) string {
	if errText != "" {
		return errText
	}
	return message
}
