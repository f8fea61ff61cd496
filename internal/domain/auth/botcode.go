package auth

import (
	"strconv"
	"strings"

	apperrors "github.com/naidizakupku/portal/internal/errors"
)

// Bot-issued login codes are integers in [MinBotCode, MaxBotCode].
const (
	MinBotCode = 1
	MaxBotCode = 1_000_000
)

const botCodeMessage = "code must be a number from 1 to 1000000"

// ValidateBotCode rejects codes outside the accepted range.
func ValidateBotCode(code int) error {
	if code < MinBotCode || code > MaxBotCode {
		return apperrors.ValidationField("code", botCodeMessage)
	}
	return nil
}

// ParseBotCode parses a user-entered code and validates its range.
func ParseBotCode(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperrors.ValidationField("code", botCodeMessage)
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationField("code", botCodeMessage)
	}
	if err := ValidateBotCode(code); err != nil {
		return 0, err
	}
	return code, nil
}
