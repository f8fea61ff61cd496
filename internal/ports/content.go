package ports

import (
	"context"
	"encoding/json"
)

// ContentGateway fetches read-only backend resources. Payloads are returned
// raw; shaping into stable envelopes happens in the proxy services.
type ContentGateway interface {
	NewsTop(ctx context.Context) (json.RawMessage, error)
	CommonInfo(ctx context.Context) (json.RawMessage, error)
}

// BotGateway fetches Telegram bot helper resources that are passed through unchanged.
type BotGateway interface {
	BotInfo(ctx context.Context) (json.RawMessage, error)
	BotQRCode(ctx context.Context, botURL string) (json.RawMessage, error)
}
