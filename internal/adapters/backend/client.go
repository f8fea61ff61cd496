package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	apperrors "github.com/naidizakupku/portal/internal/errors"
	"github.com/naidizakupku/portal/internal/ports"
)

// Logical backend endpoints.
const (
	EndpointTelegramValidate = "/auth/telegram/validate"
	EndpointTelegramSession  = "/auth/telegram/session/"
	EndpointVerifyToken      = "/v1/verify-token"
	EndpointLogout           = "/auth/telegram/logout"
	EndpointLogoutAll        = "/auth/telegram/logout/all"
	EndpointBotInfo          = "/auth/telegram-bot/info"
	EndpointBotQRCode        = "/auth/telegram-bot/qr-code"
	EndpointBotLogin         = "/auth/telegram-bot/login"
	EndpointNewsTop          = "/news/top"
	EndpointCommonInfo       = "/admin/common/info"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthGateway    = (*Client)(nil)
	_ ports.ContentGateway = (*Client)(nil)
	_ ports.BotGateway     = (*Client)(nil)
)

// Client is the typed backend API. Every call resolves candidates afresh
// from the resolver and goes through the fetcher.
type Client struct {
	resolver *Resolver
	fetcher  *Fetcher
}

// NewClient creates a backend client.
func NewClient(resolver *Resolver, fetcher *Fetcher) *Client {
	return &Client{resolver: resolver, fetcher: fetcher}
}

// ValidateTelegram sends an identity claim for signature verification.
func (c *Client) ValidateTelegram(ctx context.Context, claim domainauth.IdentityClaim) (domainauth.AuthResponse, error) {
	var out domainauth.AuthResponse
	err := c.doJSON(ctx, EndpointTelegramValidate, http.MethodPost, claim, nil, &out)
	return out, err
}

// LoginWithCode exchanges a bot-issued one-time code for a session.
func (c *Client) LoginWithCode(ctx context.Context, code int) (domainauth.AuthResponse, error) {
	var out domainauth.AuthResponse
	err := c.doJSON(ctx, EndpointBotLogin, http.MethodPost, map[string]int{"code": code}, nil, &out)
	return out, err
}

// LookupSession fetches the session named by creds.SessionID.
func (c *Client) LookupSession(ctx context.Context, creds domainauth.Credentials) (domainauth.SessionResponse, error) {
	var out domainauth.SessionResponse
	if creds.SessionID == "" {
		return out, apperrors.ValidationField("sessionId", "session id is required")
	}
	endpoint := EndpointTelegramSession + url.PathEscape(creds.SessionID)
	err := c.do(ctx, endpoint, EndpointTelegramSession+"{id}", http.MethodGet, nil, authHeaders(creds), &out)
	return out, err
}

// VerifyToken checks a bearer token and returns the identity it belongs to.
func (c *Client) VerifyToken(ctx context.Context, token string) (domainauth.TokenVerifyResponse, error) {
	var out domainauth.TokenVerifyResponse
	if token == "" {
		return out, apperrors.ValidationField("token", "token is required")
	}
	err := c.doJSON(ctx, EndpointVerifyToken, http.MethodGet, nil, authHeaders(domainauth.Credentials{Token: token}), &out)
	return out, err
}

// Logout invalidates the session named by creds.SessionID.
func (c *Client) Logout(ctx context.Context, creds domainauth.Credentials) (domainauth.LogoutResponse, error) {
	var out domainauth.LogoutResponse
	if creds.SessionID == "" {
		return out, apperrors.ValidationField("sessionId", "session id is required")
	}
	endpoint := EndpointLogout + "?" + url.Values{"sessionId": {creds.SessionID}}.Encode()
	err := c.do(ctx, endpoint, EndpointLogout, http.MethodDelete, nil, authHeaders(creds), &out)
	return out, err
}

// LogoutAll invalidates every session of telegramID.
func (c *Client) LogoutAll(ctx context.Context, creds domainauth.Credentials, telegramID int64) (domainauth.LogoutResponse, error) {
	var out domainauth.LogoutResponse
	if telegramID == 0 {
		return out, apperrors.ValidationField("telegramId", "telegram id is required")
	}
	endpoint := EndpointLogoutAll + "?" + url.Values{"telegramId": {strconv.FormatInt(telegramID, 10)}}.Encode()
	err := c.do(ctx, endpoint, EndpointLogoutAll, http.MethodDelete, nil, authHeaders(creds), &out)
	return out, err
}

// NewsTop returns the raw top-news payload.
func (c *Client) NewsTop(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, EndpointNewsTop, http.MethodGet, nil)
}

// CommonInfo returns the raw project statistics payload.
func (c *Client) CommonInfo(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, EndpointCommonInfo, http.MethodGet, nil)
}

// BotInfo returns the raw Telegram bot description.
func (c *Client) BotInfo(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, EndpointBotInfo, http.MethodGet, nil)
}

// BotQRCode asks the backend to render a QR code for botURL.
func (c *Client) BotQRCode(ctx context.Context, botURL string) (json.RawMessage, error) {
	if botURL == "" {
		return nil, apperrors.ValidationField("botUrl", "bot url is required")
	}
	return c.raw(ctx, EndpointBotQRCode, http.MethodPost, map[string]string{"botUrl": botURL})
}

func (c *Client) doJSON(ctx context.Context, endpoint, method string, in any, header http.Header, out any) error {
	return c.do(ctx, endpoint, endpoint, method, in, header, out)
}

func (c *Client) do(ctx context.Context, endpoint, label, method string, in any, header http.Header, out any) error {
	resp, err := c.send(ctx, endpoint, label, method, in, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeRejected, "decode backend response")
	}
	return nil
}

func (c *Client) raw(ctx context.Context, endpoint, method string, in any) (json.RawMessage, error) {
	resp, err := c.send(ctx, endpoint, endpoint, method, in, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(resp.Body) {
		return nil, apperrors.Rejected(fmt.Sprintf("backend %s returned malformed JSON", endpoint))
	}
	return json.RawMessage(resp.Body), nil
}

func (c *Client) send(ctx context.Context, endpoint, label, method string, in any, header http.Header) (*Response, error) {
	spec := RequestSpec{Method: method, Header: header, Label: label}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode backend request")
		}
		spec.Body = body
	}
	return c.fetcher.TryInOrder(ctx, c.resolver.Resolve(endpoint), spec)
}

// authHeaders carries whatever credentials are known.
func authHeaders(creds domainauth.Credentials) http.Header {
	h := http.Header{}
	if creds.Token != "" {
		h.Set("Authorization", "Bearer "+creds.Token)
	}
	if creds.SessionID != "" {
		h.Set("X-Session-ID", creds.SessionID)
	}
	return h
}
