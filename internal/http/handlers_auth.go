package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	apperrors "github.com/naidizakupku/portal/internal/errors"
	"github.com/naidizakupku/portal/internal/observability/metrics"
	"github.com/naidizakupku/portal/internal/ports"
	"github.com/naidizakupku/portal/internal/service"
)

// Fence serialises mutating auth operations of one device.
type Fence interface {
	Acquire(ctx context.Context, device string) (func(context.Context), error)
}

// ClientChannelFunc returns the client-only credential channel of a device.
type ClientChannelFunc func(device string) ports.CredentialChannel

// AuthHandlers exposes the session engine over HTTP. Each request gets its
// own engine bound to the caller's device channel and cookies.
type AuthHandlers struct {
	Gateway       ports.AuthGateway
	Extractor     ports.LaunchExtractor
	ClientChannel ClientChannelFunc
	Fence         Fence // Optional
	CredentialTTL time.Duration
	CookieDomain  string
	InitHeader    string
	Logger        *slog.Logger
	Metrics       *metrics.Recorder
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// authPayload is the response body of every auth route. The bearer token is
// never echoed; it travels only in the cookie.
type authPayload struct {
	Success       bool                `json:"success"`
	State         domainauth.State    `json:"state"`
	Authenticated bool                `json:"authenticated"`
	IsTelegramApp bool                `json:"isTelegramApp"`
	Session       *domainauth.Session `json:"session,omitempty"`
	Reason        service.Reason      `json:"reason,omitempty"`
	Message       string              `json:"message,omitempty"`
	Error         string              `json:"error,omitempty"`
}

type launchRequest struct {
	InitData string `json:"initData"`
}

type botLoginRequest struct {
	Code json.RawMessage `json:"code"`
}

// opKind selects how a failed result maps to an HTTP status.
type opKind int

const (
	opKindLogin opKind = iota
	opKindQuery
	opKindLogout
)

// runParams groups the inputs of run.
type runParams struct {
	Launch domainauth.Launch
	Kind   opKind
	Fenced bool
	Op     func(*service.SessionEngine, context.Context) service.AuthResult
}

// Init handles POST /api/auth/init: Telegram login for a Mini App launch,
// session recovery otherwise.
func (h *AuthHandlers) Init(w http.ResponseWriter, r *http.Request) {
	launch, ok := h.launch(w, r)
	if !ok {
		return
	}
	kind := opKindQuery
	if launch.Present {
		kind = opKindLogin
	}
	h.run(w, r, runParams{Launch: launch, Kind: kind, Fenced: true, Op: (*service.SessionEngine).Init})
}

// TelegramLogin handles POST /api/auth/telegram/login.
func (h *AuthHandlers) TelegramLogin(w http.ResponseWriter, r *http.Request) {
	launch, ok := h.launch(w, r)
	if !ok {
		return
	}
	h.run(w, r, runParams{Launch: launch, Kind: opKindLogin, Fenced: true, Op: (*service.SessionEngine).LoginTelegram})
}

// BotLogin handles POST /api/auth/telegram-bot/login with {"code": 123456}.
// The code may also be sent as a numeric string.
func (h *AuthHandlers) BotLogin(w http.ResponseWriter, r *http.Request) {
	var req botLoginRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	code, err := parseCode(req.Code)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	h.run(w, r, runParams{Kind: opKindLogin, Fenced: true, Op: func(e *service.SessionEngine, ctx context.Context) service.AuthResult {
		return e.LoginWithCode(ctx, code)
	}})
}

// Session handles GET /api/auth/session: recovery from stored credentials.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, runParams{Kind: opKindQuery, Fenced: true, Op: (*service.SessionEngine).Recover})
}

// VerifyToken handles POST /api/auth/token/verify.
func (h *AuthHandlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, runParams{Kind: opKindQuery, Fenced: true, Op: (*service.SessionEngine).VerifyToken})
}

// Status handles GET /api/auth/status from the cached session, without a
// backend call.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, runParams{Kind: opKindQuery, Op: (*service.SessionEngine).Resume})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, runParams{Kind: opKindLogout, Fenced: true, Op: (*service.SessionEngine).Logout})
}

// LogoutAll handles POST /api/auth/logout/all.
func (h *AuthHandlers) LogoutAll(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, runParams{Kind: opKindLogout, Fenced: true, Op: (*service.SessionEngine).LogoutAll})
}

func (h *AuthHandlers) run(w http.ResponseWriter, r *http.Request, p runParams) {
	ctx := r.Context()
	device := DeviceFromContext(ctx)

	if p.Fenced && h.Fence != nil {
		release, err := h.Fence.Acquire(ctx, device)
		switch {
		case apperrors.IsConflict(err):
			h.Metrics.FenceConflict()
			WriteJSON(w, http.StatusConflict, authPayload{
				State:  domainauth.StateLoading,
				Reason: service.ReasonBusy,
				Error:  "another auth operation is in progress",
			})
			return
		case err != nil:
			h.logger().WarnContext(ctx, "auth fence unavailable, continuing unfenced", "error", err)
		default:
			defer release(context.WithoutCancel(ctx))
		}
	}

	engine := h.engine(w, r, device, p.Launch)
	res := p.Op(engine, ctx)
	if res.Reason == service.ReasonCanceled {
		h.logger().InfoContext(ctx, "auth request canceled by client", "path", r.URL.Path)
		return
	}

	snap := engine.Snapshot()
	body := authPayload{
		Success:       res.OK,
		State:         snap.State,
		Authenticated: snap.Authenticated(),
		IsTelegramApp: snap.IsTelegramLaunch,
		Session:       snap.Session,
		Reason:        res.Reason,
		Message:       res.Message,
	}
	if !res.OK {
		body.Error = failureText(res)
	}
	WriteJSON(w, statusFor(p.Kind, res), body)
}

func (h *AuthHandlers) engine(w http.ResponseWriter, r *http.Request, device string, launch domainauth.Launch) *service.SessionEngine {
	store := service.NewCredentialStore(service.CredentialStoreOptions{
		Client: h.ClientChannel(device),
		Edge:   NewCookieChannel(w, r, h.CookieDomain),
		TTL:    h.CredentialTTL,
	})
	return service.NewSessionEngine(service.SessionEngineOptions{
		Gateway:     h.Gateway,
		Credentials: store,
		Extractor:   h.Extractor,
		Launch:      launch,
		Logger:      h.logger(),
		Metrics:     h.Metrics,
	})
}

// launch reads raw launch data from the init-data header, falling back to an
// {"initData"} body.
func (h *AuthHandlers) launch(w http.ResponseWriter, r *http.Request) (domainauth.Launch, bool) {
	header := h.InitHeader
	if header == "" {
		header = "X-Telegram-Init-Data"
	}
	if raw := r.Header.Get(header); raw != "" {
		return domainauth.NewLaunch(raw), true
	}
	var req launchRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return domainauth.Launch{}, false
	}
	return domainauth.NewLaunch(req.InitData), true
}

// parseCode accepts a JSON number or a numeric string.
func parseCode(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return domainauth.ParseBotCode("")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errors.New("code must be a number")
		}
		return domainauth.ParseBotCode(s)
	}
	return domainauth.ParseBotCode(string(raw))
}

func statusFor(kind opKind, res service.AuthResult) int {
	if res.OK {
		return http.StatusOK
	}
	switch res.Reason {
	case service.ReasonBusy:
		return http.StatusConflict
	case service.ReasonInvalidCode:
		return http.StatusBadRequest
	}
	switch kind {
	case opKindLogin:
		if res.Reason == service.ReasonStorage {
			return http.StatusInternalServerError
		}
		return http.StatusUnauthorized
	default:
		return http.StatusOK
	}
}

func failureText(res service.AuthResult) string {
	if res.Message != "" {
		return res.Message
	}
	switch res.Reason {
	case service.ReasonNoLaunchData:
		return "telegram launch data is missing or malformed"
	case service.ReasonNoCredentials:
		return "not signed in"
	case service.ReasonUnavailable:
		return "authentication service is unavailable"
	case service.ReasonStorage:
		return "failed to store credentials"
	default:
		return "authentication failed"
	}
}
