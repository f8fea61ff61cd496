package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	apperrors "github.com/naidizakupku/portal/internal/errors"
	"github.com/naidizakupku/portal/internal/observability/metrics"
	"github.com/naidizakupku/portal/internal/ports"
)

// Reason explains a negative AuthResult.
type Reason string

const (
	ReasonBusy          Reason = "busy"
	ReasonInvalidCode   Reason = "invalid_code"
	ReasonNoLaunchData  Reason = "no_launch_data"
	ReasonNoCredentials Reason = "no_credentials"
	ReasonRejected      Reason = "rejected"
	ReasonUnavailable   Reason = "unavailable"
	ReasonCanceled      Reason = "canceled"
	ReasonStorage       Reason = "storage"
)

// AuthResult is the outcome of an engine operation. Operations never return
// Go errors; failures resolve to OK == false with a Reason.
type AuthResult struct {
	OK      bool
	Reason  Reason
	Message string
}

func (r AuthResult) outcome() string {
	if r.OK {
		return metrics.ResultSuccess
	}
	return string(r.Reason)
}

func success() AuthResult { return AuthResult{OK: true} }

func failure(reason Reason, message string) AuthResult {
	return AuthResult{Reason: reason, Message: message}
}

// Engine operation names used in logs and metrics.
const (
	opInit          = "init"
	opLoginTelegram = "login_telegram"
	opLoginCode     = "login_code"
	opRecover       = "recover"
	opVerifyToken   = "verify_token"
	opResume        = "resume"
	opLogout        = "logout"
	opLogoutAll     = "logout_all"
)

// SessionEngineOptions groups dependencies for SessionEngine.
type SessionEngineOptions struct {
	Gateway     ports.AuthGateway
	Credentials *CredentialStore
	Extractor   ports.LaunchExtractor
	// Launch is derived once per engine and never re-checked.
	Launch  domainauth.Launch
	Logger  *slog.Logger
	Now     func() time.Time
	Metrics *metrics.Recorder
}

// SessionEngine is the auth state machine: unauthenticated, loading and
// authenticated, plus the Telegram-launch flag. At most one operation runs
// at a time and each makes at most one backend call at a time.
type SessionEngine struct {
	gateway   ports.AuthGateway
	creds     *CredentialStore
	extractor ports.LaunchExtractor
	launch    domainauth.Launch
	logger    *slog.Logger
	now       func() time.Time
	metrics   *metrics.Recorder

	mu       sync.Mutex
	state    domainauth.State
	session  *domainauth.Session
	inFlight bool
}

// NewSessionEngine constructs an engine in the loading state.
func NewSessionEngine(opts SessionEngineOptions) *SessionEngine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionEngine{
		gateway:   opts.Gateway,
		creds:     opts.Credentials,
		extractor: opts.Extractor,
		launch:    opts.Launch,
		logger:    logger.With("component", "session_engine"),
		now:       now,
		metrics:   opts.Metrics,
		state:     domainauth.StateLoading,
	}
}

// Snapshot returns the externally visible state.
func (e *SessionEngine) Snapshot() domainauth.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := domainauth.Snapshot{State: e.state, IsTelegramLaunch: e.launch.Present}
	if e.session != nil {
		sess := *e.session
		snap.Session = &sess
	}
	return snap
}

// Init attempts Telegram login for a Telegram launch and session recovery otherwise.
func (e *SessionEngine) Init(ctx context.Context) AuthResult {
	return e.run(ctx, opInit, func(ctx context.Context) AuthResult {
		if e.launch.Present {
			return e.loginTelegram(ctx)
		}
		return e.recover(ctx)
	})
}

// LoginTelegram validates the launch identity claim with the backend.
func (e *SessionEngine) LoginTelegram(ctx context.Context) AuthResult {
	return e.run(ctx, opLoginTelegram, e.loginTelegram)
}

// LoginWithCode exchanges a bot-issued code. Codes outside 1..1,000,000 are
// refused before any network call and leave the state untouched.
func (e *SessionEngine) LoginWithCode(ctx context.Context, code int) AuthResult {
	if err := domainauth.ValidateBotCode(code); err != nil {
		res := failure(ReasonInvalidCode, err.Error())
		e.metrics.AuthOperation(opLoginCode, res.outcome())
		return res
	}
	return e.run(ctx, opLoginCode, func(ctx context.Context) AuthResult {
		resp, err := e.gateway.LoginWithCode(ctx, code)
		return e.completeLogin(ctx, opLoginCode, resp, err)
	})
}

// Recover restores a session from stored credentials: token verification
// first, then session lookup; when both fail every credential is cleared.
func (e *SessionEngine) Recover(ctx context.Context) AuthResult {
	return e.run(ctx, opRecover, e.recover)
}

// VerifyToken checks the stored bearer token alone. Failure leaves the
// stored credentials in place.
func (e *SessionEngine) VerifyToken(ctx context.Context) AuthResult {
	return e.run(ctx, opVerifyToken, func(ctx context.Context) AuthResult {
		token, ok, err := e.creds.Get(ctx, ports.SlotToken)
		if err != nil {
			e.logger.WarnContext(ctx, "read stored token failed", "error", err)
			e.toUnauthenticated()
			return failure(ReasonStorage, "")
		}
		if !ok {
			e.toUnauthenticated()
			return failure(ReasonNoCredentials, "")
		}
		res, canceled := e.verifyToken(ctx, token)
		if canceled {
			return failure(ReasonCanceled, "")
		}
		if !res.OK {
			e.toUnauthenticated()
		}
		return res
	})
}

// Resume adopts the cached session snapshot without a backend call. It is
// authenticated only when both a snapshot and a credential are stored.
func (e *SessionEngine) Resume(ctx context.Context) AuthResult {
	return e.run(ctx, opResume, func(ctx context.Context) AuthResult {
		creds, err := e.creds.Credentials(ctx)
		if err != nil {
			e.logger.WarnContext(ctx, "read stored credentials failed", "error", err)
			e.toUnauthenticated()
			return failure(ReasonStorage, "")
		}
		sess, err := e.creds.CachedSession(ctx)
		if err != nil {
			e.logger.WarnContext(ctx, "read cached session failed", "error", err)
		}
		if creds.Empty() || sess == nil {
			e.toUnauthenticated()
			return failure(ReasonNoCredentials, "")
		}
		e.toAuthenticated(*sess)
		return success()
	})
}

// Logout best-effort notifies the backend, then clears every credential.
func (e *SessionEngine) Logout(ctx context.Context) AuthResult {
	return e.run(ctx, opLogout, func(ctx context.Context) AuthResult {
		creds, err := e.creds.Credentials(ctx)
		if err != nil {
			e.logger.WarnContext(ctx, "read stored credentials failed", "error", err)
		}
		if creds.SessionID != "" {
			if _, err := e.gateway.Logout(ctx, creds); err != nil {
				if isCanceled(ctx, err) {
					return failure(ReasonCanceled, "")
				}
				e.logger.WarnContext(ctx, "backend logout failed", "error", err)
			}
		}
		return e.clearLocal(ctx)
	})
}

// LogoutAll revokes every session of the current user, keyed by telegram id,
// then clears every credential.
func (e *SessionEngine) LogoutAll(ctx context.Context) AuthResult {
	return e.run(ctx, opLogoutAll, func(ctx context.Context) AuthResult {
		creds, err := e.creds.Credentials(ctx)
		if err != nil {
			e.logger.WarnContext(ctx, "read stored credentials failed", "error", err)
		}
		if telegramID := e.telegramID(ctx); telegramID != 0 {
			if _, err := e.gateway.LogoutAll(ctx, creds, telegramID); err != nil {
				if isCanceled(ctx, err) {
					return failure(ReasonCanceled, "")
				}
				e.logger.WarnContext(ctx, "backend logout-all failed", "error", err)
			}
		}
		return e.clearLocal(ctx)
	})
}

// run enforces the single-flight rule, enters loading, and restores the
// previous state when the operation was canceled.
func (e *SessionEngine) run(ctx context.Context, op string, fn func(context.Context) AuthResult) AuthResult {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		res := failure(ReasonBusy, "another auth operation is in progress")
		e.metrics.AuthOperation(op, res.outcome())
		return res
	}
	e.inFlight = true
	prevState, prevSession := e.state, e.session
	e.state = domainauth.StateLoading
	e.mu.Unlock()

	res := fn(ctx)

	e.mu.Lock()
	if res.Reason == ReasonCanceled {
		e.state, e.session = prevState, prevSession
	}
	e.inFlight = false
	e.mu.Unlock()

	e.metrics.AuthOperation(op, res.outcome())
	return res
}

func (e *SessionEngine) loginTelegram(ctx context.Context) AuthResult {
	claim, ok := e.extractor.Extract(e.launch)
	if !ok {
		e.toUnauthenticated()
		return failure(ReasonNoLaunchData, "telegram launch data is missing or malformed")
	}
	resp, err := e.gateway.ValidateTelegram(ctx, claim)
	return e.completeLogin(ctx, opLoginTelegram, resp, err)
}

// completeLogin applies the shared success/failure handling of both login kinds.
func (e *SessionEngine) completeLogin(ctx context.Context, op string, resp domainauth.AuthResponse, err error) AuthResult {
	if isCanceled(ctx, err) {
		return failure(ReasonCanceled, "")
	}
	if err != nil {
		e.toUnauthenticated()
		e.logger.WarnContext(ctx, "login failed", "op", op, "error", err)
		return failure(reasonFor(err), apperrors.ExplanationOf(err))
	}
	if !resp.Success || resp.Session == nil {
		e.toUnauthenticated()
		e.logger.InfoContext(ctx, "login rejected by backend", "op", op)
		return failure(ReasonRejected, resp.Reason())
	}
	sess := *resp.Session
	if sess.SessionID == "" && resp.Token == "" {
		e.toUnauthenticated()
		e.logger.WarnContext(ctx, "login response carries no credentials", "op", op)
		return failure(ReasonRejected, "backend returned a session without credentials")
	}

	// Past this point the login is committed; a client disconnect must not
	// leave half-written credentials.
	commit := context.WithoutCancel(ctx)
	if err := e.creds.SaveLogin(commit, sess, resp.Token); err != nil {
		e.logger.ErrorContext(ctx, "store login credentials failed", "op", op, "error", err)
		if clearErr := e.creds.ClearAll(commit); clearErr != nil {
			e.logger.ErrorContext(ctx, "clear credentials after failed store", "error", clearErr)
		}
		e.toUnauthenticated()
		return failure(ReasonStorage, "")
	}

	e.toAuthenticated(sess)
	e.logger.InfoContext(ctx, "login succeeded", "op", op, "telegram_id", sess.TelegramID)
	return success()
}

func (e *SessionEngine) recover(ctx context.Context) AuthResult {
	creds, err := e.creds.Credentials(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "read stored credentials failed", "error", err)
		return e.giveUp(ctx, failure(ReasonStorage, ""))
	}
	if creds.Empty() {
		return e.giveUp(ctx, failure(ReasonNoCredentials, ""))
	}

	last := failure(ReasonRejected, "")
	if creds.Token != "" {
		res, canceled := e.verifyToken(ctx, creds.Token)
		if canceled {
			return failure(ReasonCanceled, "")
		}
		if res.OK {
			return res
		}
		last = res
	}

	if creds.SessionID != "" {
		resp, err := e.gateway.LookupSession(ctx, creds)
		switch {
		case isCanceled(ctx, err):
			return failure(ReasonCanceled, "")
		case err != nil:
			e.logger.InfoContext(ctx, "session lookup failed", "error", err)
			last = failure(reasonFor(err), apperrors.ExplanationOf(err))
		case !resp.Success || resp.Session == nil:
			last = failure(ReasonRejected, resp.Reason())
		default:
			sess := *resp.Session
			if sess.SessionID == "" {
				sess.SessionID = creds.SessionID
			}
			e.cacheSession(ctx, sess)
			e.toAuthenticated(sess)
			return success()
		}
	}

	return e.giveUp(ctx, last)
}

// verifyToken checks token and, on success, adopts a token-based session.
// The boolean reports cancellation.
func (e *SessionEngine) verifyToken(ctx context.Context, token string) (AuthResult, bool) {
	resp, err := e.gateway.VerifyToken(ctx, token)
	if isCanceled(ctx, err) {
		return AuthResult{}, true
	}
	if err != nil {
		e.logger.InfoContext(ctx, "token verification failed", "error", err)
		return failure(reasonFor(err), apperrors.ExplanationOf(err)), false
	}
	if !resp.Success || !resp.Valid || resp.User == nil {
		return failure(ReasonRejected, resp.Reason()), false
	}

	sess := resp.User.SessionAt(e.now())
	e.cacheSession(ctx, sess)
	e.toAuthenticated(sess)
	return success(), false
}

// cacheSession refreshes the stored snapshot; failure is logged only.
func (e *SessionEngine) cacheSession(ctx context.Context, sess domainauth.Session) {
	if err := e.creds.SaveSession(context.WithoutCancel(ctx), sess); err != nil {
		e.logger.WarnContext(ctx, "cache session snapshot failed", "error", err)
	}
}

// giveUp clears every credential and settles in unauthenticated.
func (e *SessionEngine) giveUp(ctx context.Context, res AuthResult) AuthResult {
	if err := e.creds.ClearAll(context.WithoutCancel(ctx)); err != nil {
		e.logger.ErrorContext(ctx, "clear credentials failed", "error", err)
	}
	e.toUnauthenticated()
	return res
}

func (e *SessionEngine) clearLocal(ctx context.Context) AuthResult {
	err := e.creds.ClearAll(context.WithoutCancel(ctx))
	e.toUnauthenticated()
	if err != nil {
		e.logger.ErrorContext(ctx, "clear credentials failed", "error", err)
		return failure(ReasonStorage, "")
	}
	return success()
}

// telegramID prefers the in-memory session, then the cached snapshot.
func (e *SessionEngine) telegramID(ctx context.Context) int64 {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()
	if sess != nil && sess.TelegramID != 0 {
		return sess.TelegramID
	}
	cached, err := e.creds.CachedSession(ctx)
	if err != nil || cached == nil {
		return 0
	}
	return cached.TelegramID
}

func (e *SessionEngine) toAuthenticated(sess domainauth.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = domainauth.StateAuthenticated
	e.session = &sess
}

func (e *SessionEngine) toUnauthenticated() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = domainauth.StateUnauthenticated
	e.session = nil
}

func isCanceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return err != nil && (errors.Is(err, context.Canceled) || apperrors.CodeOf(err) == apperrors.ErrCodeCanceled)
}

func reasonFor(err error) Reason {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeRejected, apperrors.ErrCodeValidation:
		return ReasonRejected
	default:
		return ReasonUnavailable
	}
}
