package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/loginflow/internal/client/client"
	"github.com/dmitrijs2005/loginflow/internal/client/models"
	"github.com/dmitrijs2005/loginflow/internal/client/session"
	"github.com/dmitrijs2005/loginflow/internal/logging"
)

var (
	ErrSubmitInProgress   = errors.New("login already in progress")
	ErrLoginRejected      = errors.New("login rejected")
	ErrMissingAccessToken = errors.New("no access token returned")
	ErrProfileUnavailable = errors.New("profile unavailable")
	ErrNoRefreshToken     = errors.New("no refresh token stored")
	ErrNotLoggedIn        = errors.New("not logged in")
)

// Result describes how a Submit ended.
type Result struct {
	State   State
	Status  Status
	Profile *models.Profile
}

// LoginFlow orchestrates submit, authenticate, persist and verify.
//
// A LoginFlow is safe for concurrent use; at most one Submit runs at a time.
type LoginFlow struct {
	client   client.Client
	store    session.Store
	reporter StatusReporter
	logger   logging.Logger

	clearOnProfileFailure bool
	attemptID             func() string

	mu    sync.Mutex
	state State
}

// Option configures a LoginFlow.
type Option func(*LoginFlow)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(f *LoginFlow) { f.logger = l }
}

// WithClearOnProfileFailure makes a failed profile fetch wipe the stored tokens.
func WithClearOnProfileFailure(v bool) Option {
	return func(f *LoginFlow) { f.clearOnProfileFailure = v }
}

// WithAttemptIDs replaces the generator of per-submit correlation ids.
func WithAttemptIDs(gen func() string) Option {
	return func(f *LoginFlow) { f.attemptID = gen }
}

// NewLoginFlow wires a flow to its API client, session store and status sink.
func NewLoginFlow(c client.Client, store session.Store, reporter StatusReporter, opts ...Option) *LoginFlow {
	f := &LoginFlow{
		client:    c,
		store:     store,
		reporter:  reporter,
		logger:    logging.Nop(),
		attemptID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current step of the login sequence.
func (f *LoginFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *LoginFlow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// begin moves the flow into Submitting unless a submit is already running.
func (f *LoginFlow) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.InFlight() {
		return false
	}
	f.state = StateSubmitting
	return true
}

func (f *LoginFlow) report(msg string, isError bool) Status {
	st := Status{Message: msg, IsError: isError}
	if f.reporter != nil {
		f.reporter.Report(st)
	}
	return st
}

// Submit runs one login attempt with the given credentials.
//
// The returned error is nil only when the profile was fetched. Every other
// outcome has already been reported to the StatusReporter; the error carries
// the cause for callers that need it. A Submit issued while another one is
// running returns ErrSubmitInProgress and changes nothing.
func (f *LoginFlow) Submit(ctx context.Context, creds models.Credentials) (Result, error) {
	if !f.begin() {
		f.logger.Debug(ctx, "submit ignored: login already in progress")
		return Result{State: f.State()}, ErrSubmitInProgress
	}

	log := f.logger.With("attempt", f.attemptID())
	creds = creds.Normalize()

	f.report(MsgSigningIn, false)
	log.Info(ctx, "login submitted", "username", creds.Username)

	fail := func(state State, msg string, err error) (Result, error) {
		st := f.report(msg, true)
		f.setState(state)
		return Result{State: state, Status: st}, err
	}

	pair, err := f.client.Login(ctx, creds)
	if err != nil {
		var apiErr *client.APIError
		switch {
		case errors.As(err, &apiErr):
			log.Info(ctx, "login rejected", "status", apiErr.StatusCode, "source", apiErr.Source.String())
			return fail(StateLoginFailed, rejectionMessage(apiErr, msgLoginFailedFormat), fmt.Errorf("%w: %w", ErrLoginRejected, err))
		case errors.Is(err, client.ErrMalformedResponse):
			log.Error(ctx, "login response could not be decoded", "error", err)
			return fail(StateLoginFailed, MsgMalformedResponse, err)
		default:
			log.Error(ctx, "login request failed", "error", err)
			return fail(StateLoginFailed, MsgNetworkError, err)
		}
	}

	if pair == nil || pair.Access == "" {
		log.Warn(ctx, "login response carried no access token")
		return fail(StateLoginFailed, MsgNoAccessToken, ErrMissingAccessToken)
	}

	f.setState(StateLoginSucceeded)
	if err := f.PersistTokens(ctx, pair.Access, pair.Refresh); err != nil {
		log.Error(ctx, "failed to persist tokens", "error", err)
		return fail(StateLoginFailed, MsgSessionNotSaved, err)
	}
	log.Debug(ctx, "tokens persisted", "has_refresh", pair.Refresh != "")

	f.report(MsgFetchingProfile, false)
	f.setState(StateFetchingProfile)

	profile, err := f.FetchProfile(ctx)
	if err != nil || profile == nil {
		msg := MsgProfileFailed
		if err == nil {
			err = ErrProfileUnavailable
		} else if errors.Is(err, client.ErrUnavailable) {
			msg = MsgNetworkError
		}
		log.Error(ctx, "profile fetch failed", "error", err)
		f.clearAfterProfileFailure(ctx, log)
		return fail(StateProfileFetchFailed, msg, err)
	}

	status := f.report(welcomeMessage(profile), false)
	f.setState(StateProfileFetched)
	log.Info(ctx, "login complete", "user", profile.DisplayName())

	return Result{State: StateProfileFetched, Status: status, Profile: profile}, nil
}

func (f *LoginFlow) clearAfterProfileFailure(ctx context.Context, log logging.Logger) {
	if !f.clearOnProfileFailure {
		return
	}
	if err := f.store.Clear(ctx); err != nil {
		log.Error(ctx, "failed to clear session after profile failure", "error", err)
		return
	}
	log.Info(ctx, "session cleared after profile failure")
}

// PersistTokens stores the access and refresh tokens, overwriting whatever
// was there. Both keys are written together or not at all.
func (f *LoginFlow) PersistTokens(ctx context.Context, access, refresh string) error {
	if err := f.store.SetTokens(ctx, models.TokenPair{Access: access, Refresh: refresh}); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	return nil
}

// FetchProfile loads the current user's profile with the stored access token.
//
// Without a stored token it returns (nil, nil) and makes no request. A
// rejected or undecodable response also yields (nil, nil). Transport
// failures and store read errors are returned.
func (f *LoginFlow) FetchProfile(ctx context.Context) (*models.Profile, error) {
	access, err := f.store.Get(ctx, session.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}
	if access == "" {
		return nil, nil
	}

	p, err := f.client.GetMe(ctx, access)
	if err != nil {
		var apiErr *client.APIError
		switch {
		case errors.As(err, &apiErr):
			f.logger.Info(ctx, "profile request rejected", "status", apiErr.StatusCode)
			return nil, nil
		case errors.Is(err, client.ErrMalformedResponse):
			f.logger.Warn(ctx, "profile response could not be decoded", "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ShowProfile fetches the profile for an existing session and reports the
// greeting, or why there is none.
func (f *LoginFlow) ShowProfile(ctx context.Context) (*models.Profile, error) {
	access, err := f.store.Get(ctx, session.KeyAccessToken)
	if err != nil {
		f.report(MsgSessionUnreadable, true)
		return nil, fmt.Errorf("read access token: %w", err)
	}
	if access == "" {
		f.report(MsgNotLoggedIn, true)
		return nil, ErrNotLoggedIn
	}

	p, err := f.FetchProfile(ctx)
	switch {
	case err != nil:
		f.logger.Error(ctx, "profile fetch failed", "error", err)
		f.report(MsgNetworkError, true)
		return nil, err
	case p == nil:
		f.report(MsgProfileFailed, true)
		return nil, ErrProfileUnavailable
	}
	f.report(welcomeMessage(p), false)
	return p, nil
}

// Refresh exchanges the stored refresh token for a new access token. A
// rotated refresh token replaces the stored one; otherwise the old one is
// kept.
func (f *LoginFlow) Refresh(ctx context.Context) error {
	pair, err := session.LoadTokens(ctx, f.store)
	if err != nil {
		f.report(MsgSessionUnreadable, true)
		return err
	}
	if pair.Refresh == "" {
		f.report(MsgNoRefreshToken, true)
		return ErrNoRefreshToken
	}

	fresh, err := f.client.Refresh(ctx, pair.Refresh)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			f.logger.Info(ctx, "refresh rejected", "status", apiErr.StatusCode, "source", apiErr.Source.String())
			f.report(rejectionMessage(apiErr, msgRefreshFailedFmt), true)
		} else {
			f.logger.Error(ctx, "refresh request failed", "error", err)
			f.report(MsgNetworkError, true)
		}
		return fmt.Errorf("refresh: %w", err)
	}
	if fresh == nil || fresh.Access == "" {
		f.report(MsgRefreshNoAccess, true)
		return ErrMissingAccessToken
	}

	refresh := fresh.Refresh
	if refresh == "" {
		refresh = pair.Refresh
	}
	if err := f.PersistTokens(ctx, fresh.Access, refresh); err != nil {
		f.logger.Error(ctx, "failed to persist refreshed tokens", "error", err)
		f.report(MsgSessionNotSaved, true)
		return err
	}

	f.logger.Info(ctx, "session refreshed", "rotated", fresh.Refresh != "")
	f.report(MsgSessionRefreshed, false)
	return nil
}

// Logout removes both stored tokens. A submit that is still running keeps
// its state.
func (f *LoginFlow) Logout(ctx context.Context) error {
	if err := f.store.Clear(ctx); err != nil {
		f.logger.Error(ctx, "failed to clear session", "error", err)
		f.report(MsgSessionNotCleared, true)
		return fmt.Errorf("logout: %w", err)
	}
	f.mu.Lock()
	if !f.state.InFlight() {
		f.state = StateIdle
	}
	f.mu.Unlock()
	f.report(MsgLoggedOut, false)
	return nil
}
