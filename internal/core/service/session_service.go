package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/webhub/admin-console/internal/api/metrics"
	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/ports"
)

const (
	defaultCredentialTTL = 72 * time.Hour
	defaultAuthTimeout   = 15 * time.Second
	logoutNotifyTimeout  = 10 * time.Second

	loginFailedMessage    = "Login failed"
	registerFailedMessage = "Registration failed"
)

// SessionOptions tunes a SessionService. Zero values fall back to defaults.
type SessionOptions struct {
	CredentialTTL time.Duration
	AuthTimeout   time.Duration
}

// SessionService owns the in-memory session of a single client and is the
// only writer of its credential store. Loading is true from construction until
// Init returns and while a login or register call is in flight.
type SessionService struct {
	clientID string
	store    ports.CredentialStore
	auth     ports.AuthGateway
	audit    ports.AuditSink
	log      zerolog.Logger
	opts     SessionOptions

	mu          sync.RWMutex
	user        *domain.UserProfile
	token       string
	initialized bool
	inflight    int
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService returns a SessionService for clientID. Init must be called
// before the session is authoritative.
func NewSessionService(
	clientID string,
	store ports.CredentialStore,
	auth ports.AuthGateway,
	audit ports.AuditSink,
	opts SessionOptions,
	log zerolog.Logger,
) *SessionService {
	if opts.CredentialTTL <= 0 {
		opts.CredentialTTL = defaultCredentialTTL
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = defaultAuthTimeout
	}
	if audit == nil {
		audit = NopAuditSink{}
	}
	return &SessionService{
		clientID: clientID,
		store:    store,
		auth:     auth,
		audit:    audit,
		log:      log.With().Str("client_id", clientID).Logger(),
		opts:     opts,
	}
}

// Init hydrates the session from the credential store. It reads the store
// once and always leaves the session out of the initial loading state.
// Absent or unreadable credentials start an anonymous session; any other
// read failure does too, but is returned so the caller can retry later.
func (s *SessionService) Init(ctx context.Context) error {
	cred, err := s.store.Read(ctx)

	switch {
	case err == nil:
		if !cred.User.Role.Known() {
			s.log.Debug().Str("role", string(cred.User.Role)).Msg("stored user has unknown role")
		}
	case errors.Is(err, domain.ErrCredentialNotFound):
	case errors.Is(err, domain.ErrMalformedCredential):
		s.log.Warn().Err(err).Msg("discarding unreadable stored credential")
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to clear unreadable credential")
		}
	default:
		s.log.Error().Err(err).Msg("credential store read failed, starting anonymous")
	}

	s.mu.Lock()
	if err == nil {
		s.user, s.token = cred.User, cred.Token
	} else {
		s.user, s.token = nil, ""
	}
	s.initialized = true
	s.mu.Unlock()

	if err != nil && !errors.Is(err, domain.ErrCredentialNotFound) && !errors.Is(err, domain.ErrMalformedCredential) {
		return fmt.Errorf("hydrate session: %w", err)
	}
	return nil
}

// Login authenticates against the upstream API and, on success, persists and
// adopts the returned session.
func (s *SessionService) Login(ctx context.Context, in ports.LoginInput) ports.AuthResult {
	return s.authenticate(ctx, "login", loginFailedMessage, func(ctx context.Context) (*ports.AuthGrant, error) {
		return s.auth.Login(ctx, in)
	})
}

// Register creates an account upstream and, on success, persists and adopts
// the returned session.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) ports.AuthResult {
	return s.authenticate(ctx, "register", registerFailedMessage, func(ctx context.Context) (*ports.AuthGrant, error) {
		return s.auth.Register(ctx, in)
	})
}

func (s *SessionService) authenticate(
	ctx context.Context,
	op string,
	fallback string,
	call func(context.Context) (*ports.AuthGrant, error),
) ports.AuthResult {
	s.beginAuth()
	defer s.endAuth()

	callCtx, cancel := context.WithTimeout(ctx, s.opts.AuthTimeout)
	defer cancel()

	grant, err := call(callCtx)
	if err == nil && (grant == nil || grant.Token == "" || grant.User == nil) {
		err = errors.New("authentication response missing token or user")
	}
	if err != nil {
		msg := failureMessage(err, fallback)
		s.log.Info().Err(err).Str("operation", op).Msg("authentication failed")
		s.finish(op, false, domain.SessionEvent{Reason: msg})
		return ports.AuthResult{Success: false, Error: msg}
	}

	if err := s.store.Write(ctx, grant.Token, grant.User, s.opts.CredentialTTL); err != nil {
		s.log.Error().Err(err).Str("operation", op).Msg("failed to persist credential")
		s.finish(op, false, domain.SessionEvent{Reason: "credential store unavailable"})
		return ports.AuthResult{Success: false, Error: fallback}
	}

	s.mu.Lock()
	s.user, s.token = grant.User, grant.Token
	s.mu.Unlock()

	if !grant.User.Role.Known() {
		s.log.Warn().Str("role", string(grant.User.Role)).Msg("user has unknown role, treating as regular user")
	}
	s.log.Info().Str("operation", op).Str("user_id", grant.User.ID).Msg("session established")
	s.finish(op, true, userEvent(grant.User))

	return ports.AuthResult{Success: true, User: grant.User}
}

func (s *SessionService) beginAuth() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *SessionService) endAuth() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func (s *SessionService) finish(op string, ok bool, ev domain.SessionEvent) {
	result := "failure"
	kind := domain.EventLoginFailed
	switch {
	case op == "login" && ok:
		kind = domain.EventLoginSucceeded
	case op == "register" && ok:
		kind = domain.EventRegisterSucceeded
	case op == "register":
		kind = domain.EventRegisterFailed
	}
	if ok {
		result = "success"
	}
	metrics.SessionOperationsTotal.WithLabelValues(op, result).Inc()
	ev.Kind = kind
	s.record(ev)
}

// Logout clears the session synchronously and notifies the upstream API in
// the background. The returned task may be awaited or ignored.
func (s *SessionService) Logout(ctx context.Context) ports.LogoutWaiter {
	s.mu.Lock()
	prev, token := s.user, s.token
	s.user, s.token = nil, ""
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear credential store on logout")
	}

	metrics.SessionOperationsTotal.WithLabelValues("logout", "success").Inc()
	ev := userEvent(prev)
	ev.Kind = domain.EventLogout
	s.record(ev)

	task := newLogoutTask()
	if token == "" {
		// Nobody was signed in; there is nothing to tell the API.
		task.complete(nil)
		return task
	}
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutNotifyTimeout)
		defer cancel()

		err := s.auth.Logout(notifyCtx, token)
		if err != nil {
			s.log.Warn().Err(err).Msg("upstream logout notification failed")
		}
		task.complete(err)
	}()
	return task
}

// UpdateProfile replaces the cached user and rewrites the stored user entry.
// The token is not touched.
func (s *SessionService) UpdateProfile(ctx context.Context, user *domain.UserProfile) error {
	if user == nil {
		return errors.New("update profile: nil user")
	}

	if err := s.store.WriteUser(ctx, user, s.opts.CredentialTTL); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	ev := userEvent(user)
	ev.Kind = domain.EventProfileUpdated
	s.record(ev)
	return nil
}

// Reset drops the in-memory session without touching the store or the
// upstream API. It is used after the store was cleared elsewhere.
func (s *SessionService) Reset() {
	s.mu.Lock()
	prev := s.user
	s.user, s.token = nil, ""
	s.mu.Unlock()

	ev := userEvent(prev)
	ev.Kind = domain.EventSessionRejected
	s.record(ev)
}

// Snapshot returns a consistent copy of the session state.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{
		User:    s.user,
		Token:   s.token,
		Loading: !s.initialized || s.inflight > 0,
	}
}

func (s *SessionService) IsAuthenticated() bool { return s.Snapshot().IsAuthenticated() }

func (s *SessionService) IsAdmin() bool { return domain.IsAdmin(s.Snapshot().User) }

func (s *SessionService) IsSuperAdmin() bool { return domain.IsSuperAdmin(s.Snapshot().User) }

func (s *SessionService) record(ev domain.SessionEvent) {
	ev.ClientID = s.clientID
	ev.OccurredAt = time.Now().UTC()
	s.audit.Record(ev)
}

func userEvent(u *domain.UserProfile) domain.SessionEvent {
	if u == nil {
		return domain.SessionEvent{}
	}
	return domain.SessionEvent{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// failureMessage extracts the upstream message from err, falling back to the
// given default.
func failureMessage(err error, fallback string) string {
	var m interface{ UserMessage() string }
	if errors.As(err, &m) && m.UserMessage() != "" {
		return m.UserMessage()
	}
	return fallback
}

// logoutTask is the handle returned by Logout.
type logoutTask struct {
	done chan struct{}
	err  error
}

func newLogoutTask() *logoutTask {
	return &logoutTask{done: make(chan struct{})}
}

func (t *logoutTask) complete(err error) {
	t.err = err
	close(t.done)
}

// Wait blocks until the upstream notification finished or ctx is done.
func (t *logoutTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NopAuditSink discards session events.
type NopAuditSink struct{}

func (NopAuditSink) Record(domain.SessionEvent) {}
