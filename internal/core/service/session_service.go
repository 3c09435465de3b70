package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

const sessionLockStripes = 64

// SessionOptions tunes the mocked identity backend.
type SessionOptions struct {
	// Latency is the artificial round-trip applied before login, demo login
	// and register resolve.
	Latency time.Duration
	// VerifyPasswords compares bcrypt hashes on login when the account has
	// one. Off by default: the directory is a mock and accepts any password.
	VerifyPasswords bool
	// BcryptCost is used when hashing passwords on register.
	BcryptCost int
	// Now is the clock used for join dates and toast timestamps.
	Now func() time.Time
}

// SessionService is the single source of truth for who is logged in on each
// session. Mutations for one session are serialized.
type SessionService struct {
	accounts ports.AccountRepository
	sessions ports.SessionRepository
	notifier ports.Notifier
	opts     SessionOptions
	log      zerolog.Logger

	locks [sessionLockStripes]sync.Mutex
}

func NewSessionService(
	accounts ports.AccountRepository,
	sessions ports.SessionRepository,
	notifier ports.Notifier,
	opts SessionOptions,
	log zerolog.Logger,
) *SessionService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionService{
		accounts: accounts,
		sessions: sessions,
		notifier: notifier,
		opts:     opts,
		log:      log,
	}
}

// Login looks the account up by email and makes it current. A miss leaves
// the session untouched and reports domain.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, sessionID, email, password string) (*domain.User, error) {
	if err := s.roundTrip(ctx); err != nil {
		return nil, err
	}

	unlock := s.lock(sessionID)
	defer unlock()

	user, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.toast(sessionID, domain.ToastError, "Login failed", "Invalid credentials. Please try again.")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.opts.VerifyPasswords && user.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			s.toast(sessionID, domain.ToastError, "Login failed", "Invalid credentials. Please try again.")
			return nil, domain.ErrInvalidCredentials
		}
	}

	if err := s.sessions.Save(ctx, sessionID, user); err != nil {
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	s.log.Info().Str("session", shortID(sessionID)).Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user logged in")
	s.toast(sessionID, domain.ToastSuccess, "Login successful", "Welcome back, "+user.Name+"!")
	return user.Clone(), nil
}

// DemoLogin signs in as the first account holding role, skipping credentials.
func (s *SessionService) DemoLogin(ctx context.Context, sessionID string, role domain.Role) (*domain.User, error) {
	if err := s.roundTrip(ctx); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	unlock := s.lock(sessionID)
	defer unlock()

	user, err := s.accounts.FindFirstByRole(ctx, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.toast(sessionID, domain.ToastError, "Demo login failed", "No demo account is available for "+role.String()+".")
			return nil, domain.ErrNoDemoAccount
		}
		return nil, fmt.Errorf("demo login: %w", err)
	}

	if err := s.sessions.Save(ctx, sessionID, user); err != nil {
		return nil, fmt.Errorf("demo login: save session: %w", err)
	}

	s.log.Info().Str("session", shortID(sessionID)).Str("user_id", user.ID).Str("role", role.String()).Msg("demo login")
	s.toast(sessionID, domain.ToastSuccess, "Demo mode", "Signed in as "+user.Name+" ("+role.String()+").")
	return user.Clone(), nil
}

// Register creates an account without uniqueness or strength checks and
// makes it current. The id is the directory size plus one.
func (s *SessionService) Register(ctx context.Context, sessionID string, in ports.RegisterInput) (*domain.User, error) {
	if err := s.roundTrip(ctx); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	unlock := s.lock(sessionID)
	defer unlock()

	n, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: count accounts: %w", err)
	}

	prefs := domain.DefaultNotificationPrefs()
	user := &domain.User{
		ID:            strconv.Itoa(n + 1),
		Name:          strings.TrimSpace(in.Name),
		Email:         normalizeEmail(in.Email),
		Role:          in.Role,
		Points:        domain.IntPtr(0),
		Avatar:        domain.PlaceholderAvatar,
		JoinDate:      s.opts.Now().Format(time.DateOnly),
		Notifications: &prefs,
	}

	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("register: hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	created, err := s.accounts.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if err := s.sessions.Save(ctx, sessionID, created); err != nil {
		return nil, fmt.Errorf("register: save session: %w", err)
	}

	s.log.Info().Str("session", shortID(sessionID)).Str("user_id", created.ID).Str("role", created.Role.String()).Msg("user registered")
	s.toast(sessionID, domain.ToastSuccess, "Registration successful", "Welcome to the portal, "+created.Name+"!")
	return created.Clone(), nil
}

// Logout drops the session's user from durable storage. Logging out an
// empty session is not an error.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("session", shortID(sessionID)).Msg("user logged out")
	return nil
}

// Restore rehydrates the session's user. A stored record is trusted as long
// as the store keeps it; a record that does not decode is discarded and the
// visitor is treated as unauthenticated.
func (s *SessionService) Restore(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	user, err := s.sessions.Load(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return nil, nil
	case errors.Is(err, domain.ErrSessionCorrupt):
		s.log.Warn().Err(err).Str("session", shortID(sessionID)).Msg("discarding malformed session record")
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			s.log.Warn().Err(delErr).Str("session", shortID(sessionID)).Msg("failed to delete malformed session record")
		}
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("restore session: %w", err)
	}

	if !user.Authenticated() {
		return nil, nil
	}
	return user, nil
}

// roundTrip stands in for the identity service's network latency. A caller
// that gives up while waiting mutates nothing.
func (s *SessionService) roundTrip(ctx context.Context) error {
	if s.opts.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.opts.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *SessionService) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%sessionLockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *SessionService) toast(sessionID string, kind domain.ToastKind, title, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.Toast{
		SessionID: sessionID,
		Kind:      kind,
		Title:     title,
		Message:   msg,
		At:        s.opts.Now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// shortID keeps session identifiers out of logs in full.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
