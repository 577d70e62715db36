package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/notekeeper/notes-api/internal/core/domain"
	"github.com/notekeeper/notes-api/internal/core/ports"
	"github.com/notekeeper/notes-api/internal/pkg/metrics"
)

// ProfileCache abstracts the profile store behind CurrentUser (Redis).
//
// Set must not overwrite an existing entry, and Invalidate must leave a marker
// that Get reports as absent and Set refuses to replace until it expires.
// Writers invalidate before mutating the user, so a reader that loaded the
// old record cannot publish it afterwards.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*ports.UserProfile, bool, error)
	Set(ctx context.Context, profile *ports.UserProfile) error
	Invalidate(ctx context.Context, userID string) error
}

type nopProfileCache struct{}

func (nopProfileCache) Get(context.Context, string) (*ports.UserProfile, bool, error) {
	return nil, false, nil
}
func (nopProfileCache) Set(context.Context, *ports.UserProfile) error { return nil }
func (nopProfileCache) Invalidate(context.Context, string) error      { return nil }

// SessionService implements ports.SessionService.
type SessionService struct {
	users  ports.UserRepository
	notes  ports.NoteRepository
	hasher ports.PasswordHasher
	issuer ports.SessionIssuer
	cache  ProfileCache
	log    zerolog.Logger
	now    func() time.Time

	// dummy is compared against when the named user does not exist, so the
	// response takes as long as a real password check.
	dummyOnce sync.Once
	dummy     string
}

// NewSessionService wires the session use cases. A nil cache disables profile caching.
func NewSessionService(
	users ports.UserRepository,
	notes ports.NoteRepository,
	hasher ports.PasswordHasher,
	issuer ports.SessionIssuer,
	cache ProfileCache,
	log zerolog.Logger,
) *SessionService {
	if cache == nil {
		cache = nopProfileCache{}
	}
	return &SessionService{
		users:  users,
		notes:  notes,
		hasher: hasher,
		issuer: issuer,
		cache:  cache,
		log:    log.With().Str("component", "session_service").Logger(),
		now:    time.Now,
	}
}

// Register creates an account with the default order preference. The caller
// is not logged in.
func (s *SessionService) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return "", fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	// Fast path only; the unique index is what guarantees uniqueness.
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultConflict).Inc()
		return "", domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultError).Inc()
		return "", s.internal("register: lookup", err)
	}

	hash, err := s.hash(password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			metrics.RegistrationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
			return "", err
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultError).Inc()
		return "", s.internal("register: hash", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:        username,
		PasswordHash:    hash,
		OrderCategories: domain.DefaultOrderPreference,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues(metrics.ResultConflict).Inc()
			return "", domain.ErrUserExists
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultError).Inc()
		return "", s.internal("register: create", err)
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created.ID, nil
}

// Login verifies credentials and returns a signed session token.
func (s *SessionService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return "", fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.verify(password, s.dummyDigest())
			metrics.LoginsTotal.WithLabelValues(metrics.ResultDenied).Inc()
			s.log.Warn().Msg("login for unregistered username")
			return "", domain.ErrUnknownUser
		}
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return "", s.internal("login: lookup", err)
	}

	if !s.verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		s.log.Warn().Str("user_id", user.ID).Msg("login with invalid password")
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return "", s.internal("login: issue token", err)
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// CurrentUser resolves the profile of an already verified subject. An empty
// or unknown subject yields a nil profile and no error.
func (s *SessionService) CurrentUser(ctx context.Context, subjectID string) (*ports.UserProfile, error) {
	if subjectID == "" {
		return nil, nil
	}

	if cached, ok, err := s.cache.Get(ctx, subjectID); err != nil {
		metrics.ProfileCacheTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("user_id", subjectID).Msg("profile cache read failed, falling back to store")
	} else if ok {
		metrics.ProfileCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	} else {
		metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()
	}

	user, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, s.internal("current user", err)
	}

	profile := toProfile(user)
	if err := s.cache.Set(ctx, profile); err != nil {
		s.log.Warn().Err(err).Str("user_id", subjectID).Msg("profile cache write failed")
	}
	return profile, nil
}

// Logout changes no server state: the token stays valid until it expires and
// only the client's copy is discarded by the transport layer.
func (s *SessionService) Logout(_ context.Context, subjectID string) {
	s.log.Info().Str("user_id", subjectID).Msg("session carrier discarded")
}

// UpdateOrderPreference stores a new ordering for the user's categories.
func (s *SessionService) UpdateOrderPreference(ctx context.Context, id, value string) error {
	pref := domain.OrderPreference(value)
	if id == "" || !pref.Valid() {
		return fmt.Errorf("%w: orderCategories must be one of date, date_desc, title, title_desc", domain.ErrInvalidInput)
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		return s.internal("update order preference: cache", err)
	}
	if err := s.users.UpdateOrderCategories(ctx, id, pref); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return s.internal("update order preference", err)
	}

	s.log.Info().Str("user_id", id).Str("order", value).Msg("order preference updated")
	return nil
}

// DeleteAccount re-checks the credentials, removes the user and then removes
// the user's notes. The two deletes are not atomic: if the second fails the
// user is already gone and the orphaned notes stay behind.
func (s *SessionService) DeleteAccount(ctx context.Context, id, username, password string) error {
	if id == "" || username == "" || password == "" {
		metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return fmt.Errorf("%w: id, username and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.verify(password, s.dummyDigest())
			metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultDenied).Inc()
			return domain.ErrInvalidCredentials
		}
		metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultError).Inc()
		return s.internal("delete account: lookup", err)
	}

	if !s.verify(password, user.PasswordHash) {
		metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		s.log.Warn().Str("user_id", id).Msg("account deletion with invalid password")
		return domain.ErrInvalidCredentials
	}

	// The credentials must belong to the account being deleted.
	if user.ID != id {
		metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		s.log.Warn().Str("user_id", id).Str("credential_owner", user.ID).Msg("account deletion with foreign credentials")
		return domain.ErrInvalidCredentials
	}

	// A cached profile would outlive the account, so nothing is deleted
	// unless the cache entry can be retired first.
	if err := s.cache.Invalidate(ctx, id); err != nil {
		metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultError).Inc()
		return s.internal("delete account: cache", err)
	}
	if err := s.users.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultDenied).Inc()
			return domain.ErrUserNotFound
		}
		metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultError).Inc()
		return s.internal("delete account: user", err)
	}

	removed, err := s.notes.DeleteByOwner(ctx, id)
	if err != nil {
		metrics.NotesCascadeFailuresTotal.Inc()
		metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultError).Inc()
		s.log.Error().Err(err).Str("user_id", id).Msg("user deleted but note cleanup failed; notes are orphaned")
		return s.internal("delete account: notes", err)
	}

	metrics.AccountDeletionsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info().Str("user_id", id).Int64("notes_removed", removed).Msg("account deleted")
	return nil
}

func (s *SessionService) hash(password string) (string, error) {
	start := time.Now()
	defer func() { metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds()) }()
	return s.hasher.Hash(password)
}

func (s *SessionService) verify(password, digest string) bool {
	start := time.Now()
	defer func() { metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds()) }()
	return s.hasher.Verify(password, digest)
}

func (s *SessionService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("unused-dummy-password")
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare dummy digest")
			return
		}
		s.dummy = digest
	})
	return s.dummy
}

// internal logs the cause and marks the error as domain.ErrInternal while
// keeping the original chain intact.
func (s *SessionService) internal(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("session operation failed")
	return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
}

func toProfile(u *domain.User) *ports.UserProfile {
	return &ports.UserProfile{
		ID:              u.ID,
		Username:        u.Username,
		OrderCategories: u.OrderCategories,
		CreatedAt:       u.CreatedAt,
	}
}
