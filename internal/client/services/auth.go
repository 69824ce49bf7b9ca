// Package services contains the application services of the contact book:
// account and session management, the contact store, address search and the
// session watcher.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/kvstore"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/validate"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/dmitrijs2005/dragoncontacts/internal/cryptox"
	"github.com/dmitrijs2005/dragoncontacts/internal/logging"
	"github.com/dmitrijs2005/dragoncontacts/internal/session"
	"github.com/google/uuid"
)

const signingKeySize = 32

// AuthService manages local accounts and the current session.
//
// Contract:
//   - Login/Register: on success store a fresh session token and return it.
//   - IsAuthenticated: report whether the stored session is valid, renewing
//     it in place when it is about to expire.
//   - Logout: drop the stored session.
//   - CurrentSession/CurrentUser: the valid session and its account.
//   - UpdateProfile/DeleteAccount: account settings of the logged-in user.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	IsAuthenticated(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, fullName, email, password string) (string, error)
	CurrentSession(ctx context.Context) (session.Session, bool, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, fullName, newPassword, confirm string) (*models.User, error)
	DeleteAccount(ctx context.Context, password string) (string, error)
}

// AuthOptions tunes session timing. Zero values select the session defaults.
type AuthOptions struct {
	Lifetime      time.Duration
	RenewalWindow time.Duration
}

type authService struct {
	store    kvstore.Store
	log      logging.Logger
	lifetime time.Duration
	window   time.Duration
	now      func() time.Time

	// mu serializes read-modify-write of the users collection and token slot.
	mu    sync.Mutex
	codec *session.Codec
}

// NewAuthService constructs an AuthService persisting to store.
func NewAuthService(store kvstore.Store, opts AuthOptions, log logging.Logger) AuthService {
	if opts.Lifetime <= 0 {
		opts.Lifetime = session.DefaultLifetime
	}
	if opts.RenewalWindow <= 0 {
		opts.RenewalWindow = session.DefaultRenewalWindow
	}
	return &authService{
		store:    store,
		log:      log.With("component", "auth"),
		lifetime: opts.Lifetime,
		window:   opts.RenewalWindow,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// getCodec returns the token codec, creating the signing key on first use.
// Callers hold a.mu and must call it outside of a store batch.
func (a *authService) getCodec(ctx context.Context) (*session.Codec, error) {
	if a.codec != nil {
		return a.codec, nil
	}

	key, err := a.store.Get(ctx, common.SigningKeyKey)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	if len(key) == 0 {
		key = common.GenerateRandByteArray(signingKeySize)
		if err := a.store.Set(ctx, common.SigningKeyKey, key); err != nil {
			return nil, fmt.Errorf("save signing key: %w", err)
		}
	}

	codec, err := session.NewCodec(key)
	if err != nil {
		return nil, err
	}
	a.codec = codec
	return codec, nil
}

// issue stores the token of s in st and returns it.
func (a *authService) issue(ctx context.Context, st kvstore.Store, s session.Session) (string, error) {
	codec, err := a.getCodec(ctx)
	if err != nil {
		return "", err
	}
	token, err := codec.Encode(s, a.now())
	if err != nil {
		return "", err
	}
	if err := st.Set(ctx, common.TokenKey, []byte(token)); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	return token, nil
}

// readSession decodes the stored token. A missing or undecodable token is
// reported as ok == false without an error. Callers hold a.mu.
func (a *authService) readSession(ctx context.Context, st kvstore.Store) (session.Session, bool, error) {
	raw, err := st.Get(ctx, common.TokenKey)
	if err != nil {
		return session.Session{}, false, fmt.Errorf("read token: %w", err)
	}
	if len(raw) == 0 {
		return session.Session{}, false, nil
	}

	codec, err := a.getCodec(ctx)
	if err != nil {
		return session.Session{}, false, err
	}
	s, err := codec.Decode(string(raw))
	if err != nil {
		a.log.Debug(ctx, "stored token rejected", "error", err)
		return session.Session{}, false, nil
	}
	return s, true, nil
}

func (a *authService) Login(ctx context.Context, email, password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := loadJSON[models.User](ctx, a.store, common.UsersKey)
	if err != nil {
		return "", err
	}

	email = normalizeEmail(email)
	idx := findUser(users, func(u models.User) bool { return u.Email == email })
	if idx < 0 {
		return "", fmt.Errorf("email %s: %w", email, common.ErrNotFound)
	}
	u := users[idx]
	if !cryptox.VerifyPassword(password, u.Salt, u.PasswordHash) {
		return "", common.ErrInvalidCredential
	}

	token, err := a.issue(ctx, a.store, session.New(u.ID, a.now(), a.lifetime))
	if err != nil {
		return "", err
	}
	a.log.Info(ctx, "user logged in", "user_id", u.ID)
	return token, nil
}

func (a *authService) IsAuthenticated(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok, err := a.readSession(ctx, a.store)
	if err != nil || !ok {
		return false, err
	}

	now := a.now()
	if !s.IsValid(now) {
		return false, nil
	}
	if s.NeedsRenewal(now, a.window) {
		if _, err := a.issue(ctx, a.store, s.Renew(now, a.lifetime)); err != nil {
			return false, fmt.Errorf("renew session: %w", err)
		}
		a.log.Info(ctx, "session renewed", "user_id", s.SubjectID)
	}
	return true, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Delete(ctx, common.TokenKey); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (a *authService) Register(ctx context.Context, fullName, email, password string) (string, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if err := errors.Join(
		validate.ValidName(fullName),
		validate.ValidEmail(email),
		validate.ValidPassword(password),
	); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.getCodec(ctx); err != nil {
		return "", err
	}

	var token string
	var userID string
	err := a.store.Batch(ctx, func(ctx context.Context, tx kvstore.Store) error {
		users, err := loadJSON[models.User](ctx, tx, common.UsersKey)
		if err != nil {
			return err
		}
		if findUser(users, func(u models.User) bool { return u.Email == email }) >= 0 {
			return common.ErrDuplicateEmail
		}

		salt := cryptox.NewSalt()
		hash, err := cryptox.HashPassword(password, salt)
		if err != nil {
			return err
		}
		userID = uuid.NewString()
		users = append(users, models.User{
			ID:           userID,
			FullName:     fullName,
			Email:        email,
			PasswordHash: hash,
			Salt:         salt,
		})
		if err := saveJSON(ctx, tx, common.UsersKey, users); err != nil {
			return err
		}

		token, err = a.issue(ctx, tx, session.New(userID, a.now(), a.lifetime))
		return err
	})
	if err != nil {
		return "", err
	}

	a.log.Info(ctx, "user registered", "user_id", userID)
	return token, nil
}

func (a *authService) CurrentSession(ctx context.Context) (session.Session, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok, err := a.readSession(ctx, a.store)
	if err != nil || !ok || !s.IsValid(a.now()) {
		return session.Session{}, false, err
	}
	return s, true, nil
}

// currentUser returns the users collection and the index of the logged-in
// user. Callers hold a.mu.
func (a *authService) currentUser(ctx context.Context, st kvstore.Store) ([]models.User, int, error) {
	s, ok, err := a.readSession(ctx, st)
	if err != nil {
		return nil, -1, err
	}
	if !ok || !s.IsValid(a.now()) {
		return nil, -1, common.ErrNotAuthenticated
	}

	users, err := loadJSON[models.User](ctx, st, common.UsersKey)
	if err != nil {
		return nil, -1, err
	}
	idx := findUser(users, func(u models.User) bool { return u.ID == s.SubjectID })
	if idx < 0 {
		return nil, -1, fmt.Errorf("user %s: %w", s.SubjectID, common.ErrNotFound)
	}
	return users, idx, nil
}

func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	users, idx, err := a.currentUser(ctx, a.store)
	if err != nil {
		return nil, err
	}
	u := users[idx]
	return &u, nil
}

// UpdateProfile renames the current user when fullName is not empty and
// changes the password when newPassword is not empty.
func (a *authService) UpdateProfile(ctx context.Context, fullName, newPassword, confirm string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName != "" {
		if err := validate.ValidName(fullName); err != nil {
			return nil, err
		}
	}
	if newPassword != "" {
		if newPassword != confirm {
			return nil, common.ValidationError("password", "passwords do not match")
		}
		if err := validate.ValidPassword(newPassword); err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	users, idx, err := a.currentUser(ctx, a.store)
	if err != nil {
		return nil, err
	}

	u := &users[idx]
	if fullName != "" {
		u.FullName = fullName
	}
	if newPassword != "" {
		u.Salt = cryptox.NewSalt()
		if u.PasswordHash, err = cryptox.HashPassword(newPassword, u.Salt); err != nil {
			return nil, err
		}
	}

	if err := saveJSON(ctx, a.store, common.UsersKey, users); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "profile updated", "user_id", u.ID, "password_changed", newPassword != "")

	out := *u
	return &out, nil
}

// DeleteAccount removes the current user after re-checking the password and
// logs out. It returns the deleted user's id so callers can purge data owned
// by that user.
func (a *authService) DeleteAccount(ctx context.Context, password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.getCodec(ctx); err != nil {
		return "", err
	}

	var userID string
	err := a.store.Batch(ctx, func(ctx context.Context, tx kvstore.Store) error {
		users, idx, err := a.currentUser(ctx, tx)
		if err != nil {
			return err
		}
		u := users[idx]
		if !cryptox.VerifyPassword(password, u.Salt, u.PasswordHash) {
			return common.ErrInvalidCredential
		}
		userID = u.ID

		users = append(users[:idx], users[idx+1:]...)
		if err := saveJSON(ctx, tx, common.UsersKey, users); err != nil {
			return err
		}
		return tx.Delete(ctx, common.TokenKey)
	})
	if err != nil {
		return "", err
	}

	a.log.Info(ctx, "account deleted", "user_id", userID)
	return userID, nil
}

func findUser(users []models.User, match func(models.User) bool) int {
	for i, u := range users {
		if match(u) {
			return i
		}
	}
	return -1
}
