package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gumusqr/backend/internal/config"
	"github.com/gumusqr/backend/internal/model"
)

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*model.User{}}
}

func (f *fakeUserRepo) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	f.nextID++
	user := &model.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	if u, ok := f.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	if u, ok := f.users[userID]; ok {
		u.PasswordHash = passwordHash
		return nil
	}
	return pgx.ErrNoRows
}

func (f *fakeUserRepo) addUser(t *testing.T, username, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := f.CreateUser(context.Background(), username, string(hash))
	require.NoError(t, err)
	return user
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTTTL:        "168h",
		AdminUsername: "admin",
		AdminPassword: "bootstrap-pass",
	}
}

func newTestAuthService(t *testing.T, repo UserRepo, cfg config.AuthConfig) *AuthService {
	t.Helper()
	svc, err := NewAuthService(repo, cfg)
	require.NoError(t, err)
	return svc
}

func TestNewAuthServiceConfig(t *testing.T) {
	repo := newFakeUserRepo()

	cfg := testAuthConfig()
	cfg.JWTSecret = ""
	_, err := NewAuthService(repo, cfg)
	require.ErrorIs(t, err, ErrMisconfigured)

	cfg = testAuthConfig()
	cfg.JWTTTL = "nonsense"
	_, err = NewAuthService(repo, cfg)
	require.ErrorIs(t, err, ErrMisconfigured)

	cfg = testAuthConfig()
	cfg.RecoveryMode = "true"
	_, err = NewAuthService(repo, cfg)
	require.ErrorIs(t, err, ErrMisconfigured, "recovery mode without credentials must be rejected")
}

func TestLoginVerifyRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser(t, "admin", "correct-horse")
	svc := newTestAuthService(t, repo, testAuthConfig())

	token, loggedIn, err := svc.Login(context.Background(), "admin", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, model.AuthUser{ID: user.ID, Username: "admin"}, loggedIn)

	verified, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, loggedIn, verified)
}

func TestLoginInvalidInput(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo(), testAuthConfig())

	_, _, err := svc.Login(context.Background(), "", "pass")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.Login(context.Background(), "admin", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	repo.addUser(t, "admin", "correct-horse")
	svc := newTestAuthService(t, repo, testAuthConfig())

	token, _, err := svc.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Empty(t, token)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.addUser(t, "admin", "correct-horse")
	svc := newTestAuthService(t, repo, testAuthConfig())

	_, _, wrongPass := svc.Login(context.Background(), "admin", "wrong")
	_, _, unknown := svc.Login(context.Background(), "nobody", "wrong")
	require.Equal(t, wrongPass, unknown, "unknown user and wrong password must be indistinguishable")
}

func TestLoginBootstrapsAdminOnce(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo, testAuthConfig())

	token, user, err := svc.Login(context.Background(), "admin", "bootstrap-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "admin", user.Username)
	require.Len(t, repo.users, 1)

	// Second login on the seeded store must not create another account.
	_, _, err = svc.Login(context.Background(), "admin", "bootstrap-pass")
	require.NoError(t, err)
	require.Len(t, repo.users, 1)
}

func TestLoginBootstrapSwallowsUniqueViolation(t *testing.T) {
	repo := newFakeUserRepo()
	repo.addUser(t, "admin", "already-here")
	svc := newTestAuthService(t, &racingUserRepo{fakeUserRepo: repo}, testAuthConfig())

	// CountUsers reports empty (the concurrent-first-request race); the
	// duplicate insert fails on the unique constraint and is swallowed.
	_, _, err := svc.Login(context.Background(), "admin", "already-here")
	require.NoError(t, err)
	require.Len(t, repo.users, 1)
}

// racingUserRepo simulates a login that observed an empty table just before
// another request seeded it.
type racingUserRepo struct {
	*fakeUserRepo
}

func (f *racingUserRepo) CountUsers(ctx context.Context) (int64, error) {
	return 0, nil
}

func TestVerifyExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	repo.addUser(t, "admin", "correct-horse")

	cfg := testAuthConfig()
	cfg.JWTTTL = "1ms"
	svc := newTestAuthService(t, repo, cfg)

	token, _, err := svc.Login(context.Background(), "admin", "correct-horse")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo(), testAuthConfig())

	_, err := svc.Verify(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyDeletedUser(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser(t, "admin", "correct-horse")
	svc := newTestAuthService(t, repo, testAuthConfig())

	token, _, err := svc.Login(context.Background(), "admin", "correct-horse")
	require.NoError(t, err)

	delete(repo.users, user.ID)

	_, err = svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecoveryModeRewritesHash(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser(t, "admin", "old-password")
	// Simulate a corrupted stored hash.
	repo.users[user.ID].PasswordHash = "not-a-bcrypt-hash"

	cfg := testAuthConfig()
	cfg.RecoveryMode = "true"
	cfg.RecoveryUsername = "admin"
	cfg.RecoveryPassword = "break-glass-pass"
	svc := newTestAuthService(t, repo, cfg)

	// Non-recovery credentials keep failing.
	_, _, err := svc.Login(context.Background(), "admin", "old-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// The recovery pair heals the hash and logs in.
	token, _, err := svc.Login(context.Background(), "admin", "break-glass-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The rewritten hash now verifies normally.
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.users[user.ID].PasswordHash), []byte("break-glass-pass")))
}

func TestRecoveryModeOffByDefault(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser(t, "admin", "old-password")
	repo.users[user.ID].PasswordHash = "not-a-bcrypt-hash"

	svc := newTestAuthService(t, repo, testAuthConfig())

	_, _, err := svc.Login(context.Background(), "admin", "break-glass-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Equal(t, "not-a-bcrypt-hash", repo.users[user.ID].PasswordHash)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser(t, "admin", "old-password")
	svc := newTestAuthService(t, repo, testAuthConfig())

	require.NoError(t,
		svc.ChangePassword(context.Background(), user.ID, "old-password", "new-password"))

	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.users[user.ID].PasswordHash), []byte("new-password")))

	_, _, err := svc.Login(context.Background(), "admin", "new-password")
	require.NoError(t, err)
}

func TestChangePasswordValidation(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser(t, "admin", "old-password")
	originalHash := repo.users[user.ID].PasswordHash
	svc := newTestAuthService(t, repo, testAuthConfig())

	tests := []struct {
		name    string
		current string
		next    string
		wantErr error
	}{
		{"missing current", "", "new-password", ErrInvalidInput},
		{"missing new", "old-password", "", ErrInvalidInput},
		{"new too short", "old-password", "abc12", ErrInvalidInput},
		{"wrong current", "nope", "new-password", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(context.Background(), user.ID, tt.current, tt.next)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, originalHash, repo.users[user.ID].PasswordHash, "hash must be untouched")
		})
	}
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), 42, "old-password", "new-password")
	require.ErrorIs(t, err, ErrUserNotFound)
}
