package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gumusqr/backend/internal/config"
	"github.com/gumusqr/backend/internal/db"
	"github.com/gumusqr/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const minNewPasswordLength = 6

type UserRepo interface {
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

type AuthService struct {
	repo      UserRepo
	jwtSecret []byte
	tokenTTL  time.Duration

	seedUsername string
	seedPassword string

	recoveryEnabled  bool
	recoveryUsername string
	recoveryPassword string
}

type authClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewAuthService(repo UserRepo, cfg config.AuthConfig) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	tokenTTL, err := time.ParseDuration(cfg.JWTTTL)
	if err != nil || tokenTTL <= 0 {
		return nil, fmt.Errorf("%w: invalid JWT_TTL", ErrMisconfigured)
	}

	recoveryEnabled, err := parseBool(cfg.RecoveryMode, false)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_RECOVERY_MODE", ErrMisconfigured)
	}
	if recoveryEnabled && (cfg.RecoveryUsername == "" || cfg.RecoveryPassword == "") {
		return nil, fmt.Errorf("%w: AUTH_RECOVERY_MODE requires AUTH_RECOVERY_USERNAME and AUTH_RECOVERY_PASSWORD", ErrMisconfigured)
	}

	return &AuthService{
		repo:             repo,
		jwtSecret:        []byte(cfg.JWTSecret),
		tokenTTL:         tokenTTL,
		seedUsername:     cfg.AdminUsername,
		seedPassword:     cfg.AdminPassword,
		recoveryEnabled:  recoveryEnabled,
		recoveryUsername: cfg.RecoveryUsername,
		recoveryPassword: cfg.RecoveryPassword,
	}, nil
}

// Login checks the supplied credentials and returns a signed bearer token
// plus the user projection. On a completely empty user table it first seeds
// the configured admin account, so a fresh deployment is reachable without
// manual inserts.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, model.AuthUser, error) {
	if username == "" || password == "" {
		return "", model.AuthUser{}, ErrInvalidInput
	}

	if err := s.seedAdminIfEmpty(ctx); err != nil {
		return "", model.AuthUser{}, err
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			// Same answer as a wrong password, so usernames cannot be probed.
			return "", model.AuthUser{}, ErrInvalidCredentials
		}
		return "", model.AuthUser{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !s.recoverHash(ctx, user, username, password) {
			return "", model.AuthUser{}, ErrInvalidCredentials
		}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", model.AuthUser{}, err
	}

	return token, model.AuthUser{ID: user.ID, Username: user.Username}, nil
}

// Verify validates a bearer token and re-fetches the user it names, so a
// deleted account is rejected even while its token is still within TTL.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (model.AuthUser, error) {
	identity, err := s.ParseToken(tokenString)
	if err != nil {
		return model.AuthUser{}, err
	}

	user, err := s.repo.GetUserByID(ctx, identity.ID)
	if err != nil {
		if db.IsNoRows(err) {
			return model.AuthUser{}, ErrUserNotFound
		}
		return model.AuthUser{}, err
	}

	return model.AuthUser{ID: user.ID, Username: user.Username}, nil
}

// ChangePassword rotates the stored hash after re-verifying the current
// password. Existing tokens stay valid until they expire; there is no
// server-side revocation.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrInvalidInput
	}
	if len(newPassword) < minNewPasswordLength {
		return ErrInvalidInput
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePasswordHash(ctx, user.ID, string(hash))
}

// ParseToken validates signature and expiry and returns the embedded
// identity. It does not touch the database; Verify does.
func (s *AuthService) ParseToken(tokenString string) (*model.AuthUser, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}

	return &model.AuthUser{
		ID:       userID,
		Username: claims.Username,
	}, nil
}

func (s *AuthService) seedAdminIfEmpty(ctx context.Context) error {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if s.seedUsername == "" || s.seedPassword == "" {
		log.Printf("[Auth] user table is empty but ADMIN_USERNAME/ADMIN_PASSWORD are not set; skipping bootstrap")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := s.repo.CreateUser(ctx, s.seedUsername, string(hash)); err != nil {
		// A concurrent first request won the race; the unique constraint on
		// username guarantees a single seeded account.
		if db.IsUniqueViolation(err) {
			return nil
		}
		return err
	}

	log.Printf("[Auth] bootstrapped admin account %q", s.seedUsername)
	return nil
}

// recoverHash is the break-glass path: when recovery mode is explicitly
// enabled and the supplied pair matches the operator-configured recovery
// credentials, the stored hash is rewritten from the supplied password.
// This exists to recover from hash corruption or a hash-scheme migration
// without touching the database by hand. Every activation is logged.
func (s *AuthService) recoverHash(ctx context.Context, user *model.User, username, password string) bool {
	if !s.recoveryEnabled {
		return false
	}
	if username != s.recoveryUsername || password != s.recoveryPassword {
		return false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Auth] recovery hash generation failed for %q: %v", username, err)
		return false
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		log.Printf("[Auth] recovery hash update failed for %q: %v", username, err)
		return false
	}

	log.Printf("[Auth] RECOVERY MODE: stored hash for %q was rewritten from recovery credentials", username)
	return true
}

func (s *AuthService) generateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := authClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}
