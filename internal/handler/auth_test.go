package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gumusqr/backend/internal/config"
	"github.com/gumusqr/backend/internal/model"
	"github.com/gumusqr/backend/internal/service"
)

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func (f *fakeUserRepo) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	f.nextID++
	user := &model.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
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

func newTestRouter(t *testing.T) (*gin.Engine, *fakeUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &fakeUserRepo{users: map[int64]*model.User{}}
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = repo.CreateUser(context.Background(), "admin", string(hash))
	require.NoError(t, err)

	svc, err := service.NewAuthService(repo, config.AuthConfig{
		JWTSecret: "test-secret",
		JWTTTL:    "168h",
	})
	require.NoError(t, err)

	authHandler := NewAuthHandler(svc)

	router := gin.New()
	router.POST("/api/v1/auth/login", authHandler.Login)
	router.GET("/api/v1/auth/verify", authHandler.Verify)

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(svc))
	protected.POST("/auth/change-password", authHandler.ChangePassword)

	return router, repo
}

func doJSON(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := doJSON(router, http.MethodPost, "/api/v1/auth/login",
		`{"username":"admin","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/login",
		`{"username":"admin","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "admin", res.User.Username)
	require.NotContains(t, rec.Body.String(), "password_hash")
}

func TestLoginEndpointWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/login",
		`{"username":"admin","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginEndpointMissingFields(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/login",
		`{"username":"admin"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpointMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/login", `{broken`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginToken(t, router)

	rec := doJSON(router, http.MethodGet, "/api/v1/auth/verify", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "admin", res.User.Username)
}

func TestVerifyEndpointRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/auth/verify", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyEndpointRejectsBadToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/auth/verify", "", "garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	router, repo := newTestRouter(t)
	token := loginToken(t, router)

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/change-password",
		`{"currentPassword":"correct-horse","newPassword":"new-password"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.users[1].PasswordHash), []byte("new-password")))

	// The old token still verifies: no rotation on password change.
	rec = doJSON(router, http.MethodGet, "/api/v1/auth/verify", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordEndpointRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/change-password",
		`{"currentPassword":"correct-horse","newPassword":"new-password"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpointWrongCurrent(t *testing.T) {
	router, repo := newTestRouter(t)
	token := loginToken(t, router)
	originalHash := repo.users[1].PasswordHash

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/change-password",
		`{"currentPassword":"wrong","newPassword":"new-password"}`, token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, originalHash, repo.users[1].PasswordHash)
}

func TestChangePasswordEndpointShortNew(t *testing.T) {
	router, _ := newTestRouter(t)
	token := loginToken(t, router)

	rec := doJSON(router, http.MethodPost, "/api/v1/auth/change-password",
		`{"currentPassword":"correct-horse","newPassword":"abc12"}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
