package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityconfig "github.com/vasapolrittideah/identity-docstore/identity/config"
	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/payload"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/usecase"
	"github.com/vasapolrittideah/identity-docstore/shared/auth"
	"github.com/vasapolrittideah/identity-docstore/shared/middleware"
	"github.com/vasapolrittideah/identity-docstore/shared/provider"
	"github.com/vasapolrittideah/identity-docstore/shared/validation"
)

// fakeGoogle accepts any token of the form "google:<subject>".
type fakeGoogle struct{}

func (fakeGoogle) ValidateIDToken(_ context.Context, idToken string) (*provider.GoogleIdentity, error) {
	subject, ok := strings.CutPrefix(idToken, "google:")
	if !ok {
		return nil, provider.ErrInvalidGoogleToken
	}

	return &provider.GoogleIdentity{Subject: subject, Email: subject + "@gmail.com"}, nil
}

type testServer struct {
	handler http.Handler
	stores  *identityconfig.Stores
	token   string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()
	cfg := &identityconfig.Config{
		ConnectionString: filepath.Join(t.TempDir(), "identity.db"),
		CascadeDelete:    true,
	}
	stores, err := cfg.Open(ctx, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	jwtAuth := auth.NewJWTAuthenticator("test-secret", "aud", "iss", time.Hour)
	authUC := usecase.NewAuthUsecase(&logger, stores.Roles, stores.Users, jwtAuth, "Administrator",
		usecase.LockoutPolicy{MaxFailedAttempts: 5, Duration: time.Minute}, nil)
	require.NoError(t, authUC.Bootstrap(ctx, usecase.BootstrapParams{UserName: "root", Password: "s3cret-pass"}))

	s := &testServer{
		stores: stores,
		handler: NewAdminHTTPHandler(
			&logger,
			validation.New(),
			authUC,
			usecase.NewRoleUsecase(stores.Roles),
			usecase.NewUserUsecase(stores.Users),
			usecase.NewLoginUsecase(stores.Users, fakeGoogle{}),
			middleware.NewJWTMiddleware(&logger, jwtAuth, []string{TokenPath}),
		),
	}

	var tok payload.TokenResponse
	rec := s.do(t, http.MethodPost, TokenPath, payload.TokenRequest{UserName: "root", Password: "s3cret-pass"}, &tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Bearer", tok.TokenType)
	s.token = tok.AccessToken

	return s
}

func (s *testServer) do(t *testing.T, method, path string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if out != nil && rec.Code < http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}

	return rec
}

func TestAdminHTTPHandler_RequiresToken(t *testing.T) {
	s := setupTestServer(t)
	s.token = ""

	rec := s.do(t, http.MethodGet, "/roles", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminHTTPHandler_Token(t *testing.T) {
	s := setupTestServer(t)
	s.token = ""

	rec := s.do(t, http.MethodPost, TokenPath, payload.TokenRequest{UserName: "root", Password: "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, TokenPath, map[string]string{"user_name": "root"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp payload.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "password")
}

func TestAdminHTTPHandler_Roles(t *testing.T) {
	s := setupTestServer(t)

	var role payload.RoleResponse
	rec := s.do(t, http.MethodPost, "/roles", payload.CreateRoleRequest{Name: "Editor"}, &role)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "EDITOR", role.NormalizedName)

	rec = s.do(t, http.MethodPost, "/roles", payload.CreateRoleRequest{Name: "editor"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var roles []payload.RoleResponse
	rec = s.do(t, http.MethodGet, "/roles", nil, &roles)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, roles, 2)

	claim := payload.ClaimRequest{Type: "perm", Value: "publish"}
	rec = s.do(t, http.MethodPost, "/roles/"+role.ID+"/claims", claim, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var claims []model.Claim
	rec = s.do(t, http.MethodGet, "/roles/"+role.ID+"/claims", nil, &claims)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.Claim{claim.Claim()}, claims)

	rec = s.do(t, http.MethodDelete, "/roles/"+role.ID+"/claims", claim, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/roles/"+role.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/roles/"+role.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/roles/not-an-id", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHTTPHandler_Users(t *testing.T) {
	s := setupTestServer(t)

	var role payload.RoleResponse
	require.Equal(t, http.StatusCreated,
		s.do(t, http.MethodPost, "/roles", payload.CreateRoleRequest{Name: "Editor"}, &role).Code)

	var user payload.UserResponse
	rec := s.do(t, http.MethodPost, "/users", payload.CreateUserRequest{
		UserName: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	}, &user)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, user.HasPassword)
	assert.True(t, user.LockoutEnabled)

	rec = s.do(t, http.MethodPost, "/users", payload.CreateUserRequest{UserName: "x", Email: "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/"+user.ID+"/roles", payload.AddUserRoleRequest{Role: "editor"}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/"+user.ID+"/roles", payload.AddUserRoleRequest{Role: "ghost"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var roles []string
	rec = s.do(t, http.MethodGet, "/users/"+user.ID+"/roles", nil, &roles)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Editor"}, roles)

	rec = s.do(t, http.MethodDelete, "/users/"+user.ID+"/roles/editor", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var claims []model.Claim
	rec = s.do(t, http.MethodGet, "/users/"+user.ID+"/claims", nil, &claims)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, claims)

	var logins []model.LoginInfo
	rec = s.do(t, http.MethodGet, "/users/"+user.ID+"/logins", nil, &logins)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, logins)

	var users []payload.UserResponse
	rec = s.do(t, http.MethodGet, "/users", nil, &users)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, users, 2)

	rec = s.do(t, http.MethodDelete, "/users/"+user.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/"+user.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHTTPHandler_RecoveryCodes(t *testing.T) {
	s := setupTestServer(t)

	var user payload.UserResponse
	require.Equal(t, http.StatusCreated,
		s.do(t, http.MethodPost, "/users", payload.CreateUserRequest{UserName: "alice"}, &user).Code)

	var generated payload.RecoveryCodesResponse
	rec := s.do(t, http.MethodPost, "/users/"+user.ID+"/recovery-codes", nil, &generated)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, generated.Codes)

	var redeemed payload.RedeemCodeResponse
	rec = s.do(t, http.MethodPost, "/users/"+user.ID+"/recovery-codes/redeem",
		payload.RedeemCodeRequest{Code: generated.Codes[0]}, &redeemed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, redeemed.Redeemed)
	assert.Equal(t, len(generated.Codes)-1, redeemed.Remaining)

	rec = s.do(t, http.MethodPost, "/users/"+user.ID+"/recovery-codes/redeem",
		payload.RedeemCodeRequest{Code: generated.Codes[0]}, &redeemed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, redeemed.Redeemed)
}

func TestAdminHTTPHandler_StoreClosed(t *testing.T) {
	s := setupTestServer(t)
	require.NoError(t, s.stores.Close())

	rec := s.do(t, http.MethodGet, "/users", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminHTTPHandler_Logins(t *testing.T) {
	s := setupTestServer(t)

	var user payload.UserResponse
	require.Equal(t, http.StatusCreated,
		s.do(t, http.MethodPost, "/users", payload.CreateUserRequest{UserName: "alice"}, &user).Code)

	var login model.LoginInfo
	rec := s.do(t, http.MethodPost, "/users/"+user.ID+"/logins/google",
		payload.LinkGoogleLoginRequest{IDToken: "google:g-7"}, &login)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Google", login.LoginProvider)
	assert.Equal(t, "g-7", login.ProviderKey)

	rec = s.do(t, http.MethodPost, "/users/"+user.ID+"/logins/google",
		payload.LinkGoogleLoginRequest{IDToken: "forged"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var logins []model.LoginInfo
	rec = s.do(t, http.MethodGet, "/users/"+user.ID+"/logins", nil, &logins)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.LoginInfo{login}, logins)

	rec = s.do(t, http.MethodDelete, "/users/"+user.ID+"/logins/Google/g-7", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/"+user.ID+"/logins", nil, &logins)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, logins)
}
