package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userapp "github.com/identitylab/identity-service/internal/application"
	"github.com/identitylab/identity-service/internal/infrastructure/memory"
	"github.com/identitylab/identity-service/internal/interface/middleware"
	"github.com/identitylab/identity-service/pkg/helpers"
	"github.com/identitylab/identity-service/pkg/validation"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	repo := memory.NewUserRepository()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	svc := userapp.NewService(repo, helpers.NewHasher(bcrypt.MinCost), jwt, nil, nil, nil, "", nil, false)

	authH := NewAuthHandler(svc, nil)
	userH := NewUserHandler(svc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	protected := api.Group("/")
	protected.Use(middleware.Auth(jwt))
	protected.GET("/profile", userH.GetProfile)
	protected.GET("/users", userH.ListUsers)
	protected.GET("/users/:id", userH.GetUser)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r *gin.Engine, email, password string) envelope {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": password,
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func tokenFrom(t *testing.T, env envelope) string {
	t.Helper()
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestRegisterEndpoint(t *testing.T) {
	r := setupRouter(t)

	env := register(t, r, "a@x.com", "secret123")
	require.True(t, env.Success)
	require.NotContains(t, strings.ToLower(string(env.Data)), "password")
	tokenFrom(t, env)

	// Same email again conflicts and names the email.
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "a@x.com",
		"password": "secret123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "a@x.com")
}

func TestRegisterEndpoint_InvalidPayload(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "not-an-email",
		"password": "short",
		"name":     "X",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r := setupRouter(t)
	register(t, r, "a@x.com", "secret123")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@x.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	tokenFrom(t, env)
}

func TestLoginEndpoint_SameMessageForBothFailures(t *testing.T) {
	r := setupRouter(t)
	register(t, r, "a@x.com", "secret123")

	wrongPass := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "a@x.com",
		"password": "wrongpassword",
	})
	unknownEmail := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "nobody@x.com",
		"password": "secret123",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)

	var a, b envelope
	require.NoError(t, json.Unmarshal(wrongPass.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(unknownEmail.Body.Bytes(), &b))
	require.Equal(t, a.Message, b.Message)
}

func TestProtectedRoutes(t *testing.T) {
	r := setupRouter(t)
	env := register(t, r, "a@x.com", "secret123")
	token := tokenFrom(t, env)

	// No token
	w := doJSON(t, r, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token
	w = doJSON(t, r, http.MethodGet, "/api/users", "not.a.jwt", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token; the list never carries hashes
	w = doJSON(t, r, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, strings.ToLower(w.Body.String()), "password")

	// Own profile resolves from the token
	w = doJSON(t, r, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "a@x.com")

	// Unknown id
	w = doJSON(t, r, http.MethodGet, "/api/users/does-not-exist", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
