package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulse-news/pulse/internal/shared"
	"github.com/pulse-news/pulse/internal/token"
	"github.com/pulse-news/pulse/internal/users"
)

type stubUserSource struct {
	users map[string]users.User
}

func (s *stubUserSource) FindByLogin(ctx context.Context, login string) (users.User, error) {
	u, ok := s.users[login]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

type stubAccounts struct {
	registered []users.RegisterInput
	logins     []int64
}

func (s *stubAccounts) Register(ctx context.Context, input users.RegisterInput) (users.User, error) {
	s.registered = append(s.registered, input)
	return users.User{ID: 42, Username: input.Username, Email: input.Email, Active: true}, nil
}

func (s *stubAccounts) MarkLogin(ctx context.Context, userID int64, ip string) {
	s.logins = append(s.logins, userID)
}

type stubRecorder struct {
	actions []string
}

func (s *stubRecorder) Record(ctx context.Context, userID int64, action string, details map[string]any) {
	s.actions = append(s.actions, action)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testHandler(t *testing.T, source *stubUserSource) (*Handler, *stubAccounts, *stubRecorder) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	issuer, err := token.NewIssuer("0123456789abcdef0123456789abcdef", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	accounts := &stubAccounts{}
	recorder := &stubRecorder{}
	h := NewHandler(
		slog.Default(),
		NewService(source),
		accounts,
		issuer,
		token.NewDenylist(client),
		recorder,
	)
	return h, accounts, recorder
}

func doJSON(t *testing.T, h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r := chi.NewRouter()
	h.MountRoutes(r)
	r.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	source := &stubUserSource{users: map[string]users.User{
		"dana": {ID: 7, Username: "dana", PasswordHash: hashed(t, "pw123456"), Active: true},
	}}
	h, accounts, recorder := testHandler(t, source)

	rec := doJSON(t, h, http.MethodPost, "/login", map[string]string{"login": "dana", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)
	assert.Equal(t, int64(7), resp.User.ID)
	assert.Equal(t, []int64{7}, accounts.logins)
	assert.Contains(t, recorder.actions, "login")
}

func TestLoginWrongPassword(t *testing.T) {
	source := &stubUserSource{users: map[string]users.User{
		"dana": {ID: 7, Username: "dana", PasswordHash: hashed(t, "pw123456"), Active: true},
	}}
	h, _, _ := testHandler(t, source)

	rec := doJSON(t, h, http.MethodPost, "/login", map[string]string{"login": "dana", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	source := &stubUserSource{users: map[string]users.User{
		"dana": {ID: 7, Username: "dana", PasswordHash: hashed(t, "pw123456"), Active: false},
	}}
	h, _, _ := testHandler(t, source)

	rec := doJSON(t, h, http.MethodPost, "/login", map[string]string{"login": "dana", "password": "pw123456"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterIssuesTokens(t *testing.T) {
	h, accounts, _ := testHandler(t, &stubUserSource{users: map[string]users.User{}})

	rec := doJSON(t, h, http.MethodPost, "/register", map[string]string{
		"username": "dana",
		"email":    "dana@example.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, accounts.registered, 1)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Access)
	assert.Equal(t, int64(42), resp.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	h, _, _ := testHandler(t, &stubUserSource{users: map[string]users.User{}})

	rec := doJSON(t, h, http.MethodPost, "/register", map[string]string{
		"username": "dana",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	source := &stubUserSource{users: map[string]users.User{
		"dana": {ID: 7, Username: "dana", PasswordHash: hashed(t, "pw123456"), Active: true},
	}}
	h, _, _ := testHandler(t, source)

	login := doJSON(t, h, http.MethodPost, "/login", map[string]string{"login": "dana", "password": "pw123456"})
	require.Equal(t, http.StatusOK, login.Code)
	var session sessionResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &session))

	refreshed := doJSON(t, h, http.MethodPost, "/refresh", map[string]string{"refresh": session.Refresh})
	require.Equal(t, http.StatusOK, refreshed.Code)

	// the consumed refresh token must not work a second time
	replay := doJSON(t, h, http.MethodPost, "/refresh", map[string]string{"refresh": session.Refresh})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	source := &stubUserSource{users: map[string]users.User{
		"dana": {ID: 7, Username: "dana", PasswordHash: hashed(t, "pw123456"), Active: true},
	}}
	h, _, recorder := testHandler(t, source)

	login := doJSON(t, h, http.MethodPost, "/login", map[string]string{"login": "dana", "password": "pw123456"})
	require.Equal(t, http.StatusOK, login.Code)
	var session sessionResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &session))

	out := doJSON(t, h, http.MethodPost, "/logout", map[string]string{"refresh": session.Refresh})
	require.Equal(t, http.StatusNoContent, out.Code)
	assert.Contains(t, recorder.actions, "logout")

	rec := doJSON(t, h, http.MethodPost, "/refresh", map[string]string{"refresh": session.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	source := &stubUserSource{users: map[string]users.User{
		"dana": {ID: 7, Username: "dana", PasswordHash: hashed(t, "pw123456"), Active: true},
	}}
	h, _, _ := testHandler(t, source)

	login := doJSON(t, h, http.MethodPost, "/login", map[string]string{"login": "dana", "password": "pw123456"})
	var session sessionResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &session))

	rec := doJSON(t, h, http.MethodPost, "/refresh", map[string]string{"refresh": session.Access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
