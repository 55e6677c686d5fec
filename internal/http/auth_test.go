package handlers_test

import (
	"net/http"
	"regexp"
	"testing"

	"ecomapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var activationPath = regexp.MustCompile(`/api/users/activate/[A-Za-z0-9_-]+/[0-9a-f]+`)

func registration(email string) map[string]any {
	return map[string]any{"fname": "Ada", "lname": "Lovelace", "email": email, "password": "Str0ng!pass"}
}

func TestRegisterActivateLogin(t *testing.T) {
	env := newEnv(t)

	status, raw := env.do(t, http.MethodPost, "/api/users/register", "", registration("ada@example.com"))
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "Please check your email to activate your account.", decode(t, raw)["details"])

	// inactive accounts cannot log in yet
	creds := map[string]any{"username": "ada@example.com", "password": "Str0ng!pass"}
	status, _ = env.do(t, http.MethodPost, "/api/users/login", "", creds)
	require.Equal(t, http.StatusUnauthorized, status)

	msg := env.mail.last()
	require.Equal(t, "ada@example.com", msg.To)
	path := activationPath.FindString(msg.Body)
	require.NotEmpty(t, path, "activation link missing from %q", msg.Body)

	status, raw = env.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "<html")

	// the link is single use
	status, _ = env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = env.do(t, http.MethodPost, "/api/users/login", "", creds)
	require.Equal(t, http.StatusOK, status, string(raw))
	body := decode(t, raw)
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, false, body["isAdmin"])
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)

	status, raw = env.do(t, http.MethodGet, "/api/users/profile", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ada", decode(t, raw)["name"])

	status, _ = env.do(t, http.MethodPost, "/api/users/logout", tok, nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _ = env.do(t, http.MethodGet, "/api/users/profile", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	env := newEnv(t)

	status, _ := env.do(t, http.MethodPost, "/api/users/register", "", registration("dup@example.com"))
	require.Equal(t, http.StatusOK, status)

	var raw []byte
	logs := captureLogs(t, func() {
		status, raw = env.do(t, http.MethodPost, "/api/users/register", "", registration("DUP@example.com"))
	})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "User with this email already exists", decode(t, raw)["detail"])
	_, ok := findLog(logs, "auth.register.duplicate")
	assert.True(t, ok)
}

func TestRegisterValidation(t *testing.T) {
	env := newEnv(t)

	req := registration("weak@example.com")
	req["password"] = "short"
	status, raw := env.do(t, http.MethodPost, "/api/users/register", "", req)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password", decode(t, raw)["field"])

	req = registration("")
	status, raw = env.do(t, http.MethodPost, "/api/users/register", "", req)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "email", decode(t, raw)["field"])
}

func TestActivateWithBadLinkRendersFailure(t *testing.T) {
	env := newEnv(t)

	status, raw := env.do(t, http.MethodGet, "/api/users/activate/bm9wZQ/deadbeef", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "<html")
}

func TestLoginFailureIsGenericAndLogged(t *testing.T) {
	env := newEnv(t)
	env.user(t, "known@example.com", domain.RoleUser)

	var status int
	var raw []byte
	logs := captureLogs(t, func() {
		status, raw = env.do(t, http.MethodPost, "/api/users/login", "",
			map[string]any{"email": "known@example.com", "password": "wrong"})
	})
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No active account found with the given credentials", decode(t, raw)["detail"])

	status, raw = env.do(t, http.MethodPost, "/api/users/login", "",
		map[string]any{"email": "nobody@example.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No active account found with the given credentials", decode(t, raw)["detail"])

	e, ok := findLog(logs, "auth.login.fail")
	require.True(t, ok)
	assert.Equal(t, "warn", e.Level)
}

func TestLoginIsRateLimited(t *testing.T) {
	env := newEnv(t)
	creds := map[string]any{"email": "x@example.com", "password": "wrong"}

	for i := 0; i < 5; i++ {
		status, _ := env.do(t, http.MethodPost, "/api/users/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, status, "attempt %d", i)
	}
	var status int
	logs := captureLogs(t, func() {
		status, _ = env.do(t, http.MethodPost, "/api/users/login", "", creds)
	})
	assert.Equal(t, http.StatusTooManyRequests, status)
	_, ok := findLog(logs, "rate.login.hit")
	assert.True(t, ok)
}
