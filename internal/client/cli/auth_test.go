package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkurosov/authguard/internal/client/config"
)

func stubInputs(t *testing.T, text string, password []byte) func() {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return text, nil }
	getPassword = func(_ io.Writer, _ string) ([]byte, error) { return append([]byte(nil), password...), nil }
	return func() {
		getSimpleText = origST
		getPassword = origGP
	}
}

func newAppAgainst(srv *httptest.Server) *App {
	return NewApp(&config.Config{ServerAddr: srv.URL})
}

func TestLoginStoresSession(t *testing.T) {
	restore := stubInputs(t, "alice@example.com", []byte("s3cret-pass"))
	defer restore()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req["email"])
		assert.Equal(t, "s3cret-pass", req["password"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "aaa", "refresh_token": "rrr",
		})
	}))
	defer srv.Close()

	a := newAppAgainst(srv)
	require.NoError(t, a.Login(context.Background()))

	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "alice@example.com", a.email)
}

func TestLoginRejected(t *testing.T) {
	restore := stubInputs(t, "alice@example.com", []byte("wrong"))
	defer restore()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "wrong email or password"})
	}))
	defer srv.Close()

	a := newAppAgainst(srv)
	require.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestRegisterSendsDetails(t *testing.T) {
	restore := stubInputs(t, "alice@example.com", []byte("s3cret-pass"))
	defer restore()

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "id-1"})
	}))
	defer srv.Close()

	a := newAppAgainst(srv)
	require.NoError(t, a.Register(context.Background()))

	assert.Equal(t, "alice@example.com", got["email"])
	assert.Equal(t, "s3cret-pass", got["password"])
}

func TestLogoutClearsSession(t *testing.T) {
	restore := stubInputs(t, "alice@example.com", []byte("s3cret-pass"))
	defer restore()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token": "aaa", "refresh_token": "rrr",
			})
		case "/api/logout":
			assert.Equal(t, "Bearer aaa", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a := newAppAgainst(srv)
	require.NoError(t, a.Login(context.Background()))
	require.NoError(t, a.Logout(context.Background()))

	assert.False(t, a.isLoggedIn())
	assert.Empty(t, a.email)
}
