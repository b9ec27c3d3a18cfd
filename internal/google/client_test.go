package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(tokenURL, userinfoURL string) *Client {
	c := NewClient("client-id", "client-secret", "http://localhost:8080/auth/google/callback")
	if tokenURL != "" {
		c.tokenURL = tokenURL
	}
	if userinfoURL != "" {
		c.userinfoURL = userinfoURL
	}
	return c
}

func TestAuthURL(t *testing.T) {
	c := newTestClient("", "")
	authURL := c.AuthURL("session:abc")

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, "session:abc", parsed.Query().Get("state"))
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.Equal(t, "offline", parsed.Query().Get("access_type"))
	assert.Equal(t, "client-id", parsed.Query().Get("client_id"))
}

func TestExchangeCode(t *testing.T) {
	t.Run("returns tokens on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "the-code", r.Form.Get("code"))
			assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at-123","refresh_token":"rt-456"}`))
		}))
		defer srv.Close()

		c := newTestClient(srv.URL, "")
		tokens, err := c.ExchangeCode(context.Background(), "the-code")
		require.NoError(t, err)
		assert.Equal(t, "at-123", tokens.AccessToken)
		assert.Equal(t, "rt-456", tokens.RefreshToken)
	})

	t.Run("fails on non-200 response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL, "")
		_, err := c.ExchangeCode(context.Background(), "bad-code")
		assert.ErrorIs(t, err, ErrProviderError)
	})

	t.Run("fails when no access token is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := newTestClient(srv.URL, "")
		_, err := c.ExchangeCode(context.Background(), "the-code")
		assert.ErrorIs(t, err, ErrProviderError)
	})
}

func TestFetchProfile(t *testing.T) {
	t.Run("returns profile on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
			w.Write([]byte(`{"email":"a@x.com","name":"Ada","picture":"https://example.com/p.png"}`))
		}))
		defer srv.Close()

		c := newTestClient("", srv.URL)
		profile, err := c.FetchProfile(context.Background(), "at-123")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", profile.Email)
		assert.Equal(t, "Ada", profile.Name)
	})

	t.Run("fails when profile has no email", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"Ada"}`))
		}))
		defer srv.Close()

		c := newTestClient("", srv.URL)
		_, err := c.FetchProfile(context.Background(), "at-123")
		assert.ErrorIs(t, err, ErrProviderError)
	})
}
