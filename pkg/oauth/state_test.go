package oauth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialite/pkg/cookie"
	"github.com/dmitrymomot/socialite/pkg/oauth"
)

func TestNewCookieStateStore(t *testing.T) {
	t.Parallel()

	s, err := oauth.NewCookieStateStore("short")
	require.ErrorIs(t, err, oauth.ErrBadStateSecret)
	require.Nil(t, s)

	s, err = oauth.NewCookieStateStore(testSecret)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestCookieStateStore(t *testing.T) {
	t.Parallel()

	save := func(t *testing.T, s oauth.StateStore, key, state string) []*http.Cookie {
		t.Helper()
		rec := httptest.NewRecorder()
		require.NoError(t, s.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), key, state))
		return rec.Result().Cookies()
	}
	requestWith := func(cookies []*http.Cookie) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/callback", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return req
	}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		s, err := oauth.NewCookieStateStore(testSecret,
			oauth.WithStateTTL(time.Minute),
			oauth.WithCookieSecure(true),
			oauth.WithCookiePath("/auth"),
			oauth.WithCookieDomain("example.com"),
		)
		require.NoError(t, err)

		cookies := save(t, s, "discord", "the-state")
		require.Len(t, cookies, 1)
		require.Equal(t, "oauth_state_discord", cookies[0].Name)
		require.Equal(t, 60, cookies[0].MaxAge)
		require.True(t, cookies[0].Secure)
		require.Equal(t, "/auth", cookies[0].Path)
		require.Equal(t, "example.com", cookies[0].Domain)

		rec := httptest.NewRecorder()
		state, err := s.Pull(rec, requestWith(cookies), "discord")
		require.NoError(t, err)
		require.Equal(t, "the-state", state)

		cleared := rec.Result().Cookies()
		require.Len(t, cleared, 1)
		require.Equal(t, -1, cleared[0].MaxAge)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		s, err := oauth.NewCookieStateStore(testSecret)
		require.NoError(t, err)

		cookies := save(t, s, "discord", "the-state")
		other := save(t, s, "discord", "other-state")
		// Swap the signed value with the one from another cookie.
		cookies[0].Value = other[0].Value[:len(other[0].Value)-2] + "xx"

		_, err = s.Pull(httptest.NewRecorder(), requestWith(cookies), "discord")
		require.ErrorIs(t, err, oauth.ErrInvalidState)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		s, err := oauth.NewCookieStateStore(testSecret)
		require.NoError(t, err)

		cookies := save(t, s, "discord", "the-state")
		cookies[0].Name = "oauth_state_github"

		_, err = s.Pull(httptest.NewRecorder(), requestWith(cookies), "github")
		require.ErrorIs(t, err, oauth.ErrInvalidState)
	})

	t.Run("different secret", func(t *testing.T) {
		t.Parallel()
		s1, err := oauth.NewCookieStateStore(testSecret)
		require.NoError(t, err)
		s2, err := oauth.NewCookieStateStore(testSecret + "-rotated")
		require.NoError(t, err)

		cookies := save(t, s1, "discord", "the-state")
		_, err = s2.Pull(httptest.NewRecorder(), requestWith(cookies), "discord")
		require.ErrorIs(t, err, oauth.ErrInvalidState)
	})

	t.Run("malformed cookie", func(t *testing.T) {
		t.Parallel()
		s, err := oauth.NewCookieStateStore(testSecret)
		require.NoError(t, err)

		req := requestWith([]*http.Cookie{{Name: "oauth_state_discord", Value: "no-dot"}})
		_, err = s.Pull(httptest.NewRecorder(), req, "discord")
		require.ErrorIs(t, err, oauth.ErrInvalidState)
	})

	t.Run("value not bound to driver", func(t *testing.T) {
		t.Parallel()
		s, err := oauth.NewCookieStateStore(testSecret)
		require.NoError(t, err)

		// Correctly signed with the same secret, but without the driver binding.
		rec := httptest.NewRecorder()
		require.NoError(t, cookie.New(cookie.WithSecret(testSecret)).SetSigned(rec, "oauth_state_discord", "the-state", 60))

		_, err = s.Pull(httptest.NewRecorder(), requestWith(rec.Result().Cookies()), "discord")
		require.ErrorIs(t, err, oauth.ErrInvalidState)
	})

	t.Run("bad signature clears cookie", func(t *testing.T) {
		t.Parallel()
		s, err := oauth.NewCookieStateStore(testSecret)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := requestWith([]*http.Cookie{{Name: "oauth_state_discord", Value: "dGhlLXN0YXRl.c2ln"}})
		_, err = s.Pull(rec, req, "discord")
		require.ErrorIs(t, err, oauth.ErrInvalidState)
		require.ErrorIs(t, err, cookie.ErrBadSig)

		cleared := rec.Result().Cookies()
		require.Len(t, cleared, 1)
		require.Equal(t, -1, cleared[0].MaxAge)
	})

	t.Run("no cookie", func(t *testing.T) {
		t.Parallel()
		s, err := oauth.NewCookieStateStore(testSecret)
		require.NoError(t, err)

		_, err = s.Pull(httptest.NewRecorder(), requestWith(nil), "discord")
		require.ErrorIs(t, err, oauth.ErrInvalidState)
	})
}

func TestClient_WithStateStore(t *testing.T) {
	t.Parallel()

	store, err := oauth.NewCookieStateStore(testSecret)
	require.NoError(t, err)

	srv, p := newStubServer(t, userMux())
	issuer := oauth.NewClient(p, oauth.WithStateStore(store))
	verifier := oauth.NewClient(p, oauth.WithStateStore(store), oauth.WithHTTPClient(srv.Client()))

	// A shared store lets another instance complete the flow.
	user, err := verifier.User(httptest.NewRecorder(), redirectThenCallback(t, issuer, nil))
	require.NoError(t, err)
	require.Equal(t, "1", user.ID)
}
