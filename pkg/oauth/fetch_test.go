package oauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialite/pkg/oauth"
)

func TestFetchJSON(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"auth": r.Header.Get("Authorization")})
	})
	mux.HandleFunc("/array", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2]`))
	})
	mux.HandleFunc("/null", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	mux.HandleFunc("/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	mux.HandleFunc("/huge", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("a", 4<<10) + "TAIL"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := oauth.ContextWithHTTPClient(context.Background(), srv.Client())

	t.Run("bearer header", func(t *testing.T) {
		t.Parallel()
		out, err := oauth.FetchJSON(ctx, srv.URL+"/ok", "tok")
		require.NoError(t, err)
		require.Equal(t, "Bearer tok", out["auth"])
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.FetchJSON(ctx, srv.URL+"/ok", "")
		require.ErrorIs(t, err, oauth.ErrMissingAccessToken)
	})

	t.Run("non-object body", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.FetchJSON(ctx, srv.URL+"/array", "tok")
		require.ErrorIs(t, err, oauth.ErrDecodeFailed)
	})

	t.Run("null body", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.FetchJSON(ctx, srv.URL+"/null", "tok")
		require.ErrorIs(t, err, oauth.ErrDecodeFailed)
	})

	t.Run("non-2xx keeps body", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.FetchJSON(ctx, srv.URL+"/teapot", "tok")
		require.ErrorIs(t, err, oauth.ErrRequestFailed)
		require.Contains(t, err.Error(), "status=418")
		require.Contains(t, err.Error(), "short and stout")
	})

	t.Run("non-2xx body is capped", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.FetchJSON(ctx, srv.URL+"/huge", "tok")
		require.ErrorIs(t, err, oauth.ErrRequestFailed)
		require.Contains(t, err.Error(), strings.Repeat("a", 4<<10))
		require.NotContains(t, err.Error(), "TAIL")
	})

	t.Run("bad URL", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.FetchJSON(ctx, "://bad", "tok")
		require.ErrorIs(t, err, oauth.ErrFetchFailed)
	})
}
