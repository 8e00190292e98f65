// Package oauth runs the OAuth2 authorization code flow on behalf of
// provider drivers.
//
// A Provider describes one identity provider: its authorization URL, token
// endpoint and form, and how to fetch and map the user. A Client owns the
// shared flow around it: state generation and verification, the token
// exchange and the user fetch. Drivers live in subpackages (see
// [github.com/dmitrymomot/socialite/pkg/oauth/discord]).
//
// # Usage
//
// Build a client directly:
//
//	p, err := discord.New(discord.Config{
//		ClientID:     os.Getenv("DISCORD_OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("DISCORD_OAUTH_CLIENT_SECRET"),
//		RedirectURL:  "https://example.com/auth/discord/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	client := oauth.NewClient(p, oauth.WithStateStore(store))
//
//	// Login handler
//	err = client.Redirect(w, r, oauth.WithScopes("identify", "email", "guilds"))
//
//	// Callback handler
//	user, err := client.User(w, r)
//
// Or resolve drivers by name through a Manager reading "services.<name>"
// from configuration:
//
//	m := oauth.NewManager(cfg, oauth.WithStateStore(store))
//	discord.Register(m)
//
//	client, err := m.Driver("discord")
//
// # State
//
// The state is a 40-character random token saved by a StateStore and
// pulled (read once, then forgotten) on the callback. CookieStateStore keeps
// it in an HMAC-signed cookie; RedisStateStore keeps it in Redis behind a
// random cookie id. Without WithStateStore, a Client signs cookies with a
// per-process key, which only works for a single instance. WithStateless
// turns state handling off.
//
// # Testing
//
// Use WithHTTPClient to route provider calls to a test server. The same
// client is passed to Provider.FetchUser through the context, so FetchJSON
// picks it up:
//
//	ts := httptest.NewServer(handler)
//	defer ts.Close()
//
//	client := oauth.NewClient(p, oauth.WithHTTPClient(ts.Client()))
//
// # Error Handling
//
// Failures are reported with sentinel errors, joined with details:
//
//   - ErrMissingClientID, ErrMissingClientSecret, ErrMissingRedirectURL: bad driver configuration
//   - ErrUnknownDriver: Manager has no factory for the name
//   - ErrInvalidState: state missing, expired or not matching
//   - ErrAuthorizationDenied: provider redirected back with an error
//   - ErrMissingCode: callback without an authorization code
//   - ErrFetchFailed, ErrNilResponse: transport failure
//   - ErrRequestFailed: non-2xx response, status and the first 4 KiB of the body included
//   - ErrDecodeFailed, ErrMissingAccessToken: malformed provider response
//
// Nothing is retried; callers decide whether to restart the flow.
package oauth
