// Package cookie writes plain and HMAC-signed HTTP cookies with shared
// attributes.
//
//	m := cookie.New(
//		cookie.WithSecret(os.Getenv("STATE_SECRET")),
//		cookie.WithSecure(true),
//	)
//
//	if err := m.SetSigned(w, "oauth_state_discord", state, 600); err != nil {
//		return err
//	}
//
//	state, err := m.GetSigned(r, "oauth_state_discord")
//	if errors.Is(err, cookie.ErrBadSig) {
//		// tampered or signed with a rotated secret
//	}
//
// Signed values are readable by the client; only integrity is protected.
package cookie
