package oauth

import "errors"

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrMissingRedirectURL is returned when the OAuth redirect URL is not provided.
	ErrMissingRedirectURL = errors.New("oauth: missing redirect URL")

	// ErrUnknownDriver is returned when a driver name has no registered factory.
	ErrUnknownDriver = errors.New("oauth: unknown driver")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrRequestFailed is returned when the OAuth provider returns a non-2xx status.
	ErrRequestFailed = errors.New("oauth: request returned non-OK status")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrMissingAccessToken is returned when an access token is empty,
	// either in a token response or as an argument.
	ErrMissingAccessToken = errors.New("oauth: missing access token")

	// ErrInvalidState is returned when the callback state does not match
	// the state issued with the authorization redirect.
	ErrInvalidState = errors.New("oauth: invalid state")

	// ErrMissingCode is returned when the callback has no authorization code.
	ErrMissingCode = errors.New("oauth: missing authorization code")

	// ErrAuthorizationDenied is returned when the provider redirects back
	// with an error parameter (e.g. the user pressed "Cancel").
	ErrAuthorizationDenied = errors.New("oauth: authorization denied")
)
