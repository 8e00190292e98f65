package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of a failed response body is kept in the error.
const maxErrorBody = 4 << 10

// FetchJSON performs a GET request with a bearer token and decodes the
// response body as a JSON object. The HTTP client is taken from ctx under
// oauth2.HTTPClient (the Client puts its own there), falling back to
// http.DefaultClient. Non-2xx responses are returned as ErrRequestFailed
// with the first 4 KiB of the response body attached; nothing is retried.
func FetchJSON(ctx context.Context, url, accessToken string) (map[string]any, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	client := httpClientFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("fetch %s: %w", url, err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, fmt.Errorf("unexpected nil response from %s", url))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode %s: %w", url, err))
	}
	if out == nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode %s: response is not a JSON object", url))
	}

	return out, nil
}

// ContextWithHTTPClient returns a context carrying client under the
// oauth2.HTTPClient key, the way golang.org/x/oauth2 expects it.
func ContextWithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

func httpClientFromContext(ctx context.Context) *http.Client {
	if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && c != nil {
		return c
	}
	return http.DefaultClient
}

// checkStatus turns a non-2xx response into ErrRequestFailed.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return errors.Join(ErrRequestFailed, fmt.Errorf("request failed: status=%d body=%s", resp.StatusCode, body))
}
