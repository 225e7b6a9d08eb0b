// Package httpclient is the HTTP transport used by authkit providers.
//
// It encodes request bodies (form values, JSON, raw bytes), applies
// authentication, and classifies non-2xx responses into *Error values so
// callers can tell an expired token (IsAuth) from an outage (IsServerError).
// Retry and circuit breaking are opt-in per client.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{Timeout: 10 * time.Second})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method:  http.MethodPost,
//	    Path:    "https://oauth2.googleapis.com/token",
//	    Headers: map[string]string{"Accept": "application/json"},
//	    Body:    url.Values{"grant_type": {"authorization_code"}, "code": {code}},
//	})
//
// # Typed JSON
//
//	user, err := httpclient.DoJSON[map[string]any](ctx, client, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   userInfoURL,
//	    Auth:   httpclient.BearerAuth(token),
//	})
package httpclient
