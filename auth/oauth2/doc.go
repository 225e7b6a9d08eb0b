// Package oauth2 implements the OAuth2 authorization-code flow as an
// auth.Provider, plus presets for Google, GitHub, Facebook and Discord.
//
// Authorize has two legs selected by the caller's input. Without a "code"
// parameter it builds the authorization URL, hands it to the Redirector
// and fails with a *RedirectError (matching errors.ErrRedirectInProgress).
// With a "code" it exchanges the code at the token endpoint and enriches the
// result with user info.
//
//	google, err := oauth2.Google(oauth2.Config{
//	    ClientID:     id,
//	    ClientSecret: secret,
//	    RedirectURI:  "http://127.0.0.1:8765/callback",
//	}, oauth2.WithRedirector(oauth2.BrowserRedirector{}))
//
// Vendor differences are data: endpoint URLs, default scopes and an
// optional user-info override.
package oauth2
