package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer sends "Authorization: <scheme> <token>".
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthQuery sends a credential as a query parameter.
	AuthQuery
	// AuthCustom uses a custom request modifier.
	AuthCustom
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type AuthType
	// Scheme is the Authorization scheme for AuthBearer. Defaults to "Bearer".
	Scheme string
	// Token is the bearer token or query credential.
	Token string
	// Username and Password are used by AuthBasic.
	Username string
	Password string
	// Param is the query parameter name for AuthQuery.
	Param string
	// Apply is the request modifier for AuthCustom.
	Apply func(*http.Request)
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// TokenAuth creates an Authorization header auth config with a custom scheme, e.g. "JWT".
func TokenAuth(scheme, token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Scheme: scheme, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// QueryAuth sends token as the query parameter param.
func QueryAuth(param, token string) *AuthConfig {
	return &AuthConfig{Type: AuthQuery, Param: param, Token: token}
}

// CustomAuth creates a custom auth config with a request modifier function.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// HeaderValue returns the Authorization header value for AuthBearer configs.
func (a *AuthConfig) HeaderValue() string {
	if a == nil || a.Type != AuthBearer {
		return ""
	}
	scheme := a.Scheme
	if scheme == "" {
		scheme = "Bearer"
	}
	return scheme + " " + a.Token
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", a.HeaderValue())
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthQuery:
		q := req.URL.Query()
		q.Set(a.Param, a.Token)
		req.URL.RawQuery = q.Encode()
	case AuthCustom:
		if a.Apply != nil {
			a.Apply(req)
		}
	}
}
