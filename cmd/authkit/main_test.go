package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/kbukum/authkit/auth/oauth2"
	"github.com/kbukum/authkit/errors"
)

// vendor is a fake OAuth2 vendor plus application API.
type vendor struct {
	*httptest.Server
	t      *testing.T
	token  string
	mu     sync.Mutex
	states []string
}

func newVendor(t *testing.T) *vendor {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":   "42",
		"roles": []string{"admin"},
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}

	v := &vendor{t: t, token: token}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /authorize", v.authorize)
	mux.HandleFunc("POST /token", v.tokenEndpoint)
	mux.HandleFunc("GET /userinfo", v.userInfo)
	mux.HandleFunc("POST /login", v.login)
	mux.HandleFunc("POST /refresh", v.refresh)
	v.Server = httptest.NewServer(mux)
	t.Cleanup(v.Close)
	return v
}

func (v *vendor) authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("code_challenge") == "" {
		v.t.Error("expected a PKCE challenge")
	}
	v.mu.Lock()
	v.states = append(v.states, q.Get("state"))
	v.mu.Unlock()
	target := q.Get("redirect_uri") + "?" + url.Values{"code": {"auth-code"}, "state": {q.Get("state")}}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}

func (v *vendor) tokenEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		if r.PostForm.Get("code") != "auth-code" || r.PostForm.Get("code_verifier") == "" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"access_token": v.token, "refresh_token": "r1", "expires_in": 3600})
	case "refresh_token":
		writeJSON(w, map[string]any{"access_token": v.token, "expires_in": 60})
	default:
		http.Error(w, "unsupported grant", http.StatusBadRequest)
	}
}

func (v *vendor) userInfo(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+v.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]any{"email": "ada@example.com"})
}

func (v *vendor) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username != "ada" || body.Password != "pw" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]any{"access_token": v.token, "refresh_token": "r1", "user": map[string]any{"username": "ada"}})
}

func (v *vendor) refresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"access_token": v.token, "expires_in": 120})
}

func (v *vendor) authorizeStates() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.states...)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

type fixture struct {
	vendor     *vendor
	configFile string
	envFile    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gokeyring.MockInit()
	v := newVendor(t)
	dir := t.TempDir()
	port := freePort(t)

	content := fmt.Sprintf(`
name: authkit-test
logging:
  level: error
auth:
  default_scheme: customer
  storage:
    provider: keyring
    key_prefix: %[1]s
  endpoints:
    login: %[2]s/login
    refresh: %[2]s/refresh
  schemes:
    customer:
      guards:
        - type: authenticated
        - type: role
          values: [admin]
      providers:
        - type: oauth2
          id: corp
          name: Corp SSO
          client_id: cli
          redirect_uri: http://127.0.0.1:%[3]d/cb
          endpoints:
            authorize_url: %[2]s/authorize
            token_url: %[2]s/token
            user_info_url: %[2]s/userinfo
    staff:
      options:
        access_token_key: staff_access
        refresh_token_key: staff_refresh
      guards:
        - type: role
          values: [auditor]
      providers:
        - type: credentials
          user_info_url: %[2]s/userinfo
`, "authkit-"+strings.ReplaceAll(t.Name(), "/", "-"), v.URL, port)

	f := &fixture{
		vendor:     v,
		configFile: filepath.Join(dir, "authkit.yml"),
		envFile:    filepath.Join(dir, "none.env"),
	}
	if err := os.WriteFile(f.configFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return f
}

// run executes one CLI invocation. The redirector follows the vendor's
// redirect to the loopback server the way a browser would.
func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	o := &rootOptions{
		redirector: oauth2.RedirectorFunc(func(ctx context.Context, u string) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			return resp.Body.Close()
		}),
	}
	cmd := newRootCmd(o)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", f.configFile, "--env-file", f.envFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOAuth2LoginFlow(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "login")
	if err != nil {
		t.Fatalf("login failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Logged in to customer with Corp SSO as ada@example.com") {
		t.Errorf("unexpected login output %q", out)
	}
	if states := f.vendor.authorizeStates(); len(states) != 1 || states[0] == "" {
		t.Errorf("expected one authorize request with state, got %v", states)
	}

	out, err = f.run(t, "token")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	if strings.TrimSpace(out) != f.vendor.token {
		t.Errorf("expected stored token, got %q", out)
	}

	out, err = f.run(t, "token", "--header")
	if err != nil || strings.TrimSpace(out) != "Bearer "+f.vendor.token {
		t.Errorf("expected bearer header, got %q (%v)", out, err)
	}

	out, err = f.run(t, "status")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Authenticated:  yes", "Guards:         2 passed", "[admin]"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in status output:\n%s", want, out)
		}
	}

	out, err = f.run(t, "refresh", "--provider", "corp")
	if err != nil || !strings.Contains(out, "expires in 60s") {
		t.Errorf("unexpected refresh result %q (%v)", out, err)
	}

	if _, err := f.run(t, "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	_, err = f.run(t, "token")
	if exitCode(err) != ExitCodeAuthRequired {
		t.Errorf("expected auth-required after logout, got %v", err)
	}
}

func TestCredentialsLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "login", "--scheme", "staff", "--username", "ada", "--password", "wrong")
	if !errors.Is(err, errors.ErrInvalidCredentials) || exitCode(err) != ExitCodeAuthFailed {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	t.Setenv("AUTHKIT_PASSWORD", "pw")
	out, err := f.run(t, "login", "--scheme", "staff", "--username", "ada")
	if err != nil {
		t.Fatalf("login failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "as ada") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = f.run(t, "status", "--scheme", "staff")
	if exitCode(err) != ExitCodeAuthFailed {
		t.Errorf("expected access denied exit code, got %v", err)
	}
	if !strings.Contains(out, "Guards:         denied") {
		t.Errorf("expected denied guard for missing auditor role:\n%s", out)
	}

	out, err = f.run(t, "refresh", "--scheme", "staff")
	if err != nil || !strings.Contains(out, "expires in 120s") {
		t.Errorf("unexpected refresh result %q (%v)", out, err)
	}
}

func TestLoginErrors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.run(t, "login", "--provider", "nope"); !errors.Is(err, errors.ErrProviderNotFound) {
		t.Errorf("expected provider not found, got %v", err)
	}
	if _, err := f.run(t, "status", "--scheme", "partner"); !errors.Is(err, errors.ErrSchemeNotFound) {
		t.Errorf("expected scheme not found, got %v", err)
	}
	if _, err := f.run(t, "refresh"); exitCode(err) != ExitCodeAuthRequired {
		t.Errorf("expected no refresh token, got %v", err)
	}
}

func TestCallbackAddr(t *testing.T) {
	tests := []struct {
		name, redirect, listen string
		wantAddr, wantPath     string
	}{
		{"loopback ip", "http://127.0.0.1:9000/cb", "", "127.0.0.1:9000", "/cb"},
		{"localhost", "http://localhost:9001/oauth/callback", "", "localhost:9001", "/oauth/callback"},
		{"remote host", "https://app.example.com/callback", "", "127.0.0.1:8765", "/callback"},
		{"no path", "http://127.0.0.1:9002", "", "127.0.0.1:9002", defaultCallbackPath},
		{"listen override", "http://127.0.0.1:9000/cb", "127.0.0.1:0", "127.0.0.1:0", "/cb"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			addr, path, err := callbackAddr(tc.redirect, tc.listen)
			if err != nil {
				t.Fatal(err)
			}
			if addr != tc.wantAddr || path != tc.wantPath {
				t.Errorf("got %s %s, want %s %s", addr, path, tc.wantAddr, tc.wantPath)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName(map[string]any{"login": "octocat", "id": float64(1)}); got != "octocat" {
		t.Errorf("expected login, got %q", got)
	}
	if got := displayName(map[string]any{"id": float64(583231)}); got != "583231" {
		t.Errorf("expected numeric id, got %q", got)
	}
	if got := displayName(nil); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd(&rootOptions{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	var info map[string]any
	if err := json.Unmarshal(out.Bytes(), &info); err != nil || info["version"] == "" {
		t.Errorf("unexpected version output %q", out.String())
	}
}
