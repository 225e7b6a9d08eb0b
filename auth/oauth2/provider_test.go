package oauth2

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kbukum/authkit/auth"
	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/httpclient"
	"github.com/kbukum/authkit/storage"
)

// vendor is a fake OAuth2 server recording the requests it receives.
type vendor struct {
	*httptest.Server

	mu          sync.Mutex
	tokenForms  []url.Values
	tokenCalls  atomic.Int32
	userCalls   atomic.Int32
	lastUserReq *http.Request
	emailsReq   *http.Request

	tokenStatus int
	tokenBody   string
	userStatus  int
	userBody    string
	emailsBody  string
}

func newVendor(t *testing.T) *vendor {
	t.Helper()
	v := &vendor{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600}`,
		userStatus:  http.StatusOK,
		userBody:    `{"sub":"u1","email":"u1@example.com"}`,
		emailsBody:  `[]`,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		v.tokenCalls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint: expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("token endpoint: unexpected content type %q", ct)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("token endpoint: expected Accept json, got %q", accept)
		}
		_ = r.ParseForm()
		v.mu.Lock()
		v.tokenForms = append(v.tokenForms, r.PostForm)
		status, body := v.tokenStatus, v.tokenBody
		v.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		v.userCalls.Add(1)
		v.mu.Lock()
		v.lastUserReq = r.Clone(context.Background())
		status, body := v.userStatus, v.userBody
		v.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		v.mu.Lock()
		v.emailsReq = r.Clone(context.Background())
		body := v.emailsBody
		v.mu.Unlock()
		_, _ = w.Write([]byte(body))
	})
	v.Server = httptest.NewServer(mux)
	t.Cleanup(v.Close)
	return v
}

func (v *vendor) endpoints() Endpoints {
	return Endpoints{
		AuthorizeURL: v.URL + "/authorize",
		TokenURL:     v.URL + "/token",
		UserInfoURL:  v.URL + "/user",
	}
}

// configure mutates the fake's responses while it may be serving.
func (v *vendor) configure(fn func(v *vendor)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v)
}

func (v *vendor) userRequest() *http.Request {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUserReq
}

func (v *vendor) lastForm() url.Values {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.tokenForms) == 0 {
		return nil
	}
	return v.tokenForms[len(v.tokenForms)-1]
}

func testConfig() Config {
	return Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "http://127.0.0.1:8765/callback",
	}
}

func newProvider(t *testing.T, spec Spec, v *vendor, opts ...Option) *Provider {
	t.Helper()
	p, err := New(spec, testConfig(), append([]Option{WithEndpoints(v.endpoints())}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestRedirectLeg(t *testing.T) {
	v := newVendor(t)
	var redirected string
	p := newProvider(t, GoogleSpec, v, WithRedirector(RedirectorFunc(func(_ context.Context, u string) error {
		redirected = u
		return nil
	})))

	_, err := p.Authorize(context.Background(), auth.AuthorizeOptions{Provider: "google", Scheme: "default"})
	if !errors.Is(err, errors.ErrRedirectInProgress) {
		t.Fatalf("expected RedirectInProgress, got %v", err)
	}
	got, ok := RedirectURL(err)
	if !ok || got != redirected {
		t.Fatalf("redirect URL mismatch: %q vs %q", got, redirected)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(u.Path, "/authorize") {
		t.Errorf("unexpected path %q", u.Path)
	}
	q := u.Query()
	want := map[string]string{
		"client_id":     "client-1",
		"redirect_uri":  "http://127.0.0.1:8765/callback",
		"response_type": "code",
		"scope":         "openid email profile",
	}
	for k, w := range want {
		if q.Get(k) != w {
			t.Errorf("%s = %q, want %q", k, q.Get(k), w)
		}
	}
	if q.Has("state") {
		t.Error("state should be omitted when not given")
	}
	if v.tokenCalls.Load() != 0 || v.userCalls.Load() != 0 {
		t.Error("redirect leg must not call the vendor")
	}
}

func TestRedirectLeg_StatePKCEAndParams(t *testing.T) {
	v := newVendor(t)
	cfg := testConfig()
	cfg.Scopes = []string{"custom"}
	cfg.AdditionalParams = map[string]string{"login_hint": "a@b.c"}
	p, err := New(GoogleSpec, cfg, WithEndpoints(v.endpoints()))
	if err != nil {
		t.Fatal(err)
	}
	pkce := NewPKCE()

	_, err = p.Authorize(context.Background(), auth.AuthorizeOptions{Params: map[string]any{
		ParamState:        "xyz",
		ParamCodeVerifier: pkce.CodeVerifier,
	}})
	raw, _ := RedirectURL(err)
	q, _ := url.ParseQuery(raw[strings.Index(raw, "?")+1:])

	if q.Get("scope") != "custom" {
		t.Errorf("caller scopes should replace defaults, got %q", q.Get("scope"))
	}
	if q.Get("state") != "xyz" || q.Get("login_hint") != "a@b.c" {
		t.Errorf("missing state or additional params: %v", q)
	}
	if q.Get("code_challenge") != pkce.CodeChallenge || q.Get("code_challenge_method") != "S256" {
		t.Errorf("missing PKCE challenge: %v", q)
	}
}

func TestRedirectLeg_EmptyCodeIsRedirect(t *testing.T) {
	v := newVendor(t)
	p := newProvider(t, GoogleSpec, v)
	_, err := p.Authorize(context.Background(), auth.AuthorizeOptions{Params: map[string]any{"code": ""}})
	if !errors.Is(err, errors.ErrRedirectInProgress) {
		t.Errorf("empty code should take the redirect leg, got %v", err)
	}
}

func TestCallbackLeg(t *testing.T) {
	v := newVendor(t)
	p := newProvider(t, GoogleSpec, v)

	resp, err := p.Authorize(context.Background(), auth.AuthorizeOptions{Params: map[string]any{"code": "abc123"}})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if resp.AccessToken != "at-1" || resp.RefreshToken != "rt-1" || resp.ExpiresIn == nil || *resp.ExpiresIn != 3600 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.User["email"] != "u1@example.com" {
		t.Errorf("expected user info, got %v", resp.User)
	}

	form := v.lastForm()
	want := map[string]string{
		"client_id":     "client-1",
		"client_secret": "secret-1",
		"grant_type":    "authorization_code",
		"code":          "abc123",
		"redirect_uri":  "http://127.0.0.1:8765/callback",
	}
	for k, w := range want {
		if form.Get(k) != w {
			t.Errorf("form %s = %q, want %q", k, form.Get(k), w)
		}
	}
	if form.Has(ParamCodeVerifier) {
		t.Error("code_verifier must only be sent when given")
	}
	if got := v.userRequest().Header.Get("Authorization"); got != "Bearer at-1" {
		t.Errorf("user info should use bearer auth, got %q", got)
	}
}

func TestCallbackLeg_ForwardsVerifier(t *testing.T) {
	v := newVendor(t)
	p := newProvider(t, GoogleSpec, v)
	_, err := p.Authorize(context.Background(), auth.AuthorizeOptions{Params: map[string]any{"code": "c", ParamCodeVerifier: "ver"}})
	if err != nil {
		t.Fatal(err)
	}
	if v.lastForm().Get(ParamCodeVerifier) != "ver" {
		t.Error("expected code_verifier in the exchange")
	}
}

func TestCallbackLeg_OptionalFields(t *testing.T) {
	v := newVendor(t)
	v.configure(func(v *vendor) { v.tokenBody = `{"access_token":"only"}` })
	p := newProvider(t, GoogleSpec, v)

	resp, err := p.Authorize(context.Background(), auth.AuthorizeOptions{Params: map[string]any{"code": "c"}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.RefreshToken != "" || resp.ExpiresIn != nil {
		t.Errorf("absent fields should stay empty, got %+v", resp)
	}
}

func TestCallbackLeg_ErrorsPropagate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(v *vendor)
		check func(t *testing.T, err error)
	}{
		{
			name:  "token endpoint rejects",
			setup: func(v *vendor) { v.tokenStatus = http.StatusBadRequest; v.tokenBody = `{"error":"invalid_grant"}` },
			check: func(t *testing.T, err error) {
				var he *httpclient.Error
				if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
					t.Errorf("expected *httpclient.Error 400, got %v", err)
				}
			},
		},
		{
			name:  "malformed token response",
			setup: func(v *vendor) { v.tokenBody = `not json` },
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Error("expected decode error")
				}
			},
		},
		{
			name:  "user info fails",
			setup: func(v *vendor) { v.userStatus = http.StatusUnauthorized },
			check: func(t *testing.T, err error) {
				if !httpclient.IsAuth(err) {
					t.Errorf("expected auth error, got %v", err)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := newVendor(t)
			v.configure(tc.setup)
			p := newProvider(t, GoogleSpec, v)
			_, err := p.Authorize(context.Background(), auth.AuthorizeOptions{Params: map[string]any{"code": "c"}})
			tc.check(t, err)
		})
	}
}

func TestValidateToken(t *testing.T) {
	v := newVendor(t)
	p := newProvider(t, GoogleSpec, v)

	if !p.ValidateToken(context.Background(), "at-1") {
		t.Error("expected valid on 200")
	}
	v.configure(func(v *vendor) { v.userStatus = http.StatusUnauthorized })
	if p.ValidateToken(context.Background(), "at-1") {
		t.Error("expected invalid on 401")
	}

	v.Close()
	if p.ValidateToken(context.Background(), "at-1") {
		t.Error("network failure must be false")
	}
}

func TestRefreshAccessToken(t *testing.T) {
	v := newVendor(t)
	v.configure(func(v *vendor) { v.tokenBody = `{"access_token":"at-2","expires_in":60}` })
	p := newProvider(t, GoogleSpec, v)

	resp, err := p.RefreshAccessToken(context.Background(), "rt-1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.AccessToken != "at-2" || resp.User != nil {
		t.Errorf("unexpected refresh response %+v", resp)
	}
	form := v.lastForm()
	if form.Get("grant_type") != "refresh_token" || form.Get("refresh_token") != "rt-1" || form.Has("redirect_uri") {
		t.Errorf("unexpected refresh form %v", form)
	}
	if v.userCalls.Load() != 0 {
		t.Error("refresh must not fetch user info")
	}
}

func TestGitHubUserInfo_MergesPrimaryEmail(t *testing.T) {
	v := newVendor(t)
	v.configure(func(v *vendor) {
		v.userBody = `{"login":"octo","email":null}`
		v.emailsBody = `[{"email":"old@x.io","primary":false,"verified":true},{"email":"octo@x.io","primary":true,"verified":true}]`
	})
	p := newProvider(t, GitHubSpec, v)

	user, err := p.UserInfo(context.Background(), "at-1")
	if err != nil {
		t.Fatal(err)
	}
	if user["login"] != "octo" || user["email"] != "octo@x.io" {
		t.Errorf("unexpected merged user %v", user)
	}
}

func TestGitHubUserInfo_SendsVendorAccept(t *testing.T) {
	v := newVendor(t)
	p := newProvider(t, GitHubSpec, v)
	if _, err := p.UserInfo(context.Background(), "at-1"); err != nil {
		t.Fatal(err)
	}

	v.mu.Lock()
	emailsReq := v.emailsReq
	v.mu.Unlock()
	for name, r := range map[string]*http.Request{"profile": v.userRequest(), "emails": emailsReq} {
		if r == nil {
			t.Fatalf("%s request not received", name)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3+json" {
			t.Errorf("%s: expected GitHub v3 Accept, got %q", name, got)
		}
	}
}

func TestPresetEndpoints(t *testing.T) {
	tests := []struct {
		spec      Spec
		authorize string
	}{
		{GoogleSpec, "https://accounts.google.com/o/oauth2/v2/auth"},
		{GitHubSpec, "https://github.com/login/oauth/authorize"},
		{FacebookSpec, "https://facebook.com/v18.0/dialog/oauth"},
		{DiscordSpec, "https://discord.com/api/oauth2/authorize"},
	}
	for _, tc := range tests {
		t.Run(tc.spec.ID, func(t *testing.T) {
			if got := tc.spec.Endpoints.AuthorizeURL; got != tc.authorize {
				t.Errorf("expected %q, got %q", tc.authorize, got)
			}
		})
	}
}

func TestGitHubUserInfo_BothRequestsMustSucceed(t *testing.T) {
	v := newVendor(t)
	p := newProvider(t, GitHubSpec, v)
	if _, err := p.UserInfo(context.Background(), "wrong-token"); err == nil {
		t.Error("expected error when /emails fails")
	}
}

func TestFacebookUserInfo_QueryToken(t *testing.T) {
	v := newVendor(t)
	p := newProvider(t, FacebookSpec, v)

	if _, err := p.UserInfo(context.Background(), "fb-token"); err != nil {
		t.Fatal(err)
	}
	q := v.userRequest().URL.Query()
	if q.Get("access_token") != "fb-token" || q.Get("fields") != "id,name,email,picture" {
		t.Errorf("unexpected query %v", q)
	}
	if v.userRequest().Header.Get("Authorization") != "" {
		t.Error("facebook must not send an Authorization header")
	}
}

func TestDiscord_ForcesConsent(t *testing.T) {
	v := newVendor(t)
	cfg := testConfig()
	cfg.AdditionalParams = map[string]string{"prompt": "none", "guild_id": "42"}
	p, err := Discord(cfg, WithEndpoints(v.endpoints()))
	if err != nil {
		t.Fatal(err)
	}
	raw := p.AuthCodeURL("", "")
	q, _ := url.ParseQuery(raw[strings.Index(raw, "?")+1:])
	if q.Get("prompt") != "consent" || q.Get("guild_id") != "42" {
		t.Errorf("unexpected params %v", q)
	}
	if q.Get("scope") != "identify email" {
		t.Errorf("unexpected default scopes %q", q.Get("scope"))
	}
}

func TestPresets(t *testing.T) {
	ctors := map[string]func(Config, ...Option) (*Provider, error){
		ProviderGoogle:   Google,
		ProviderGitHub:   GitHub,
		ProviderFacebook: Facebook,
		ProviderDiscord:  Discord,
	}
	for id, ctor := range ctors {
		t.Run(id, func(t *testing.T) {
			p, err := ctor(testConfig())
			if err != nil {
				t.Fatal(err)
			}
			if p.ID() != id || p.Type() != auth.ProviderOAuth || p.Name() == "" {
				t.Errorf("unexpected identity %s/%s/%s", p.ID(), p.Name(), p.Type())
			}
			if len(p.Scopes()) == 0 {
				t.Error("expected default scopes")
			}
			if _, ok := Presets[id]; !ok {
				t.Errorf("%s missing from Presets", id)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := Google(Config{}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if _, err := New(Spec{ID: "x"}, testConfig()); err == nil {
		t.Error("expected error for missing endpoints")
	}
	p, err := Google(testConfig(), WithID("google-staff"))
	if err != nil || p.ID() != "google-staff" {
		t.Errorf("WithID not applied: %v %v", p, err)
	}
}

// Google scenario: one token POST, one user-info GET, token persisted under access_token.
func TestLoginScenario_Google(t *testing.T) {
	v := newVendor(t)
	p := newProvider(t, GoogleSpec, v)
	store := storage.NewMemory()
	client := auth.New(&auth.Config{
		DefaultScheme: "default",
		Storage:       store,
		Schemes:       map[string]*auth.Scheme{"default": {ID: "default", Providers: []auth.Provider{p}}},
	})

	ctx := context.Background()
	if _, err := client.Login(ctx, auth.AuthorizeOptions{Scheme: "default", Provider: "google", Params: map[string]any{"code": "abc123"}}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if v.tokenCalls.Load() != 1 || v.userCalls.Load() != 1 {
		t.Errorf("expected 1 token call and 1 user call, got %d/%d", v.tokenCalls.Load(), v.userCalls.Load())
	}
	if got, _, _ := store.GetItem(ctx, "access_token"); got != "at-1" {
		t.Errorf("expected at-1 persisted, got %q", got)
	}

	ok, err := client.IsAuthenticated(ctx)
	if err != nil || !ok {
		t.Errorf("expected authenticated, got %v err=%v", ok, err)
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateState()
	if len(a) != 64 || a == b {
		t.Errorf("expected distinct 64-char states, got %q %q", a, b)
	}
}

func TestRedirectErrorMessage(t *testing.T) {
	err := &RedirectError{Provider: "google", URL: "https://x"}
	raw, _ := json.Marshal(err.Error())
	if !strings.Contains(string(raw), "https://x") {
		t.Errorf("error should mention the URL, got %s", raw)
	}
}
