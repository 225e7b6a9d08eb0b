package auth

// SchemeOptions is the storage-key policy of a scheme. Empty keys fall back
// to the defaults; ExpiresKey has no default and is only written when set.
type SchemeOptions struct {
	TokenType       TokenType
	AccessTokenKey  string
	RefreshTokenKey string
	ExpiresKey      string
}

// Scheme is one login surface: the providers it trusts and the guards protecting it.
type Scheme struct {
	ID        string
	Name      string
	Guards    []Guard
	Providers []Provider
	Options   SchemeOptions
}

// Provider returns the provider with the given id.
func (s *Scheme) Provider(id string) (Provider, bool) {
	for _, p := range s.Providers {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

func (s *Scheme) accessTokenKey() string {
	if s == nil || s.Options.AccessTokenKey == "" {
		return DefaultAccessTokenKey
	}
	return s.Options.AccessTokenKey
}

func (s *Scheme) refreshTokenKey() string {
	if s == nil || s.Options.RefreshTokenKey == "" {
		return DefaultRefreshTokenKey
	}
	return s.Options.RefreshTokenKey
}

func (s *Scheme) tokenType() TokenType {
	if s == nil || s.Options.TokenType == "" {
		return TokenBearer
	}
	return s.Options.TokenType
}
