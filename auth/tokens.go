package auth

import (
	"context"
	"strconv"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/httpclient"
)

// GetAccessToken reads the access token under the current scheme's key,
// or "access_token" when no scheme is selected.
func (c *Client) GetAccessToken(ctx context.Context) (string, bool, error) {
	return c.get(ctx, c.scheme().accessTokenKey())
}

// GetRefreshToken mirrors GetAccessToken for the refresh token.
func (c *Client) GetRefreshToken(ctx context.Context) (string, bool, error) {
	return c.get(ctx, c.scheme().refreshTokenKey())
}

// AuthorizationHeader returns "<TokenType> <access token>" for the current scheme.
func (c *Client) AuthorizationHeader(ctx context.Context) (string, bool, error) {
	token, found, err := c.GetAccessToken(ctx)
	if err != nil || !found {
		return "", false, err
	}
	return string(c.scheme().tokenType()) + " " + token, true, nil
}

// HTTPAuth returns transport auth presenting the stored access token, or
// nil when none is stored.
func (c *Client) HTTPAuth(ctx context.Context) (*httpclient.AuthConfig, error) {
	token, found, err := c.GetAccessToken(ctx)
	if err != nil || !found {
		return nil, err
	}
	return httpclient.TokenAuth(string(c.scheme().tokenType()), token), nil
}

// setTokens persists resp under the current scheme's keys. The refresh
// token and expiry are only written when present (and, for the expiry,
// when the scheme names a key for it).
func (c *Client) setTokens(ctx context.Context, resp *Response) error {
	scheme := c.scheme()
	if scheme == nil {
		return errors.NoSchemeSelected()
	}

	if err := c.cfg.Storage.SetItem(ctx, scheme.accessTokenKey(), resp.AccessToken); err != nil {
		return wrapStorage("set", err)
	}
	if resp.RefreshToken != "" {
		if err := c.cfg.Storage.SetItem(ctx, scheme.refreshTokenKey(), resp.RefreshToken); err != nil {
			return wrapStorage("set", err)
		}
	}
	if key := scheme.Options.ExpiresKey; key != "" && resp.ExpiresIn != nil {
		if err := c.cfg.Storage.SetItem(ctx, key, strconv.FormatInt(*resp.ExpiresIn, 10)); err != nil {
			return wrapStorage("set", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, key string) (string, bool, error) {
	v, found, err := c.cfg.Storage.GetItem(ctx, key)
	if err != nil {
		return "", false, wrapStorage("get", err)
	}
	return v, found, nil
}

// wrapStorage passes storage AppErrors through and wraps anything else.
func wrapStorage(op string, err error) error {
	if errors.IsAppError(err) {
		return err
	}
	return errors.Storage(op, err)
}
