package httpclient

import (
	"context"
)

// DoJSON sends req with Accept: application/json and decodes a successful
// response body into T. Classified HTTP errors are returned unchanged.
func DoJSON[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T

	headers := make(map[string]string, len(req.Headers)+1)
	headers["Accept"] = "application/json"
	for k, v := range req.Headers {
		headers[k] = v
	}
	req.Headers = headers

	resp, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return out, err
	}
	return out, nil
}
