package server

import (
	"context"
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
)

// Callback is the outcome of one authorization redirect.
type Callback struct {
	Code  string
	State string
}

type callbackResult struct {
	cb  Callback
	err error
}

// CallbackHandler receives authorization redirects and hands the first
// conclusive one to Wait. Requests with a wrong state or no code are
// answered with 400 and do not end the wait.
type CallbackHandler struct {
	state   string
	results chan callbackResult
	log     *logger.Logger
}

// NewCallbackHandler returns a handler expecting state. An empty state
// disables the check.
func NewCallbackHandler(state string, log *logger.Logger) *CallbackHandler {
	return &CallbackHandler{
		state:   state,
		results: make(chan callbackResult, 1),
		log:     logger.OrNop(log),
	}
}

// Callback registers a CallbackHandler for GET path.
func (s *Server) Callback(path, state string) *CallbackHandler {
	h := NewCallbackHandler(state, s.log)
	s.engine.GET(path, h.Handle)
	return h
}

// Handle is the gin handler for the redirect URI.
func (h *CallbackHandler) Handle(c *gin.Context) {
	if vendorErr := c.Query("error"); vendorErr != "" {
		reason := vendorErr
		if desc := c.Query("error_description"); desc != "" {
			reason = fmt.Sprintf("%s: %s", vendorErr, desc)
		}
		h.deliver(callbackResult{err: errors.InvalidCredentials(reason)})
		page(c, http.StatusBadRequest, "Login failed", reason)
		return
	}

	state := c.Query("state")
	if h.state != "" && state != h.state {
		h.log.Warn("callback state mismatch")
		page(c, http.StatusBadRequest, "Login failed", "state mismatch")
		return
	}

	code := c.Query("code")
	if code == "" {
		page(c, http.StatusBadRequest, "Login failed", "missing authorization code")
		return
	}

	h.deliver(callbackResult{cb: Callback{Code: code, State: state}})
	page(c, http.StatusOK, "Login complete", "You can close this window and return to the terminal.")
}

func (h *CallbackHandler) deliver(r callbackResult) {
	select {
	case h.results <- r:
	default:
	}
}

// Wait blocks until a redirect arrives or ctx is done.
func (h *CallbackHandler) Wait(ctx context.Context) (Callback, error) {
	select {
	case r := <-h.results:
		return r.cb, r.err
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	}
}

func page(c *gin.Context, status int, title, body string) {
	doc := fmt.Sprintf("<!DOCTYPE html><html><head><title>%[1]s</title></head><body><h1>%[1]s</h1><p>%[2]s</p></body></html>",
		html.EscapeString(title), html.EscapeString(body))
	c.Data(status, "text/html; charset=utf-8", []byte(doc))
}
