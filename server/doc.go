// Package server runs the loopback HTTP server that receives OAuth2
// authorization-code redirects for command-line logins.
//
// Bind with Start before opening the browser so the redirect URI is live,
// then block on CallbackHandler.Wait:
//
//	srv := server.New(server.Config{Listen: "127.0.0.1:8765"}, log)
//	cb := srv.Callback("/callback", state)
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Stop(ctx)
//	result, err := cb.Wait(ctx)
package server
