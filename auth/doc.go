// Package auth orchestrates client-side authentication.
//
// An application declares named schemes. Each Scheme bundles the providers
// it trusts, the guards protecting it and the storage keys for its tokens.
// A Client selects a current scheme, delegates credential exchange to a
// Provider, persists the resulting tokens through a storage.Strategy and
// evaluates guards against the stored session.
//
//	client := auth.New(&auth.Config{
//	    DefaultScheme: "customer",
//	    Storage:       storage.NewMemory(),
//	    Schemes: map[string]*auth.Scheme{
//	        "customer": {
//	            ID:        "customer",
//	            Providers: []auth.Provider{oauth2.Google(googleCfg)},
//	            Guards:    []auth.Guard{guard.Authenticated()},
//	        },
//	    },
//	}, auth.WithLogger(log))
//
//	_, err := client.Login(ctx, auth.AuthorizeOptions{Scheme: "customer", Provider: "google"})
//	if errors.Is(err, autherrors.ErrRedirectInProgress) {
//	    // the user agent is on its way to the consent page
//	}
//
// Tokens are never cached in memory: every read goes back to storage.
package auth
