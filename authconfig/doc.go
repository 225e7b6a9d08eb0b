// Package authconfig builds an auth.Config from declarative configuration.
//
// The file form mirrors the runtime types:
//
//	auth:
//	  default_scheme: customer
//	  storage: {provider: keyring, key_prefix: authkit}
//	  schemes:
//	    customer:
//	      options: {token_type: Bearer}
//	      guards: [{type: authenticated}, {type: role, values: [admin]}]
//	      providers:
//	        - {type: google, client_id: ..., client_secret: ..., redirect_uri: ...}
//
// Importing this package registers the redis and keyring storage backends.
package authconfig
