// Package validation validates configuration and provider inputs.
//
// Struct tag validation (go-playground/validator) is used for the
// declarative file configuration; field paths in the resulting error follow
// the mapstructure keys, so messages point at the YAML the user wrote.
//
//	type ProviderFile struct {
//	    Type     string `mapstructure:"type" validate:"required,oneof=google github"`
//	    ClientID string `mapstructure:"client_id" validate:"required"`
//	}
//	err := validation.Validate(file)
//
// The programmatic Validator backs the Validate methods of provider configs:
//
//	err := validation.New().
//	    Required("client_id", c.ClientID).
//	    URL("redirect_uri", c.RedirectURI).
//	    Err()
package validation
