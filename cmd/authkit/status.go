package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/authkit/auth/guard"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the current scheme is logged in and its guards pass",
		Long: `Show whether the current scheme is logged in and its guards pass.

The access token is checked with every provider of the scheme. Exits with
code 2 when not logged in and 3 when a guard denies access.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			authenticated, err := s.client.IsAuthenticated(ctx)
			if err != nil {
				return err
			}
			allowed, guardErr := s.client.CheckGuard(ctx)

			token, _, err := s.client.GetAccessToken(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Scheme:\t%s\n", s.scheme.ID)
			fmt.Fprintf(w, "Authenticated:\t%s\n", yesNo(authenticated))
			fmt.Fprintf(w, "Guards:\t%s\n", guardStatus(len(s.scheme.Guards), allowed, guardErr))
			if authenticated {
				printClaims(w, guard.Claims(token))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			switch {
			case !authenticated:
				return &notLoggedInError{scheme: s.scheme.ID}
			case guardErr != nil:
				return guardErr
			case !allowed:
				return &accessDeniedError{scheme: s.scheme.ID}
			}
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func guardStatus(count int, allowed bool, err error) string {
	switch {
	case err != nil:
		return "error: " + err.Error()
	case count == 0:
		return "none"
	case allowed:
		return fmt.Sprintf("%d passed", count)
	default:
		return "denied"
	}
}

func printClaims(w io.Writer, claims map[string][]string) {
	if roles, ok := claims["roles"]; ok {
		fmt.Fprintf(w, "Roles:\t%v\n", roles)
	}
	if perms, ok := claims["permissions"]; ok {
		fmt.Fprintf(w, "Permissions:\t%v\n", perms)
	}
}
