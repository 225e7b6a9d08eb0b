package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var header bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print the stored access token",
		Long: `Print the stored access token of the current scheme, for use in scripts:

  curl -H "Authorization: $(authkit token --header)" https://api.example.com/me`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			get := s.client.GetAccessToken
			if header {
				get = s.client.AuthorizationHeader
			}
			value, found, err := get(ctx)
			if err != nil {
				return err
			}
			if !found {
				return &notLoggedInError{scheme: s.scheme.ID}
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
	cmd.Flags().BoolVar(&header, "header", false, "print the Authorization header value (\"<type> <token>\")")
	return cmd
}
