package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored tokens",
		Long: `Remove the stored tokens. The whole storage is cleared, so every
scheme sharing it is logged out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.client.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", s.scheme.ID)
			return nil
		},
	}
}
