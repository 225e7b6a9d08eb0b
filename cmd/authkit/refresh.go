package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefreshCmd(root *rootOptions) *cobra.Command {
	var providerID string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for new tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.provider(providerID)
			if err != nil {
				return err
			}
			resp, err := s.client.Refresh(ctx, p.ID())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Refreshed tokens for %s with %s", s.scheme.ID, p.Name())
			if resp.ExpiresIn != nil {
				fmt.Fprintf(out, " (expires in %ds)", *resp.ExpiresIn)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "provider id (default: the scheme's only provider)")
	return cmd
}
