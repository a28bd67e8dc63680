package main

import (
	"context"
	"fmt"
	"time"

	"reportshare/internal/domain/entity"
	"reportshare/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		user  string
		roles []string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the report API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return errors.Wrap(err, "invalid --user")
			}

			granted := entity.RolesFromStrings(roles)
			if len(granted) != len(roles) {
				return errors.Errorf("unknown role in %v", roles)
			}

			var tokens service.TokenService

			return withApp(cmd.Context(), func(context.Context) error {
				token, err := tokens.GenerateAccessToken(userID, granted.ToStrings(), ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)

				return nil
			}, &tokens)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id the token is issued to")
	cmd.Flags().StringSliceVarP(&roles, "role", "r", []string{entity.RoleUser.String()}, "roles granted by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
