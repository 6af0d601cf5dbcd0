package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/sitter-backend/internal/common/utils"
	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

// tokenCmd mints a bearer token for local testing against the API.
func tokenCmd() *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
		secret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user must be positive")
			}
			switch matching.Role(role) {
			case matching.RoleParent, matching.RoleSitter, matching.RoleAdmin:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			token, err := utils.GenerateJWT(utils.NewJWTClaims(userID, role, ttl), secret)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&role, "role", string(matching.RoleParent), "role (parent, sitter, admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "signing secret")
	return cmd
}
