// cmd/learnhubctl/token.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newTokenCmd issues a bearer token signed with the server's JWT secret.
// Meant for development and scripted admin work; production tokens come
// from the identity service.
func newTokenCmd() *cobra.Command {
	var (
		secret, issuer     string
		userID, name, mail string
		role               string
		ttl                time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !models.IsOneOf(role, models.Roles) {
				return fmt.Errorf("--role must be one of %v", models.Roles)
			}
			if userID == "" {
				userID = primitive.NewObjectID().Hex()
			}
			tokens, err := auth.NewTokens(secret, issuer, ttl)
			if err != nil {
				return err
			}
			raw, exp, err := tokens.Issue(auth.SessionUser{ID: userID, Name: name, Email: mail, Role: role})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			fmt.Fprintf(cmd.ErrOrStderr(), "user=%s role=%s expires=%s\n", userID, role, exp.Format(time.RFC3339))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&secret, "secret", os.Getenv("LEARNHUB_JWT_SECRET"), "HMAC secret (env LEARNHUB_JWT_SECRET)")
	f.StringVar(&issuer, "issuer", envOr("LEARNHUB_JWT_ISSUER", "learnhub"), "token issuer")
	f.StringVar(&userID, "user", "", "user id (ObjectID hex); random when empty")
	f.StringVar(&name, "name", "", "display name")
	f.StringVar(&mail, "email", "", "email")
	f.StringVar(&role, "role", models.RoleInstructor, "admin, instructor or student")
	f.DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
