package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/server/middleware"
)

// tokenGenerateCmd represents the token generate command
var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an admin token for the status server",
	Long: `Generate an admin token for the status server.

The token is signed with the secret from ORDERSYNC_ADMIN_TOKEN_SECRET and
authorizes the POST /sweeps endpoint. Pass it as a bearer token:

  curl -X POST -H "Authorization: Bearer $TOKEN" http://localhost:8000/sweeps

Example:
  ordersyncctl token generate
  ordersyncctl token generate --subject deploy --ttl 15m`,
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		secret := config.AdminTokenSecret()
		if secret == nil {
			fmt.Fprintln(os.Stderr, "ORDERSYNC_ADMIN_TOKEN_SECRET environment variable is required")
			os.Exit(1)
		}

		token, err := middleware.GenerateToken(secret, subject, ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate token: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(token)
	},
}

func init() {
	tokenCmd.AddCommand(tokenGenerateCmd)
	tokenGenerateCmd.Flags().StringP("subject", "s", "admin", "Token subject claim")
	tokenGenerateCmd.Flags().DurationP("ttl", "t", time.Hour, "Token lifetime")
}
