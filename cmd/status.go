// Handles the "cdmup status" command. The manager already ran a token
// introspection while connecting, so this just reports what it learned.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Verify credentials and show what the token grants",
	Long: `Exchanges the configured credentials for a token, asks the platform to
introspect it, and reports the token's subject and projects. Useful as a
smoke test of a new app registration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := cdfManager.Token

		projects := make([]string, 0, len(token.Projects))
		for _, project := range token.Projects {
			projects = append(projects, project.ProjectURLName)
		}

		cdfManager.Logger.WithFields(logrus.Fields{
			"subject":  token.Subject,
			"projects": projects,
		}).Info("Token accepted by Cognite Data Fusion")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
