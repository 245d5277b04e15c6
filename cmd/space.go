// Handles the "cdmup space" command. This command exists solely to contain
// space-specific subcommands (e.g. ensure).
package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cdftools/cdmup/pkg/upload"
)

// spaceCmd represents the space command
var spaceCmd = &cobra.Command{
	Use:   "space",
	Short: "Data-modeling space interaction",
	Long:  `Commands for dealing with data-modeling spaces on the configured project.`,
}

var spaceEnsureCmdConfig struct {
	space string
}

var spaceEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create a space if it does not already exist",
	Long: `Looks the space up by id and creates it when the lookup reports
not-found. An existing space is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		space := spaceEnsureCmdConfig.space
		if space == "" {
			space = cdfManager.Cfg.GetString("upload.space")
		}
		if space == "" {
			return errors.New("no space given: use --space or set upload.space in the config")
		}

		runner := upload.NewRunner(cdfManager.Logger.WithField("module", "upload"), cdfManager.Client)
		if runner.EnsureSpace(context.Background(), space) {
			cdfManager.Logger.Info("Space created: " + space)
		} else {
			cdfManager.Logger.Info("Space not created: " + space)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(spaceCmd)
	spaceCmd.AddCommand(spaceEnsureCmd)

	spaceEnsureCmd.Flags().StringVarP(&spaceEnsureCmdConfig.space, "space", "s", "", "space id to ensure")
}
