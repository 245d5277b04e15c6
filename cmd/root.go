// Root of command-line argument parsing.
// This file was based off the standard cobra template, see
// https://github.com/spf13/cobra
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cdftools/cdmup/pkg/cdfmgr"
	"github.com/cdftools/cdmup/pkg/upload"
)

var cfgFile string

var cdfManager *cdfmgr.CdfManager

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cdmup",
	Short: "Upload local files into CDF data-model file instances",
	Long: `cdmup pushes a local file into Cognite Data Fusion: it ensures the
target data-modeling space exists, applies an instance node carrying a file
facet, and uploads the file's bytes as the linked content object.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		mgrArgs := map[string]interface{}{}
		if cfgFile != "" {
			mgrArgs["config-file"] = cfgFile
		}

		var err error
		cdfManager, err = cdfmgr.NewManager(mgrArgs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize cdmup: %v\n", err)
			os.Exit(exitCode(err))
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cdfManager.Destroy()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by cdmup.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if cdfManager == nil || cdfManager.Logger == nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		} else {
			cdfManager.Logger.Error(err)
		}
		os.Exit(exitCode(err))
	}
}

// Each abort point gets its own exit code so callers can tell where the
// sequence stopped: 2 missing configuration, 3 authentication, 4 instance
// apply, 5 content upload. Everything else is 1.
func exitCode(err error) int {
	switch upload.StageOf(err) {
	case upload.StageInstance:
		return 4
	case upload.StageContent:
		return 5
	}

	for err != nil {
		switch err.(type) {
		case *cdfmgr.ConfigError:
			return 2
		case *cdfmgr.AuthError:
			return 3
		}
		causer, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = causer.Cause()
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is configs/cdmup.yaml)")
}
