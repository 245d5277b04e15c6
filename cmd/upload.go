// Handles the "cdmup upload" command: the full space -> instance -> content
// sequence for one local file.
package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cdftools/cdmup/pkg/upload"
)

var uploadCmdConfig struct {
	file       string
	space      string
	externalID string
	name       string
	mimeType   string
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Create a file instance and upload the local file's contents to it",
	Long: `Ensures the target space exists, applies an instance node with a file
facet, then uploads the local file's bytes as the content object the facet
points at. Each flag falls back to the matching "upload.*" key in the config
file. Re-running with the same external id upserts instead of duplicating.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		job := upload.Job{
			LocalFilePath:      uploadCmdConfig.file,
			Space:              uploadCmdConfig.space,
			InstanceExternalID: uploadCmdConfig.externalID,
			InstanceName:       uploadCmdConfig.name,
			MimeType:           uploadCmdConfig.mimeType,
		}

		// Config-file fallbacks for anything not given on the command line
		if job.LocalFilePath == "" {
			job.LocalFilePath = cdfManager.Cfg.GetString("upload.file")
		}
		if job.Space == "" {
			job.Space = cdfManager.Cfg.GetString("upload.space")
		}
		if job.InstanceExternalID == "" {
			job.InstanceExternalID = cdfManager.Cfg.GetString("upload.external-id")
		}
		if job.InstanceName == "" {
			job.InstanceName = cdfManager.Cfg.GetString("upload.name")
		}
		if job.MimeType == "" {
			job.MimeType = cdfManager.Cfg.GetString("upload.mime-type")
		}

		if job.LocalFilePath == "" {
			return errors.New("no file given: use --file or set upload.file in the config")
		}
		if job.InstanceExternalID == "" {
			return errors.New("no instance external id given: use --external-id or set upload.external-id in the config")
		}

		runner := upload.NewRunner(cdfManager.Logger.WithField("module", "upload"), cdfManager.Client)
		result, err := runner.Run(context.Background(), job)
		if err != nil {
			return errors.Wrap(err, "Upload failed")
		}

		cdfManager.Logger.WithFields(logrus.Fields{
			"space":      result.Node.Space,
			"externalId": result.Node.ExternalID,
			"version":    result.Node.Version,
			"contentId":  result.ContentExternalID,
		}).Info("Upload complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	// Define the command line arguments for this subcommand
	uploadCmd.Flags().StringVarP(&uploadCmdConfig.file, "file", "f", "", "local file to upload")
	uploadCmd.Flags().StringVarP(&uploadCmdConfig.space, "space", "s", "", "data-modeling space for the instance node")
	uploadCmd.Flags().StringVarP(&uploadCmdConfig.externalID, "external-id", "x", "", "external id for the instance node")
	uploadCmd.Flags().StringVarP(&uploadCmdConfig.name, "name", "n", "", "display name for the file facet (default: file's base name)")
	uploadCmd.Flags().StringVarP(&uploadCmdConfig.mimeType, "mime-type", "m", "", "MIME type (default: guessed from the file extension)")
}
