package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"forensdesk/internal/application/commands"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire <ref>",
	Short: "Copy an image into the upload directory and register it",
	Long: `Fetch an image from a local path, WebDAV share or S3 bucket, store it
in the upload directory with its SHA-512 digest and register it.

Examples:
  forensdesk-cli acquire /mnt/usb/disk.E01
  forensdesk-cli acquire s3://cases/42/disk.raw
  forensdesk-cli acquire webdav://lab/images/phone.dd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := commands.NewAcquireEvidenceCommand(rt.Workspace, rt.Acquirer, args[0], false).Execute(cmd.Context())
		if err != nil {
			return err
		}

		a := res.Acquisition
		fmt.Printf("Registered %s\n", res.EvidenceID)
		fmt.Printf("  path:    %s\n", a.Path)
		fmt.Printf("  size:    %d bytes\n", a.Size)
		fmt.Printf("  type:    %s\n", a.ContentType)
		fmt.Printf("  sha512:  %s\n", a.SHA512)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(acquireCmd)
}
