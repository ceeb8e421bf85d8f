package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"forensdesk/internal/application/commands"
)

var partitionsCmd = &cobra.Command{
	Use:   "partitions <image>",
	Short: "Show the partition table of the image",
	Long: `Show the partition table of the image. The start column is the sector
offset to pass to --offset.

Example:
  forensdesk-cli partitions disk.raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		token, err := openImage(ctx, args[0])
		if err != nil {
			return err
		}

		res, err := commands.NewListPartitionsCommand(rt.Workspace, token).Execute(ctx)
		if err != nil {
			return err
		}

		if res.Wiped {
			fmt.Println("Image is wiped: no partition table or file system found")
			return nil
		}
		fmt.Printf("%-4s %-28s %12s %12s\n", "#", "Description", "Start", "Length")
		for _, p := range res.Partitions {
			fmt.Printf("%-4d %-28s %12d %12d\n", p.Index, p.Label, p.StartOffset, p.Size)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(partitionsCmd)
}
