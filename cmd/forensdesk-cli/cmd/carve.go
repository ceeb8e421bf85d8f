package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"forensdesk/internal/application/commands"
)

var carveType string

var carveCmd = &cobra.Command{
	Use:   "carve <image>",
	Short: "Recover deleted files by signature",
	Long: `Scan the unallocated space of the image for known file signatures.

Examples:
  forensdesk-cli carve disk.raw
  forensdesk-cli carve disk.raw --type jpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		token, err := openImage(ctx, args[0])
		if err != nil {
			return err
		}

		files, err := commands.NewCarveCommand(rt.Workspace, token, carveType).Execute(ctx)
		if err != nil {
			return err
		}

		if len(files) == 0 {
			fmt.Println("No files recovered")
			return nil
		}
		for _, f := range files {
			fmt.Printf("%-5s %12s %9s  %s\n", f.Extension, f.OffsetLabel(), f.Size, f.Path)
		}
		return nil
	},
}

func init() {
	carveCmd.Flags().StringVarP(&carveType, "type", "t", "all", "file type to carve (all, jpg, png, pdf, zip...)")
	rootCmd.AddCommand(carveCmd)
}
