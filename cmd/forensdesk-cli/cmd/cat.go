package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"forensdesk/internal/application/commands"
)

var catView bool

var catCmd = &cobra.Command{
	Use:   "cat <image> <inode>",
	Short: "Write the content of a file to stdout",
	Long: `Write the raw content of a file to stdout. With --view, text is printed
as is and binary content as hex of its first 1000 bytes.

Examples:
  forensdesk-cli cat disk.raw 12345 > recovered.bin
  forensdesk-cli cat disk.raw 12345 --offset 2048 --view`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inode, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid inode: %s", args[1])
		}
		token, err := openImage(ctx, args[0])
		if err != nil {
			return err
		}

		if catView {
			view, err := commands.NewViewFileCommand(rt.Workspace, token, inode, startOffset).Execute(ctx)
			if err != nil {
				return err
			}
			fmt.Println(view.Content)
			return nil
		}

		content, err := commands.NewReadFileCommand(rt.Workspace, token, inode, startOffset).Execute(ctx)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(content.Data)
		return err
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <image> <inode>",
	Short: "Detect the type of a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inode, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid inode: %s", args[1])
		}
		token, err := openImage(ctx, args[0])
		if err != nil {
			return err
		}

		res, err := commands.NewPreviewFileCommand(rt.Workspace, token, inode, startOffset).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Name: %s\nType: %s (.%s) %s\nSize: %d bytes\nText: %t\n",
			res.Name, res.FileType.Type, res.FileType.Extension, res.FileType.Description, res.FileSize, res.IsText)
		return nil
	},
}

func init() {
	addOffsetFlag(catCmd)
	catCmd.Flags().BoolVar(&catView, "view", false, "print text, or hex for binary content")
	addOffsetFlag(previewCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(previewCmd)
}
