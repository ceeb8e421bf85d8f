package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"forensdesk/internal/application/commands"
	"forensdesk/internal/domain"
)

var listInode uint64

var listCmd = &cobra.Command{
	Use:   "ls <image>",
	Short: "List a directory of the image",
	Long: `List the live files and directories of one directory. Without --inode
the file-system root is listed.

Examples:
  forensdesk-cli ls disk.raw
  forensdesk-cli ls disk.raw --offset 2048 --inode 12346`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		token, err := openImage(ctx, args[0])
		if err != nil {
			return err
		}

		var inode *uint64
		if cmd.Flags().Changed("inode") {
			inode = &listInode
		}
		entries, err := commands.NewListDirectoryCommand(rt.Workspace, token, startOffset, inode).Execute(ctx)
		if err != nil {
			return err
		}

		for _, e := range entries {
			printEntry(e, "")
		}
		return nil
	},
}

func printEntry(e domain.DirectoryEntry, indent string) {
	kind := "r"
	if e.IsDirectory {
		kind = "d"
	}
	fmt.Printf("%s%s %8d %9s  %s  %s\n", indent, kind, e.InodeNumber, e.Size, e.Modified, e.Name)
}

func init() {
	addOffsetFlag(listCmd)
	listCmd.Flags().Uint64VarP(&listInode, "inode", "i", 0, "inode of the directory to list")
	rootCmd.AddCommand(listCmd)
}
