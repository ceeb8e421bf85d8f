package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"forensdesk/internal/application/commands"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree <image>",
	Short: "Display the directory tree of the image",
	Long: `Display the directory tree of one file system, descending into
subdirectories up to --depth levels.

Example:
  forensdesk-cli tree disk.raw --offset 2048 --depth 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		token, err := openImage(ctx, args[0])
		if err != nil {
			return err
		}
		return printTree(ctx, token, nil, 0)
	},
}

func printTree(ctx context.Context, token string, inode *uint64, depth int) error {
	entries, err := commands.NewListDirectoryCommand(rt.Workspace, token, startOffset, inode).Execute(ctx)
	if err != nil {
		return err
	}

	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		printEntry(e, indent)
		if e.IsDirectory && depth+1 < treeDepth {
			child := e.InodeNumber
			if err := printTree(ctx, token, &child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	addOffsetFlag(treeCmd)
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 3, "maximum depth to descend")
	rootCmd.AddCommand(treeCmd)
}
