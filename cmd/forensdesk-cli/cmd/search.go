package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"forensdesk/internal/application/commands"
)

var searchCmd = &cobra.Command{
	Use:   "search <image> <query>",
	Short: "Search the image by name and content",
	Long: `Search file names and raw content of the image for a keyword.

Exact names rank first, then name prefixes, names containing the
keyword and matching directories. Raw content hits are listed last
with their byte offset.

Examples:
  forensdesk-cli search disk.raw invoice
  forensdesk-cli search disk.raw "password="`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		token, err := openImage(ctx, args[0])
		if err != nil {
			return err
		}

		results, err := commands.NewSearchCommand(rt.Workspace, token, args[1]).Execute(ctx)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results found")
			return nil
		}

		for _, r := range results {
			where := r.Path
			if commands.IsRawHit(r) {
				where = r.Name
			}
			fmt.Printf("[%s] %s %s\n", r.InodeItem, where, r.Size)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
