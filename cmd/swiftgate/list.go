package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/config"
	"github.com/sagarc03/swiftgate/database"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded uploads",
	Long: `List the uploads recorded in the registry, oldest first.

Only the registry is read; the upstream store is not contacted.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listContainer string
	listPrefix    string
	listLimit     int
	listCursor    string
	listAll       bool
)

func init() {
	listCmd.Flags().StringVarP(&listContainer, "container", "c", "", "only uploads of this container")
	listCmd.Flags().StringVarP(&listPrefix, "prefix", "p", "", "only filenames starting with prefix")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 100, "page size (1-1000)")
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "continue after this cursor")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "fetch every page")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	registry, closeDB, err := database.Open(ctx, cfg.Database, false)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer closeDB()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCONTAINER\tFILENAME\tTYPE\tSIZE\tCREATED")

	q := swiftgate.ListQuery{
		Container: listContainer,
		Prefix:    listPrefix,
		Limit:     listLimit,
		Cursor:    listCursor,
	}
	for {
		page, listErr := registry.List(ctx, q)
		if listErr != nil {
			return listErr
		}

		for _, r := range page.Items {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				r.ID, r.Container, r.Filename, r.ContentType, r.SizeBytes,
				r.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		if page.NextCursor == "" {
			break
		}
		if !listAll {
			_ = tw.Flush()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nNext page: use --cursor %q\n", page.NextCursor)
			return nil
		}
		q.Cursor = page.NextCursor
	}

	return tw.Flush()
}
