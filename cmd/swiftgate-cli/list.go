package main

import (
	"os"

	"github.com/sagarc03/swiftgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	listContainer string
	listPrefix    string
	listLimit     int
	listAll       bool
	listCursor    string
	listEvery     bool
)

var listCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List uploads recorded by the gateway",
	Long: `List uploads recorded by the gateway, newest first.

The prefix filters on object id. Only the profile container is listed
when one is configured; --all-containers lists every container.

Examples:
  swiftgate-cli list
  swiftgate-cli list --container photos
  swiftgate-cli list invoice- --limit 10
  swiftgate-cli list --all
  swiftgate-cli list --all-containers
  swiftgate-cli list --cursor "eyJjcmVhdGVkX2F0Ijoi..."`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listContainer, "container", "", "only this container (default: profile container)")
	listCmd.Flags().BoolVar(&listEvery, "all-containers", false, "ignore the profile container")
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "filter by id prefix")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 100, "max results per page (max: 1000)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch all pages")
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "pagination cursor")
}

func runList(cmd *cobra.Command, args []string) error {
	prefix := listPrefix
	if len(args) > 0 {
		prefix = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.ListOptions{
		Container: listContainer,
		Prefix:    prefix,
		Limit:     listLimit,
		Cursor:    listCursor,
		All:       listAll,
	}
	opts.AllContainers = listEvery && listContainer == ""

	result, err := client.List(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
