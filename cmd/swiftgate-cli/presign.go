package main

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/sagarc03/swiftgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	presignMethod  string
	presignExpires time.Duration
	presignInline  bool
	presignName    string
)

var presignCmd = &cobra.Command{
	Use:   "presign <path>",
	Short: "Print a presigned gateway URL",
	Long: `Print a presigned URL for a gateway path.

The URL can be handed to a browser or another client that holds no keys.
Use POST with /files/<container> to let someone upload.

Examples:
  swiftgate-cli presign /files/photos/5f1c0e8a
  swiftgate-cli presign --expires 1h --name cat.jpg /files/photos/5f1c0e8a
  swiftgate-cli presign --method POST /files/photos`,
	Args: cobra.ExactArgs(1),
	RunE: runPresign,
}

func init() {
	presignCmd.Flags().StringVarP(&presignMethod, "method", "m", "GET", "HTTP method the URL is valid for")
	presignCmd.Flags().DurationVar(&presignExpires, "expires", clientcli.DefaultExpires*time.Second, "validity (max 168h)")
	presignCmd.Flags().BoolVar(&presignInline, "inline", true, "serve downloads inline")
	presignCmd.Flags().StringVar(&presignName, "name", "", "download filename")
}

func runPresign(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	query := url.Values{}
	if cmd.Flags().Changed("inline") {
		query.Set("inline", strconv.FormatBool(presignInline))
	}
	if presignName != "" {
		query.Set("name", presignName)
	}

	rawURL, err := client.Presign(presignMethod, args[0], int(presignExpires/time.Second), query)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatPresign(os.Stdout, rawURL)
}
