package main

import (
	"io"
	"os"

	"github.com/sagarc03/swiftgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput      string
	downloadStdout      bool
	downloadContainer   string
	downloadName        string
	downloadIfNoneMatch string
)

var downloadCmd = &cobra.Command{
	Use:   "download <id> [local-path]",
	Short: "Download an object through the gateway",
	Long: `Download an object through the gateway.

Without a local path the file is named after the filename the gateway
announces, falling back to the object id.

Examples:
  swiftgate-cli download 5f1c0e8a
  swiftgate-cli download --container photos 5f1c0e8a ./cat.jpg
  swiftgate-cli download --stdout 5f1c0e8a | jq .
  swiftgate-cli download --if-none-match d41d8cd98f00b204e9800998ecf8427e 5f1c0e8a`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	downloadCmd.Flags().StringVar(&downloadContainer, "container", "", "source container (default: profile container, then gateway default)")
	downloadCmd.Flags().StringVar(&downloadName, "name", "", "filename announced by the gateway")
	downloadCmd.Flags().StringVar(&downloadIfNoneMatch, "if-none-match", "", "skip the download when the ETag matches")
}

func runDownload(cmd *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.DownloadOptions{
		ID:          args[0],
		Container:   downloadContainer,
		LocalPath:   localPath,
		Name:        downloadName,
		IfNoneMatch: downloadIfNoneMatch,
	}

	result, reader, err := client.Download(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		written, err := io.Copy(os.Stdout, reader)
		if err != nil {
			return err
		}
		result.Size = written
		// Metadata goes to stderr so stdout stays the raw content.
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
