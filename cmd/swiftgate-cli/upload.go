package main

import (
	"os"

	"github.com/sagarc03/swiftgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadRecursive   bool
	uploadContentType string
	uploadContainer   string
	uploadID          string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload files through the gateway",
	Long: `Upload files through the gateway.

Each file is sent as a multipart form and streamed to the upstream
container. The gateway assigns an object id unless --id is given.

Examples:
  swiftgate-cli upload ./report.pdf
  swiftgate-cli upload --container photos ./cat.jpg
  swiftgate-cli upload --id invoice-42 ./invoice.pdf
  swiftgate-cli upload -r ./images/`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
	uploadCmd.Flags().StringVar(&uploadContainer, "container", "", "target container (default: profile container, then gateway default)")
	uploadCmd.Flags().StringVar(&uploadID, "id", "", "object id (single file only)")
	uploadCmd.MarkFlagsMutuallyExclusive("recursive", "id")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		LocalPath:   args[0],
		Container:   uploadContainer,
		ID:          uploadID,
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
	}

	results, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return results[i].Err
		}
	}

	return nil
}
