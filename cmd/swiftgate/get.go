package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate/config"
)

var getCmd = &cobra.Command{
	Use:   "get [flags] <id>",
	Short: "Fetch an object from upstream",
	Long: `Fetch an object from the upstream object store into a local file.

The output file defaults to the stored filename, or the object id when the
object carries none. Use -o - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var (
	getContainer string
	getOutput    string
)

func init() {
	getCmd.Flags().StringVarP(&getContainer, "container", "c", "", "upstream container (default: upstream.container)")
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "output file, - for stdout")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	gw, err := openGateway(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = gw.Close(context.Background()) }()

	obj, err := gw.service.Read(ctx, args[0], getContainer)
	if err != nil {
		return err
	}

	if getOutput == "-" {
		_, err = cmd.OutOrStdout().Write(obj.Content)
		return err
	}

	path := getOutput
	if path == "" {
		path = filepath.Base(obj.Filename)
		if obj.Filename == "" {
			path = obj.ID
		}
	}

	if err := os.WriteFile(path, obj.Content, 0o644); err != nil { //#nosec G306 -- downloaded content is not secret
		return fmt.Errorf("write %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s (%d bytes, %s)\n", obj.ID, path, len(obj.Content), obj.ContentType)
	return nil
}
