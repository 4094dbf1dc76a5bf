package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/config"
)

var putCmd = &cobra.Command{
	Use:   "put [flags] <file1> [file2] ...",
	Short: "Store local files upstream through the gateway",
	Long: `Store local files in the upstream object store and record them in the
upload registry. Each file is read fully into memory and written in one
request, so this is meant for small files; large files should go through
the HTTP upload endpoint.

Examples:
  # Store a file in the default container
  swiftgate put ./report.pdf

  # Store a directory recursively into another container
  swiftgate put -r --container photos ./album`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPut,
}

var (
	putContainer string
	putRecursive bool
	putQuiet     bool
)

func init() {
	putCmd.Flags().StringVarP(&putContainer, "container", "c", "", "upstream container (default: upstream.container)")
	putCmd.Flags().BoolVarP(&putRecursive, "recursive", "r", false, "recursively put directories")
	putCmd.Flags().BoolVarP(&putQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var files []string
	for _, arg := range args {
		found, collectErr := collectFiles(arg, putRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		slog.Info("no files to put")
		return nil
	}

	gw, err := openGateway(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = gw.Close(context.Background()) }()

	out := cmd.OutOrStdout()
	for _, path := range files {
		obj, readErr := readStoredObject(path)
		if readErr != nil {
			return readErr
		}

		id, writeErr := gw.service.Write(ctx, obj, putContainer)
		if writeErr != nil {
			return fmt.Errorf("put %s: %w", path, writeErr)
		}

		if !putQuiet {
			_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", id, obj.ContentType, path)
		}
	}

	slog.Info("put complete", "files", len(files))
	return nil
}

func readStoredObject(path string) (swiftgate.StoredObject, error) {
	content, err := os.ReadFile(path) //#nosec G304 -- path is user-provided input
	if err != nil {
		return swiftgate.StoredObject{}, fmt.Errorf("read %s: %w", path, err)
	}

	return swiftgate.StoredObject{
		Content:     content,
		Filename:    filepath.Base(path),
		ContentType: mimetype.Detect(content).String(),
	}, nil
}

// collectFiles gathers regular files from path, walking directories when
// recursive is set.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}
	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to put recursively)", path)
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() {
			files = append(files, walkPath)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}
