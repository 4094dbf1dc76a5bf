package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/config"
	"github.com/sagarc03/swiftgate/keybackend"
)

var presignCmd = &cobra.Command{
	Use:   "presign [flags] <path>",
	Short: "Issue a presigned gateway URL",
	Long: `Issue a presigned URL for a private gateway route, signed with one of
the configured access keys.

Examples:
  # Let someone download a file for an hour
  swiftgate presign --expires 1h /files/documents/T123

  # Let someone upload into the photos container
  swiftgate presign --method POST /files/photos`,
	Args: cobra.ExactArgs(1),
	RunE: runPresign,
}

var (
	presignMethod    string
	presignExpires   time.Duration
	presignAccessKey string
	presignQuery     []string
)

func init() {
	presignCmd.Flags().StringVarP(&presignMethod, "method", "m", http.MethodGet, "HTTP method the URL is valid for")
	presignCmd.Flags().DurationVarP(&presignExpires, "expires", "e", swiftgate.DefaultExpires, "validity, at most 7 days")
	presignCmd.Flags().StringVar(&presignAccessKey, "access-key", "", "access key to sign with (default: the only configured key)")
	presignCmd.Flags().StringSliceVarP(&presignQuery, "query", "q", nil, "extra query parameters as key=value")
	rootCmd.AddCommand(presignCmd)
}

func runPresign(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	store, err := keybackend.NewSecretStore(cfg.Auth.Keys)
	if err != nil {
		return fmt.Errorf("load access keys: %w", err)
	}

	accessKey := presignAccessKey
	if accessKey == "" {
		switch store.Len() {
		case 0:
			return errors.New("no access keys configured in auth.keys")
		case 1:
		default:
			return errors.New("more than one access key configured, pick one with --access-key")
		}
		accessKey = store.AccessKeys()[0]
	}
	secretKey, err := store.Lookup(accessKey)
	if err != nil {
		return err
	}

	extra := url.Values{}
	for _, kv := range presignQuery {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return fmt.Errorf("invalid query parameter %q, want key=value", kv)
		}
		extra.Add(k, v)
	}

	baseURL := cfg.Server.PublicURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	raw, err := swiftgate.Presign(baseURL, accessKey, secretKey, strings.ToUpper(presignMethod), args[0], presignExpires, extra)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), raw)
	return nil
}
