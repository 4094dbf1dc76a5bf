package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/config"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check the upstream credentials",
	Long: `Authenticate against the upstream auth endpoint with the configured
user and key, and print the storage account that was resolved.`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().Bool("show-token", false, "print the storage token")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	showToken, _ := cmd.Flags().GetBool("show-token")

	client, err := swiftgate.NewClient(cfg.Upstream.Options())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close(context.Background()) }()

	sess, err := swiftgate.NewSession(cfg.Upstream.Account, cfg.Upstream.Container)
	if err != nil {
		return err
	}

	creds := cfg.Upstream.Credentials()
	if err := client.Authenticate(cmd.Context(), sess, creds.User, creds.Key); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Authenticated: %s as %s\n", cfg.Upstream.URL, creds.User)
	_, _ = fmt.Fprintf(out, "  Account:   %s\n", sess.Account())
	_, _ = fmt.Fprintf(out, "  Container: %s\n", sess.Container())
	if showToken {
		_, _ = fmt.Fprintf(out, "  Token:     %s\n", sess.Token())
	}
	return nil
}
