package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate/config"
	"github.com/sagarc03/swiftgate/keybackend"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage gateway access keys",
}

var keysAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Generate an access key and add it to the keys file",
	Long: `Generate a new access key and secret and append them to the keys
file (auth.keys.file, or --file). The secret is printed once.`,
	Args: cobra.NoArgs,
	RunE: runKeysAdd,
}

func init() {
	keysAddCmd.Flags().String("file", "", "keys file (default: auth.keys.file)")
	keysCmd.AddCommand(keysAddCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = cfg.Auth.Keys.File
	}
	if path == "" {
		return errors.New("no keys file: set auth.keys.file or pass --file")
	}

	pair, err := keybackend.GenerateKeyPair()
	if err != nil {
		return err
	}
	if err := keybackend.AppendKeyToFile(path, pair); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Access Key: %s\n", pair.AccessKey)
	_, _ = fmt.Fprintf(out, "Secret Key: %s\n", pair.SecretKey)
	_, _ = fmt.Fprintf(out, "Added to %s\n", path)
	return nil
}
