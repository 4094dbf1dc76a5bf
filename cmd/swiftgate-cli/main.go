package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sagarc03/swiftgate/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	accessKey  string
	secretKey  string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "swiftgate-cli",
	Version: version,
	Short:   "Client for the swiftgate upload gateway",
	Long: `swiftgate-cli - Client for the swiftgate upload gateway

Uploads are sent as multipart forms and relayed by the gateway to the
upstream object store. Requests are presigned when an access key and
secret key are configured, and sent unsigned otherwise.

Connection settings are resolved in this order (later wins):
  1. profile from the config file (--profile, SWIFTGATE_PROFILE or the default)
  2. environment (SWIFTGATE_ENDPOINT, SWIFTGATE_CONTAINER, SWIFTGATE_ACCESS_KEY,
     SWIFTGATE_SECRET_KEY)
  3. flags (--endpoint, --access-key, --secret-key)

The resolved container is used by upload, download and list when their
--container flag is not given.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.swiftgate/config.yaml, env: SWIFTGATE_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: SWIFTGATE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "gateway URL (default: http://localhost:5708, env: SWIFTGATE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&accessKey, "access-key", "a", "", "access key (env: SWIFTGATE_ACCESS_KEY)")
	rootCmd.PersistentFlags().StringVarP(&secretKey, "secret-key", "k", "", "secret key (env: SWIFTGATE_SECRET_KEY)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(presignCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getConfigPath() string {
	return clientcli.ConfigPath(cfgFile)
}

// buildConfig layers the selected profile, the environment and the flags.
// A missing config file only matters when it or a profile was asked for.
func buildConfig() (*clientcli.Config, error) {
	name := cmp.Or(profile, os.Getenv(clientcli.EnvProfile))
	explicit := cfgFile != "" || os.Getenv(clientcli.EnvConfigPath) != ""

	var fromProfile *clientcli.Config
	if path := getConfigPath(); path != "" {
		file, err := clientcli.LoadConfigFile(path)
		switch {
		case err == nil:
			p, profileErr := file.Profile(name)
			if profileErr != nil && name != "" {
				return nil, profileErr
			}
			fromProfile = p.Config()
		case errors.Is(err, os.ErrNotExist) && !explicit && name == "":
		default:
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	fromFlags := &clientcli.Config{Endpoint: endpoint, AccessKey: accessKey, SecretKey: secretKey}
	return clientcli.Resolve(fromProfile, clientcli.EnvConfig(), fromFlags), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// handleError reports err through the formatter and returns it.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return err
}
