package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "swiftgate",
	Short:   "Streaming upload and download gateway for Swift object storage",
	Long: `swiftgate relays multipart uploads and downloads to a Swift-style
object storage service while the bytes are still arriving, so no file
is ever held in full by the gateway.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	pf.String("db-type", "", "registry database type: sqlite, postgres (env: SWIFTGATE_DATABASE_TYPE)")
	pf.String("db-dsn", "", "registry connection string (env: SWIFTGATE_DATABASE_DSN)")
	pf.String("upstream-url", "", "upstream storage URL (env: SWIFTGATE_UPSTREAM_URL)")
	pf.String("upstream-account", "", "upstream account (env: SWIFTGATE_UPSTREAM_ACCOUNT)")
	pf.String("upstream-container", "", "default upstream container (env: SWIFTGATE_UPSTREAM_CONTAINER)")
	pf.String("upstream-user", "", "upstream auth user (env: SWIFTGATE_UPSTREAM_USER)")
	pf.String("upstream-key", "", "upstream auth key (env: SWIFTGATE_UPSTREAM_KEY)")
	pf.String("log-level", "", "log level: debug, info, warn, error (env: SWIFTGATE_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
