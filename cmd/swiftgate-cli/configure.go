package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/clientcli"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage gateway profiles",
	Long: `Manage gateway profiles in the configuration file.

A profile saves the endpoint, default container and keys of one gateway.
Switch between them with --profile or SWIFTGATE_PROFILE.

Configuration is stored in ~/.swiftgate/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Long: `Add a profile interactively.

You will be prompted for the endpoint URL, a default container, the
access key and the secret key. Leave the container empty to let the
gateway choose, and leave both keys empty for a gateway that accepts
unsigned requests. The gateway health endpoint is checked before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile, or the default profile without a name.

Secrets are masked unless --show-secrets is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)

	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg == nil || len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("Run 'swiftgate-cli configure add <name>' to create one.")
		return nil
	}

	return getFormatter().FormatProfiles(os.Stdout, cfg, showSecrets)
}

func runConfigureAdd(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = &clientcli.ConfigFile{}
	}

	var existing *clientcli.Profile
	if p, err := cfg.Profile(name); err == nil && p.Name == name {
		existing = &p
	}
	if existing != nil && !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	p, err := promptProfile(name, existing)
	if err != nil {
		return handlePromptError(err)
	}

	makeDefault := len(cfg.Profiles) == 0 || cfg.DefaultName() == name
	if !makeDefault {
		makeDefault = confirm("Set as default profile")
	}

	fmt.Print("Checking gateway... ")
	if err := checkGateway(p.Endpoint); err != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: %v\n", err)
		if !confirm("Save profile anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	added, err := cfg.Put(p)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if makeDefault {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	verb := "updated"
	if added {
		verb = "added"
	}
	fmt.Printf("Profile '%s' %s.\n", name, verb)
	if makeDefault {
		fmt.Println("Set as default profile.")
	}
	return nil
}

// promptProfile asks for the connection settings of a profile, offering
// the values of prev as defaults.
func promptProfile(name string, prev *clientcli.Profile) (clientcli.Profile, error) {
	p := clientcli.Profile{Name: name, Endpoint: clientcli.DefaultEndpoint}
	if prev != nil {
		p.Endpoint = prev.Endpoint
		p.Container = prev.Container
		p.AccessKey = prev.AccessKey
	}

	endpointPrompt := promptui.Prompt{
		Label:    "Gateway URL",
		Default:  p.Endpoint,
		Validate: validateEndpoint,
	}
	endpointURL, err := endpointPrompt.Run()
	if err != nil {
		return p, err
	}
	p.Endpoint = strings.TrimSuffix(endpointURL, "/")

	containerPrompt := promptui.Prompt{
		Label:    "Default container (empty for the gateway default)",
		Default:  p.Container,
		Validate: validateContainer,
	}
	if p.Container, err = containerPrompt.Run(); err != nil {
		return p, err
	}

	accessKeyPrompt := promptui.Prompt{
		Label:   "Access Key (empty for unsigned requests)",
		Default: p.AccessKey,
	}
	if p.AccessKey, err = accessKeyPrompt.Run(); err != nil {
		return p, err
	}

	if p.AccessKey == "" {
		p.SecretKey = ""
		return p, nil
	}

	secretKeyPrompt := promptui.Prompt{
		Label: "Secret Key",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return clientcli.ErrSecretKeyRequired
			}
			return nil
		},
	}
	if p.SecretKey, err = secretKeyPrompt.Run(); err != nil {
		return p, err
	}

	return p, nil
}

func validateEndpoint(input string) error {
	if input == "" {
		return errors.New("gateway URL is required")
	}
	u, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}

// validateContainer accepts "" or a single path segment.
func validateContainer(input string) error {
	if input != "" && !swiftgate.IsValidName(input) {
		return fmt.Errorf("invalid container name %q", input)
	}
	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err = cfg.Profile(name); err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := cfg.Remove(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Default profile set to '%s'.\n", name)
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.Profile(name)
	if err != nil {
		return err
	}

	return getFormatter().FormatProfile(os.Stdout, p, p.Name == cfg.DefaultName(), showSecrets)
}

// checkGateway probes the gateway health endpoint.
func checkGateway(endpointURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway health check returned %d", resp.StatusCode)
	}
	return nil
}

// confirm asks a yes/no question; anything but yes counts as no.
func confirm(label string) bool {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	return err == nil
}

// handlePromptError maps promptui cancellation onto a clean exit.
func handlePromptError(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		fmt.Println("\nCancelled.")
		os.Exit(0)
	case errors.Is(err, promptui.ErrAbort):
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
