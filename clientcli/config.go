package clientcli

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the gateway address used when nothing else is configured.
const DefaultEndpoint = "http://localhost:5708"

// Environment variables understood by EnvConfig and the CLI.
const (
	EnvConfigPath = "SWIFTGATE_CONFIG"
	EnvProfile    = "SWIFTGATE_PROFILE"
	EnvEndpoint   = "SWIFTGATE_ENDPOINT"
	EnvContainer  = "SWIFTGATE_CONTAINER"
	EnvAccessKey  = "SWIFTGATE_ACCESS_KEY"
	EnvSecretKey  = "SWIFTGATE_SECRET_KEY"
)

// Profile is one saved gateway. Container, when set, is where uploads,
// downloads and listings go when a call names no container; empty leaves
// the choice to the gateway.
type Profile struct {
	Name      string `yaml:"name"`
	Endpoint  string `yaml:"endpoint"`
	Container string `yaml:"container,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// Signed reports whether requests made with p are presigned.
func (p Profile) Signed() bool {
	return p.AccessKey != "" && p.SecretKey != ""
}

// Config returns the connection settings saved in p.
func (p Profile) Config() *Config {
	return &Config{
		Endpoint:  p.Endpoint,
		Container: p.Container,
		AccessKey: p.AccessKey,
		SecretKey: p.SecretKey,
	}
}

// ConfigFile is the on-disk profile store. Default names the profile used
// when none is selected; when it is empty or stale the first profile is used.
type ConfigFile struct {
	Default  string    `yaml:"default,omitempty"`
	Profiles []Profile `yaml:"profiles"`
}

func (c *ConfigFile) index(name string) int {
	return slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Name == name })
}

// DefaultName returns the name of the profile used when none is selected.
func (c *ConfigFile) DefaultName() string {
	if c.Default != "" && c.index(c.Default) >= 0 {
		return c.Default
	}
	if len(c.Profiles) > 0 {
		return c.Profiles[0].Name
	}
	return ""
}

// Profile returns the profile called name, or the default one for "".
func (c *ConfigFile) Profile(name string) (Profile, error) {
	if len(c.Profiles) == 0 {
		return Profile{}, ErrNoProfiles
	}
	name = cmp.Or(name, c.DefaultName())
	i := c.index(name)
	if i < 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return c.Profiles[i], nil
}

// Put saves p, replacing the profile of the same name. It reports whether
// p was new.
func (c *ConfigFile) Put(p Profile) (bool, error) {
	if strings.TrimSpace(p.Name) == "" {
		return false, ErrProfileNameRequired
	}
	if i := c.index(p.Name); i >= 0 {
		c.Profiles[i] = p
		return false, nil
	}
	c.Profiles = append(c.Profiles, p)
	return true, nil
}

// Remove deletes the profile called name. Removing the default profile
// hands that role back to the first remaining one.
func (c *ConfigFile) Remove(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.Profiles = slices.Delete(c.Profiles, i, i+1)
	if c.Default == name {
		c.Default = ""
	}
	return nil
}

// SetDefault makes name the default profile.
func (c *ConfigFile) SetDefault(name string) error {
	if c.index(name) < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.Default = name
	return nil
}

// Save writes the store to path with owner-only permissions. The file is
// replaced atomically so a failed write never truncates existing profiles.
func (c *ConfigFile) Save(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadConfigFile reads the profile store at path. Unknown keys are rejected
// so a misspelt setting is not silently ignored. An empty file holds no
// profiles.
func LoadConfigFile(path string) (*ConfigFile, error) {
	f, err := os.Open(filepath.Clean(path)) //#nosec G304 -- path is the user's config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cf ConfigFile
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cf, nil
}

// ConfigPath resolves the profile store location: flag when set, then
// SWIFTGATE_CONFIG, then ~/.swiftgate/config.yaml. It returns "" when no
// home directory is known.
func ConfigPath(flag string) string {
	if p := cmp.Or(flag, os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".swiftgate", "config.yaml")
}

// Config is the resolved connection of a Client.
type Config struct {
	Endpoint  string
	Container string
	AccessKey string
	SecretKey string
}

// EnvConfig reads the SWIFTGATE_* connection variables.
func EnvConfig() *Config {
	return &Config{
		Endpoint:  os.Getenv(EnvEndpoint),
		Container: os.Getenv(EnvContainer),
		AccessKey: os.Getenv(EnvAccessKey),
		SecretKey: os.Getenv(EnvSecretKey),
	}
}

// Resolve layers configs in order, a non-empty field of a later layer
// replacing the earlier value. Nil layers are skipped. The endpoint falls
// back to DefaultEndpoint and loses any trailing slash.
func Resolve(layers ...*Config) *Config {
	out := &Config{}
	for _, l := range layers {
		if l == nil {
			continue
		}
		out.Endpoint = cmp.Or(l.Endpoint, out.Endpoint)
		out.Container = cmp.Or(l.Container, out.Container)
		out.AccessKey = cmp.Or(l.AccessKey, out.AccessKey)
		out.SecretKey = cmp.Or(l.SecretKey, out.SecretKey)
	}
	out.Endpoint = strings.TrimSuffix(cmp.Or(out.Endpoint, DefaultEndpoint), "/")
	return out
}

func (c *Config) signed() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// requireKeys fails unless both halves of the credential are set.
func (c *Config) requireKeys() error {
	switch {
	case c.AccessKey == "":
		return ErrAccessKeyRequired
	case c.SecretKey == "":
		return ErrSecretKeyRequired
	}
	return nil
}
