package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/swiftgate/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFile_Profiles(t *testing.T) {
	cf := &clientcli.ConfigFile{}

	_, err := cf.Profile("")
	require.ErrorIs(t, err, clientcli.ErrNoProfiles)
	assert.Empty(t, cf.DefaultName())

	added, err := cf.Put(clientcli.Profile{Name: "local", Endpoint: "http://localhost:5708"})
	require.NoError(t, err)
	assert.True(t, added)
	_, err = cf.Put(clientcli.Profile{Name: "prod", Endpoint: "https://files.example.com", Container: "documents"})
	require.NoError(t, err)

	_, err = cf.Put(clientcli.Profile{Name: " "})
	assert.ErrorIs(t, err, clientcli.ErrProfileNameRequired)

	p, err := cf.Profile("")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name, "first profile is the default until one is chosen")

	require.NoError(t, cf.SetDefault("prod"))
	p, err = cf.Profile("")
	require.NoError(t, err)
	assert.Equal(t, "documents", p.Container)

	added, err = cf.Put(clientcli.Profile{Name: "local", Endpoint: "http://127.0.0.1:9000", Container: "scratch"})
	require.NoError(t, err)
	assert.False(t, added)
	p, err = cf.Profile("local")
	require.NoError(t, err)
	assert.Equal(t, "scratch", p.Container)
	assert.Len(t, cf.Profiles, 2)

	assert.ErrorIs(t, cf.SetDefault("missing"), clientcli.ErrProfileNotFound)
	_, err = cf.Profile("missing")
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)

	require.NoError(t, cf.Remove("prod"))
	assert.Equal(t, "local", cf.DefaultName(), "removing the default falls back to the first profile")
	assert.Empty(t, cf.Default)
	assert.ErrorIs(t, cf.Remove("prod"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	t.Run("round trip with owner-only permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		cf := &clientcli.ConfigFile{
			Default: "prod",
			Profiles: []clientcli.Profile{
				{Name: "prod", Endpoint: "https://files.example.com", Container: "documents", AccessKey: "GATEWAYKEY", SecretKey: "secret"},
			},
		}
		require.NoError(t, cf.Save(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		loaded, err := clientcli.LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, cf, loaded)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary files left behind")
	})

	t.Run("empty file has no profiles", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		loaded, err := clientcli.LoadConfigFile(path)
		require.NoError(t, err)
		assert.Empty(t, loaded.Profiles)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: a\n    contianer: typo\n"), 0o600))

		_, err := clientcli.LoadConfigFile(path)
		assert.ErrorContains(t, err, "contianer")
	})

	t.Run("missing and malformed files fail", func(t *testing.T) {
		_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)

		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("profiles: [yaml: content"), 0o600))
		_, err = clientcli.LoadConfigFile(bad)
		assert.Error(t, err)
	})
}

func TestConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv("SWIFTGATE_CONFIG", "")
	assert.Equal(t, filepath.Join(home, ".swiftgate", "config.yaml"), clientcli.ConfigPath(""))

	t.Setenv("SWIFTGATE_CONFIG", "/etc/swiftgate/cli.yaml")
	assert.Equal(t, "/etc/swiftgate/cli.yaml", clientcli.ConfigPath(""))
	assert.Equal(t, "./mine.yaml", clientcli.ConfigPath("./mine.yaml"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		layers []*clientcli.Config
		want   *clientcli.Config
	}{
		{
			name: "nothing configured",
			want: &clientcli.Config{Endpoint: clientcli.DefaultEndpoint},
		},
		{
			name: "later layer wins field by field",
			layers: []*clientcli.Config{
				{Endpoint: "http://a.com", Container: "documents", AccessKey: "key1", SecretKey: "secret1"},
				{Endpoint: "http://b.com/", AccessKey: "key2"},
			},
			want: &clientcli.Config{Endpoint: "http://b.com", Container: "documents", AccessKey: "key2", SecretKey: "secret1"},
		},
		{
			name: "container from a later layer",
			layers: []*clientcli.Config{
				{Container: "documents"},
				nil,
				{Container: "photos"},
			},
			want: &clientcli.Config{Endpoint: clientcli.DefaultEndpoint, Container: "photos"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clientcli.Resolve(tt.layers...))
		})
	}
}

func TestEnvConfig(t *testing.T) {
	t.Setenv("SWIFTGATE_ENDPOINT", "http://test.example.com")
	t.Setenv("SWIFTGATE_CONTAINER", "documents")
	t.Setenv("SWIFTGATE_ACCESS_KEY", "env-access-key")
	t.Setenv("SWIFTGATE_SECRET_KEY", "env-secret-key")

	assert.Equal(t, &clientcli.Config{
		Endpoint:  "http://test.example.com",
		Container: "documents",
		AccessKey: "env-access-key",
		SecretKey: "env-secret-key",
	}, clientcli.EnvConfig())
}

func TestProfile_Config(t *testing.T) {
	p := clientcli.Profile{Name: "p", Endpoint: "http://e", Container: "c", AccessKey: "a", SecretKey: "s"}

	assert.Equal(t, &clientcli.Config{Endpoint: "http://e", Container: "c", AccessKey: "a", SecretKey: "s"}, p.Config())
	assert.True(t, p.Signed())
	assert.False(t, clientcli.Profile{AccessKey: "a"}.Signed())
}
