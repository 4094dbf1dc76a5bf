package e2e_test

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/swiftgate/swifttest"
)

const (
	upstreamAccount = "AUTH_test"
	upstreamUser    = "test:tester"
	upstreamKey     = "testing"
	upstreamToken   = "AUTH_tk_e2e"
)

var (
	binaryPath     string
	binaryBuildErr error
	binaryOnce     sync.Once
	sharedTempDir  string

	// cleanups run after all tests, for resources shared across tests.
	cleanups []func()
)

// TestMain sets up and tears down shared test resources.
func TestMain(m *testing.M) {
	var err error
	sharedTempDir, err = os.MkdirTemp("", "swiftgate-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	for _, cleanup := range cleanups {
		cleanup()
	}
	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

// AuthKey represents an access key pair for presigned requests.
type AuthKey struct {
	AccessKey string
	SecretKey string
}

// ServerConfig holds configuration for starting the gateway.
type ServerConfig struct {
	Port          int
	DBType        string // sqlite, postgres
	DBDSN         string
	UpstreamURL   string
	AuthRead      string    // public, private
	AuthWrite     string    // public, private
	AuthKeys      []AuthKey // access keys for private auth
	MaxUploadSize int64
}

// buildBinary compiles the gateway binary once per test run.
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		binaryPath = filepath.Join(sharedTempDir, "swiftgate")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/swiftgate")
		cmd.Dir = getProjectRoot(t)
		output, err := cmd.CombinedOutput()
		if err != nil {
			binaryBuildErr = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
			return
		}
	})

	if binaryBuildErr != nil {
		t.Fatalf("failed to build binary: %v", binaryBuildErr)
	}

	return binaryPath
}

// getProjectRoot returns the directory holding go.mod.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// newUpstream starts an in-memory storage service with the gateway's
// credentials registered.
func newUpstream(t *testing.T) *swifttest.Server {
	t.Helper()

	upstream := swifttest.NewServer()
	upstream.AddUser(upstreamUser, upstreamKey, upstreamToken)
	t.Cleanup(upstream.Close)
	return upstream
}

// createConfigFile writes a gateway config file and returns its path.
func createConfigFile(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	var sb strings.Builder
	fmt.Fprintf(&sb, `server:
  port: %d
  max_upload_size: %d
  shutdown_timeout: 5

upstream:
  url: %s
  account: %s
  container: files
  user: %s
  key: %s

database:
  type: %s
  dsn: "%s"

auth:
  read: %s
  write: %s
`,
		cfg.Port,
		cfg.MaxUploadSize,
		cfg.UpstreamURL,
		upstreamAccount,
		upstreamUser,
		upstreamKey,
		cfg.DBType,
		cfg.DBDSN,
		cfg.AuthRead,
		cfg.AuthWrite,
	)

	if len(cfg.AuthKeys) > 0 {
		sb.WriteString("  keys:\n    inline:\n")
		for _, key := range cfg.AuthKeys {
			fmt.Fprintf(&sb, "      - access_key: %s\n        secret_key: %s\n", key.AccessKey, key.SecretKey)
		}
	}

	sb.WriteString("\nlog:\n  level: error\n")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(configPath, []byte(sb.String()), 0o600)
	require.NoError(t, err, "write config file")

	return configPath
}

// startServer runs "serve --migrate" with the given configuration and
// returns the base URL. The server is stopped with SIGTERM on cleanup.
func startServer(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	binary := buildBinary(t)
	configPath := createConfigFile(t, cfg)

	cmd := exec.Command(binary, "serve", "--migrate", "--config", configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Start()
	require.NoError(t, err, "start server")

	t.Cleanup(func() {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
			_ = cmd.Wait()
		}
	})

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(t, baseURL, 10*time.Second)

	return baseURL
}

// waitForServer polls the health endpoint until it answers or times out.
func waitForServer(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server failed to start within %v", timeout)
}

// getOpenPort finds an available TCP port.
func getOpenPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "find open port")

	port := l.Addr().(*net.TCPAddr).Port

	err = l.Close()
	require.NoError(t, err, "close port")

	return port
}

// sqliteConfig returns a public gateway config on a fresh SQLite registry.
func sqliteConfig(t *testing.T, upstreamURL string) ServerConfig {
	t.Helper()

	return ServerConfig{
		Port:        getOpenPort(t),
		DBType:      "sqlite",
		DBDSN:       filepath.Join(t.TempDir(), "registry.db"),
		UpstreamURL: upstreamURL,
		AuthRead:    "public",
		AuthWrite:   "public",
	}
}

// writeFile writes content into a temp file named name and returns its path.
func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, content, 0o600))
	return p
}
