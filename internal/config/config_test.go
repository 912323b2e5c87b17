package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp moves the test into an empty directory so a developer's local
// config.toml cannot leak into the run
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
	return dir
}

// TestLoad_MissingBackendURL_Fails verifies the fail-fast startup contract:
// no backend target, no process
func TestLoad_MissingBackendURL_Fails(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BACKEND_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when backend_base_url is missing, got nil")
	}
}

// TestLoad_FromEnvironment verifies env-only configuration and defaults
func TestLoad_FromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BACKEND_BASE_URL", "http://localhost:9000/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.BackendBaseURL != "http://localhost:9000" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BackendBaseURL)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("expected default server_port 8080, got %d", cfg.ServerPort)
	}
	if cfg.BackendTimeoutSeconds != 10 {
		t.Errorf("expected default backend_timeout_seconds 10, got %d", cfg.BackendTimeoutSeconds)
	}
	if cfg.ForwardingMode != "sync" {
		t.Errorf("expected default forwarding_mode sync, got %q", cfg.ForwardingMode)
	}
	if cfg.MaxRequestSizeMB != 1 {
		t.Errorf("expected default max_request_size_mb 1, got %d", cfg.MaxRequestSizeMB)
	}
}

// TestLoad_FromConfigFile verifies config.toml values are picked up
func TestLoad_FromConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("BACKEND_BASE_URL", "")

	toml := `backend_base_url = "http://backend.internal:8000"
server_port = 9090
backend_timeout_seconds = 5
forwarding_mode = "pool"
worker_pool_size = 4
job_queue_size = 100
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("write config.toml: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.BackendBaseURL != "http://backend.internal:8000" {
		t.Errorf("expected backend URL from file, got %q", cfg.BackendBaseURL)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("expected server_port 9090, got %d", cfg.ServerPort)
	}
	if cfg.BackendTimeoutSeconds != 5 {
		t.Errorf("expected backend_timeout_seconds 5, got %d", cfg.BackendTimeoutSeconds)
	}
	if cfg.ForwardingMode != "pool" {
		t.Errorf("expected forwarding_mode pool, got %q", cfg.ForwardingMode)
	}
	if cfg.WorkerPoolSize != 4 {
		t.Errorf("expected worker_pool_size 4, got %d", cfg.WorkerPoolSize)
	}
}

// TestLoad_EnvOverridesFile verifies the environment wins over config.toml
func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("BACKEND_BASE_URL", "http://env-wins:7000")

	toml := `backend_base_url = "http://file-loses:8000"` + "\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("write config.toml: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BackendBaseURL != "http://env-wins:7000" {
		t.Errorf("expected env to override file, got %q", cfg.BackendBaseURL)
	}
}

// TestLoad_UnknownForwardingMode_DefaultsToSync verifies normalization
func TestLoad_UnknownForwardingMode_DefaultsToSync(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BACKEND_BASE_URL", "http://localhost:9000")
	t.Setenv("FORWARDING_MODE", "bogus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ForwardingMode != "sync" {
		t.Errorf("expected unknown mode normalized to sync, got %q", cfg.ForwardingMode)
	}
}

// TestLoad_InvalidTimeout_Defaulted verifies the timeout bound is clamped
func TestLoad_InvalidTimeout_Defaulted(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BACKEND_BASE_URL", "http://localhost:9000")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BackendTimeoutSeconds != 10 {
		t.Errorf("expected non-positive timeout clamped to 10, got %d", cfg.BackendTimeoutSeconds)
	}
}
