package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.24\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "FIELDOPS_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "tabular")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("FIELDOPS_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("FIELDOPS_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestUpstreamOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    UpstreamOptions
		wantErr bool
	}{
		{"valid", UpstreamOptions{BaseURL: "http://api.local", RequestTimeout: 20 * time.Second}, false},
		{"empty base url", UpstreamOptions{BaseURL: "", RequestTimeout: 20 * time.Second}, true},
		{"timeout too small", UpstreamOptions{BaseURL: "http://api.local", RequestTimeout: 100 * time.Millisecond}, true},
		{"timeout too large", UpstreamOptions{BaseURL: "http://api.local", RequestTimeout: time.Minute}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRateLimitOptions_Validate(t *testing.T) {
	valid := RateLimitOptions{Enabled: true, GlobalRPS: 100, Storage: "memory"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invalid := RateLimitOptions{Enabled: true, GlobalRPS: 100, Storage: "redis"}
	if err := invalid.Validate(); err == nil {
		t.Fatal("expected error for redis storage without URL")
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
