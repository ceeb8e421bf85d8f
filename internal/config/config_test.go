package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FORENSDESK_CONFIG", "")
	t.Setenv("FORENSDESK_UPLOAD_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("expected listen addr %s, got %s", DefaultListenAddr, cfg.ListenAddr)
	}
	if cfg.Sessions.TokenStrategy != "random" {
		t.Errorf("expected random tokens by default, got %s", cfg.Sessions.TokenStrategy)
	}
	if cfg.Sessions.IdleTimeout != 0 {
		t.Errorf("expected no idle timeout by default, got %s", cfg.Sessions.IdleTimeout)
	}
	if !cfg.Sessions.DemoFallback {
		t.Error("expected demo fallback enabled by default")
	}
	want := "file:" + filepath.Join(dir, "audit.db")
	if cfg.AuditDSN != want {
		t.Errorf("expected audit DSN %s, got %s", want, cfg.AuditDSN)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forensdesk.yaml")
	content := `
listen_addr: ":9000"
upload_dir: /srv/evidence
audit_dsn: none
sessions:
  token_strategy: basename
  idle_timeout: 30m
sleuthkit:
  search_limit: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FORENSDESK_CONFIG", path)
	t.Setenv("FORENSDESK_UPLOAD_DIR", "")
	t.Setenv("FORENSDESK_LISTEN", ":9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":9100" {
		t.Errorf("expected env to override file, got %s", cfg.ListenAddr)
	}
	if cfg.UploadDir != "/srv/evidence" {
		t.Errorf("expected upload dir from file, got %s", cfg.UploadDir)
	}
	if cfg.AuditDSN != "none" {
		t.Errorf("expected audit disabled, got %s", cfg.AuditDSN)
	}
	if cfg.Sessions.TokenStrategy != "basename" {
		t.Errorf("expected basename strategy, got %s", cfg.Sessions.TokenStrategy)
	}
	if cfg.Sessions.IdleTimeout != 30*time.Minute {
		t.Errorf("expected 30m idle timeout, got %s", cfg.Sessions.IdleTimeout)
	}
	if cfg.SleuthKit.SearchLimit != 10 {
		t.Errorf("expected search limit 10, got %d", cfg.SleuthKit.SearchLimit)
	}
	if cfg.SleuthKit.CarveLimit != DefaultCarveLimit {
		t.Errorf("expected default carve limit to survive, got %d", cfg.SleuthKit.CarveLimit)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown strategy", "FORENSDESK_TOKEN_STRATEGY", "sequential"},
		{"bad duration", "FORENSDESK_IDLE_TIMEOUT", "soon"},
		{"bad bool", "FORENSDESK_DEMO_FALLBACK", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FORENSDESK_CONFIG", "")
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestUploadDir(t *testing.T) {
	t.Setenv("FORENSDESK_UPLOAD_DIR", "/cases/uploads")
	if got := UploadDir(); got != "/cases/uploads" {
		t.Errorf("expected /cases/uploads, got %s", got)
	}
}
