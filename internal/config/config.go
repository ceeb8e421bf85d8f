package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DefaultUploadDir     = "~/.forensdesk/uploads"
	DefaultListenAddr    = ":8080"
	DefaultTokenStrategy = "random"
	DefaultCarveLimit    = 256 << 20
	DefaultSearchLimit   = 500
)

// Config is the resolved runtime configuration. Values come from the
// YAML file named by FORENSDESK_CONFIG, then FORENSDESK_* environment
// variables override them.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"` // empty serves /metrics on the API listener
	UploadDir   string `yaml:"upload_dir"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`

	AuditDSN string `yaml:"audit_dsn"` // "none" disables the custody trail

	Sessions struct {
		TokenStrategy string        `yaml:"token_strategy"` // random or basename
		IdleTimeout   time.Duration `yaml:"idle_timeout"`
		DemoFallback  bool          `yaml:"demo_fallback"`
	} `yaml:"sessions"`

	SleuthKit struct {
		ToolDir     string `yaml:"tool_dir"`
		CarveLimit  int64  `yaml:"carve_limit"`
		SearchLimit int    `yaml:"search_limit"`
	} `yaml:"sleuthkit"`

	S3 struct {
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		PathStyle bool   `yaml:"path_style"`
	} `yaml:"s3"`

	WebDAV struct {
		URL      string `yaml:"url"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"webdav"`
}

// Default returns the configuration used when no file or env var is set
func Default() *Config {
	cfg := &Config{
		ListenAddr: DefaultListenAddr,
		UploadDir:  DefaultUploadDir,
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Sessions.TokenStrategy = DefaultTokenStrategy
	cfg.Sessions.DemoFallback = true
	cfg.SleuthKit.CarveLimit = DefaultCarveLimit
	cfg.SleuthKit.SearchLimit = DefaultSearchLimit
	cfg.S3.Region = "us-east-1"
	return cfg
}

// Load reads the optional YAML file and applies env overrides
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("FORENSDESK_CONFIG"); path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.UploadDir = ExpandHome(cfg.UploadDir)
	if cfg.AuditDSN == "" {
		cfg.AuditDSN = "file:" + filepath.Join(cfg.UploadDir, "audit.db")
	}

	switch cfg.Sessions.TokenStrategy {
	case "random", "basename":
	default:
		return nil, fmt.Errorf("unknown token strategy: %s", cfg.Sessions.TokenStrategy)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.ListenAddr, "FORENSDESK_LISTEN")
	setString(&cfg.MetricsAddr, "FORENSDESK_METRICS_LISTEN")
	setString(&cfg.UploadDir, "FORENSDESK_UPLOAD_DIR")
	setString(&cfg.Log.Level, "FORENSDESK_LOG_LEVEL")
	setString(&cfg.Log.Format, "FORENSDESK_LOG_FORMAT")
	setString(&cfg.Log.Output, "FORENSDESK_LOG_OUTPUT")
	setString(&cfg.AuditDSN, "FORENSDESK_AUDIT_DSN")
	setString(&cfg.Sessions.TokenStrategy, "FORENSDESK_TOKEN_STRATEGY")
	setString(&cfg.SleuthKit.ToolDir, "FORENSDESK_TSK_DIR")
	setString(&cfg.S3.Region, "FORENSDESK_S3_REGION")
	setString(&cfg.S3.Endpoint, "FORENSDESK_S3_ENDPOINT")
	setString(&cfg.S3.AccessKey, "FORENSDESK_S3_ACCESS_KEY")
	setString(&cfg.S3.SecretKey, "FORENSDESK_S3_SECRET_KEY")
	setString(&cfg.WebDAV.URL, "FORENSDESK_WEBDAV_URL")
	setString(&cfg.WebDAV.User, "FORENSDESK_WEBDAV_USER")
	setString(&cfg.WebDAV.Password, "FORENSDESK_WEBDAV_PASSWORD")

	if v := os.Getenv("FORENSDESK_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FORENSDESK_IDLE_TIMEOUT: %w", err)
		}
		cfg.Sessions.IdleTimeout = d
	}
	if v := os.Getenv("FORENSDESK_DEMO_FALLBACK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FORENSDESK_DEMO_FALLBACK: %w", err)
		}
		cfg.Sessions.DemoFallback = b
	}
	if v := os.Getenv("FORENSDESK_S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FORENSDESK_S3_PATH_STYLE: %w", err)
		}
		cfg.S3.PathStyle = b
	}
	if v := os.Getenv("FORENSDESK_CARVE_LIMIT"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FORENSDESK_CARVE_LIMIT: %w", err)
		}
		cfg.SleuthKit.CarveLimit = n
	}
	if v := os.Getenv("FORENSDESK_SEARCH_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORENSDESK_SEARCH_LIMIT: %w", err)
		}
		cfg.SleuthKit.SearchLimit = n
	}
	return nil
}

func setString(dst *string, key string) {
	if env := os.Getenv(key); env != "" {
		*dst = env
	}
}

// UploadDir returns the upload directory from FORENSDESK_UPLOAD_DIR,
// falling back to DefaultUploadDir.
func UploadDir() string {
	if env := os.Getenv("FORENSDESK_UPLOAD_DIR"); env != "" {
		return ExpandHome(env)
	}
	return ExpandHome(DefaultUploadDir)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
