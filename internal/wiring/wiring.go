// Package wiring assembles the adapters named by a Config into a running
// workspace. Every binary starts here.
package wiring

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"forensdesk/internal/adapters/acquire"
	"forensdesk/internal/adapters/custody"
	"forensdesk/internal/adapters/demo"
	"forensdesk/internal/adapters/sleuthkit"
	"forensdesk/internal/application"
	"forensdesk/internal/config"
	"forensdesk/internal/logging"
	"forensdesk/internal/ports"
)

// Runtime holds the assembled process state
type Runtime struct {
	Config    *config.Config
	Logger    *zap.Logger
	Workspace *application.Workspace
	Acquirer  *acquire.Acquirer
}

// Logger builds the process logger from cfg and installs it globally
func Logger(cfg *config.Config) (*zap.Logger, error) {
	lc := logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.Output,
	}
	if err := logging.Init(lc); err != nil {
		return nil, fmt.Errorf("failed to init logging: %w", err)
	}
	return logging.L(), nil
}

// Sessions builds the session manager described by cfg
func Sessions(cfg *config.Config, opener ports.CapabilityOpener, lg *zap.Logger) (*application.Sessions, error) {
	strategy, err := application.ParseTokenStrategy(cfg.Sessions.TokenStrategy)
	if err != nil {
		return nil, err
	}

	var fallback application.FallbackPolicy = application.NoFallback{}
	if cfg.Sessions.DemoFallback {
		fallback = application.DemoFallback{Opener: demo.Opener{}}
	}

	return application.NewSessions(opener,
		application.WithTokenStrategy(strategy),
		application.WithFallback(fallback),
		application.WithIdleTimeout(cfg.Sessions.IdleTimeout),
		application.WithLogger(lg),
	), nil
}

// Sources lists the evidence sources cfg enables. Local paths are always
// accepted; WebDAV needs a share URL.
func Sources(ctx context.Context, cfg *config.Config) ([]ports.EvidenceSource, error) {
	sources := []ports.EvidenceSource{acquire.LocalSource{}}

	if cfg.WebDAV.URL != "" {
		sources = append(sources, acquire.NewWebDAVSource(acquire.WebDAVConfig{
			BaseURL:  cfg.WebDAV.URL,
			Username: cfg.WebDAV.User,
			Password: cfg.WebDAV.Password,
		}))
	}

	s3Source, err := acquire.NewS3Source(ctx, acquire.S3Config{
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		PathStyle: cfg.S3.PathStyle,
	})
	if err != nil {
		return nil, err
	}
	return append(sources, s3Source), nil
}

// Build wires a runtime from cfg. opener overrides the Sleuth Kit backend
// when non-nil.
func Build(ctx context.Context, cfg *config.Config, lg *zap.Logger, opener ports.CapabilityOpener) (*Runtime, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	if opener == nil {
		opener = sleuthkit.NewOpener(cfg.SleuthKit.ToolDir, cfg.SleuthKit.CarveLimit, cfg.SleuthKit.SearchLimit, lg)
	}

	sessions, err := Sessions(cfg, opener, lg)
	if err != nil {
		return nil, err
	}

	audit, err := custody.Open(ctx, cfg.AuditDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit trail: %w", err)
	}
	if audit == nil {
		lg.Warn("custody audit trail disabled")
	}

	sources, err := Sources(ctx, cfg)
	if err != nil {
		if audit != nil {
			err = multierr.Append(err, audit.Close())
		}
		return nil, err
	}

	return &Runtime{
		Config:    cfg,
		Logger:    lg,
		Workspace: application.NewWorkspace(application.NewRegistry(), sessions, audit, lg),
		Acquirer:  acquire.New(cfg.UploadDir, lg, sources...),
	}, nil
}

// Close ends every session and closes the audit trail
func (r *Runtime) Close() error {
	return r.Workspace.Close()
}
