package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"forensdesk/internal/domain"
	"forensdesk/internal/metrics"
	"forensdesk/internal/ports"
)

// TokenStrategy selects how session tokens are minted
type TokenStrategy int

const (
	// TokenRandom issues unguessable UUIDv4 tokens
	TokenRandom TokenStrategy = iota
	// TokenBasename uses the image's base name; a repeat open of the same
	// name replaces the previous session
	TokenBasename
)

// ParseTokenStrategy maps a config value to a TokenStrategy
func ParseTokenStrategy(s string) (TokenStrategy, error) {
	switch s {
	case "", "random":
		return TokenRandom, nil
	case "basename":
		return TokenBasename, nil
	}
	return TokenRandom, &ValidationError{Field: "tokenStrategy", Message: fmt.Sprintf("unknown token strategy: %s", s)}
}

// FallbackPolicy decides what replaces the primary capability when its
// backend is unavailable. Returning an error refuses the open.
type FallbackPolicy interface {
	Fallback(ctx context.Context, path string, cause error) (ports.ImageCapability, string, error)
}

// DemoFallback substitutes a synthetic capability and explains why
type DemoFallback struct {
	Opener ports.CapabilityOpener
}

func (f DemoFallback) Fallback(ctx context.Context, path string, cause error) (ports.ImageCapability, string, error) {
	capability, err := f.Opener.Open(ctx, path)
	if err != nil {
		return nil, "", err
	}
	warning := fmt.Sprintf("image backend unavailable (%v); showing synthetic %s data, not forensic findings", cause, f.Opener.Name())
	return capability, warning, nil
}

// NoFallback refuses every degraded open
type NoFallback struct{}

func (NoFallback) Fallback(_ context.Context, _ string, cause error) (ports.ImageCapability, string, error) {
	return nil, "", cause
}

// OpenResult is what a caller learns about a new session
type OpenResult struct {
	Token    string `json:"token"`
	Backend  string `json:"backend"`
	Degraded bool   `json:"degraded"`
	Warning  string `json:"warning,omitempty"`
}

// SessionInfo describes a live session
type SessionInfo struct {
	Token      string                `json:"token"`
	EvidenceID string                `json:"evidence_id"`
	Backend    string                `json:"backend"`
	Degraded   bool                  `json:"degraded"`
	OpenedAt   time.Time             `json:"opened_at"`
	LastUsed   time.Time             `json:"last_used"`
	Capability ports.ImageCapability `json:"-"`
}

// Sessions maps opaque tokens to open image capabilities
type Sessions struct {
	mu          sync.Mutex
	opener      ports.CapabilityOpener
	fallback    FallbackPolicy
	strategy    TokenStrategy
	idleTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
	sessions    map[string]*SessionInfo

	// stillOpen is consulted under mu when a token is inserted, so a close
	// that races an open either sees the session or refuses it
	stillOpen func(evidenceID string) bool
}

// SessionOption configures Sessions
type SessionOption func(*Sessions)

// WithFallback sets the policy applied when the primary backend is unavailable
func WithFallback(policy FallbackPolicy) SessionOption {
	return func(s *Sessions) { s.fallback = policy }
}

// WithTokenStrategy sets how tokens are minted
func WithTokenStrategy(strategy TokenStrategy) SessionOption {
	return func(s *Sessions) { s.strategy = strategy }
}

// WithIdleTimeout expires sessions unused for longer than d. Zero disables expiry.
func WithIdleTimeout(d time.Duration) SessionOption {
	return func(s *Sessions) { s.idleTimeout = d }
}

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Sessions) { s.logger = logger }
}

// WithEvidenceCheck makes Open refuse evidence that check reports closed
// at the moment the token is issued
func WithEvidenceCheck(check func(evidenceID string) bool) SessionOption {
	return func(s *Sessions) { s.stillOpen = check }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) SessionOption {
	return func(s *Sessions) { s.now = now }
}

// NewSessions creates a session table backed by opener
func NewSessions(opener ports.CapabilityOpener, opts ...SessionOption) *Sessions {
	s := &Sessions{
		opener:   opener,
		fallback: NoFallback{},
		strategy: TokenRandom,
		now:      time.Now,
		logger:   zap.NewNop(),
		sessions: make(map[string]*SessionInfo),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Open builds a capability for record and issues a token for it.
// A closed record is refused with ErrEvidenceClosed. When the primary
// backend is unavailable the fallback policy may supply a degraded
// capability; any other failure returns a ConstructionError.
func (s *Sessions) Open(ctx context.Context, record domain.EvidenceRecord) (OpenResult, error) {
	if !record.Open {
		return OpenResult{}, fmt.Errorf("%s: %w", record.ID, ErrEvidenceClosed)
	}

	capability, warning, err := s.construct(ctx, record.Path)
	if err != nil {
		return OpenResult{}, err
	}

	token := s.mintToken(record.Path)
	now := s.now()
	info := &SessionInfo{
		Token:      token,
		EvidenceID: record.ID,
		Backend:    capability.Backend(),
		Degraded:   warning != "",
		OpenedAt:   now,
		LastUsed:   now,
		Capability: capability,
	}

	s.mu.Lock()
	if s.stillOpen != nil && !s.stillOpen(record.ID) {
		s.mu.Unlock()
		s.closeCapability(info)
		return OpenResult{}, fmt.Errorf("%s: %w", record.ID, ErrEvidenceClosed)
	}
	replaced := s.sessions[token]
	s.sessions[token] = info
	count := len(s.sessions)
	s.mu.Unlock()

	if replaced != nil {
		s.closeCapability(replaced)
	}

	metrics.RecordSessionOpened(info.Backend, info.Degraded)
	metrics.SetActiveSessions(count)
	s.logger.Info("session opened",
		zap.String("evidence_id", record.ID),
		zap.String("session", domain.ShortToken(token)),
		zap.String("backend", info.Backend),
		zap.Bool("degraded", info.Degraded),
	)

	return OpenResult{
		Token:    token,
		Backend:  info.Backend,
		Degraded: info.Degraded,
		Warning:  warning,
	}, nil
}

func (s *Sessions) construct(ctx context.Context, path string) (ports.ImageCapability, string, error) {
	capability, err := s.opener.Open(ctx, path)
	if err == nil {
		return capability, "", nil
	}

	if !errors.Is(err, ports.ErrBackendUnavailable) {
		return nil, "", &ConstructionError{Path: path, Backend: s.opener.Name(), Err: err}
	}

	s.logger.Warn("primary image backend unavailable",
		zap.String("backend", s.opener.Name()),
		zap.String("path", path),
		zap.Error(err),
	)
	fallback, warning, ferr := s.fallback.Fallback(ctx, path, err)
	if ferr != nil {
		return nil, "", &ConstructionError{Path: path, Backend: s.opener.Name(), Err: ferr}
	}
	return fallback, warning, nil
}

func (s *Sessions) mintToken(path string) string {
	if s.strategy == TokenBasename {
		return filepath.Base(path)
	}
	return uuid.NewString()
}

// Lookup returns the live session for token and marks it used
func (s *Sessions) Lookup(token string) (SessionInfo, error) {
	s.mu.Lock()
	info, ok := s.sessions[token]
	if !ok {
		s.mu.Unlock()
		return SessionInfo{}, ErrInvalidToken
	}

	now := s.now()
	if s.idleTimeout > 0 && now.Sub(info.LastUsed) > s.idleTimeout {
		delete(s.sessions, token)
		count := len(s.sessions)
		s.mu.Unlock()

		metrics.SetActiveSessions(count)
		s.logger.Info("session expired",
			zap.String("session", domain.ShortToken(token)),
			zap.Duration("idle", now.Sub(info.LastUsed)),
		)
		s.closeCapability(info)
		return SessionInfo{}, ErrInvalidToken
	}

	info.LastUsed = now
	snapshot := *info
	s.mu.Unlock()
	return snapshot, nil
}

// Resolve returns the capability bound to token
func (s *Sessions) Resolve(token string) (ports.ImageCapability, error) {
	info, err := s.Lookup(token)
	if err != nil {
		return nil, err
	}
	return info.Capability, nil
}

// Invalidate removes token and closes its capability
func (s *Sessions) Invalidate(token string) error {
	s.mu.Lock()
	info, ok := s.sessions[token]
	if ok {
		delete(s.sessions, token)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrInvalidToken
	}
	metrics.SetActiveSessions(count)
	return s.closeCapability(info)
}

// InvalidateEvidence removes every session opened on evidenceID and
// returns the affected tokens
func (s *Sessions) InvalidateEvidence(evidenceID string) ([]string, error) {
	s.mu.Lock()
	var removed []*SessionInfo
	for token, info := range s.sessions {
		if info.EvidenceID == evidenceID {
			removed = append(removed, info)
			delete(s.sessions, token)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(count)
	return s.closeEach(removed)
}

// CloseAll drops every session, closing each capability once
func (s *Sessions) CloseAll() error {
	s.mu.Lock()
	removed := make([]*SessionInfo, 0, len(s.sessions))
	for _, info := range s.sessions {
		removed = append(removed, info)
	}
	s.sessions = make(map[string]*SessionInfo)
	s.mu.Unlock()

	metrics.SetActiveSessions(0)
	_, err := s.closeEach(removed)
	return err
}

func (s *Sessions) closeEach(infos []*SessionInfo) ([]string, error) {
	var err error
	tokens := make([]string, 0, len(infos))
	for _, info := range infos {
		tokens = append(tokens, info.Token)
		err = multierr.Append(err, s.closeCapability(info))
	}
	sort.Strings(tokens)
	return tokens, err
}

func (s *Sessions) closeCapability(info *SessionInfo) error {
	if err := info.Capability.Close(); err != nil {
		s.logger.Warn("failed to close capability",
			zap.String("session", domain.ShortToken(info.Token)),
			zap.Error(err),
		)
		return fmt.Errorf("close %s: %w", domain.ShortToken(info.Token), err)
	}
	return nil
}

// Count returns the number of live sessions
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// List returns live sessions ordered by opening time
func (s *Sessions) List() []SessionInfo {
	s.mu.Lock()
	infos := make([]SessionInfo, 0, len(s.sessions))
	for _, info := range s.sessions {
		infos = append(infos, *info)
	}
	s.mu.Unlock()

	domain.SortBy(infos, func(i SessionInfo) int64 { return i.OpenedAt.UnixNano() })
	return infos
}
