// Package acquire copies evidence images into the upload directory,
// computing their SHA-512 digest and content type on the way in.
package acquire

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"forensdesk/internal/domain"
	"forensdesk/internal/metrics"
	"forensdesk/internal/ports"
)

var (
	// ErrUnsupportedFile is returned for names without an accepted image extension
	ErrUnsupportedFile = errors.New("unsupported evidence file type")
	// ErrUnknownScheme is returned for references no source handles
	ErrUnknownScheme = errors.New("no evidence source for scheme")
)

// Acquirer implements ports.EvidenceAcquirer over a set of sources
type Acquirer struct {
	dir     string
	sources map[string]ports.EvidenceSource
	lg      *zap.Logger
}

var _ ports.EvidenceAcquirer = (*Acquirer)(nil)

// New creates an acquirer storing into dir
func New(dir string, lg *zap.Logger, sources ...ports.EvidenceSource) *Acquirer {
	if lg == nil {
		lg = zap.NewNop()
	}
	a := &Acquirer{
		dir:     dir,
		sources: make(map[string]ports.EvidenceSource, len(sources)),
		lg:      lg,
	}
	for _, s := range sources {
		a.sources[s.Scheme()] = s
	}
	return a
}

// Schemes lists the reference schemes this acquirer can fetch
func (a *Acquirer) Schemes() []string {
	schemes := make([]string, 0, len(a.sources))
	for s := range a.sources {
		schemes = append(schemes, s)
	}
	return schemes
}

// Acquire fetches ref through the source owning its scheme
func (a *Acquirer) Acquire(ctx context.Context, ref string) (*domain.Acquisition, error) {
	scheme, _ := SplitRef(ref)
	source, ok := a.sources[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}

	body, name, err := source.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if !domain.IsAllowedEvidenceFile(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}
	return a.store(ctx, name, ref, scheme, body)
}

// Store saves an uploaded body under a sanitized form of name
func (a *Acquirer) Store(ctx context.Context, name string, body io.Reader) (*domain.Acquisition, error) {
	if !domain.IsAllowedEvidenceFile(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}
	return a.store(ctx, name, "upload", "upload", body)
}

func (a *Acquirer) store(ctx context.Context, name, ref, source string, body io.Reader) (*domain.Acquisition, error) {
	start := time.Now()
	lg := a.lg.With(zap.String("source", ref), zap.String("name", name))

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	f, dest, err := createUnique(a.dir, domain.SafeFileName(name))
	if err != nil {
		return nil, err
	}

	acq := &domain.Acquisition{Path: dest, Source: ref}
	readers := splitReader(ctx, body, 3)

	var (
		wg                        sync.WaitGroup
		copyErr, hashErr, typeErr error
	)

	// Store the bytes
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer readers[0].Close()
		acq.Size, copyErr = io.Copy(f, readers[0])
	}()

	// Calculate SHA512 checksum
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer readers[1].Close()
		hash := sha512.New()
		if _, hashErr = io.Copy(hash, readers[1]); hashErr == nil {
			acq.SHA512 = fmt.Sprintf("%x", hash.Sum(nil))
		}
	}()

	// Detect content type from the leading bytes, then let the pipe go
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer readers[2].Close()
		mt, err := mimetype.DetectReader(readers[2])
		if err != nil {
			typeErr = err
			return
		}
		acq.ContentType = mt.String()
	}()

	wg.Wait()

	if typeErr != nil {
		lg.Warn("failed to detect content type", zap.Error(typeErr))
		acq.ContentType = "application/octet-stream"
	}
	err = multierr.Combine(copyErr, hashErr, f.Sync(), f.Close())
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to store %s: %w", name, err)
	}

	metrics.RecordAcquired(source, acq.Size)
	lg.Info("evidence acquired",
		zap.String("path", dest),
		zap.Int64("size", acq.Size),
		zap.String("sha512", acq.SHA512),
		zap.String("content_type", acq.ContentType),
		zap.Duration("duration", time.Since(start)),
	)
	return acq, nil
}

// createUnique creates name in dir, adding a numeric suffix when an
// earlier acquisition already holds the name
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		dest := filepath.Join(dir, candidate)
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, dest, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("failed to create %s: %w", dest, err)
		}
	}
	return nil, "", fmt.Errorf("too many files named %s in %s", name, dir)
}
