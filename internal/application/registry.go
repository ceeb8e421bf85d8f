package application

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"forensdesk/internal/domain"
)

// Registry assigns evidence identifiers and tracks whether each record is
// still open. One instance is built per process and shared by pointer.
// Identifiers restart at E001 in every registry, so each one carries a
// run ID that scopes its identifiers in the persistent custody trail.
type Registry struct {
	mu      sync.Mutex
	run     string
	counter int
	records map[string]*domain.EvidenceRecord
	now     func() time.Time
}

// NewRegistry creates an empty registry whose first identifier is E001
func NewRegistry() *Registry {
	return &Registry{
		run:     uuid.NewString(),
		records: make(map[string]*domain.EvidenceRecord),
		now:     time.Now,
	}
}

// RunID identifies this registry's run in the custody trail
func (r *Registry) RunID() string {
	return r.run
}

// Register stores path as a new open record and returns its identifier.
// The path is not checked for existence or format.
func (r *Registry) Register(path string) string {
	return r.RegisterWithDigest(path, "")
}

// RegisterWithDigest registers an acquired image together with its SHA-512
func (r *Registry) RegisterWithDigest(path, sha512 string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	id := domain.FormatEvidenceID(r.counter)
	r.records[id] = &domain.EvidenceRecord{
		ID:           id,
		Path:         path,
		Open:         true,
		RegisteredAt: r.now().UTC(),
		SHA512:       sha512,
	}
	return id
}

// Resolve returns a copy of the record for id
func (r *Registry) Resolve(id string) (domain.EvidenceRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return domain.EvidenceRecord{}, false
	}
	return *rec, true
}

// Close marks a record closed. It reports true for every known id, even
// one that was already closed, and false for unknown ids.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return false
	}
	rec.Open = false
	return true
}

// IsOpen reports whether id is registered and not closed
func (r *Registry) IsOpen(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	return ok && rec.Open
}

// List returns every record ordered by identifier
func (r *Registry) List() []domain.EvidenceRecord {
	r.mu.Lock()
	records := make([]domain.EvidenceRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, *rec)
	}
	r.mu.Unlock()

	domain.SortEvidence(records)
	return records
}
