package sqlite

import (
	"context"
	"fmt"
	"time"

	"forensdesk/internal/domain"
)

// VerifyStats reports a completed chain verification
type VerifyStats struct {
	EventsChecked int
	Duration      time.Duration
}

// ChainError identifies the first event whose digest does not follow
// from its predecessor
type ChainError struct {
	EventID int64
	Want    string
	Got     string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("audit chain broken at event %d: digest %s, expected %s", e.EventID, e.Got, e.Want)
}

// Verify walks the whole trail and recomputes every digest
func (a *Audit) Verify(ctx context.Context) (*VerifyStats, error) {
	start := time.Now()

	events, err := a.List(ctx, domain.AuditQuery{})
	if err != nil {
		return nil, err
	}

	stats := &VerifyStats{}
	prev := ""
	for _, e := range events {
		want := domain.ChainDigest(prev, e)
		if e.Digest != want {
			return stats, &ChainError{EventID: e.ID, Want: want, Got: e.Digest}
		}
		prev = e.Digest
		stats.EventsChecked++
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
