package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"forensdesk/internal/application"
	"forensdesk/internal/domain"
)

// SearchCommand runs a keyword search over a session's image
type SearchCommand struct {
	ws    *application.Workspace
	Token string
	Query string
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(ws *application.Workspace, token, query string) *SearchCommand {
	return &SearchCommand{
		ws:    ws,
		Token: token,
		Query: query,
	}
}

// Execute runs the search. Name matches are ranked by relevance; raw
// location hits keep backend order after them.
func (c *SearchCommand) Execute(ctx context.Context) (results []domain.SearchResult, err error) {
	defer func(start time.Time) { observe(c.ws, OpSearch, c.Token, start, err) }(time.Now())

	info, err := session(c.ws, c.Token)
	if err != nil {
		return nil, err
	}

	results, err = info.Capability.Search(ctx, c.Query)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	RankResults(results, c.Query)

	audit(ctx, c.ws, info, domain.AuditSearch, fmt.Sprintf("query=%q hits=%d", c.Query, len(results)))
	return results, nil
}

// IsRawHit reports whether r points at an image offset rather than an inode
func IsRawHit(r domain.SearchResult) bool {
	return strings.HasPrefix(r.InodeItem, "offset:")
}

// RankResults stably orders name hits by Relevance, best first, ahead of
// raw hits
func RankResults(results []domain.SearchResult, query string) {
	score := func(r domain.SearchResult) int {
		if IsRawHit(r) {
			return -1
		}
		return Relevance(r.Name, r.Path, query)
	}
	slices.SortStableFunc(results, func(a, b domain.SearchResult) int {
		return score(b) - score(a)
	})
}

// Relevance tiers, highest first. A scattered match scores below
// tierPath, and tighter spans score higher.
const (
	tierExact  = 400
	tierPrefix = 300
	tierName   = 200
	tierPath   = 100
)

// Relevance scores how well a file name and its path match query, ignoring
// case. Zero means no match.
func Relevance(name, path, query string) int {
	name, path, query = strings.ToLower(name), strings.ToLower(path), strings.ToLower(query)
	switch {
	case query == "":
		return 0
	case name == query:
		return tierExact
	case strings.HasPrefix(name, query):
		return tierPrefix
	case strings.Contains(name, query):
		return tierName
	case strings.Contains(path, query):
		return tierPath
	}

	span, ok := subsequenceSpan(name, query)
	if !ok {
		return 0
	}
	return max(tierPath-1-(span-len(query)), 1)
}

// subsequenceSpan finds the query bytes in order within s and returns the
// width of the window they occupy
func subsequenceSpan(s, query string) (int, bool) {
	first, q := -1, 0
	for i := 0; i < len(s) && q < len(query); i++ {
		if s[i] != query[q] {
			continue
		}
		if first < 0 {
			first = i
		}
		q++
		if q == len(query) {
			return i - first + 1, true
		}
	}
	return 0, false
}
