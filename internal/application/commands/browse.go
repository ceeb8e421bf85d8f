package commands

import (
	"context"
	"time"

	"forensdesk/internal/application"
	"forensdesk/internal/domain"
)

// ListDirectoryCommand lists one directory of a session's image
type ListDirectoryCommand struct {
	ws          *application.Workspace
	Token       string
	StartOffset int64
	Inode       *uint64 // nil lists the partition root
}

// NewListDirectoryCommand creates a new ListDirectoryCommand
func NewListDirectoryCommand(ws *application.Workspace, token string, startOffset int64, inode *uint64) *ListDirectoryCommand {
	return &ListDirectoryCommand{
		ws:          ws,
		Token:       token,
		StartOffset: startOffset,
		Inode:       inode,
	}
}

// Validate checks the listing parameters
func (c *ListDirectoryCommand) Validate() error {
	return application.ValidateStartOffset(c.StartOffset)
}

// Execute runs the listing
func (c *ListDirectoryCommand) Execute(ctx context.Context) (entries []domain.DirectoryEntry, err error) {
	defer func(start time.Time) { observe(c.ws, OpList, c.Token, start, err) }(time.Now())

	info, err := session(c.ws, c.Token)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	entries, err = info.Capability.ListDirectory(ctx, c.StartOffset, c.Inode)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.DirectoryEntry{}
	}
	return entries, nil
}

// PartitionsResult describes the volumes of a session's image
type PartitionsResult struct {
	Partitions []domain.Partition `json:"partitions"`
	Wiped      bool               `json:"wiped"`
	Backend    string             `json:"backend"`
	Degraded   bool               `json:"degraded"`
	EvidenceID string             `json:"evidence_id"`
}

// ListPartitionsCommand reports the partition table of a session's image
type ListPartitionsCommand struct {
	ws    *application.Workspace
	Token string
}

// NewListPartitionsCommand creates a new ListPartitionsCommand
func NewListPartitionsCommand(ws *application.Workspace, token string) *ListPartitionsCommand {
	return &ListPartitionsCommand{ws: ws, Token: token}
}

// Execute runs the partition listing
func (c *ListPartitionsCommand) Execute(ctx context.Context) (result *PartitionsResult, err error) {
	defer func(start time.Time) { observe(c.ws, OpPartitions, c.Token, start, err) }(time.Now())

	info, err := session(c.ws, c.Token)
	if err != nil {
		return nil, err
	}

	parts, err := info.Capability.ListPartitions(ctx)
	if err != nil {
		return nil, err
	}
	if parts == nil {
		parts = []domain.Partition{}
	}
	return &PartitionsResult{
		Partitions: parts,
		Wiped:      info.Capability.IsWiped(),
		Backend:    info.Backend,
		Degraded:   info.Degraded,
		EvidenceID: info.EvidenceID,
	}, nil
}
