package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"forensdesk/internal/application"
	"forensdesk/internal/domain"
)

// CarveCommand recovers files from a session's image by signature
type CarveCommand struct {
	ws       *application.Workspace
	Token    string
	FileType string
}

// NewCarveCommand creates a new CarveCommand. An empty fileType means "all".
func NewCarveCommand(ws *application.Workspace, token, fileType string) *CarveCommand {
	if strings.TrimSpace(fileType) == "" {
		fileType = application.CarveAll
	}
	return &CarveCommand{ws: ws, Token: token, FileType: fileType}
}

// Execute runs the carve. A wiped image yields an empty result, never an error.
func (c *CarveCommand) Execute(ctx context.Context) (carved []domain.CarvedFile, err error) {
	defer func(start time.Time) { observe(c.ws, OpCarve, c.Token, start, err) }(time.Now())

	info, err := session(c.ws, c.Token)
	if err != nil {
		return nil, err
	}

	carved, err = info.Capability.Carve(ctx, c.FileType)
	if err != nil {
		if !info.Capability.IsWiped() || ctx.Err() != nil {
			return nil, err
		}
		c.ws.Logger.Info("carve on wiped image failed, returning no results", zap.Error(err))
		carved = nil
	}
	if carved == nil {
		carved = []domain.CarvedFile{}
	}

	audit(ctx, c.ws, info, domain.AuditCarve, fmt.Sprintf("type=%s found=%d", c.FileType, len(carved)))
	return carved, nil
}
