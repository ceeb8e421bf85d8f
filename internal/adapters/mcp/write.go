package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"forensdesk/internal/application"
	"forensdesk/internal/application/commands"
	"forensdesk/internal/ports"
)

// RegisterWriteTools adds the tools that change evidence or session state.
// acquire_evidence is only offered when acquirer is non-nil.
func RegisterWriteTools(s *server.MCPServer, ws *application.Workspace, acquirer ports.EvidenceAcquirer) {
	s.AddTool(registerTool(), registerHandler(ws))
	s.AddTool(openSessionTool(), openSessionHandler(ws))
	s.AddTool(openImageTool(), openImageHandler(ws))
	s.AddTool(closeEvidenceTool(), closeEvidenceHandler(ws))
	s.AddTool(invalidateTool(), invalidateHandler(ws))
	if acquirer != nil {
		s.AddTool(acquireTool(), acquireHandler(ws, acquirer))
	}
}

// --- register_evidence ---

func registerTool() mcp.Tool {
	return mcp.NewTool("register_evidence",
		mcp.WithDescription("Register a disk or file-system image already present on this host. Returns an evidence ID such as E001."),
		mcp.WithString("path",
			mcp.Description("Absolute path of the image"),
			mcp.Required(),
		),
	)
}

func registerHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := commands.NewRegisterEvidenceCommand(ws, req.GetString("path", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(res.Message), nil
	}
}

// --- open_session ---

func openSessionTool() mcp.Tool {
	return mcp.NewTool("open_session",
		mcp.WithDescription("Open a browsing session on registered evidence. Returns the session token used by the read tools."),
		mcp.WithString("evidence_id",
			mcp.Description("Evidence ID (e.g. E001)"),
			mcp.Required(),
		),
	)
}

func openSessionHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := commands.NewOpenSessionCommand(ws, req.GetString("evidence_id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatOpen(req.GetString("evidence_id", ""), res)), nil
	}
}

// --- open_image ---

func openImageTool() mcp.Tool {
	return mcp.NewTool("open_image",
		mcp.WithDescription("Register an image and open a session on it in one step."),
		mcp.WithString("path",
			mcp.Description("Absolute path of the image"),
			mcp.Required(),
		),
	)
}

func openImageHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := commands.OpenImage(ctx, ws, req.GetString("path", ""))
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatOpen(res.EvidenceID, &res.OpenResult)), nil
	}
}

// --- close_evidence ---

func closeEvidenceTool() mcp.Tool {
	return mcp.NewTool("close_evidence",
		mcp.WithDescription("Close evidence and end every session opened on it. Closed evidence cannot be reopened."),
		mcp.WithString("evidence_id",
			mcp.Description("Evidence ID (e.g. E001)"),
			mcp.Required(),
		),
	)
}

func closeEvidenceHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := commands.NewCloseEvidenceCommand(ws, req.GetString("evidence_id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(res.Message), nil
	}
}

// --- invalidate_session ---

func invalidateTool() mcp.Tool {
	return mcp.NewTool("invalidate_session",
		mcp.WithDescription("End one session. The evidence stays registered."),
		tokenParam(),
	)
}

func invalidateHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := commands.NewInvalidateSessionCommand(ws, req.GetString("token", "")).Execute(ctx); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Session ended."), nil
	}
}

// --- acquire_evidence ---

func acquireTool() mcp.Tool {
	return mcp.NewTool("acquire_evidence",
		mcp.WithDescription("Copy an image into local storage, record its SHA-512 digest, register it and open a session."),
		mcp.WithString("ref",
			mcp.Description("Image reference: an absolute path, webdav://path or s3://bucket/key"),
			mcp.Required(),
		),
	)
}

func acquireHandler(ws *application.Workspace, acquirer ports.EvidenceAcquirer) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := commands.NewAcquireEvidenceCommand(ws, acquirer, req.GetString("ref", ""), true).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		text := fmt.Sprintf("Acquired %s to %s\nSHA-512: %s\nContent type: %s\n%s",
			res.Acquisition.Source, res.Acquisition.Path, res.Acquisition.SHA512,
			res.Acquisition.ContentType, formatOpen(res.EvidenceID, res.Session))
		return mcp.NewToolResultText(text), nil
	}
}

func formatOpen(evidenceID string, res *application.OpenResult) string {
	text := fmt.Sprintf("Evidence %s open with token %s (backend %s)", evidenceID, res.Token, res.Backend)
	if res.Degraded {
		text += "\nWARNING: " + res.Warning
	}
	return text
}
