package mcp

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"forensdesk/internal/application"
	"forensdesk/internal/application/commands"
	"forensdesk/internal/domain"
)

// RegisterReadTools adds the read-only image tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, ws *application.Workspace) {
	s.AddTool(partitionsTool(), partitionsHandler(ws))
	s.AddTool(listTool(), listHandler(ws))
	s.AddTool(readFileTool(), readFileHandler(ws))
	s.AddTool(previewTool(), previewHandler(ws))
	s.AddTool(carveTool(), carveHandler(ws))
	s.AddTool(searchTool(), searchHandler(ws))
	s.AddTool(listEvidenceTool(), listEvidenceHandler(ws))
	s.AddTool(auditTool(), auditHandler(ws))
}

func tokenParam() mcp.ToolOption {
	return mcp.WithString("token",
		mcp.Description("Session token returned by open_session or open_image"),
		mcp.Required(),
	)
}

func offsetParam() mcp.ToolOption {
	return mcp.WithNumber("start_offset",
		mcp.Description("Start sector of the partition's file system. Defaults to 0."),
	)
}

// --- partitions ---

func partitionsTool() mcp.Tool {
	return mcp.NewTool("partitions",
		mcp.WithDescription("Show the partition table of a session's image and whether the image is wiped."),
		tokenParam(),
	)
}

func partitionsHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := commands.NewListPartitionsCommand(ws, req.GetString("token", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Evidence %s (backend %s)\n", res.EvidenceID, res.Backend)
		if res.Wiped {
			sb.WriteString("Image is wiped: no partition table or file system found.\n")
		}
		for _, p := range res.Partitions {
			fmt.Fprintf(&sb, "%d  %-24s start=%d  size=%d\n", p.Index, p.Label, p.StartOffset, p.Size)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- list_directory ---

func listTool() mcp.Tool {
	return mcp.NewTool("list_directory",
		mcp.WithDescription("List live files and directories. Without an inode lists the file system root."),
		tokenParam(),
		offsetParam(),
		mcp.WithNumber("inode",
			mcp.Description("Inode of the directory to list. Omit for the root."),
		),
	)
}

func listHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offset, err := int64Arg(req, "start_offset")
		if err != nil {
			return toolError(err)
		}
		var inode *uint64
		if _, ok := req.GetArguments()["inode"]; ok {
			n, err := inodeArg(req)
			if err != nil {
				return toolError(err)
			}
			inode = &n
		}

		entries, err := commands.NewListDirectoryCommand(ws, req.GetString("token", ""), offset, inode).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(entries, formatEntry)
	}
}

// --- read_file ---

func readFileTool() mcp.Tool {
	return mcp.NewTool("read_file",
		mcp.WithDescription("Read a file by inode. Text is returned as is; binary content as hex of its first 1000 bytes."),
		tokenParam(),
		offsetParam(),
		mcp.WithNumber("inode",
			mcp.Description("Inode of the file"),
			mcp.Required(),
		),
	)
}

func readFileHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offset, err := int64Arg(req, "start_offset")
		if err != nil {
			return toolError(err)
		}
		inode, err := inodeArg(req)
		if err != nil {
			return toolError(err)
		}

		view, err := commands.NewViewFileCommand(ws, req.GetString("token", ""), inode, offset).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatView(view)), nil
	}
}

// --- preview_file ---

func previewTool() mcp.Tool {
	return mcp.NewTool("preview_file",
		mcp.WithDescription("Detect the type of a file by its content and show its contents."),
		tokenParam(),
		offsetParam(),
		mcp.WithNumber("inode",
			mcp.Description("Inode of the file"),
			mcp.Required(),
		),
	)
}

func previewHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offset, err := int64Arg(req, "start_offset")
		if err != nil {
			return toolError(err)
		}
		inode, err := inodeArg(req)
		if err != nil {
			return toolError(err)
		}

		res, err := commands.NewPreviewFileCommand(ws, req.GetString("token", ""), inode, offset).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		text := fmt.Sprintf("Type: %s (.%s) %s\n%s", res.FileType.Type, res.FileType.Extension,
			res.FileType.Description, formatView(&res.ViewResult))
		return mcp.NewToolResultText(text), nil
	}
}

// --- carve ---

func carveTool() mcp.Tool {
	return mcp.NewTool("carve",
		mcp.WithDescription("Recover files from unallocated space by signature."),
		tokenParam(),
		mcp.WithString("type",
			mcp.Description("File type to recover: all, a category such as image, or an extension such as jpg. Defaults to all."),
		),
	)
}

func carveHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		files, err := commands.NewCarveCommand(ws, req.GetString("token", ""), req.GetString("type", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(files, formatCarved)
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search file names and raw image content for a keyword. An empty query returns nothing."),
		tokenParam(),
		mcp.WithString("query",
			mcp.Description("Keyword"),
		),
	)
}

func searchHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		results, err := commands.NewSearchCommand(ws, req.GetString("token", ""), req.GetString("query", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  %s  %s\n", r.InodeItem, r.Size, r.Path)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- list_evidence ---

func listEvidenceTool() mcp.Tool {
	return mcp.NewTool("list_evidence",
		mcp.WithDescription("List registered evidence and whether it is still open."),
	)
}

func listEvidenceHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := commands.NewListEvidenceCommand(ws).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(records, formatRecord)
	}
}

// --- audit_trail ---

func auditTool() mcp.Tool {
	return mcp.NewTool("audit_trail",
		mcp.WithDescription("Show the chain-of-custody events of an evidence item, or of all evidence."),
		mcp.WithString("evidence_id",
			mcp.Description("Evidence ID (e.g. E001). Omit for the whole trail."),
		),
	)
}

func auditHandler(ws *application.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		events, err := commands.NewAuditTrailCommand(ws, req.GetString("evidence_id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(events, formatEvent)
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func numberArg(req mcp.CallToolRequest, name string) (float64, bool, error) {
	raw, ok := req.GetArguments()[name]
	if !ok || raw == nil {
		return 0, false, nil
	}
	v, ok := raw.(float64)
	if !ok || v != math.Trunc(v) {
		return 0, true, fmt.Errorf("%s must be an integer", name)
	}
	return v, true, nil
}

func int64Arg(req mcp.CallToolRequest, name string) (int64, error) {
	v, _, err := numberArg(req, name)
	return int64(v), err
}

func inodeArg(req mcp.CallToolRequest) (uint64, error) {
	v, ok, err := numberArg(req, "inode")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("inode is required")
	}
	if v < 0 {
		return 0, fmt.Errorf("inode must not be negative")
	}
	return uint64(v), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatEntry(e domain.DirectoryEntry) string {
	kind := "f"
	if e.IsDirectory {
		kind = "d"
	}
	return fmt.Sprintf("%d  %s  %8s  %s  %s", e.InodeNumber, kind, e.Size, e.Modified, e.Name)
}

func formatCarved(f domain.CarvedFile) string {
	return fmt.Sprintf("%d  %s  %8s  offset=%d  %s", f.InodeNumber, f.Extension, f.Size, f.Offset, f.Path)
}

func formatRecord(r domain.EvidenceRecord) string {
	state := "open"
	if !r.Open {
		state = "closed"
	}
	return fmt.Sprintf("%s  %s  %s", r.ID, state, r.Path)
}

func formatEvent(e domain.AuditEvent) string {
	return fmt.Sprintf("%s  %s  %s  %s  %s", domain.FormatTimestamp(e.Time), e.EvidenceID, e.Action, e.Session, e.Detail)
}

func formatView(v *commands.ViewResult) string {
	if v.IsText {
		return v.Content
	}
	return fmt.Sprintf("Binary content, %d bytes. Hex of the first %d bytes:\n%s",
		v.FileSize, min(v.FileSize, domain.HexPreviewLimit), v.Content)
}
