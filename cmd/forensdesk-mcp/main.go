package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "forensdesk/internal/adapters/mcp"
	"forensdesk/internal/config"
	"forensdesk/internal/wiring"
)

func main() {
	toolDir := flag.String("tsk-dir", "", "directory holding the Sleuth Kit tools (default: PATH)")
	uploadDir := flag.String("upload-dir", config.UploadDir(), "directory acquired images are stored in")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("forensdesk-mcp: %v", err)
	}
	if *toolDir != "" {
		cfg.SleuthKit.ToolDir = *toolDir
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "upload-dir" {
			cfg.UploadDir = config.ExpandHome(*uploadDir)
		}
	})
	// stdout carries the protocol
	if cfg.Log.Output == "" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}

	lg, err := wiring.Logger(cfg)
	if err != nil {
		log.Fatalf("forensdesk-mcp: %v", err)
	}

	rt, err := wiring.Build(context.Background(), cfg, lg, nil)
	if err != nil {
		log.Fatalf("forensdesk-mcp: %v", err)
	}
	defer func() { _ = rt.Close() }()

	mcpServer := server.NewMCPServer(
		"forensdesk-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, rt.Workspace)
	mcpadapter.RegisterWriteTools(mcpServer, rt.Workspace, rt.Acquirer)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Printf("forensdesk-mcp: %v", err)
	}
}
