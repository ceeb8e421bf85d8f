package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"forensdesk/internal/adapters/demo"
	"forensdesk/internal/adapters/tui"
	"forensdesk/internal/config"
	"forensdesk/internal/ports"
	"forensdesk/internal/wiring"
)

func main() {
	toolDir := flag.String("tsk-dir", "", "directory holding the Sleuth Kit tools (default: PATH)")
	demoOnly := flag.Bool("demo", false, "browse the built-in demo image instead of parsing")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: forensdesk [flags] <image>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *toolDir, *demoOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path, toolDir string, demoOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if toolDir != "" {
		cfg.SleuthKit.ToolDir = toolDir
	}
	// the terminal belongs to the TUI
	if cfg.Log.Output == "" || cfg.Log.Output == "stdout" || cfg.Log.Output == "stderr" {
		if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
			return err
		}
		cfg.Log.Output = filepath.Join(cfg.UploadDir, "forensdesk.log")
	}

	lg, err := wiring.Logger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	var opener ports.CapabilityOpener
	if demoOnly {
		opener = demo.Opener{}
	}

	ctx := context.Background()
	rt, err := wiring.Build(ctx, cfg, lg, opener)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	inspector, err := tui.OpenInspector(ctx, rt.Workspace, path)
	if err != nil {
		return err
	}

	app := tui.NewApp(inspector)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	if app.ClosedMessage != "" {
		fmt.Println(app.ClosedMessage)
	}
	return nil
}
