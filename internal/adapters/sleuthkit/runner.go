package sleuthkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"forensdesk/internal/ports"
)

// RequiredTools are the Sleuth Kit programs the backend drives
var RequiredTools = []string{"mmls", "fsstat", "fls", "icat", "blkls"}

// Runner executes Sleuth Kit tools
type Runner interface {
	Run(ctx context.Context, tool string, args ...string) ([]byte, error)
	Stream(ctx context.Context, tool string, args ...string) (io.ReadCloser, error)
}

// ToolError carries a failed tool's stderr
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, msg)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ExecRunner runs tools from Dir, or from PATH when Dir is empty
type ExecRunner struct {
	Dir string
}

// Lookup resolves the executable for tool
func (r ExecRunner) Lookup(tool string) (string, error) {
	if r.Dir == "" {
		path, err := exec.LookPath(tool)
		if err != nil {
			return "", fmt.Errorf("%s: %w", tool, ports.ErrBackendUnavailable)
		}
		return path, nil
	}

	path := filepath.Join(r.Dir, tool)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
		return "", fmt.Errorf("%s not found in %s: %w", tool, r.Dir, ports.ErrBackendUnavailable)
	}
	return path, nil
}

// Check verifies every required tool is installed
func (r ExecRunner) Check() error {
	for _, tool := range RequiredTools {
		if _, err := r.Lookup(tool); err != nil {
			return err
		}
	}
	return nil
}

func (r ExecRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	path, err := r.Lookup(tool)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ToolError{Tool: tool, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

func (r ExecRunner) Stream(ctx context.Context, tool string, args ...string) (io.ReadCloser, error) {
	path, err := r.Lookup(tool)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, &ToolError{Tool: tool, Err: err}
	}
	return &cmdReader{ReadCloser: stdout, cmd: cmd, tool: tool, stderr: &stderr}, nil
}

// cmdReader waits for the process when the stream is closed
type cmdReader struct {
	io.ReadCloser
	cmd    *exec.Cmd
	tool   string
	stderr *bytes.Buffer
}

func (c *cmdReader) Close() error {
	// Drain so the tool is not killed by SIGPIPE when the caller stops early
	_, _ = io.Copy(io.Discard, c.ReadCloser)
	if err := c.cmd.Wait(); err != nil {
		return &ToolError{Tool: c.tool, Stderr: c.stderr.String(), Err: err}
	}
	return nil
}

// notFoundHint reports whether a tool failure means the inode or
// directory does not exist rather than a broken image
func notFoundHint(err error) bool {
	var terr *ToolError
	if !errors.As(err, &terr) {
		return false
	}
	msg := strings.ToLower(terr.Stderr)
	for _, hint := range []string{"invalid inode", "inode value", "not a directory", "error finding inode", "invalid argument"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
