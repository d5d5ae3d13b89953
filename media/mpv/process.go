// Package mpv drives an mpv process over its JSON-IPC socket and exposes
// it as a media element and as an engine driver.
package mpv

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/vidplay/vidplay/constant"
	"github.com/vidplay/vidplay/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// Process is one idle mpv instance waiting for loadfile commands.
type Process struct {
	path       string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	// mu serializes socket writes.
	mu sync.Mutex
}

// NewProcess prepares an mpv process using the binary at path.
func NewProcess(path string) *Process {
	if path == "" {
		path = "mpv"
	}
	return &Process{path: path, exited: make(chan struct{})}
}

// Start launches mpv idle with a private IPC socket and waits for the socket.
func (p *Process) Start(ctx context.Context, title string) error {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	p.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.App, randomBytes))

	// only the socket and the title; the user's mpv.conf decides everything else
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", p.socketPath),
		fmt.Sprintf("--force-media-title=%s", sanitizeTitle(title)),
		fmt.Sprintf("--title=%s", sanitizeTitle(title)),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
	}

	p.cmd = exec.CommandContext(ctx, p.path, args...)
	p.cmd.SysProcAttr = sysProcAttr()
	p.cmd.Stdout = nil
	p.cmd.Stderr = nil
	p.cmd.Stdin = nil

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	p.exited = make(chan struct{})
	go func() {
		_ = p.cmd.Wait()
		close(p.exited)
	}()

	if err := p.waitForSocket(ctx); err != nil {
		select {
		case <-p.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(p.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return nil
}

func (p *Process) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", p.socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", p.socketPath, socketWaitRetries)
}

// Socket returns the IPC socket path.
func (p *Process) Socket() string {
	return p.socketPath
}

// Wait returns a channel closed when mpv exits.
func (p *Process) Wait() <-chan struct{} {
	return p.exited
}

// Running reports whether the process has not exited.
func (p *Process) Running() bool {
	if p.cmd == nil {
		return false
	}
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Close asks mpv to quit, kills it if it does not, and removes the socket.
func (p *Process) Close() error {
	if p.cmd == nil {
		return nil
	}

	_, _ = p.Command("quit")

	select {
	case <-p.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(p.cmd)
	}

	_ = os.Remove(p.socketPath)
	return nil
}
