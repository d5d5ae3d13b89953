package mpv

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"
)

type ipcCommand struct {
	Command []any `json:"command"`
}

type ipcResponse struct {
	Data  any    `json:"data"`
	Error string `json:"error"`
}

const (
	maxAttempts  = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = time.Second
	readBufSize  = 4096
)

// errPropertyUnavailable is what mpv answers for a property of nothing loaded.
const errPropertyUnavailable = "property unavailable"

// Command sends one IPC command, retrying transient connection errors.
func (p *Process) Command(args ...any) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := send(p.socketPath, args)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// mpv answered; retrying cannot change its mind
		if strings.HasPrefix(err.Error(), "mpv error") {
			break
		}
	}

	return nil, fmt.Errorf("ipc %v: %w", args[0], lastErr)
}

// Set sets a property.
func (p *Process) Set(property string, value any) error {
	_, err := p.Command("set_property", property, value)
	return err
}

// Float reads a numeric property.
func (p *Process) Float(property string) (float64, error) {
	data, err := p.Command("get_property", property)
	if err != nil {
		return 0, err
	}
	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", property, data)
	}
	return val, nil
}

func send(socketPath string, args []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: args})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv reads newline-delimited JSON
	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	buf := make([]byte, readBufSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return parseResponse(buf[:n])
}

// parseResponse reads the first reply line; mpv may append event lines.
func parseResponse(raw []byte) (any, error) {
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, `"event"`) {
			continue
		}

		var resp ipcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", resp.Error)
		}
		return resp.Data, nil
	}

	return nil, fmt.Errorf("empty response")
}
