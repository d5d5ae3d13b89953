package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/vidplay/vidplay/log"
)

// observed are the properties whose changes are turned into media events.
var observed = []string{
	"time-pos",
	"pause",
	"seeking",
	"eof-reached",
	"volume",
	"mute",
	"paused-for-cache",
	"duration",
	"demuxer-cache-time",
	"track-list",
	"fullscreen",
	"ontop",
}

// rawEvent is one line read from the event connection.
type rawEvent struct {
	Event  string `json:"event"`
	Name   string `json:"name"`
	Data   any    `json:"data"`
	Reason string `json:"reason"`
	Error  string `json:"file_error"`
}

// listener keeps one persistent connection open and reads mpv's event stream.
type listener struct {
	socketPath string
	handle     func(rawEvent)

	mu   sync.Mutex
	conn net.Conn
	done chan struct{}
}

func newListener(socketPath string, handle func(rawEvent)) *listener {
	return &listener{socketPath: socketPath, handle: handle}
}

// start observes every property on the persistent connection, so mpv
// delivers changes there, and begins reading.
func (l *listener) start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		return nil
	}

	conn, err := net.Dial("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, _ := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	l.conn = conn
	l.done = make(chan struct{})
	go l.readLoop(conn, l.done)

	log.Infof("mpv event listener started on %s", l.socketPath)
	return nil
}

func (l *listener) stop() {
	l.mu.Lock()
	conn, done := l.conn, l.done
	l.conn = nil
	l.mu.Unlock()

	if conn == nil {
		return
	}
	_ = conn.Close()
	<-done
}

// readLoop exits when the connection is closed.
func (l *listener) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var e rawEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil || e.Event == "" {
			// command replies and garbage
			continue
		}
		l.handle(e)
	}

	if err := scanner.Err(); err != nil {
		log.Debugf("mpv event listener stopped: %v", err)
	}
}
