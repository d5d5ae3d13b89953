package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidplay/vidplay/style"
)

const notificationTTL = 3 * time.Second

// notificationMsg shows a short message next to the last line of the view.
type notificationMsg string

type clearNotificationMsg struct {
	at time.Time
}

// notifier holds the current ephemeral notification.
type notifier struct {
	text string
	at   time.Time
}

func notify(text string) tea.Cmd {
	return func() tea.Msg { return notificationMsg(text) }
}

func (n *notifier) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notificationMsg:
		n.text = string(msg)
		n.at = time.Now()
		at := n.at
		return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
			return clearNotificationMsg{at: at}
		})
	case clearNotificationMsg:
		// a newer notification owns its own timer
		if msg.at.Equal(n.at) {
			n.text = ""
		}
	}
	return nil
}

func (n *notifier) View(content string) string {
	if n.text == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Fg(style.Muted)(n.text)
	return strings.Join(lines, "\n")
}
