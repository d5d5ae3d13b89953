package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidplay/vidplay/log"
)

// surfaceChangedMsg means the Surface has new content.
type surfaceChangedMsg struct{}

func (b *statefulBubble) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.surface.Changed():
			return surfaceChangedMsg{}
		case <-b.ctx.Done():
			return nil
		}
	}
}

// do runs fn off the bubbletea loop. A failure becomes a notification.
func (b *statefulBubble) do(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			log.Warnf("%s: %v", name, err)
			return notificationMsg(fmt.Sprintf("%s: %v", name, err))
		}
		return nil
	}
}

// fire is do for commands that cannot fail.
func (b *statefulBubble) fire(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (b *statefulBubble) selectTrack(item trackItem) tea.Cmd {
	query := ""
	if !item.off() {
		query = item.FilterValue()
	}
	return tea.Batch(
		b.do("captions", func() error { return b.controls.SelectTextTrack(query) }),
		notify("captions: "+item.Title()),
	)
}

func (b *statefulBubble) castToggle() tea.Cmd {
	if b.frame.State.IsCasting {
		return b.fire(func() { b.controls.StopCasting(b.ctx, true) })
	}
	return tea.Batch(b.fire(func() { b.controls.Cast(b.ctx) }), notify("looking for the receiver"))
}
