package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := b.notifier.Update(msg); cmd != nil {
		return b, cmd
	}

	switch msg := msg.(type) {
	case surfaceChangedMsg:
		b.frame = b.surface.Snapshot()
		if b.state == captionsState {
			return b, tea.Batch(b.captionsC.SetItems(trackItems(b.frame.State)), b.waitForChange())
		}
		return b, b.waitForChange()
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}

		switch b.state {
		case captionsState:
			return b.updateCaptions(msg)
		default:
			return b.updatePlayback(msg)
		}
	}

	return b, nil
}

func (b *statefulBubble) updatePlayback(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := b.controls

	switch {
	case key.Matches(msg, b.keymap.quit):
		return b, tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case key.Matches(msg, b.keymap.playPause):
		return b, b.fire(c.TogglePlayPause)
	case key.Matches(msg, b.keymap.mute):
		return b, b.fire(c.ToggleMuteUnMute)
	case key.Matches(msg, b.keymap.forward):
		return b, b.fire(func() { c.ToggleForwardRewind(true) })
	case key.Matches(msg, b.keymap.rewind):
		return b, b.fire(func() { c.ToggleForwardRewind(false) })
	case key.Matches(msg, b.keymap.restart):
		return b, b.fire(func() { c.SeekTime(0) })
	case key.Matches(msg, b.keymap.replay):
		return b, b.fire(c.OnEndedReplay)
	case key.Matches(msg, b.keymap.pip):
		return b, b.fire(c.TogglePip)
	case key.Matches(msg, b.keymap.fullscreen):
		return b, b.fire(c.ToggleFullScreen)
	case key.Matches(msg, b.keymap.retry):
		return b, tea.Batch(b.fire(func() { c.Retry(true) }), notify("retrying"))
	case key.Matches(msg, b.keymap.captions):
		if len(b.frame.State.TextTracks) == 0 {
			return b, notify("no captions available")
		}
		b.setState(captionsState)
		return b, b.captionsC.SetItems(trackItems(b.frame.State))
	case b.keymap.casting && key.Matches(msg, b.keymap.cast, b.keymap.stopCast):
		if key.Matches(msg, b.keymap.stopCast) && !b.frame.State.IsCasting {
			return b, nil
		}
		return b, b.castToggle()
	}

	return b, nil
}

func (b *statefulBubble) updateCaptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keymap.back):
		b.setState(playbackState)
		return b, nil
	case key.Matches(msg, b.keymap.confirm):
		b.setState(playbackState)
		if item, ok := b.captionsC.SelectedItem().(trackItem); ok {
			return b, b.selectTrack(item)
		}
		return b, nil
	}

	var cmd tea.Cmd
	b.captionsC, cmd = b.captionsC.Update(msg)
	return b, cmd
}
