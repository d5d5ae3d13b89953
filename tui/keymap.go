package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/vidplay/vidplay/style"
)

type statefulKeymap struct {
	state   screen
	casting bool

	quit, forceQuit,
	playPause, mute,
	forward, rewind, restart, replay,
	pip, fullscreen,
	captions, cast, stopCast,
	retry,
	confirm, back,
	up, down,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState screen) {
	k.state = newState
}

func newStatefulKeymap(casting bool) *statefulKeymap {
	return &statefulKeymap{
		casting: casting,
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "k"),
			key.WithHelp(style.Fg(style.Accent)("space"), style.Fg(style.Accent)("play/pause")),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		rewind: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "rewind"),
		),
		restart: key.NewBinding(
			key.WithKeys("home", "0"),
			key.WithHelp("0", "seek to start"),
		),
		replay: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "replay"),
		),
		pip: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "on top"),
		),
		fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		captions: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "captions"),
		),
		cast: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "cast"),
		),
		stopCast: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop casting"),
		),
		retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case captionsState:
		return h(k.confirm, k.back), h(k.up, k.down, k.confirm, k.back)
	default:
		short := h(k.playPause, k.mute, k.captions, k.showHelp, k.quit)
		full := h(k.playPause, k.mute, k.forward, k.rewind, k.restart, k.replay, k.pip, k.fullscreen, k.captions, k.retry)
		if k.casting {
			full = append(full, k.cast, k.stopCast)
		}
		return short, append(full, k.quit)
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		ForceQuit:            k.forceQuit,
	}
}
