// Package tui draws the player controls in the terminal and turns key
// presses into player commands.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidplay/vidplay/caption"
)

// Controls is the command surface the TUI drives. Every call may block on
// the player, so the TUI only makes them from tea.Cmds.
type Controls interface {
	TogglePlayPause()
	ToggleMuteUnMute()
	ToggleForwardRewind(forward bool)
	SeekTime(seconds float64)
	TogglePip()
	ToggleFullScreen()
	OnEndedReplay()
	SelectTextTrack(query string) error
	Cast(ctx context.Context)
	StopCasting(ctx context.Context, resume bool)
	Retry(hard bool)
}

// Options configures the TUI.
type Options struct {
	Title    string
	Captions caption.Style
	// Casting enables the cast key bindings.
	Casting bool
}

// Run draws the controls until the user quits or ctx is done.
func Run(ctx context.Context, controls Controls, surface *Surface, options Options) error {
	bubble := newBubble(ctx, controls, surface, options)
	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
