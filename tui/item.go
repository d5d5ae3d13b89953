package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/samber/lo"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/style"
)

// trackItem is a text track in the captions list. The zero track turns
// captions off.
type trackItem struct {
	track    state.Track
	selected bool
}

func (t trackItem) off() bool {
	return t.track.ID == ""
}

func (t trackItem) Title() string {
	title := lo.Ternary(t.off(), "Off", t.FilterValue())
	if t.selected {
		title += " " + style.Fg(style.Accent)(icon.Get(icon.Captions))
	}
	return title
}

func (t trackItem) Description() string {
	if t.off() {
		return style.Faint("disable captions")
	}
	parts := lo.Compact([]string{t.track.Language, t.track.Kind})
	return style.Faint(strings.Join(parts, " · "))
}

func (t trackItem) FilterValue() string {
	return lo.CoalesceOrEmpty(t.track.Label, t.track.Language, t.track.ID)
}

func trackItems(ps state.PlayerState) []list.Item {
	items := []list.Item{trackItem{selected: ps.SelectedTextTrackID == ""}}
	for _, track := range ps.TextTracks {
		items = append(items, trackItem{track: track, selected: track.ID == ps.SelectedTextTrackID})
	}
	return items
}
