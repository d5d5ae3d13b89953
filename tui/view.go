package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/style"
	"github.com/vidplay/vidplay/ui"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
	titleStyle            = lipgloss.NewStyle().Bold(true).Foreground(style.Accent)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case captionsState:
		output = listExtraPaddingStyle.Render(b.captionsC.View())
	default:
		output = b.viewPlayback()
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewPlayback() string {
	f := b.frame
	width := b.contentWidth()

	lines := []string{
		titleStyle.Render(truncate.StringWithTail(b.options.Title, uint(width), "…")),
		style.Faint(string(f.State.Engine)),
		"",
		b.viewStatus(),
	}

	if f.Visible[ui.ProgressBar] && !f.State.IsCasting {
		lines = append(lines, b.progressC.ViewAs(f.Sliders[ui.ProgressSlider]))
	}

	if f.Visible[ui.Controls] || f.State.IsCasting {
		lines = append(lines, "", b.viewControls())
	}

	if f.Visible[ui.CastOverlay] {
		lines = append(lines, "", style.Fg(style.Highlight)(icon.Get(icon.Casting)+" playing on the receiver"))
	}

	if len(f.Events) > 0 {
		events := wrap.String(strings.Join(f.Events, " → "), width)
		lines = append(lines, "", style.Faint(events))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewStatus() string {
	s := b.frame.State

	switch s.UIState {
	case state.UILoading:
		return b.spinnerC.View() + " loading"
	case state.UIError:
		return style.Fg(style.Bad)(icon.Get(icon.Error)+" playback failed") + style.Faint("  press r to retry")
	case state.UIEnded:
		return icon.Get(icon.Replay) + " ended" + style.Faint("  press R to replay")
	}

	glyph := lo.Ternary(s.IsPlaying, icon.Play, icon.Pause)
	return fmt.Sprintf("%s %s", icon.Get(glyph), lo.Ternary(s.IsPlaying, "playing", "paused"))
}

func (b *statefulBubble) viewControls() string {
	f := b.frame

	volume := f.Sliders[ui.VolumeSlider]
	parts := []string{
		fmt.Sprintf("%s %3.0f%%", icon.Get(f.Icons[ui.MuteButton]), volume*100),
	}

	if f.Visible[ui.CaptionsButton] {
		label := "off"
		if track, ok := lo.Find(f.State.TextTracks, func(t state.Track) bool {
			return t.ID == f.State.SelectedTextTrackID
		}); ok {
			label = track.Label
		}
		parts = append(parts, icon.Get(icon.Captions)+" "+b.options.Captions.Lipgloss().Render(label))
	}

	if f.Visible[ui.CastButton] {
		parts = append(parts, icon.Get(f.Icons[ui.CastIcon]))
	}

	if f.State.IsPIP {
		parts = append(parts, icon.Get(icon.PIP))
	}

	return strings.Join(parts, style.Faint("  │  "))
}

func (b *statefulBubble) contentWidth() int {
	x, _ := paddingStyle.GetFrameSize()
	return max(b.width-x, 20)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h+4 {
			l += strings.Repeat("\n", b.height-h-4)
		}
		l += "\n" + b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
