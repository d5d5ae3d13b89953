package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidplay/vidplay/style"
)

type statefulBubble struct {
	state  screen
	keymap *statefulKeymap

	ctx      context.Context
	controls Controls
	surface  *Surface
	frame    Frame

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	captionsC list.Model
	helpC     help.Model
	notifier  notifier

	options       Options
	width, height int
}

func newBubble(ctx context.Context, controls Controls, surface *Surface, options Options) *statefulBubble {
	keymap := newStatefulKeymap(options.Casting)

	b := &statefulBubble{
		state:    playbackState,
		keymap:   keymap,
		ctx:      ctx,
		controls: controls,
		surface:  surface,
		frame:    surface.Snapshot(),
		options:  options,
	}

	b.spinnerC = spinner.New()
	b.spinnerC.Spinner = spinner.Dot
	b.spinnerC.Style = lipgloss.NewStyle().Foreground(style.Accent)

	b.progressC = progress.New(progress.WithSolidFill(string(style.Accent)), progress.WithoutPercentage())

	b.helpC = help.New()

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(style.Accent).BorderForeground(style.Accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(style.Accent).BorderForeground(style.Accent)

	b.captionsC = list.New(nil, delegate, 0, 0)
	b.captionsC.Title = "Captions"
	b.captionsC.KeyMap = keymap.forList()
	b.captionsC.SetShowStatusBar(false)
	b.captionsC.SetFilteringEnabled(false)
	b.captionsC.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{keymap.confirm, keymap.back} }

	return b
}

func (b *statefulBubble) setState(s screen) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) resize(width, height int) {
	b.width, b.height = width, height

	x, _ := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	b.progressC.Width = max(width-x, 10)
	b.helpC.Width = width - x

	b.captionsC.SetSize(width-xx, height-yy)
	b.captionsC.Help.Width = width - xx
}

func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.waitForChange())
}
