package mpv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidplay/vidplay/caption"
	"github.com/vidplay/vidplay/media"
)

// ErrPlayback is reported when mpv fails to play a file.
var ErrPlayback = errors.New("mpv playback failed")

// commander is the part of Process the element needs.
type commander interface {
	Command(args ...any) (any, error)
	Set(property string, value any) error
}

// Element is a media.Element backed by mpv. Property values are cached
// from the event stream so getters never block on IPC.
type Element struct {
	proc     commander
	listener *listener

	mu          sync.Mutex
	src         string
	loaded      bool
	paused      bool
	current     float64
	duration    float64
	volume      float64
	muted       bool
	cacheEnd    float64
	tracks      []media.TextTrack
	err         error
	subscribers map[int]func(media.Event)
	nextID      int
}

// NewElement wraps a started process.
func NewElement(proc *Process) *Element {
	el := newElement(proc)
	el.listener = newListener(proc.Socket(), el.onEvent)
	return el
}

func newElement(proc commander) *Element {
	return &Element{
		proc:        proc,
		paused:      true,
		volume:      1,
		subscribers: make(map[int]func(media.Event)),
	}
}

// Listen starts translating mpv events.
func (e *Element) Listen() error {
	return e.listener.start()
}

// Close stops the event stream.
func (e *Element) Close() {
	if e.listener != nil {
		e.listener.stop()
	}
}

func (e *Element) Load(_ context.Context, rawURL string, start mo.Option[float64]) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	options := ""
	if t, ok := start.Get(); ok && t > 0 {
		options = fmt.Sprintf("start=%.3f", t)
	}

	e.mu.Lock()
	e.src = rawURL
	e.loaded = false
	e.err = nil
	e.current = start.OrElse(0)
	e.mu.Unlock()

	if _, err := e.proc.Command("loadfile", target, "replace", options); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}
	return e.proc.Set("pause", false)
}

func (e *Element) Unload(context.Context) error {
	e.mu.Lock()
	e.src = ""
	e.loaded = false
	e.tracks = nil
	e.mu.Unlock()

	_, err := e.proc.Command("stop")
	return err
}

func (e *Element) Src() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

func (e *Element) Play() error  { return e.proc.Set("pause", false) }
func (e *Element) Pause() error { return e.proc.Set("pause", true) }

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Element) SetCurrentTime(seconds float64) error {
	_, err := e.proc.Command("seek", seconds, "absolute")
	return err
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// IsLive treats loaded media without a duration as a live stream.
func (e *Element) IsLive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded && e.duration <= 0
}

func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// SetVolume maps [0, 1] onto mpv's percent scale.
func (e *Element) SetVolume(v float64) error {
	return e.proc.Set("volume", lo.Clamp(v, 0, 1)*100)
}

func (e *Element) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *Element) SetMuted(muted bool) error {
	return e.proc.Set("mute", muted)
}

// Buffered is the range between the playhead and the end of the demuxer cache.
func (e *Element) Buffered() []media.Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cacheEnd <= 0 {
		return nil
	}
	return []media.Range{{Start: e.current, End: e.cacheEnd}}
}

func (e *Element) Seekable() []media.Range {
	e.mu.Lock()
	defer e.mu.Unlock()

	end := e.duration
	if end <= 0 {
		end = e.cacheEnd
	}
	if end <= 0 {
		return nil
	}
	return []media.Range{{Start: 0, End: end}}
}

func (e *Element) TextTracks() []media.TextTrack {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]media.TextTrack{}, e.tracks...)
}

func (e *Element) SetTextTrack(id string) error {
	if id == "" {
		return e.proc.Set("sid", "no")
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("text track id %q: %w", id, err)
	}
	return e.proc.Set("sid", n)
}

// SetPIP keeps the window above others; mpv has no picture-in-picture mode.
func (e *Element) SetPIP(on bool) error {
	return e.proc.Set("ontop", on)
}

func (e *Element) SetFullscreen(on bool) error {
	return e.proc.Set("fullscreen", on)
}

// ApplyCaptionStyle renders subtitles with the given style.
func (e *Element) ApplyCaptionStyle(s caption.Style) error {
	s = s.Normalize()

	text, err := caption.ParseRGB(s.TextColor)
	if err != nil {
		return err
	}
	bg, err := caption.ParseRGB(s.BgColor)
	if err != nil {
		return err
	}

	// mpv colors are #AARRGGBB
	alpha := uint8(s.BgOpacity * 255)
	props := []lo.Tuple2[string, any]{
		lo.T2[string, any]("sub-font-size", 55*s.TextSize),
		lo.T2[string, any]("sub-color", "#FF"+strings.TrimPrefix(text.Hex(), "#")),
		lo.T2[string, any]("sub-back-color", fmt.Sprintf("#%02X%s", alpha, strings.TrimPrefix(bg.Hex(), "#"))),
		lo.T2[string, any]("sub-border-style", "background-box"),
	}

	for _, p := range props {
		if err := e.proc.Set(p.A, p.B); err != nil {
			return fmt.Errorf("%s: %w", p.A, err)
		}
	}
	return nil
}

func (e *Element) Subscribe(fn func(media.Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.subscribers[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subscribers, id)
	}
}

func (e *Element) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Element) emit(events ...media.Event) {
	e.mu.Lock()
	subs := lo.Values(e.subscribers)
	e.mu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// onEvent maps one mpv event onto media events.
func (e *Element) onEvent(raw rawEvent) {
	switch raw.Event {
	case "property-change":
		e.emit(e.onProperty(raw.Name, raw.Data)...)
	case "start-file":
		e.emit(media.LoadStart)
	case "file-loaded":
		e.mu.Lock()
		e.loaded = true
		e.mu.Unlock()
		e.emit(media.LoadedMetadata, media.LoadedData, media.CanPlay)
	case "end-file":
		e.emit(e.onEndFile(raw.Reason, raw.Error)...)
	}
}

func (e *Element) onEndFile(reason, fileError string) []media.Event {
	switch reason {
	case "error":
		e.mu.Lock()
		e.err = fmt.Errorf("%w: %s", ErrPlayback, lo.Ternary(fileError == "", "unknown error", fileError))
		e.mu.Unlock()
		return []media.Event{media.Error}
	case "eof":
		return []media.Event{media.Ended}
	case "stop", "quit":
		return []media.Event{media.Emptied}
	default:
		return []media.Event{media.Abort}
	}
}

func (e *Element) onProperty(name string, data any) []media.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch name {
	case "time-pos":
		if t, ok := data.(float64); ok {
			e.current = t
			return []media.Event{media.TimeUpdate}
		}
	case "pause":
		if paused, ok := data.(bool); ok && paused != e.paused {
			e.paused = paused
			if paused {
				return []media.Event{media.Pause}
			}
			return []media.Event{media.Play, media.Playing}
		}
	case "seeking":
		if seeking, ok := data.(bool); ok {
			return []media.Event{lo.Ternary(seeking, media.Seeking, media.Seeked)}
		}
	case "eof-reached":
		if eof, ok := data.(bool); ok && eof {
			return []media.Event{media.Ended}
		}
	case "volume":
		if v, ok := data.(float64); ok {
			e.volume = lo.Clamp(v/100, 0, 1)
			return []media.Event{media.VolumeChange}
		}
	case "mute":
		if muted, ok := data.(bool); ok {
			e.muted = muted
			return []media.Event{media.VolumeChange}
		}
	case "paused-for-cache":
		if waiting, ok := data.(bool); ok {
			if waiting {
				return []media.Event{media.Waiting}
			}
			if !e.paused {
				return []media.Event{media.Playing}
			}
		}
	case "duration":
		if d, ok := data.(float64); ok {
			e.duration = d
			return []media.Event{media.DurationChange}
		}
	case "demuxer-cache-time":
		if t, ok := data.(float64); ok {
			e.cacheEnd = t
			return []media.Event{media.Progress}
		}
	case "track-list":
		e.tracks = parseTracks(data)
	}

	return nil
}

// parseTracks keeps the subtitle entries of mpv's track-list.
// mpv does not expose cue counts; a listed track is assumed to have cues.
func parseTracks(data any) []media.TextTrack {
	list, ok := data.([]any)
	if !ok {
		return nil
	}

	var tracks []media.TextTrack
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok || m["type"] != "sub" {
			continue
		}

		id, _ := m["id"].(float64)
		title, _ := m["title"].(string)
		lang, _ := m["lang"].(string)
		selected, _ := m["selected"].(bool)

		tracks = append(tracks, media.TextTrack{
			ID:       strconv.Itoa(int(id)),
			Label:    lo.Ternary(title != "", title, lang),
			Language: lang,
			Kind:     "subtitles",
			Cues:     1,
			Showing:  selected,
		})
	}
	return tracks
}

// sanitizeMediaTarget rejects anything mpv could read as a flag.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
