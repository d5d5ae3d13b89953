package mpv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidplay/vidplay/caption"
	"github.com/vidplay/vidplay/engine"
	"github.com/vidplay/vidplay/media"
)

type fakeProc struct {
	mu       sync.Mutex
	commands [][]any
	props    map[string]any
	err      error
}

func newFakeProc() *fakeProc {
	return &fakeProc{props: make(map[string]any)}
}

func (p *fakeProc) Command(args ...any) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = append(p.commands, args)
	return nil, p.err
}

func (p *fakeProc) Set(property string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.props[property] = value
	return p.err
}

func (p *fakeProc) last() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.commands) == 0 {
		return nil
	}
	return p.commands[len(p.commands)-1]
}

func record(el *Element) *[]media.Event {
	var events []media.Event
	el.Subscribe(func(e media.Event) { events = append(events, e) })
	return &events
}

func TestElement(t *testing.T) {
	Convey("Given an mpv element", t, func() {
		proc := newFakeProc()
		el := newElement(proc)
		events := record(el)

		Convey("Load issues loadfile with a start option and unpauses", func() {
			err := el.Load(context.Background(), "https://cdn.example/a.m3u8", mo.Some(42.0))
			So(err, ShouldBeNil)
			So(proc.last(), ShouldResemble, []any{"loadfile", "https://cdn.example/a.m3u8", "replace", "start=42.000"})
			So(proc.props["pause"], ShouldEqual, false)
			So(el.Src(), ShouldEqual, "https://cdn.example/a.m3u8")
		})

		Convey("Load rejects flag-like targets", func() {
			err := el.Load(context.Background(), "--script=evil.lua", mo.None[float64]())
			So(err, ShouldNotBeNil)
			So(proc.last(), ShouldBeNil)
		})

		Convey("Unload stops playback", func() {
			So(el.Unload(context.Background()), ShouldBeNil)
			So(proc.last(), ShouldResemble, []any{"stop"})
			So(el.Src(), ShouldBeEmpty)
		})

		Convey("file-loaded emits the load sequence", func() {
			el.onEvent(rawEvent{Event: "start-file"})
			el.onEvent(rawEvent{Event: "file-loaded"})
			So(*events, ShouldResemble, []media.Event{media.LoadStart, media.LoadedMetadata, media.LoadedData, media.CanPlay})
		})

		Convey("pause changes map to pause and play events", func() {
			el.onEvent(rawEvent{Event: "property-change", Name: "pause", Data: false})
			el.onEvent(rawEvent{Event: "property-change", Name: "pause", Data: false})
			el.onEvent(rawEvent{Event: "property-change", Name: "pause", Data: true})
			So(*events, ShouldResemble, []media.Event{media.Play, media.Playing, media.Pause})
			So(el.Paused(), ShouldBeTrue)
		})

		Convey("time-pos updates the playhead", func() {
			el.onEvent(rawEvent{Event: "property-change", Name: "time-pos", Data: 12.5})
			So(el.CurrentTime(), ShouldEqual, 12.5)
			So(*events, ShouldResemble, []media.Event{media.TimeUpdate})
		})

		Convey("a missing time-pos is ignored", func() {
			el.onEvent(rawEvent{Event: "property-change", Name: "time-pos", Data: nil})
			So(*events, ShouldBeEmpty)
		})

		Convey("volume is scaled to the unit range", func() {
			el.onEvent(rawEvent{Event: "property-change", Name: "volume", Data: 50.0})
			el.onEvent(rawEvent{Event: "property-change", Name: "mute", Data: true})
			So(el.Volume(), ShouldEqual, 0.5)
			So(el.Muted(), ShouldBeTrue)
			So(*events, ShouldResemble, []media.Event{media.VolumeChange, media.VolumeChange})

			So(el.SetVolume(2), ShouldBeNil)
			So(proc.props["volume"], ShouldEqual, 100.0)
		})

		Convey("cache underruns become waiting", func() {
			el.onEvent(rawEvent{Event: "property-change", Name: "pause", Data: false})
			*events = nil
			el.onEvent(rawEvent{Event: "property-change", Name: "paused-for-cache", Data: true})
			el.onEvent(rawEvent{Event: "property-change", Name: "paused-for-cache", Data: false})
			So(*events, ShouldResemble, []media.Event{media.Waiting, media.Playing})
		})

		Convey("media without a duration is live once loaded", func() {
			So(el.IsLive(), ShouldBeFalse)
			el.onEvent(rawEvent{Event: "file-loaded"})
			So(el.IsLive(), ShouldBeTrue)

			el.onEvent(rawEvent{Event: "property-change", Name: "duration", Data: 600.0})
			So(el.IsLive(), ShouldBeFalse)
			So(el.Seekable(), ShouldResemble, []media.Range{{Start: 0, End: 600}})
		})

		Convey("the demuxer cache is reported as buffered", func() {
			el.onEvent(rawEvent{Event: "property-change", Name: "time-pos", Data: 10.0})
			el.onEvent(rawEvent{Event: "property-change", Name: "demuxer-cache-time", Data: 40.0})
			So(el.Buffered(), ShouldResemble, []media.Range{{Start: 10, End: 40}})
			So(media.BufferedEnd(el), ShouldEqual, 40)
		})

		Convey("end-file reasons", func() {
			el.onEvent(rawEvent{Event: "end-file", Reason: "eof"})
			el.onEvent(rawEvent{Event: "end-file", Reason: "stop"})
			So(el.Err(), ShouldBeNil)

			el.onEvent(rawEvent{Event: "end-file", Reason: "error", Error: "loading failed"})
			So(*events, ShouldResemble, []media.Event{media.Ended, media.Emptied, media.Error})
			So(errors.Is(el.Err(), ErrPlayback), ShouldBeTrue)
			So(el.Err().Error(), ShouldContainSubstring, "loading failed")
		})

		Convey("subtitle tracks are parsed from the track list", func() {
			el.onEvent(rawEvent{Event: "property-change", Name: "track-list", Data: []any{
				map[string]any{"type": "video", "id": 1.0},
				map[string]any{"type": "sub", "id": 1.0, "lang": "en", "title": "English"},
				map[string]any{"type": "sub", "id": 2.0, "lang": "ja", "selected": true},
			}})

			tracks := el.TextTracks()
			So(tracks, ShouldHaveLength, 2)
			So(tracks[0].Label, ShouldEqual, "English")
			So(tracks[1].Label, ShouldEqual, "ja")
			So(tracks[1].Showing, ShouldBeTrue)

			So(el.SetTextTrack("2"), ShouldBeNil)
			So(proc.props["sid"], ShouldEqual, 2)
			So(el.SetTextTrack(""), ShouldBeNil)
			So(proc.props["sid"], ShouldEqual, "no")
			So(el.SetTextTrack("x"), ShouldNotBeNil)
		})

		Convey("unsubscribed listeners stop receiving events", func() {
			var n int
			unsubscribe := el.Subscribe(func(media.Event) { n++ })
			el.onEvent(rawEvent{Event: "start-file"})
			unsubscribe()
			el.onEvent(rawEvent{Event: "start-file"})
			So(n, ShouldEqual, 1)
		})

		Convey("caption styles become subtitle properties", func() {
			err := el.ApplyCaptionStyle(caption.Style{TextSize: 2, TextColor: "0,0,255", BgColor: "255,0,0", BgOpacity: 0.2})
			So(err, ShouldBeNil)
			So(proc.props["sub-font-size"], ShouldEqual, 110.0)
			So(proc.props["sub-color"], ShouldEqual, "#FF0000ff")
			So(proc.props["sub-back-color"], ShouldEqual, "#33ff0000")
		})

		Convey("pip and fullscreen map to window properties", func() {
			So(el.SetPIP(true), ShouldBeNil)
			So(el.SetFullscreen(true), ShouldBeNil)
			So(proc.props["ontop"], ShouldEqual, true)
			So(proc.props["fullscreen"], ShouldEqual, true)
		})
	})
}

func TestDriver(t *testing.T) {
	Convey("Given an adaptive driver over an mpv element", t, func() {
		proc := newFakeProc()
		el := newElement(proc)
		exited := make(chan struct{})
		d := NewDriver(ModeAdaptive, exited)

		errs := make(chan engine.DriverError, 4)
		d.OnError(func(e engine.DriverError) { errs <- e })

		So(d.AttachMedia(el), ShouldBeNil)

		Convey("attaching twice fails", func() {
			So(d.AttachMedia(el), ShouldNotBeNil)
		})

		Convey("LoadSource loads the element", func() {
			So(d.LoadSource(context.Background(), "https://cdn.example/a.m3u8", mo.None[float64]()), ShouldBeNil)
			So(proc.last()[0], ShouldEqual, "loadfile")
		})

		Convey("StartLoad seeks only with a position", func() {
			d.StartLoad(-1)
			So(proc.last(), ShouldBeNil)
			d.StartLoad(30)
			So(proc.last(), ShouldResemble, []any{"seek", 30.0, "absolute"})
		})

		Convey("a cache underrun is a stalled buffer", func() {
			el.onEvent(rawEvent{Event: "property-change", Name: "paused-for-cache", Data: true})
			e := <-errs
			So(e.Fatal, ShouldBeFalse)
			So(e.Details, ShouldEqual, engine.DetailsBufferStalled)
		})

		Convey("process exit is fatal", func() {
			close(exited)
			e := <-errs
			So(e.Fatal, ShouldBeTrue)
			So(errors.Is(e.Err, ErrProcessExited), ShouldBeTrue)
		})

		Convey("after destroy nothing is reported and loads fail", func() {
			So(d.Destroy(), ShouldBeNil)
			So(d.Destroy(), ShouldBeNil)
			el.onEvent(rawEvent{Event: "property-change", Name: "paused-for-cache", Data: true})
			So(errs, ShouldHaveLength, 0)
			So(d.Load(context.Background(), "a.mp4", mo.None[float64]()), ShouldEqual, engine.ErrNotAttached)
		})
	})

	Convey("A dash driver ignores stalls", t, func() {
		el := newElement(newFakeProc())
		d := NewDriver(ModeDash, nil)
		var reported int
		d.OnError(func(engine.DriverError) { reported++ })

		So(d.Configure(engine.DashConfig{Servers: map[string]string{engine.KeySystemWidevine: "https://lic"}}), ShouldBeNil)
		So(d.Attach(el), ShouldBeNil)
		el.onEvent(rawEvent{Event: "property-change", Name: "paused-for-cache", Data: true})
		So(reported, ShouldEqual, 0)

		So(d.Unload(context.Background()), ShouldBeNil)
		So(d.Load(context.Background(), "a.mpd", mo.None[float64]()), ShouldEqual, engine.ErrNotAttached)
	})
}

func TestParseResponse(t *testing.T) {
	Convey("parseResponse", t, func() {
		Convey("skips event lines", func() {
			data, err := parseResponse([]byte(`{"event":"playback-restart"}` + "\n" + `{"data":12.5,"error":"success"}` + "\n"))
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 12.5)
		})

		Convey("surfaces mpv errors", func() {
			_, err := parseResponse([]byte(`{"error":"` + errPropertyUnavailable + `"}`))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldStartWith, "mpv error")
		})

		Convey("fails on empty input", func() {
			_, err := parseResponse([]byte("\n"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		for _, bad := range []string{"", "  ", "-v", "a\nb", "ftp://host/x.mp4", "javascript://x"} {
			_, err := sanitizeMediaTarget(bad)
			So(err, ShouldNotBeNil)
		}

		got, err := sanitizeMediaTarget(" https://cdn.example/a.mpd ")
		So(err, ShouldBeNil)
		So(got, ShouldEqual, "https://cdn.example/a.mpd")

		got, err = sanitizeMediaTarget("videos/../videos/a.mp4")
		So(err, ShouldBeNil)
		So(got, ShouldEqual, "videos/a.mp4")
	})

	Convey("sanitizeTitle flattens control characters", t, func() {
		So(sanitizeTitle(" Live\nNews\t\x00 "), ShouldEqual, "Live News")
	})
}
