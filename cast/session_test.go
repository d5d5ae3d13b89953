package cast_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidplay/vidplay/cast"
	"github.com/vidplay/vidplay/cast/casttest"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/sched"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/ui"
)

const wait = time.Second

type host struct {
	opts     config.Options
	src      source.Source
	store    *state.Store
	surface  *ui.Recorder
	position float64

	casting []bool
	resumes int
	saved   []float64
}

func (h *host) Initialized() bool { return true }
func (h *host) Source() source.Source { return h.src }
func (h *host) Options() config.Options { return h.opts }
func (h *host) CurrentTime() float64 { return h.position }
func (h *host) PlayerState() state.PlayerState { return h.store.Get() }
func (h *host) Surface() ui.Surface { return h.surface }
func (h *host) Resume() { h.resumes++ }
func (h *host) SavePosition(seconds float64) { h.saved = append(h.saved, seconds) }

func (h *host) Update(fn func(*state.PlayerState)) state.PlayerState {
	return h.store.Update(fn)
}

func (h *host) SetCasting(on bool) {
	h.casting = append(h.casting, on)
	h.store.Update(func(s *state.PlayerState) { s.IsCasting = on })
}

type fixture struct {
	host      *host
	handle    *casttest.Handle
	framework *casttest.Framework
	session   *cast.Session
	loop      *sched.Loop
	mock      *clock.Mock
}

func newFixture(sessionOpts ...cast.Option) *fixture {
	opts := config.Defaults()
	opts.CastReceiverID = "living-room"
	opts.CastSettleDelay = time.Second
	opts.IsVidgo = true

	f := &fixture{
		host: &host{
			opts:     opts,
			src:      source.New("https://cdn.example.com/a.m3u8"),
			store:    state.NewStore(),
			surface:  ui.NewRecorder(),
			position: 42,
		},
		handle: casttest.NewHandle("TV"),
		loop:   sched.NewLoop(64),
		mock:   clock.NewMock(),
	}

	f.framework = casttest.NewFramework(f.handle)
	s := sched.New(f.mock, f.loop.Post)
	sessionOpts = append([]cast.Option{cast.WithToken(func() (string, error) { return "tok", nil })}, sessionOpts...)
	f.session = cast.New(f.framework, f.host, s, f.loop.Post, sessionOpts...)
	f.session.Listen()
	return f
}

func (f *fixture) settle() {
	f.loop.RunUntil(func() bool { return false }, 30*time.Millisecond)
}

func (f *fixture) connect() {
	f.framework.SetAvailable(true)
	f.settle()
	f.session.Cast(context.Background())
	So(f.loop.RunUntil(func() bool { return f.session.Snapshot().ReceiverName == "TV" }, wait), ShouldBeTrue)
	f.handle.SetStatus(cast.StatusConnected)
	So(f.loop.RunUntil(func() bool { return f.session.IsCasting() }, wait), ShouldBeTrue)
}

func player(event string, value any) []byte {
	payload, _ := cast.Encode(cast.TypePlayer, cast.PlayerData{Event: event, Value: value})
	return payload
}

func TestAvailability(t *testing.T) {
	Convey("Given a session without receivers", t, func() {
		f := newFixture()

		Convey("Availability flips the phase and the cast button", func() {
			f.framework.SetAvailable(true)
			f.settle()
			So(f.session.Phase(), ShouldEqual, cast.ReceiversAvailable)
			So(f.host.surface.Visible[ui.CastButton], ShouldBeTrue)

			f.framework.SetAvailable(false)
			f.settle()
			So(f.session.Phase(), ShouldEqual, cast.NoReceivers)
			So(f.host.surface.Visible[ui.CastButton], ShouldBeFalse)
		})

		Convey("Cast without receivers is a logged no-op", func() {
			f.session.Cast(context.Background())
			f.settle()
			So(f.framework.Requests, ShouldEqual, 0)
			So(f.session.Phase(), ShouldEqual, cast.NoReceivers)
		})

		Convey("Cast before the framework is ready is a logged no-op", func() {
			f.framework.SetAvailable(true)
			f.framework.SetReady(false)
			f.settle()
			f.session.Cast(context.Background())
			f.settle()
			So(f.framework.Requests, ShouldEqual, 0)
		})

		Convey("A failed request returns to the available phase", func() {
			f.framework.Next = nil
			f.framework.SetAvailable(true)
			f.settle()
			f.session.Cast(context.Background())
			So(f.loop.RunUntil(func() bool { return f.session.Phase() == cast.ReceiversAvailable && f.framework.Requests == 1 }, wait), ShouldBeTrue)
			So(f.session.IsCasting(), ShouldBeFalse)
		})
	})
}

func TestHandoff(t *testing.T) {
	Convey("Given a connected session", t, func() {
		f := newFixture()
		So(f.host.store.Get().IsCasting, ShouldBeFalse)
		f.connect()

		Convey("Connecting captures the playhead and detaches local playback once", func() {
			So(f.session.Phase(), ShouldEqual, cast.Connected)
			So(f.host.casting, ShouldResemble, []bool{true})
			So(f.host.store.Get().IsCasting, ShouldBeTrue)
			So(f.session.Snapshot().SeekTime, ShouldEqual, 42)
			So(f.session.Snapshot().ReceiverName, ShouldEqual, "TV")
		})

		Convey("The stream is sent with the handoff position and token", func() {
			streams := f.handle.SentOfType(cast.TypeStream)
			So(streams, ShouldHaveLength, 1)

			var data cast.StreamData
			So(json.Unmarshal(streams[0].Data, &data), ShouldBeNil)
			So(data.Stream.URL, ShouldEqual, "https://cdn.example.com/a.m3u8")
			So(data.SeekTime, ShouldEqual, 42)
			So(data.VidgoToken, ShouldEqual, "tok")
		})

		Convey("The cast UI appears only after the settle delay", func() {
			So(f.host.surface.Visible[ui.CastOverlay], ShouldBeFalse)
			f.mock.Add(time.Second)
			So(f.loop.RunUntil(func() bool { return f.host.surface.Visible[ui.CastOverlay] }, wait), ShouldBeTrue)
			So(f.host.surface.Icons[ui.CastIcon], ShouldEqual, icon.Casting)
		})

		Convey("A disconnect not caused by us resumes local playback", func() {
			f.handle.SetStatus(cast.StatusDisconnected)
			So(f.loop.RunUntil(func() bool { return !f.session.IsCasting() }, wait), ShouldBeTrue)

			So(f.host.casting, ShouldResemble, []bool{true, false})
			So(f.host.resumes, ShouldEqual, 1)
			So(f.session.Phase(), ShouldEqual, cast.ReceiversAvailable)
			So(f.host.surface.Visible[ui.CastOverlay], ShouldBeFalse)
		})

		Convey("An explicit stop does not resume out of band", func() {
			f.session.Stop(context.Background(), false)
			f.settle()

			So(f.handle.Stops(), ShouldEqual, 1)
			So(f.host.resumes, ShouldEqual, 0)
			So(f.session.IsCasting(), ShouldBeFalse)
			So(f.session.Phase(), ShouldEqual, cast.ReceiversAvailable)
		})

		Convey("An explicit stop with resume resumes exactly once", func() {
			f.session.Stop(context.Background(), true)
			f.settle()
			So(f.host.resumes, ShouldEqual, 1)
		})

		Convey("The settle task does not fire after a disconnect", func() {
			f.handle.SetStatus(cast.StatusDisconnected)
			f.settle()
			f.mock.Add(time.Second)
			f.settle()
			So(f.host.surface.Visible[ui.CastOverlay], ShouldBeFalse)
		})
	})
}

func TestStopUnresponsiveReceiver(t *testing.T) {
	Convey("Given a receiver that never answers a stop", t, func() {
		f := newFixture(cast.WithStopTimeout(50 * time.Millisecond))
		f.connect()
		f.handle.Hung = true

		Convey("Stop gives up after its timeout and still leaves the session", func() {
			start := time.Now()
			f.session.Stop(context.Background(), false)

			So(time.Since(start), ShouldBeLessThan, wait)
			So(f.handle.Stops(), ShouldEqual, 1)
			So(f.session.IsCasting(), ShouldBeFalse)
			So(f.session.Phase(), ShouldEqual, cast.ReceiversAvailable)
			So(f.host.resumes, ShouldEqual, 0)
		})
	})
}

func TestCommands(t *testing.T) {
	Convey("Given a connected session", t, func() {
		f := newFixture()
		f.connect()

		last := func() cast.PlayerData {
			sent := f.handle.SentOfType(cast.TypePlayer)
			So(sent, ShouldNotBeEmpty)
			data, err := cast.DecodeData[cast.PlayerData](sent[len(sent)-1])
			So(err, ShouldBeNil)
			return data
		}

		Convey("Commands become player messages", func() {
			f.session.TogglePlayPause()
			So(last(), ShouldResemble, cast.PlayerData{Event: cast.EventPlaying, Value: true})

			f.session.Skip(true)
			So(last(), ShouldResemble, cast.PlayerData{Event: cast.EventForward, Value: float64(cast.SkipSeconds)})

			f.session.Skip(false)
			So(last().Event, ShouldEqual, cast.EventRewind)

			f.session.Seek(90)
			So(last(), ShouldResemble, cast.PlayerData{Event: cast.EventSeek, Value: float64(90)})

			f.session.ToggleTextTracks()
			So(last(), ShouldResemble, cast.PlayerData{Event: cast.EventTextTracks, Value: true})
		})

		Convey("Send failures are swallowed", func() {
			f.handle.SendErr = errors.New("socket closed")
			So(func() { f.session.Restart() }, ShouldNotPanic)
			So(f.session.IsCasting(), ShouldBeTrue)
		})

		Convey("Media info is sent only while casting", func() {
			f.session.SetMediaInfo(cast.MediaInfo{VidTitle: "Title"})
			So(f.handle.SentOfType(cast.TypeMediaInfo), ShouldHaveLength, 1)
		})
	})

	Convey("Commands are dropped when not casting", t, func() {
		f := newFixture()
		f.session.TogglePlayPause()
		f.session.SetMediaInfo(cast.MediaInfo{VidTitle: "Title"})
		So(f.handle.Sent(), ShouldBeEmpty)
	})
}

func TestInbound(t *testing.T) {
	Convey("Given a connected session", t, func() {
		f := newFixture()
		f.connect()
		deliver := func(payload []byte) {
			f.handle.Deliver(payload)
			f.settle()
		}

		Convey("A playing message sets isPlaying and the pause icon once", func() {
			before := f.host.surface.IconCalls[ui.PlayButton]
			deliver(player(cast.EventPlaying, true))

			So(f.host.store.Get().IsPlaying, ShouldBeTrue)
			So(f.host.surface.Icons[ui.PlayButton], ShouldEqual, icon.Pause)
			So(f.host.surface.IconCalls[ui.PlayButton]-before, ShouldEqual, 1)
		})

		Convey("A command sent by the sender is understood by a peer session", func() {
			f.session.TogglePlayPause()
			sent := f.handle.SentOfType(cast.TypePlayer)
			payload, _ := json.Marshal(sent[0])

			deliver(payload)
			So(f.host.store.Get().IsPlaying, ShouldBeTrue)
		})

		Convey("Info messages are persisted for resume", func() {
			payload, _ := cast.Encode(cast.TypeInfo, cast.InfoData{CurrentTime: 77})
			deliver(payload)
			So(f.host.saved, ShouldResemble, []float64{77})
			So(f.session.Snapshot().RemoteTime, ShouldEqual, 77)
		})

		Convey("Loaded tracks populate the player state", func() {
			payload, _ := cast.Encode(cast.TypePlayerLoaded, cast.PlayerLoadedData{
				Texts: []cast.RemoteTrack{{ID: 1, Label: "English"}},
			})
			deliver(payload)
			So(f.host.store.Get().TextTracks, ShouldHaveLength, 1)
			So(f.host.surface.Visible[ui.CaptionsButton], ShouldBeTrue)
		})

		Convey("Status echoes toggle the transport controls", func() {
			deliver(player(cast.EventLoadedData, nil))
			So(f.host.surface.Visible[ui.Transport], ShouldBeTrue)
			So(f.host.surface.Visible[ui.Seekers], ShouldBeTrue)

			deliver(player(cast.EventEnded, nil))
			So(f.host.surface.Visible[ui.Transport], ShouldBeFalse)
			So(f.host.store.Get().UIState, ShouldEqual, state.UIEnded)
		})

		Convey("Channel content hides the seekers", func() {
			f.session.SetSource(f.host.src, cast.ContentChannel)
			deliver(player(cast.EventCanPlayThrough, nil))
			So(f.host.surface.Visible[ui.Transport], ShouldBeTrue)
			So(f.host.surface.Visible[ui.Seekers], ShouldBeFalse)
		})

		Convey("Malformed messages are dropped without side effects", func() {
			before := f.host.store.Get()
			for _, bad := range []string{`garbage`, `{"type":"player"}`, `{"type":"player","data":{"event":"playing","value":3}}`, `{"type":"nope","data":{}}`} {
				deliver([]byte(bad))
			}
			So(f.host.store.Get(), ShouldResemble, before)
			So(f.session.IsCasting(), ShouldBeTrue)
		})
	})
}
