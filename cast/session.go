// Package cast hands playback off to a remote receiver and mirrors
// commands and status over the session's message channel.
package cast

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/constant"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/log"
	"github.com/vidplay/vidplay/metrics"
	"github.com/vidplay/vidplay/sched"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
	"github.com/vidplay/vidplay/ui"
)

const (
	taskSettle = "cast.settle"

	sendTimeout = 5 * time.Second
	stopTimeout = 2 * time.Second
)

// Host is the player as seen by the session. Every call happens on the
// player's event loop.
type Host interface {
	Initialized() bool
	Source() source.Source
	Options() config.Options
	CurrentTime() float64
	PlayerState() state.PlayerState
	Update(fn func(*state.PlayerState)) state.PlayerState
	Surface() ui.Surface

	// SetCasting flips isCasting; turning it on detaches the local engine.
	SetCasting(on bool)
	// Resume re-initializes local playback with the same source, configuration and callbacks.
	Resume()
	SavePosition(seconds float64)
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	Phase            Phase
	ReceiverID       string
	ReceiverName     string
	HasReceivers     bool
	IsCasting        bool
	SeekTime         float64
	RemoteTime       float64
	TextTrackVisible bool
	ContentType      string
}

// Session is the sender side of the casting protocol. It is confined to
// the player's event loop; framework callbacks are re-posted through the
// dispatcher.
type Session struct {
	framework Framework
	host      Host
	sched     *sched.Scheduler
	dispatch  sched.Dispatcher
	metrics   *metrics.Metrics
	token     func() (string, error)
	log       log.Entry

	// stopTimeout bounds Stop on a receiver that no longer answers.
	stopTimeout time.Duration

	fsm    *Machine
	handle Handle
	gen    uint64

	hasReceivers     bool
	isCasting        bool
	stoppedByUs      bool
	receiverName     string
	seekTime         float64
	remoteTime       float64
	textTrackVisible bool
	contentType      string

	castSource *source.Source
	mediaInfo  *MediaInfo
}

// Option configures a Session.
type Option func(*Session)

// WithMetrics records protocol counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithToken supplies the auth token sent with every stream.
func WithToken(fn func() (string, error)) Option {
	return func(s *Session) { s.token = fn }
}

// WithStopTimeout bounds how long stopping a session waits for the receiver.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Session) { s.stopTimeout = d }
}

// New returns a session in the NO_RECEIVERS phase. Call Listen to start
// receiving availability updates.
func New(framework Framework, host Host, s *sched.Scheduler, dispatch sched.Dispatcher, opts ...Option) *Session {
	session := &Session{
		framework: framework,
		host:      host,
		sched:     s,
		dispatch:  dispatch,
		log:       log.Component("cast"),
		fsm:       NewMachine(),

		stopTimeout: stopTimeout,
	}

	for _, opt := range opts {
		opt(session)
	}

	return session
}

// Listen subscribes to receiver availability.
func (s *Session) Listen() {
	s.framework.OnAvailability(func(available bool) {
		s.dispatch(func() { s.onAvailability(available) })
	})
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.fsm.Phase()
}

// IsCasting mirrors the connection status of the live handle.
func (s *Session) IsCasting() bool {
	return s.isCasting
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:            s.fsm.Phase(),
		ReceiverID:       s.host.Options().CastReceiverID,
		ReceiverName:     s.receiverName,
		HasReceivers:     s.hasReceivers,
		IsCasting:        s.isCasting,
		SeekTime:         s.seekTime,
		RemoteTime:       s.remoteTime,
		TextTrackVisible: s.textTrackVisible,
		ContentType:      s.contentType,
	}
}

func (s *Session) onAvailability(available bool) {
	s.hasReceivers = available

	switch phase := s.fsm.Phase(); {
	case available && phase == NoReceivers:
		s.must(s.fsm.To(ReceiversAvailable))
	case !available && phase == ReceiversAvailable:
		s.must(s.fsm.To(NoReceivers))
	}

	if !s.host.Initialized() {
		return
	}

	surface := s.host.Surface()
	if available {
		surface.SetIcon(ui.CastIcon, icon.Cast)
		surface.Show(ui.CastButton)
	} else if !s.isCasting {
		surface.Hide(ui.CastButton)
	}
}

// Cast requests a session with the configured receiver. It never fails:
// an unready framework or missing receivers are logged and ignored. The
// request itself runs in the background; its result is handled on the
// event loop.
func (s *Session) Cast(ctx context.Context) {
	if !s.framework.Ready() {
		s.log.Warnf("cast requested before the framework is ready")
		return
	}
	if !s.hasReceivers {
		s.log.Warnf("cast requested without available receivers")
		return
	}
	if err := s.fsm.To(Connecting); err != nil {
		s.log.Warnf("cast requested in phase %s: %v", s.fsm.Phase(), err)
		return
	}

	s.gen++
	gen := s.gen
	receiverID := s.host.Options().CastReceiverID

	go func() {
		handle, err := s.framework.RequestSession(ctx, receiverID)
		s.dispatch(func() { s.onSession(gen, handle, err) })
	}()
}

func (s *Session) onSession(gen uint64, handle Handle, err error) {
	if gen != s.gen || s.fsm.Phase() != Connecting {
		if handle != nil {
			s.stopHandle(context.Background(), handle)
		}
		return
	}

	if err != nil {
		s.log.Warnf("session request failed: %v", err)
		s.must(s.fsm.To(s.idlePhase()))
		return
	}

	s.handle = handle
	s.receiverName = handle.ReceiverName()

	handle.AddUpdateListener(func(status Status) {
		s.dispatch(func() {
			if s.handle == handle {
				s.onStatus(status)
			}
		})
	})
	handle.AddMessageListener(constant.CastNamespace, func(payload []byte) {
		s.dispatch(func() {
			if s.handle == handle {
				s.onMessage(payload)
			}
		})
	})

	s.onStatus(handle.Status())
}

// onStatus is the only place isCasting changes, apart from Stop.
func (s *Session) onStatus(status Status) {
	switch status {
	case StatusConnected:
		if s.fsm.Phase() == Connecting {
			s.enterConnected()
		}
	case StatusDisconnected, StatusStopped:
		switch s.fsm.Phase() {
		case Connected:
			s.leaveConnected()
		case Connecting:
			s.handle = nil
			s.must(s.fsm.To(s.idlePhase()))
		}
	}
}

func (s *Session) enterConnected() {
	s.must(s.fsm.To(Connected))

	s.seekTime = s.host.CurrentTime()
	s.remoteTime = s.seekTime
	s.isCasting = true
	s.stoppedByUs = false
	s.metrics.IncCastSessions()
	s.metrics.SetCasting(true)
	s.log.Infof("connected to %s at %.1fs", s.receiverName, s.seekTime)

	s.host.SetCasting(true)

	s.sendStream()
	if s.mediaInfo != nil {
		s.send(TypeMediaInfo, *s.mediaInfo)
	}

	s.sched.After(taskSettle, s.host.Options().CastSettleDelay, s.showCastUI)
}

func (s *Session) showCastUI() {
	if !s.isCasting {
		return
	}
	surface := s.host.Surface()
	surface.Show(ui.CastOverlay)
	surface.Show(ui.Controls)
	surface.SetIcon(ui.CastIcon, icon.Casting)
}

func (s *Session) clearCastUI() {
	s.sched.Cancel(taskSettle)
	surface := s.host.Surface()
	surface.Hide(ui.CastOverlay)
	surface.SetIcon(ui.CastIcon, icon.Cast)
}

func (s *Session) leaveConnected() {
	s.must(s.fsm.To(Disconnected))

	s.isCasting = false
	s.handle = nil
	s.metrics.SetCasting(false)
	s.clearCastUI()
	s.host.SetCasting(false)

	resume := !s.stoppedByUs
	s.stoppedByUs = false
	s.log.Infof("disconnected from %s (resume locally: %t)", s.receiverName, resume)

	s.must(s.fsm.To(s.idlePhase()))

	if resume {
		s.host.Resume()
	}
}

func (s *Session) idlePhase() Phase {
	if s.hasReceivers {
		return ReceiversAvailable
	}
	return NoReceivers
}

// Stop ends the session. Failures are logged. With resume the local
// player takes over again; without it playback simply ends.
func (s *Session) Stop(ctx context.Context, resume bool) {
	switch s.fsm.Phase() {
	case Connecting:
		s.gen++
		s.must(s.fsm.To(s.idlePhase()))
		return
	case Connected:
	default:
		return
	}

	s.stoppedByUs = true
	s.stopHandle(ctx, s.handle)

	if s.fsm.Phase() == Connected {
		s.leaveConnected()
	}

	if resume {
		s.host.Resume()
	}
}

func (s *Session) stopHandle(ctx context.Context, handle Handle) {
	ctx, cancel := context.WithTimeout(ctx, s.stopTimeout)
	defer cancel()

	if err := handle.Stop(ctx); err != nil {
		s.log.Warnf("stop session: %v", err)
	}
}

// SetSource replaces the source sent to the receiver.
func (s *Session) SetSource(src source.Source, contentType string) {
	s.castSource = &src
	s.contentType = contentType
	if s.isCasting {
		s.sendStream()
	}
}

// SetMediaInfo replaces the display metadata.
func (s *Session) SetMediaInfo(info MediaInfo) {
	s.mediaInfo = &info
	if s.isCasting {
		s.send(TypeMediaInfo, info)
	}
}

// SendToken pushes a refreshed auth token.
func (s *Session) SendToken(token string) {
	s.send(TypeVidgo, VidgoData{Token: token})
}

func (s *Session) sendStream() {
	src := s.host.Source()
	if s.castSource != nil {
		src = *s.castSource
	}

	contentType := s.contentType
	if contentType == "" {
		contentType = src.ContentType(s.host.Options().Type)
	}

	data := StreamData{
		Type:     contentType,
		Stream:   StreamSource{URL: src.URL, DRM: src.DRM},
		SeekTime: s.seekTime,
	}

	if s.host.Options().IsVidgo && s.token != nil {
		token, err := s.token()
		if err != nil {
			s.log.Warnf("vidgo token: %v", err)
		}
		data.VidgoToken = token
	}

	s.send(TypeStream, data)
}

// send is best effort: only while casting, failures are logged.
func (s *Session) send(typ string, data any) {
	if !s.isCasting || s.handle == nil {
		s.log.Debugf("dropping %s: not casting", typ)
		return
	}

	payload, err := Encode(typ, data)
	if err != nil {
		s.log.Errorf("%v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := s.handle.SendMessage(ctx, constant.CastNamespace, payload); err != nil {
		s.log.Warnf("send %s: %v", typ, err)
		return
	}
	s.metrics.IncCastMessages("out", typ)
}

func (s *Session) command(event string, value any) {
	s.send(TypePlayer, PlayerData{Event: event, Value: value})
}

// TogglePlayPause asks the receiver to flip playback.
func (s *Session) TogglePlayPause() {
	s.command(EventPlaying, !s.host.PlayerState().IsPlaying)
}

// ToggleMute asks the receiver to flip muting.
func (s *Session) ToggleMute() {
	s.command(EventMute, !s.host.PlayerState().IsMuted)
}

// Skip moves the remote playhead by SkipSeconds.
func (s *Session) Skip(forward bool) {
	if forward {
		s.command(EventForward, SkipSeconds)
	} else {
		s.command(EventRewind, SkipSeconds)
	}
}

// Restart replays from the beginning.
func (s *Session) Restart() {
	s.command(EventRestart, true)
}

// Seek moves the remote playhead to an absolute position.
func (s *Session) Seek(seconds float64) {
	s.command(EventSeek, seconds)
}

// ToggleTextTracks flips caption visibility on the receiver.
func (s *Session) ToggleTextTracks() {
	s.textTrackVisible = !s.textTrackVisible
	s.command(EventTextTracks, s.textTrackVisible)
}

// Unsupported logs a command that has no remote equivalent.
func (s *Session) Unsupported(name string) {
	s.log.Debugf("%s is not available while casting", name)
}

// onMessage handles everything the receiver sends. Malformed messages are
// logged and dropped.
func (s *Session) onMessage(payload []byte) {
	env, err := Decode(payload)
	if err != nil {
		s.drop(err)
		return
	}
	s.metrics.IncCastMessages("in", env.Type)

	switch env.Type {
	case TypePlayer:
		data, err := DecodeData[PlayerData](env)
		if err != nil {
			s.drop(err)
			return
		}
		s.onPlayerEvent(data)
	case TypeInfo:
		data, err := DecodeData[InfoData](env)
		if err != nil {
			s.drop(err)
			return
		}
		s.remoteTime = data.CurrentTime
		s.host.SavePosition(data.CurrentTime)
	case TypePlayerLoaded:
		data, err := DecodeData[PlayerLoadedData](env)
		if err != nil {
			s.drop(err)
			return
		}
		texts, videos := data.Tracks()
		s.host.Update(func(st *state.PlayerState) {
			st.TextTracks = texts
			st.VideoTracks = videos
		})
		if len(texts) > 0 {
			s.host.Surface().Show(ui.CaptionsButton)
		}
	default:
		s.drop(fmt.Errorf("%w: unknown type %q", ErrMalformed, env.Type))
	}
}

func (s *Session) drop(err error) {
	s.log.Warnf("dropping inbound message: %v", err)
}

func (s *Session) onPlayerEvent(data PlayerData) {
	surface := s.host.Surface()

	switch data.Event {
	case EventPlaying:
		playing, ok := data.Bool()
		if !ok {
			s.drop(fmt.Errorf("%w: playing without a boolean", ErrMalformed))
			return
		}
		s.host.Update(func(st *state.PlayerState) { st.IsPlaying = playing })
		surface.SetIcon(ui.PlayButton, lo.Ternary(playing, icon.Pause, icon.Play))
	case EventMute:
		muted, ok := data.Bool()
		if !ok {
			s.drop(fmt.Errorf("%w: mute without a boolean", ErrMalformed))
			return
		}
		s.host.Update(func(st *state.PlayerState) { st.IsMuted = muted })
		surface.SetIcon(ui.MuteButton, icon.Volume(1, muted))
	case EventTextTracks:
		if visible, ok := data.Bool(); ok {
			s.textTrackVisible = visible
		}
	case EventAbort, EventEmptied, EventEnded:
		surface.Hide(ui.Transport)
		surface.Hide(ui.Seekers)
		if data.Event == EventEnded {
			s.host.Update(func(st *state.PlayerState) {
				st.IsPlaying = false
				st.UIState = state.UIEnded
			})
		}
	case EventCanPlayThrough, EventLoadedData:
		surface.Show(ui.Transport)
		if s.contentType == ContentChannel {
			surface.Hide(ui.Seekers)
		} else {
			surface.Show(ui.Seekers)
		}
		s.host.Update(func(st *state.PlayerState) {
			if st.UIState == state.UILoading || st.UIState == state.UIEnded {
				st.UIState = state.UINone
			}
		})
	default:
		s.log.Debugf("ignoring player event %q", data.Event)
	}
}

// must logs a transition the session believed legal; it never panics.
func (s *Session) must(err error) {
	if err != nil {
		s.log.Errorf("%v", err)
	}
}
