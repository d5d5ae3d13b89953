package cast

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/vidplay/vidplay/source"
	"github.com/vidplay/vidplay/state"
)

// Message types carried in the envelope.
const (
	TypeStream       = "stream"
	TypeMediaInfo    = "media_info"
	TypeVidgo        = "vidgo"
	TypePlayer       = "player"
	TypeInfo         = "info"
	TypePlayerLoaded = "player_loaded"
)

// Player events. The first group are commands sent to the receiver, the
// second are status echoes sent back.
const (
	EventPlaying    = "playing"
	EventMute       = "mute"
	EventTextTracks = "text-tracks"
	EventForward    = "forward"
	EventRewind     = "rewind"
	EventRestart    = "restart"
	EventSeek       = "seek"

	EventAbort          = "abort"
	EventEmptied        = "emptied"
	EventEnded          = "ended"
	EventCanPlayThrough = "canplaythrough"
	EventLoadedData     = "loadeddata"
)

// ContentChannel marks linear content without seeking.
const ContentChannel = "channel"

// SkipSeconds is how far forward and rewind move the remote playhead.
const SkipSeconds = 10

// ErrMalformed wraps every decoding failure.
var ErrMalformed = errors.New("malformed cast message")

// Envelope is the frame of every message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// StreamSource is the remote playback source.
type StreamSource struct {
	URL string      `json:"url"`
	DRM *source.DRM `json:"drm,omitempty"`
}

// StreamData asks the receiver to play a source.
type StreamData struct {
	Type       string       `json:"type"`
	Stream     StreamSource `json:"stream"`
	SeekTime   float64      `json:"seekTime"`
	VidgoToken string       `json:"vidgoToken,omitempty"`
}

// MediaInfo is display metadata for the receiver.
type MediaInfo struct {
	VidTitle    string `json:"vidTitle"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

// VidgoData carries a refreshed auth token.
type VidgoData struct {
	Token string `json:"token"`
}

// PlayerData is a remote-control command or a status echo.
type PlayerData struct {
	Event string `json:"event"`
	Value any    `json:"value,omitempty"`
}

// InfoData is the periodic position sync from the receiver.
type InfoData struct {
	CurrentTime float64 `json:"currentTime"`
}

// RemoteTrack is a text track on the receiver.
type RemoteTrack struct {
	ID       int    `json:"id"`
	Label    string `json:"label,omitempty"`
	Language string `json:"language,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// RemoteVariant is a video rendition on the receiver.
type RemoteVariant struct {
	ID        int    `json:"id"`
	Bandwidth int    `json:"bandwidth,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Language  string `json:"language,omitempty"`
}

// PlayerLoadedData lists the tracks available on the receiver.
type PlayerLoadedData struct {
	Texts    []RemoteTrack   `json:"texts"`
	Variants []RemoteVariant `json:"variants"`
}

// Encode frames data as a message of the given type.
func Encode(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}
	return json.Marshal(Envelope{Type: typ, Data: raw})
}

// Decode parses the envelope of payload.
func Decode(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

// DecodeData parses the data of env into T.
func DecodeData[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, fmt.Errorf("%w: %s without data", ErrMalformed, env.Type)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
	}
	return out, nil
}

// Bool interprets a player value as a boolean.
func (p PlayerData) Bool() (bool, bool) {
	switch v := p.Value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}

// Float interprets a player value as a number.
func (p PlayerData) Float() (float64, bool) {
	switch v := p.Value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Tracks converts the receiver's lists into player tracks.
func (d PlayerLoadedData) Tracks() (texts, videos []state.Track) {
	texts = lo.Map(d.Texts, func(t RemoteTrack, _ int) state.Track {
		return state.Track{ID: strconv.Itoa(t.ID), Label: t.Label, Language: t.Language, Kind: t.Kind}
	})
	videos = lo.Map(d.Variants, func(v RemoteVariant, _ int) state.Track {
		label := fmt.Sprintf("%dp", v.Height)
		return state.Track{ID: strconv.Itoa(v.ID), Label: label, Language: v.Language, Bitrate: v.Bandwidth, Width: v.Width, Height: v.Height}
	})
	return texts, videos
}

// Schema lists every message type with its data, for documentation.
var Schema = map[string]any{
	TypeStream:       StreamData{},
	TypeMediaInfo:    MediaInfo{},
	TypeVidgo:        VidgoData{},
	TypePlayer:       PlayerData{},
	TypeInfo:         InfoData{},
	TypePlayerLoaded: PlayerLoadedData{},
}
