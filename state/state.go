// Package state holds the unified player state record.
package state

import "github.com/samber/lo"

// UIState is the coarse presentation mode rendered by the UI.
type UIState string

const (
	UINone    UIState = "none"
	UILoading UIState = "loading"
	UIError   UIState = "error"
	UIEnded   UIState = "ended"
)

// Valid reports whether u is one of the known modes.
func (u UIState) Valid() bool {
	return lo.Contains([]UIState{UINone, UILoading, UIError, UIEnded}, u)
}

// Engine identifies the playback engine currently attached.
type Engine string

const (
	EngineNone     Engine = "NONE"
	EngineNative   Engine = "NATIVE"
	EngineAdaptive Engine = "ADAPTIVE_HTTP"
	EngineDash     Engine = "DRM_DASH"
)

// Track is a selectable text, video or audio rendition.
type Track struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Language string `json:"language,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Bitrate  int    `json:"bitrate,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// PlayerState is the single unified state record.
type PlayerState struct {
	Engine  Engine  `json:"engine"`
	Loaded  bool    `json:"loaded"`
	UIState UIState `json:"uiState"`

	TextTracks  []Track `json:"textTracks"`
	VideoTracks []Track `json:"videoTracks"`
	AudioTracks []Track `json:"audioTracks"`

	SelectedTextTrackID  string `json:"selectedTextTrackId"`
	SelectedVideoTrackID string `json:"selectedVideoTrackId"`
	SelectedAudioTrackID string `json:"selectedAudioTrackId"`

	IsPlaying     bool `json:"isPlaying"`
	IsMuted       bool `json:"isMuted"`
	ShowPIP       bool `json:"showPIP"`
	IsPIP         bool `json:"isPIP"`
	IsCasting     bool `json:"isCasting"`
	IsAirplay     bool `json:"isAirplay"`
	HasUserPaused bool `json:"hasUserPaused"`
}

// Default returns the state of a player with nothing attached.
func Default() PlayerState {
	return PlayerState{
		Engine:      EngineNone,
		UIState:     UINone,
		TextTracks:  []Track{},
		VideoTracks: []Track{},
		AudioTracks: []Track{},
	}
}

// Normalize fills every zero field that has a non-zero default.
func (s PlayerState) Normalize() PlayerState {
	if s.Engine == "" {
		s.Engine = EngineNone
	}
	if !s.UIState.Valid() {
		s.UIState = UINone
	}
	if s.TextTracks == nil {
		s.TextTracks = []Track{}
	}
	if s.VideoTracks == nil {
		s.VideoTracks = []Track{}
	}
	if s.AudioTracks == nil {
		s.AudioTracks = []Track{}
	}
	return s
}

// Clone copies the track slices so the result shares nothing with s.
func (s PlayerState) Clone() PlayerState {
	s.TextTracks = append([]Track{}, s.TextTracks...)
	s.VideoTracks = append([]Track{}, s.VideoTracks...)
	s.AudioTracks = append([]Track{}, s.AudioTracks...)
	return s
}

// Reset returns the defaults, keeping the flags that do not belong to an engine.
func (s PlayerState) Reset() PlayerState {
	d := Default()
	d.IsCasting = s.IsCasting
	d.IsPIP = s.IsPIP
	d.IsAirplay = s.IsAirplay
	return d
}
