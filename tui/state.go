package tui

type screen int

const (
	playbackState screen = iota
	captionsState
)
