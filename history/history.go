// Package history remembers the last playback position so that reopening
// the same source resumes where it stopped. It holds a single slot: a new
// source replaces whatever was stored before.
package history

import (
	"time"

	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/where"
)

// Position is the saved playhead of one source.
type Position struct {
	Fingerprint string    `json:"fingerprint"`
	Seconds     float64   `json:"seconds"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store persists the slot through gache on the active filesystem backend.
type Store struct {
	cacher *gache.Cache[*Position]
}

// New returns a store backed by the file at path.
func New(path string) *Store {
	return &Store{
		cacher: gache.New[*Position](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// Session returns a store in the ephemeral session file.
func Session() *Store {
	return New(where.Session())
}

// Get returns the stored position, if any.
func (s *Store) Get() (mo.Option[Position], error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return mo.None[Position](), err
	}
	if expired || cached == nil {
		return mo.None[Position](), nil
	}
	return mo.Some(*cached), nil
}

// Lookup returns the stored position only if it belongs to fingerprint.
func (s *Store) Lookup(fingerprint string) (mo.Option[float64], error) {
	saved, err := s.Get()
	if err != nil {
		return mo.None[float64](), err
	}

	if p, ok := saved.Get(); ok && p.Fingerprint == fingerprint && p.Seconds > 0 {
		return mo.Some(p.Seconds), nil
	}
	return mo.None[float64](), nil
}

// Save replaces the slot.
func (s *Store) Save(fingerprint string, seconds float64) error {
	return s.cacher.Set(&Position{
		Fingerprint: fingerprint,
		Seconds:     seconds,
		SavedAt:     time.Now(),
	})
}

// Clear empties the slot.
func (s *Store) Clear() error {
	return s.cacher.Set(nil)
}
