package history

import (
	"time"

	"github.com/samber/mo"
)

// Memory is a Store-compatible slot that is never persisted.
type Memory struct {
	slot *Position
}

// NewMemory returns an empty in-memory slot.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Lookup(fingerprint string) (mo.Option[float64], error) {
	if m.slot != nil && m.slot.Fingerprint == fingerprint && m.slot.Seconds > 0 {
		return mo.Some(m.slot.Seconds), nil
	}
	return mo.None[float64](), nil
}

func (m *Memory) Save(fingerprint string, seconds float64) error {
	m.slot = &Position{Fingerprint: fingerprint, Seconds: seconds, SavedAt: time.Now()}
	return nil
}

func (m *Memory) Clear() error {
	m.slot = nil
	return nil
}
