package state

// Store owns the current PlayerState. It is not safe for concurrent use;
// the player confines it to its event loop.
type Store struct {
	current  PlayerState
	onChange func(PlayerState)
}

// NewStore returns a store holding Default().
func NewStore() *Store {
	return &Store{current: Default()}
}

// OnChange registers the state-change callback, replacing any previous one.
func (s *Store) OnChange(fn func(PlayerState)) {
	s.onChange = fn
}

// Get returns a copy of the current state.
func (s *Store) Get() PlayerState {
	return s.current.Clone()
}

// Update applies fn to a copy of the current state, stores the normalized
// result and invokes the change callback before returning it.
func (s *Store) Update(fn func(*PlayerState)) PlayerState {
	next := s.current.Clone()
	fn(&next)
	return s.commit(next)
}

// Set replaces the state; missing fields resolve to defaults.
func (s *Store) Set(next PlayerState) PlayerState {
	return s.commit(next.Clone())
}

// Reset restores defaults while keeping casting, PIP and AirPlay flags.
func (s *Store) Reset() PlayerState {
	return s.commit(s.current.Reset())
}

func (s *Store) commit(next PlayerState) PlayerState {
	s.current = next.Normalize()

	if s.onChange != nil {
		s.onChange(s.current.Clone())
	}

	return s.current.Clone()
}
