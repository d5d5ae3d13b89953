package player

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned for a lifecycle move outside the table.
var ErrIllegalTransition = errors.New("illegal lifecycle transition")

// Lifecycle is the engine attachment state of the player.
type Lifecycle string

const (
	LifecycleNone      Lifecycle = "NONE"
	LifecycleAttaching Lifecycle = "ATTACHING"
	LifecycleAttached  Lifecycle = "ATTACHED"
)

type lifecycleEvent string

const (
	eventSelect   lifecycleEvent = "select"
	eventAttached lifecycleEvent = "attached"
	eventFailed   lifecycleEvent = "failed"
	eventDetach   lifecycleEvent = "detach"
	eventFatal    lifecycleEvent = "fatal"
	eventReload   lifecycleEvent = "reload"
)

type transition struct {
	From  Lifecycle
	Event lifecycleEvent
	To    Lifecycle
}

var lifecycleTable = []transition{
	{LifecycleNone, eventSelect, LifecycleAttaching},
	{LifecycleAttaching, eventAttached, LifecycleAttached},
	{LifecycleAttaching, eventFailed, LifecycleNone},
	{LifecycleAttaching, eventDetach, LifecycleNone},
	{LifecycleAttached, eventDetach, LifecycleNone},
	{LifecycleAttached, eventFatal, LifecycleNone},
	{LifecycleAttached, eventReload, LifecycleAttached},
}

// lifecycle is strict: unknown transitions are errors and leave the state alone.
type lifecycle struct {
	state Lifecycle
	index map[string]Lifecycle
}

func newLifecycle() *lifecycle {
	idx := make(map[string]Lifecycle, len(lifecycleTable))
	for _, t := range lifecycleTable {
		idx[key(t.From, t.Event)] = t.To
	}
	return &lifecycle{state: LifecycleNone, index: idx}
}

func (l *lifecycle) State() Lifecycle {
	return l.state
}

func (l *lifecycle) Fire(event lifecycleEvent) (Lifecycle, error) {
	to, ok := l.index[key(l.state, event)]
	if !ok {
		return l.state, fmt.Errorf("%w: state=%s event=%s", ErrIllegalTransition, l.state, event)
	}
	l.state = to
	return to, nil
}

func key(from Lifecycle, event lifecycleEvent) string {
	return string(from) + "|" + string(event)
}
