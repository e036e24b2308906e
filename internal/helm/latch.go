package helm

import "time"

// Action is a directional control a key can be bound to.
type Action uint8

const (
	ActionNone Action = iota
	ActionForward
	ActionBackward
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	actionCount
)

// KeyLatch turns key-press events into held keys for input sources that
// never report a release, such as a terminal. A key counts as held until
// the hold window passes without a repeat.
type KeyLatch struct {
	hold    time.Duration
	pressed [actionCount]time.Time
}

// NewKeyLatch creates a latch with the given hold window.
func NewKeyLatch(hold time.Duration) *KeyLatch {
	return &KeyLatch{hold: hold}
}

// Press records a press or auto-repeat of the action at now.
func (l *KeyLatch) Press(a Action, now time.Time) {
	if a == ActionNone || a >= actionCount {
		return
	}
	l.pressed[a] = now
}

// Release drops the action immediately.
func (l *KeyLatch) Release(a Action) {
	if a >= actionCount {
		return
	}
	l.pressed[a] = time.Time{}
}

// Clear releases every action.
func (l *KeyLatch) Clear() {
	l.pressed = [actionCount]time.Time{}
}

// Keys returns the held state at now.
func (l *KeyLatch) Keys(now time.Time) Keys {
	return Keys{
		Forward:  l.held(ActionForward, now),
		Backward: l.held(ActionBackward, now),
		Left:     l.held(ActionLeft, now),
		Right:    l.held(ActionRight, now),
		Up:       l.held(ActionUp, now),
		Down:     l.held(ActionDown, now),
	}
}

func (l *KeyLatch) held(a Action, now time.Time) bool {
	t := l.pressed[a]
	return !t.IsZero() && now.Sub(t) < l.hold
}

// ActionForRune maps the default WASD/QE bindings.
func ActionForRune(r rune) Action {
	switch r {
	case 'w', 'W':
		return ActionForward
	case 's', 'S':
		return ActionBackward
	case 'a', 'A':
		return ActionLeft
	case 'd', 'D':
		return ActionRight
	case 'q', 'Q', ' ':
		return ActionUp
	case 'e', 'E', 'c', 'C':
		return ActionDown
	}
	return ActionNone
}
