package focus

import "sync"

// TransitionHook is invoked after an observer has been told about a real
// focus transition. The Manager uses it to feed metrics and the event log.
type TransitionHook func(channel string, state State)

// Channel is a named arbitration slot with a fixed priority. Lower numeric
// priority outranks higher. A channel holds at most one observer at a time;
// a tenure always ends with a terminal StateNone.
//
// The channel's own mutex guards its fields so the manager can snapshot
// them from caller goroutines; observers are always notified outside it.
type Channel struct {
	name     string
	priority uint
	hook     TransitionHook

	mu         sync.Mutex
	observer   Observer
	activityID string
	focus      State
}

func newChannel(name string, priority uint, hook TransitionHook) *Channel {
	return &Channel{name: name, priority: priority, hook: hook, focus: StateNone}
}

func (c *Channel) Name() string { return c.name }

func (c *Channel) Priority() uint { return c.priority }

// HigherPriorityThan reports whether c outranks other.
func (c *Channel) HigherPriorityThan(other *Channel) bool {
	return c.priority < other.priority
}

// Focus returns the last state delivered to the current observer.
func (c *Channel) Focus() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

func (c *Channel) SetActivityID(id string) {
	c.mu.Lock()
	c.activityID = id
	c.mu.Unlock()
}

func (c *Channel) ActivityID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activityID
}

// SetObserver replaces the current observer. A previous observer receives a
// single terminal StateNone before the replacement is installed. The new
// observer inherits the cached focus silently; the caller's subsequent
// SetFocus corrects it.
func (c *Channel) SetObserver(obs Observer) (replaced bool) {
	c.mu.Lock()
	prev := c.observer
	c.mu.Unlock()

	if prev != nil {
		prev.OnFocusChanged(StateNone)
	}

	c.mu.Lock()
	c.observer = obs
	c.mu.Unlock()
	return prev != nil
}

// SetFocus caches the new state and notifies the observer. Setting the
// already-cached state is a no-op with no callback. A transition to
// StateNone ends the tenure: the observer and activity id are cleared after
// the final callback is arranged.
func (c *Channel) SetFocus(state State) {
	c.mu.Lock()
	if state == c.focus {
		c.mu.Unlock()
		return
	}
	c.focus = state
	obs := c.observer
	if state == StateNone {
		c.observer = nil
		c.activityID = ""
	}
	c.mu.Unlock()

	if obs != nil {
		obs.OnFocusChanged(state)
	}
	if c.hook != nil {
		c.hook(c.name, state)
	}
}

// ObserverOwnsChannel reports whether obs is the current observer. This is
// an identity comparison, not a value comparison.
func (c *Channel) ObserverOwnsChannel(obs Observer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observer == obs
}

// StopActivity vacates the channel if activityID still names the current
// activity, delivering the terminal StateNone itself. Returns false with no
// effect when the activity has already changed.
func (c *Channel) StopActivity(activityID string) bool {
	c.mu.Lock()
	match := c.activityID == activityID
	c.mu.Unlock()
	if !match {
		return false
	}
	c.SetFocus(StateNone)
	return true
}
