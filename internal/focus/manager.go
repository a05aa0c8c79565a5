package focus

import (
	"context"
	"log"
	"sort"
	"sync"

	"aria/client/internal/events"
	"aria/client/internal/executor"
)

// ChannelSpec configures one arbitration channel. Priorities rank channels:
// lower numeric value wins the foreground. Names and priorities must be
// unique across the table; colliding entries are dropped at construction.
type ChannelSpec struct {
	Name     string `json:"name"`
	Priority uint   `json:"priority"`
}

// ChannelState is a point-in-time view of one channel for diagnostics.
type ChannelState struct {
	Name       string `json:"name"`
	Priority   uint   `json:"priority"`
	Focus      State  `json:"focus"`
	ActivityID string `json:"activity_id,omitempty"`
}

// Manager arbitrates focus between channels. Public methods run on the
// caller goroutine and only validate and enqueue; every state mutation runs
// on the serial executor's worker, so observers see a consistent single
// foreground at every task boundary.
type Manager struct {
	channels map[string]*Channel // immutable after construction

	mu     sync.Mutex
	active []*Channel // channels with non-none focus, highest rank first

	exec *executor.SerialExecutor
	rec  *events.Store
}

// NewManager builds the channel table from specs, in order. Entries that
// reuse a name or priority are rejected and logged; the rest proceed.
func NewManager(specs []ChannelSpec, rec *events.Store) *Manager {
	m := &Manager{
		channels: make(map[string]*Channel, len(specs)),
		exec:     executor.New(),
		rec:      rec,
	}

	byPriority := make(map[uint]string, len(specs))
	for _, spec := range specs {
		if _, ok := m.channels[spec.Name]; ok {
			log.Printf("[focus] createChannelFailed reason=channelNameExists channel=%s priority=%d", spec.Name, spec.Priority)
			m.record(spec.Name, "createChannelFailed", map[string]any{"reason": "channelNameExists", "priority": spec.Priority})
			metricConfigRejected.Inc()
			continue
		}
		if holder, ok := byPriority[spec.Priority]; ok {
			log.Printf("[focus] createChannelFailed reason=channelPriorityExists channel=%s priority=%d holder=%s", spec.Name, spec.Priority, holder)
			m.record(spec.Name, "createChannelFailed", map[string]any{"reason": "channelPriorityExists", "priority": spec.Priority, "holder": holder})
			metricConfigRejected.Inc()
			continue
		}
		m.channels[spec.Name] = newChannel(spec.Name, spec.Priority, m.noteTransition)
		byPriority[spec.Priority] = spec.Name
	}
	return m
}

// AcquireChannel hands the channel to observer under activityID. Returns
// false only when the channel name is unknown; the focus outcome arrives
// asynchronously through the observer.
func (m *Manager) AcquireChannel(name string, observer Observer, activityID string) bool {
	ch := m.channels[name]
	if ch == nil {
		log.Printf("[focus] acquireChannelFailed reason=channelNotFound channel=%s", name)
		m.record(name, "acquireChannelFailed", map[string]any{"reason": "channelNotFound"})
		metricAcquireFailures.WithLabelValues("channelNotFound").Inc()
		return false
	}

	metricAcquires.Inc()
	m.exec.Submit(func() { m.acquireChannelHelper(ch, observer, activityID) })
	metricQueueDepth.Set(float64(m.exec.Len()))
	return true
}

// ReleaseChannel gives the channel up. The returned channel is fulfilled
// exactly once: false for an unknown channel, when observer is not the
// current owner, or when the manager has shut down; true as soon as the
// release decision is made. Focus
// callbacks may still be running when the caller unblocks.
func (m *Manager) ReleaseChannel(name string, observer Observer) <-chan bool {
	result := make(chan bool, 1)
	ch := m.channels[name]
	if ch == nil {
		log.Printf("[focus] releaseChannelFailed reason=channelNotFound channel=%s", name)
		m.record(name, "releaseChannelFailed", map[string]any{"reason": "channelNotFound"})
		metricReleaseFailures.WithLabelValues("channelNotFound").Inc()
		result <- false
		return result
	}

	metricReleases.Inc()
	if !m.exec.Submit(func() { m.releaseChannelHelper(ch, observer, result, name) }) {
		result <- false
		return result
	}
	metricQueueDepth.Set(float64(m.exec.Len()))
	return result
}

// StopForegroundActivity stops whatever currently holds the foreground. The
// snapshot happens here on the caller goroutine; the stop task jumps the
// queue so a stop intent is not stuck behind pending acquires. If the
// foreground moved before the task runs, the stop is a no-op.
func (m *Manager) StopForegroundActivity() {
	m.mu.Lock()
	fg := m.highestPriorityActiveChannelLocked()
	if fg == nil {
		m.mu.Unlock()
		log.Printf("[focus] stopForegroundActivityFailed reason=noForegroundActivity")
		m.record("", "stopForegroundActivityFailed", map[string]any{"reason": "noForegroundActivity"})
		return
	}
	activityID := fg.ActivityID()
	m.mu.Unlock()

	metricStops.Inc()
	m.exec.SubmitToFront(func() { m.stopForegroundActivityHelper(fg, activityID) })
	metricQueueDepth.Set(float64(m.exec.Len()))
}

// ChannelStates returns a snapshot of every channel, highest rank first.
func (m *Manager) ChannelStates() []ChannelState {
	out := make([]ChannelState, 0, len(m.channels))
	for _, ch := range m.channels {
		out = append(out, ChannelState{
			Name:       ch.Name(),
			Priority:   ch.Priority(),
			Focus:      ch.Focus(),
			ActivityID: ch.ActivityID(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// Drain blocks until every task enqueued before the call has finished, or
// ctx expires. With all mutation serialized on the worker, a successful
// Drain means every prior operation has settled.
func (m *Manager) Drain(ctx context.Context) error {
	done := make(chan struct{})
	if !m.exec.Submit(func() { close(done) }) {
		return context.Canceled
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown drains the executor and stops its worker.
func (m *Manager) Shutdown() {
	m.exec.Shutdown()
}

func (m *Manager) acquireChannelHelper(ch *Channel, observer Observer, activityID string) {
	m.mu.Lock()
	prevFG := m.highestPriorityActiveChannelLocked()
	ch.SetActivityID(activityID)
	m.insertActiveLocked(ch)
	m.mu.Unlock()

	if ch.SetObserver(observer) {
		m.record(ch.Name(), "observerReplaced", map[string]any{"activity_id": activityID})
	}

	// The loser is always told before the winner so the one-foreground view
	// holds at every callback.
	switch {
	case prevFG == nil || prevFG == ch:
		ch.SetFocus(StateForeground)
	case ch.HigherPriorityThan(prevFG):
		prevFG.SetFocus(StateBackground)
		ch.SetFocus(StateForeground)
	default:
		ch.SetFocus(StateBackground)
	}
}

func (m *Manager) releaseChannelHelper(ch *Channel, observer Observer, result chan<- bool, name string) {
	if !ch.ObserverOwnsChannel(observer) {
		log.Printf("[focus] releaseChannelHelperFailed reason=observerDoesNotOwnChannel channel=%s", name)
		m.record(name, "releaseChannelHelperFailed", map[string]any{"reason": "observerDoesNotOwnChannel"})
		metricReleaseFailures.WithLabelValues("observerDoesNotOwnChannel").Inc()
		result <- false
		return
	}

	// Fulfil before mutating: the caller unblocks as soon as the decision
	// is made.
	result <- true

	m.mu.Lock()
	wasForegrounded := m.isChannelForegroundedLocked(ch)
	m.removeActiveLocked(ch)
	m.mu.Unlock()

	ch.SetFocus(StateNone)
	if wasForegrounded {
		m.foregroundHighestPriorityActiveChannel()
	}
}

func (m *Manager) stopForegroundActivityHelper(fg *Channel, activityID string) {
	// The channel delivers the terminal none itself; a mismatch means the
	// foreground moved between snapshot and execution.
	if !fg.StopActivity(activityID) {
		m.record(fg.Name(), "stopForegroundActivityStale", map[string]any{"activity_id": activityID})
		return
	}

	m.mu.Lock()
	fg.SetActivityID("")
	m.removeActiveLocked(fg)
	m.mu.Unlock()

	m.foregroundHighestPriorityActiveChannel()
}

func (m *Manager) foregroundHighestPriorityActiveChannel() {
	m.mu.Lock()
	next := m.highestPriorityActiveChannelLocked()
	m.mu.Unlock()

	if next != nil {
		next.SetFocus(StateForeground)
	}
}

func (m *Manager) highestPriorityActiveChannelLocked() *Channel {
	if len(m.active) == 0 {
		return nil
	}
	return m.active[0]
}

func (m *Manager) isChannelForegroundedLocked(ch *Channel) bool {
	return m.highestPriorityActiveChannelLocked() == ch
}

func (m *Manager) insertActiveLocked(ch *Channel) {
	for _, a := range m.active {
		if a == ch {
			return
		}
	}
	i := sort.Search(len(m.active), func(i int) bool {
		return ch.HigherPriorityThan(m.active[i])
	})
	m.active = append(m.active, nil)
	copy(m.active[i+1:], m.active[i:])
	m.active[i] = ch
}

func (m *Manager) removeActiveLocked(ch *Channel) {
	for i, a := range m.active {
		if a == ch {
			m.active = append(m.active[:i], m.active[i+1:]...)
			return
		}
	}
}

func (m *Manager) noteTransition(channel string, state State) {
	metricTransitions.WithLabelValues(channel, state.String()).Inc()
	m.record(channel, "focusChanged", map[string]any{"state": state.String()})
}

func (m *Manager) record(channel, typ string, payload map[string]any) {
	if m.rec == nil {
		return
	}
	m.rec.Append(channel, typ, payload)
}
