package focus

// Observer is the sink for one channel tenure. OnFocusChanged is called on
// the manager's worker goroutine, never with a manager lock held, and never
// with the same state twice in a row. An observer may call back into the
// Manager from inside the callback; such calls enqueue and run after the
// current task.
type Observer interface {
	OnFocusChanged(State)
}
