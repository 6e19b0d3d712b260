package board

import (
	"sync"
)

// The ordered stroke history of one room, with an undo/redo buffer
type StrokeLog struct {
	history   []Stroke
	redoStack []Stroke
	mu        sync.RWMutex
}

// Creates an empty stroke log
func NewStrokeLog() *StrokeLog {
	return &StrokeLog{
		history:   make([]Stroke, 0),
		redoStack: make([]Stroke, 0),
	}
}

// Pushes a new stroke. Drawing after an undo invalidates the old redo
// branch, so the redo stack is emptied here unconditionally.
func (l *StrokeLog) Append(s Stroke) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = append(l.history, s)
	l.redoStack = l.redoStack[:0]
}

// Pops the most recent stroke onto the redo stack and returns it.
// Returns false if the history is empty.
func (l *StrokeLog) Undo() (Stroke, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.history) == 0 {
		return Stroke{}, false
	}
	s := l.history[len(l.history)-1]
	l.history = l.history[:len(l.history)-1]
	l.redoStack = append(l.redoStack, s)
	return s, true
}

// Moves the top of the redo stack back onto the history and returns it.
// Returns false if there is nothing to redo.
func (l *StrokeLog) Redo() (Stroke, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.redoStack) == 0 {
		return Stroke{}, false
	}
	s := l.redoStack[len(l.redoStack)-1]
	l.redoStack = l.redoStack[:len(l.redoStack)-1]
	l.history = append(l.history, s)
	return s, true
}

// Empties both the history and the redo stack
func (l *StrokeLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = l.history[:0]
	l.redoStack = l.redoStack[:0]
}

// Returns a point-in-time copy of the history, used to replay the full
// room state to a newly joined client. Never nil, so it marshals as [].
func (l *StrokeLog) Snapshot() []Stroke {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snapshot := make([]Stroke, len(l.history))
	copy(snapshot, l.history)
	return snapshot
}

// Current history length
func (l *StrokeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.history)
}

// Current redo stack depth
func (l *StrokeLog) RedoLen() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.redoStack)
}
