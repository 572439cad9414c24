// Package session holds the in-process conversation memory: the ordered turns
// of the current session and the bounded slice of them surfaced to prompts.
package session

import "sync"

// Turn is one completed exchange. It is immutable once created.
type Turn struct {
	UserText string
	BotText  string
}

// NewTurn creates a turn.
func NewTurn(userText, botText string) Turn {
	return Turn{UserText: userText, BotText: botText}
}

// Window stores the turns of a session in chronological order.
//
// By default storage is unbounded and only reads are bounded through Recent,
// so a long session keeps every turn in memory. WithCapacity switches to a
// hard cap that evicts the oldest turns.
type Window struct {
	turns    []Turn
	capacity int
	mu       sync.RWMutex
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithCapacity caps stored turns at n, evicting the oldest first. n <= 0
// keeps storage unbounded.
func WithCapacity(n int) WindowOption {
	return func(w *Window) {
		if n > 0 {
			w.capacity = n
		}
	}
}

// NewWindow creates an empty window.
func NewWindow(opts ...WindowOption) *Window {
	w := &Window{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Append adds a turn at the most recent end.
func (w *Window) Append(turn Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, turn)
	if w.capacity > 0 && len(w.turns) > 2*w.capacity {
		// Compact in bulk so eviction stays amortized O(1)
		w.turns = append(w.turns[:0:0], w.turns[len(w.turns)-w.capacity:]...)
	}
}

// Recent returns the last min(n, Len()) turns, oldest first. The slice is a
// copy. n <= 0 returns nil.
func (w *Window) Recent(n int) []Turn {
	w.mu.RLock()
	defer w.mu.RUnlock()

	visible := w.visible()
	if n <= 0 || len(visible) == 0 {
		return nil
	}
	if n > len(visible) {
		n = len(visible)
	}
	out := make([]Turn, n)
	copy(out, visible[len(visible)-n:])
	return out
}

// All returns every stored turn, oldest first.
func (w *Window) All() []Turn {
	w.mu.RLock()
	defer w.mu.RUnlock()

	visible := w.visible()
	out := make([]Turn, len(visible))
	copy(out, visible)
	return out
}

// Len returns the number of stored turns.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.visible())
}

// Capacity returns the storage cap, zero when unbounded.
func (w *Window) Capacity() int {
	return w.capacity
}

func (w *Window) visible() []Turn {
	if w.capacity > 0 && len(w.turns) > w.capacity {
		return w.turns[len(w.turns)-w.capacity:]
	}
	return w.turns
}
