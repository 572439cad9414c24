package conversation

import "time"

// TurnReport summarizes one handled turn for an Observer.
type TurnReport struct {
	// Sentiment is the clamped score. Zero when scoring failed.
	Sentiment float64

	// Generation is how long the generator ran. Zero when the turn was
	// abandoned before generating.
	Generation time.Duration

	// Recorded is false when scoring failed and nothing was stored.
	Recorded bool

	// Fallback is true when the recorded reply is the fallback text.
	Fallback bool

	Errors []error
}

// Observer is notified after every turn and when the session ends.
// Calls happen with the loop locked, so implementations must not call back
// into the Loop.
type Observer interface {
	ObserveTurn(TurnReport)
	ObserveEnd(turns int)
}

// WithObserver registers an observer. Multiple observers are called in
// registration order.
func WithObserver(o Observer) Option {
	return func(l *Loop) {
		if o != nil {
			l.observers = append(l.observers, o)
		}
	}
}

func (l *Loop) notifyTurn(r TurnReport) {
	for _, o := range l.observers {
		o.ObserveTurn(r)
	}
}

func (l *Loop) notifyEnd(turns int) {
	for _, o := range l.observers {
		o.ObserveEnd(turns)
	}
}
