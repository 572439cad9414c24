package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turns(n int) []Turn {
	out := make([]Turn, n)
	for i := range out {
		out[i] = NewTurn(fmt.Sprintf("T%d user", i+1), fmt.Sprintf("T%d bot", i+1))
	}
	return out
}

func TestWindowRecentOrdering(t *testing.T) {
	w := NewWindow()
	all := turns(10)
	for _, turn := range all {
		w.Append(turn)
	}

	assert.Equal(t, all[5:], w.Recent(5), "Recent(5) must be T6..T10 in order")
	assert.Equal(t, 10, w.Len())
}

func TestWindowRecentBounds(t *testing.T) {
	w := NewWindow()
	assert.Nil(t, w.Recent(5))

	all := turns(3)
	for _, turn := range all {
		w.Append(turn)
	}

	tests := []struct {
		name string
		n    int
		want []Turn
	}{
		{name: "fewer stored than requested", n: 5, want: all},
		{name: "exact", n: 3, want: all},
		{name: "one", n: 1, want: all[2:]},
		{name: "zero", n: 0, want: nil},
		{name: "negative", n: -1, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Recent(tt.n))
		})
	}
}

func TestWindowRecentReturnsCopy(t *testing.T) {
	w := NewWindow()
	w.Append(NewTurn("hi", "hello"))

	got := w.Recent(1)
	got[0].BotText = "mutated"

	assert.Equal(t, "hello", w.Recent(1)[0].BotText)
}

func TestWindowUnboundedByDefault(t *testing.T) {
	w := NewWindow()
	for _, turn := range turns(1000) {
		w.Append(turn)
	}

	assert.Equal(t, 0, w.Capacity())
	assert.Equal(t, 1000, w.Len())
	assert.Equal(t, "T1 user", w.All()[0].UserText)
}

func TestWindowWithCapacity(t *testing.T) {
	w := NewWindow(WithCapacity(5))
	all := turns(23)
	for i, turn := range all {
		w.Append(turn)
		require.LessOrEqual(t, w.Len(), 5, "after %d appends", i+1)
	}

	assert.Equal(t, 5, w.Capacity())
	assert.Equal(t, all[18:], w.All())
	assert.Equal(t, all[20:], w.Recent(3))
	assert.LessOrEqual(t, len(w.turns), 10, "backing storage stays bounded")
}

func TestWithCapacityIgnoresNonPositive(t *testing.T) {
	assert.Equal(t, 0, NewWindow(WithCapacity(0)).Capacity())
	assert.Equal(t, 0, NewWindow(WithCapacity(-3)).Capacity())
}
