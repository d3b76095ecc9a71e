package game

import "time"

const (
	chatWindowSpan = time.Minute
	chatBurst      = 5
	maxChatLength  = 200
)

// chatWindow is a per-player sliding window of accepted chat timestamps.
// One player's messages never consume another's budget.
type chatWindow struct {
	stamps []time.Time
}

// allow prunes entries older than the window span, rejects when the pruned
// window is already at the burst limit, and otherwise records now.
func (w *chatWindow) allow(now time.Time) bool {
	kept := w.stamps[:0]
	for _, t := range w.stamps {
		if now.Sub(t) < chatWindowSpan {
			kept = append(kept, t)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= chatBurst {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}
