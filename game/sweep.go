package game

import (
	"context"
	"time"
)

const statsInterval = 10 * time.Minute

// RunSweep periodically evicts players whose last activity is older than the
// idle timeout. The sweep period equals the timeout, matching the broadcast
// contract: an idle player is gone by the sweep after their timeout expires.
func (e *Engine) RunSweep(ctx context.Context) {
	ticker := time.NewTicker(e.idleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.sweep(now)
		}
	}
}

// sweep removes stale players and emits, per player, the exact sequence an
// explicit disconnect produces, tagged with reason "inactivity".
func (e *Engine) sweep(now time.Time) {
	evicted := e.room.Evict(now, e.idleTimeout)
	for _, player := range evicted {
		e.log.Info("evicting idle player", "player", player.Name, "lastActivity", player.LastActivity)
		e.departed(player, "inactivity")
	}
}

// RunStats logs a coarse utilization line every ten minutes.
func (e *Engine) RunStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.log.Info("server stats",
				"playersOnline", e.room.Count(),
				"uptimeMin", int64(time.Since(e.startTime).Minutes()),
				"gameStarted", e.room.Started(),
			)
		}
	}
}
