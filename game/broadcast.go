package game

import (
	"context"
	"time"

	"github.com/enzosantiagosrv1245-cell/aula/models"
)

// RunBroadcast pushes the room snapshot to every connection on a fixed tick
// until ctx is canceled. The snapshot is taken under the room lock but
// delivery happens through the transport's buffered queues, so one slow
// client never delays the next tick.
func (e *Engine) RunBroadcast(ctx context.Context) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.broadcastTick(now)
		}
	}
}

func (e *Engine) broadcastTick(now time.Time) {
	update := e.room.Update(now)
	// No players, no traffic.
	if update.PlayersCount == 0 {
		return
	}
	e.transport.ToRoom(e.room.Name(), models.Message{Type: models.TypeGameStateUpdate, Payload: update})
}
