// Package handlers serve.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/enzosantiagosrv1245-cell/aula/game"
)

// HandleRoot serves the game client page.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "static/index.html")
}

// NewStatusHandler exposes the health-check snapshot: online player count,
// process uptime and the started flag.
func NewStatusHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(engine.Status()); err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
		}
	}
}
