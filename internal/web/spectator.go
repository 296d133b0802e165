package web

import (
	"net/http"

	"github.com/justinabrahms/otbchess/internal/session"
)

// GameIndex is a game listed for spectators.
type GameIndex struct {
	session.Summary
	Watchers int `json:"watchers"`
}

// ListGamesHandler lists every hosted game with its watcher count, most
// recently active first.
func (s *Service) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	summaries := s.sessions.List()
	games := make([]GameIndex, 0, len(summaries))
	for _, sum := range summaries {
		games = append(games, GameIndex{Summary: sum, Watchers: s.hub.Watchers(sum.ID)})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	})
}
