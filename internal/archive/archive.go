// Package archive keeps finished (or abandoned) game transcripts after their
// session is gone.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/justinabrahms/otbchess/internal/chess"
)

var ErrNotFound = errors.New("archived game not found")

// Entry is one archived transcript.
type Entry struct {
	ID         int64         `json:"id,string"`
	PGN        string        `json:"pgn"`
	Filename   string        `json:"filename"`
	Headers    chess.Headers `json:"headers"`
	Result     string        `json:"result"`
	Moves      int           `json:"moves"`
	ArchivedAt time.Time     `json:"archivedAt"`
}

// NewEntry captures g's transcript under id.
func NewEntry(id int64, g *chess.Game, now time.Time) Entry {
	return Entry{
		ID:         id,
		PGN:        g.PGN(),
		Filename:   g.Filename(),
		Headers:    g.Headers(),
		Result:     g.Result(),
		Moves:      len(g.History()),
		ArchivedAt: now,
	}
}

type Store interface {
	Save(ctx context.Context, e Entry) error
	Get(ctx context.Context, id int64) (*Entry, error)
	Delete(ctx context.Context, id int64) error
}
