package chess

import (
	"fmt"
	"io"

	notnil "github.com/notnil/chess"
)

// ImportPGN reads a transcript starting from the standard position and
// replays every move through CommitMove, so only moves legal under these rules
// are accepted. Tag pairs become headers; Result and Termination come from the
// replayed position.
func ImportPGN(r io.Reader, opts ...Option) (*Game, error) {
	decode, err := notnil.PGN(r)
	if err != nil {
		return nil, fmt.Errorf("invalid PGN: %w", err)
	}
	src := notnil.NewGame(decode)

	g := NewGame(opts...)
	h := g.Headers()
	for _, tp := range src.TagPairs() {
		h.Set(tp.Key, tp.Value)
	}
	g.SetHeaders(h)

	for i, m := range src.Moves() {
		from, to := fromNotnil(m.S1()), fromNotnil(m.S2())
		if _, err := g.Play(from, to, promotionFromNotnil(m.Promo())); err != nil {
			return nil, fmt.Errorf("move %d (%s%s): %w", i/2+1, from, to, err)
		}
	}
	return g, nil
}

func fromNotnil(sq notnil.Square) Square {
	return Square{Row: 7 - int(sq.Rank()), Col: int(sq.File())}
}

func promotionFromNotnil(t notnil.PieceType) PieceType {
	switch t {
	case notnil.Queen:
		return Queen
	case notnil.Rook:
		return Rook
	case notnil.Bishop:
		return Bishop
	case notnil.Knight:
		return Knight
	}
	return NoPieceType
}
