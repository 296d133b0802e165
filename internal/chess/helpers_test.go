package chess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// gameFromFEN builds a game from a FEN placement, side to move, castling and
// en-passant fields. The engine itself only ever starts from the standard
// position; tests use this to reach specific positions directly.
func gameFromFEN(t *testing.T, fen string) *Game {
	t.Helper()
	fields := strings.Fields(fen)
	require.GreaterOrEqual(t, len(fields), 4, "fen %q", fen)

	g := NewGame()
	var b Board
	rows := strings.Split(fields[0], "/")
	require.Len(t, rows, 8)
	for r, row := range rows {
		col := 0
		for _, ch := range row {
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			color := Black
			lower := ch
			if ch >= 'A' && ch <= 'Z' {
				color = White
				lower = ch + ('a' - 'A')
			}
			idx := strings.IndexRune("pnbrqk", lower)
			require.GreaterOrEqual(t, idx, 0, "piece %q", ch)
			b[r][col] = Piece{Type: PieceType(idx + 1), Color: color}
			col++
		}
	}
	require.NoError(t, b.Validate())
	g.board = b

	g.turn = White
	if fields[1] == "b" {
		g.turn = Black
	}
	g.castling = CastlingRights{
		White: SideRights{Kingside: strings.Contains(fields[2], "K"), Queenside: strings.Contains(fields[2], "Q")},
		Black: SideRights{Kingside: strings.Contains(fields[2], "k"), Queenside: strings.Contains(fields[2], "q")},
	}
	if fields[3] != "-" {
		g.enPassant = EnPassantTarget{Square: MustSquare(fields[3]), Valid: true}
	}
	return g
}

// play commits moves given as "e2e4" or "e7e8q".
func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, m := range moves {
		promo := NoPieceType
		if len(m) == 5 {
			var err error
			promo, err = ParsePieceType(m[4:])
			require.NoError(t, err)
		}
		_, err := g.Play(MustSquare(m[:2]), MustSquare(m[2:4]), promo)
		require.NoError(t, err, "move %s", m)
	}
}

func notations(g *Game) []string {
	var out []string
	for _, rec := range g.History() {
		out = append(out, rec.Notation)
	}
	return out
}

type position struct {
	board     Board
	turn      Color
	castling  CastlingRights
	enPassant EnPassantTarget
}

func snapshot(g *Game) position {
	return position{board: g.board, turn: g.turn, castling: g.castling, enPassant: g.enPassant}
}

// allLegalMoves lists every legal move of the side to move.
func allLegalMoves(g *Game) []Move {
	var out []Move
	for _, sq := range g.board.Squares(g.turn) {
		out = append(out, g.LegalMoves(sq)...)
	}
	return out
}

// uci expands a move into its UCI strings, one per promotion piece.
func uci(mv Move) []string {
	base := mv.From.String() + mv.To.String()
	if !mv.Promotion {
		return []string{base}
	}
	return []string{base + "q", base + "r", base + "b", base + "n"}
}
