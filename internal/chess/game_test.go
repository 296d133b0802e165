package chess

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	g := NewGame()
	require.NotNil(t, g)

	assert.Equal(t, NewBoard(), g.Board())
	assert.Equal(t, White, g.Turn())
	assert.Equal(t, fullCastlingRights(), g.CastlingRights())
	assert.False(t, g.EnPassant().Valid)
	assert.Equal(t, StatusActive, g.Status())
	assert.Equal(t, ResultInProgress, g.Result())
	assert.Equal(t, PhaseIdle, g.Phase())
	assert.Empty(t, g.History())
	assert.False(t, g.IsGameOver())
}

func TestRuyLopezNotation(t *testing.T) {
	g := NewGame()
	play(t, g, "e2e4", "e7e5", "g1f3", "b8c6", "f1b5")

	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}, notations(g))
	assert.Equal(t, Black, g.Turn())
	assert.False(t, g.IsGameOver())
}

func TestFoolsMate(t *testing.T) {
	g := NewGame()
	play(t, g, "f2f3", "e7e5", "g2g4")

	res, err := g.Play(MustSquare("d8"), MustSquare("h4"), NoPieceType)
	require.NoError(t, err)

	assert.True(t, res.Check)
	assert.True(t, res.Checkmate)
	assert.True(t, res.GameOver)
	assert.Equal(t, "0-1", res.Result)
	assert.Equal(t, "Qh4#", res.SAN)

	assert.True(t, g.IsGameOver())
	assert.Equal(t, "0-1", g.Result())
	assert.Equal(t, "Checkmate", g.Termination())
	assert.Equal(t, StatusBlackWon, g.Status())
	assert.Equal(t, []string{"f3", "e5", "g4", "Qh4#"}, notations(g))

	// Nothing moves after the game ends.
	assert.Empty(t, g.LegalMoves(MustSquare("e2")))
	_, err = g.Play(MustSquare("e2"), MustSquare("e4"), NoPieceType)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestCheckSuffix(t *testing.T) {
	g := NewGame()
	play(t, g, "e2e4", "f7f5", "d1h5")

	last, ok := g.LastMove()
	require.True(t, ok)
	assert.Equal(t, "Qh5+", last.Notation)
	assert.True(t, last.Check)
	assert.False(t, last.Checkmate)
	assert.True(t, g.IsInCheck(Black))
}

func TestStalemate(t *testing.T) {
	g := gameFromFEN(t, "7k/8/5Q2/6K1/8/8/8/8 w - -")
	res, err := g.Play(MustSquare("f6"), MustSquare("f7"), NoPieceType)
	require.NoError(t, err)

	assert.True(t, res.GameOver)
	assert.True(t, res.Draw)
	assert.False(t, res.Check)
	assert.Equal(t, "1/2-1/2", g.Result())
	assert.Equal(t, "Stalemate", g.Termination())
	assert.Equal(t, StatusDraw, g.Status())
	assert.Equal(t, "Qf7", res.SAN)
}

func TestKingsideCastling(t *testing.T) {
	g := NewGame()
	play(t, g, "e2e4", "e7e5", "g1f3", "b8c6")

	castle := Move{From: MustSquare("e1"), To: MustSquare("g1"), Castle: Kingside}
	assert.NotContains(t, g.LegalMoves(MustSquare("e1")), castle, "f1 still occupied")

	play(t, g, "f1c4", "g8f6")
	require.Contains(t, g.LegalMoves(MustSquare("e1")), castle)

	res, err := g.CommitMove(castle)
	require.NoError(t, err)
	assert.Equal(t, "O-O", res.SAN)

	b := g.Board()
	assert.Equal(t, Piece{Type: King, Color: White}, b.Get(MustSquare("g1")))
	assert.Equal(t, Piece{Type: Rook, Color: White}, b.Get(MustSquare("f1")))
	assert.True(t, b.Get(MustSquare("e1")).IsZero())
	assert.True(t, b.Get(MustSquare("h1")).IsZero())
	assert.Equal(t, SideRights{}, g.CastlingRights().White)
	assert.Equal(t, SideRights{Kingside: true, Queenside: true}, g.CastlingRights().Black)

	last, _ := g.LastMove()
	assert.Equal(t, Kingside, last.Castle)
	assert.Equal(t, NoPieceType, last.Captured)

	require.True(t, g.Undo())
	b = g.Board()
	assert.Equal(t, Piece{Type: King, Color: White}, b.Get(MustSquare("e1")))
	assert.Equal(t, Piece{Type: Rook, Color: White}, b.Get(MustSquare("h1")))
	assert.True(t, b.Get(MustSquare("f1")).IsZero())
	assert.True(t, b.Get(MustSquare("g1")).IsZero())
	assert.Equal(t, fullCastlingRights(), g.CastlingRights())
}

func TestQueensideCastling(t *testing.T) {
	g := gameFromFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R b KQkq -")
	res, err := g.Play(MustSquare("e8"), MustSquare("c8"), NoPieceType)
	require.NoError(t, err)
	assert.Equal(t, "O-O-O", res.SAN)

	b := g.Board()
	assert.Equal(t, Piece{Type: King, Color: Black}, b.Get(MustSquare("c8")))
	assert.Equal(t, Piece{Type: Rook, Color: Black}, b.Get(MustSquare("d8")))
	assert.True(t, b.Get(MustSquare("a8")).IsZero())
}

func TestRookMovePermanentlyClearsCastlingRight(t *testing.T) {
	g := gameFromFEN(t, "r3k2r/pppppppp/8/8/8/8/8/R3K2R w KQkq -")

	play(t, g, "h1h2", "a7a6", "h2h1", "a6a5")

	rights := g.CastlingRights().White
	assert.False(t, rights.Kingside, "the rook came back but the right stays lost")
	assert.True(t, rights.Queenside)
	assert.NotContains(t, g.LegalMoves(MustSquare("e1")), Move{From: MustSquare("e1"), To: MustSquare("g1"), Castle: Kingside})
	assert.Contains(t, g.LegalMoves(MustSquare("e1")), Move{From: MustSquare("e1"), To: MustSquare("c1"), Castle: Queenside})
}

func TestCapturedCornerRookClearsCastlingRight(t *testing.T) {
	g := gameFromFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq -")
	play(t, g, "a1a8")

	assert.False(t, g.CastlingRights().Black.Queenside)
	assert.True(t, g.CastlingRights().Black.Kingside)
	assert.False(t, g.CastlingRights().White.Queenside)

	require.True(t, g.Undo())
	assert.Equal(t, fullCastlingRights(), g.CastlingRights())
}

func TestEnPassantCapture(t *testing.T) {
	g := NewGame()
	play(t, g, "e2e4", "a7a6", "e4e5", "d7d5")

	before := snapshot(g)
	res, err := g.CommitMove(Move{From: MustSquare("e5"), To: MustSquare("d6"), EnPassant: true})
	require.NoError(t, err)
	assert.Equal(t, "exd6", res.SAN)

	b := g.Board()
	assert.Equal(t, Piece{Type: Pawn, Color: White}, b.Get(MustSquare("d6")))
	assert.True(t, b.Get(MustSquare("d5")).IsZero(), "captured pawn removed from behind the destination")
	assert.True(t, b.Get(MustSquare("e5")).IsZero())

	last, _ := g.LastMove()
	assert.True(t, last.EnPassant)
	assert.Equal(t, Pawn, last.Captured)

	require.True(t, g.Undo())
	assert.Equal(t, before, snapshot(g))
	assert.Equal(t, Piece{Type: Pawn, Color: Black}, g.Piece(MustSquare("d5")))
}

func TestEnPassantTargetLastsOnePly(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := NewGame()
	for ply := 0; ply < 200 && !g.IsGameOver(); ply++ {
		moves := allLegalMoves(g)
		mv := moves[rng.Intn(len(moves))]
		piece := g.Piece(mv.From)
		promo := NoPieceType
		if mv.Promotion {
			promo = Queen
		}
		_, err := g.Play(mv.From, mv.To, promo)
		require.NoError(t, err)

		twoStep := piece.Type == Pawn && abs(mv.To.Row-mv.From.Row) == 2
		assert.Equal(t, twoStep, g.EnPassant().Valid, "ply %d %s", ply, mv)
	}
}

func TestPromotion(t *testing.T) {
	g := gameFromFEN(t, "7k/P7/8/8/8/8/8/4K3 w - -")
	mv := Move{From: MustSquare("a7"), To: MustSquare("a8"), Promotion: true}
	require.Contains(t, g.LegalMoves(MustSquare("a7")), mv)

	before := snapshot(g)
	res, err := g.CommitMove(mv)
	require.NoError(t, err)
	assert.True(t, res.PendingPromotion)
	assert.Equal(t, PhasePendingPromotion, g.Phase())
	assert.Equal(t, before, snapshot(g), "nothing is applied before the piece is chosen")

	pending, ok := g.PendingPromotion()
	require.True(t, ok)
	assert.Equal(t, mv, pending)

	_, err = g.CommitMove(Move{From: MustSquare("e1"), To: MustSquare("e2")})
	assert.ErrorIs(t, err, ErrPromotionPending)

	_, err = g.ResolvePromotion(King)
	assert.ErrorIs(t, err, ErrInvalidPromotion)
	assert.Equal(t, PhasePendingPromotion, g.Phase())

	res, err = g.ResolvePromotion(Queen)
	require.NoError(t, err)
	assert.Equal(t, "a8=Q+", res.SAN)
	assert.Equal(t, PhaseIdle, g.Phase())
	assert.Equal(t, Piece{Type: Queen, Color: White}, g.Piece(MustSquare("a8")))
	assert.True(t, g.Piece(MustSquare("a7")).IsZero())

	last, _ := g.LastMove()
	assert.Equal(t, Queen, last.Promotion)
	assert.Equal(t, Pawn, last.Piece)

	// Undo brings the pawn back; redo brings the queen back.
	require.True(t, g.Undo())
	assert.Equal(t, Piece{Type: Pawn, Color: White}, g.Piece(MustSquare("a7")))
	assert.True(t, g.Piece(MustSquare("a8")).IsZero())
	require.True(t, g.Redo())
	assert.Equal(t, Piece{Type: Queen, Color: White}, g.Piece(MustSquare("a8")))
}

func TestPromotionWithCapture(t *testing.T) {
	g := gameFromFEN(t, "1r5k/P7/8/8/8/8/8/4K3 w - -")
	res, err := g.Play(MustSquare("a7"), MustSquare("b8"), Knight)
	require.NoError(t, err)
	assert.Equal(t, "axb8=N", res.SAN)

	last, _ := g.LastMove()
	assert.Equal(t, Rook, last.Captured)
}

func TestResolvePromotionWithoutPending(t *testing.T) {
	g := NewGame()
	before := snapshot(g)

	_, err := g.ResolvePromotion(Queen)
	assert.ErrorIs(t, err, ErrNoPendingPromotion)
	assert.Equal(t, before, snapshot(g))
	assert.False(t, g.CancelPromotion())
}

func TestUndoCancelsPendingPromotion(t *testing.T) {
	g := gameFromFEN(t, "7k/P7/8/8/8/8/8/4K3 w - -")
	_, err := g.Play(MustSquare("a7"), MustSquare("a8"), NoPieceType)
	require.NoError(t, err)
	require.Equal(t, PhasePendingPromotion, g.Phase())

	assert.True(t, g.Undo())
	assert.Equal(t, PhaseIdle, g.Phase())
	assert.Equal(t, White, g.Turn())
	assert.False(t, g.Undo(), "no committed move to take back")
}

func TestIllegalMoveRejected(t *testing.T) {
	tests := []struct {
		name string
		mv   Move
	}{
		{"pawn three squares", Move{From: MustSquare("e2"), To: MustSquare("e5")}},
		{"knight to own piece", Move{From: MustSquare("g1"), To: MustSquare("e2")}},
		{"empty origin", Move{From: MustSquare("e4"), To: MustSquare("e5")}},
		{"opponent piece", Move{From: MustSquare("e7"), To: MustSquare("e5")}},
		{"forged castle flag", Move{From: MustSquare("e1"), To: MustSquare("g1"), Castle: Kingside}},
		{"forged en passant", Move{From: MustSquare("e2"), To: MustSquare("e3"), EnPassant: true}},
		{"off the board", Move{From: Square{Row: 8, Col: 0}, To: MustSquare("a1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame()
			before := snapshot(g)

			_, err := g.CommitMove(tt.mv)
			require.Error(t, err)

			var illegal *IllegalMoveError
			require.ErrorAs(t, err, &illegal)
			assert.Equal(t, "ILLEGAL_MOVE", illegal.Code())
			assert.Equal(t, before, snapshot(g))
			assert.Empty(t, g.History())
		})
	}
}

func TestUndoRedoEmptyAreNoOps(t *testing.T) {
	g := NewGame()
	before := snapshot(g)

	assert.False(t, g.Undo())
	assert.False(t, g.Redo())
	assert.Equal(t, before, snapshot(g))
}

func TestCommitClearsRedoStack(t *testing.T) {
	g := NewGame()
	play(t, g, "e2e4", "e7e5")
	require.True(t, g.Undo())
	assert.Equal(t, 1, g.RedoDepth())

	play(t, g, "c7c5")
	assert.Equal(t, 0, g.RedoDepth())
	assert.False(t, g.Redo())
	assert.Equal(t, []string{"e4", "c5"}, notations(g))
}

func TestUndoRedoRoundTrip(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := NewGame()
		positions := []position{snapshot(g)}

		for ply := 0; ply < 100 && !g.IsGameOver(); ply++ {
			moves := allLegalMoves(g)
			mv := moves[rng.Intn(len(moves))]
			promo := NoPieceType
			if mv.Promotion {
				promo = []PieceType{Queen, Rook, Bishop, Knight}[rng.Intn(4)]
			}
			_, err := g.Play(mv.From, mv.To, promo)
			require.NoError(t, err)
			positions = append(positions, snapshot(g))
		}
		final := snapshot(g)
		finalHistory := g.History()
		over, result := g.IsGameOver(), g.Result()

		for i := len(positions) - 2; i >= 0; i-- {
			require.True(t, g.Undo())
			require.Equal(t, positions[i], snapshot(g), "seed %d undo to ply %d", seed, i)
			assert.False(t, g.IsGameOver())
		}
		assert.False(t, g.Undo())

		for i := 1; i < len(positions); i++ {
			require.True(t, g.Redo())
			require.Equal(t, positions[i], snapshot(g), "seed %d redo to ply %d", seed, i)
		}
		assert.False(t, g.Redo())
		assert.Equal(t, final, snapshot(g))
		assert.Equal(t, finalHistory, g.History())
		assert.Equal(t, over, g.IsGameOver())
		assert.Equal(t, result, g.Result())
	}
}

func TestUndoClearsGameOver(t *testing.T) {
	g := NewGame()
	play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
	require.True(t, g.IsGameOver())

	require.True(t, g.Undo())
	assert.False(t, g.IsGameOver())
	assert.Equal(t, ResultInProgress, g.Result())
	assert.Equal(t, ResultInProgress, g.Headers().Result)
	assert.Empty(t, g.Headers().Termination)

	require.True(t, g.Redo())
	assert.True(t, g.IsGameOver())
	assert.Equal(t, "0-1", g.Result())
	assert.Equal(t, "0-1", g.Headers().Result)
	assert.NotEmpty(t, g.Headers().Termination)
	assert.Equal(t, "Qh4#", g.History()[3].Notation)
	assert.Empty(t, allLegalMoves(g))
}

func TestSelectionStateMachine(t *testing.T) {
	g := NewGame()

	moves := g.Select(MustSquare("e2"))
	assert.Len(t, moves, 2)
	assert.Equal(t, PhaseSelected, g.Phase())
	sq, cached, ok := g.Selection()
	require.True(t, ok)
	assert.Equal(t, MustSquare("e2"), sq)
	assert.Equal(t, moves, cached)

	assert.Empty(t, g.Select(MustSquare("e4")))
	assert.Equal(t, PhaseIdle, g.Phase())

	g.Select(MustSquare("g1"))
	_, err := g.CommitMove(moves[0])
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, g.Phase())

	g.Select(MustSquare("e7"))
	g.Deselect()
	assert.Equal(t, PhaseIdle, g.Phase())
}

func TestReset(t *testing.T) {
	g := NewGame(WithHeaders(Headers{White: "Carlsen", Black: "Nepo"}))
	play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
	require.True(t, g.Undo())
	require.True(t, g.Redo())

	g.Reset()
	assert.Equal(t, NewBoard(), g.Board())
	assert.Empty(t, g.History())
	assert.Equal(t, 0, g.RedoDepth())
	assert.False(t, g.IsGameOver())
	assert.Equal(t, ResultInProgress, g.Headers().Result)
	assert.Equal(t, "Carlsen", g.Headers().White)
}

func TestKnightDisambiguation(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want string
	}{
		{
			name: "unique knight needs nothing",
			fen:  "4k3/8/8/8/8/8/8/1N2K3 w - -",
			move: "b1c3",
			want: "Nc3",
		},
		{
			name: "file differs",
			fen:  "4k3/8/8/8/8/8/8/1N2KN2 w - -",
			move: "b1d2",
			want: "Nbd2",
		},
		{
			name: "same file falls back to rank",
			fen:  "4k3/8/8/1N6/8/8/8/1N2K3 w - -",
			move: "b1c3",
			want: "N1c3",
		},
		{
			name: "file and rank both shared",
			fen:  "4k3/8/8/1N1N4/8/8/8/1N2K3 w - -",
			move: "b5c3",
			want: "Nb5c3",
		},
		{
			name: "pinned rival is not ambiguous",
			fen:  "4k3/8/8/8/4N3/8/8/rN2K3 w - -",
			move: "e4c3",
			want: "Nc3",
		},
		{
			name: "capture keeps disambiguation",
			fen:  "4k3/8/8/8/8/2p5/8/1N1NK3 w - -",
			move: "d1c3",
			want: "Ndxc3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gameFromFEN(t, tt.fen)
			play(t, g, tt.move)
			last, _ := g.LastMove()
			assert.Equal(t, tt.want, last.Notation)
		})
	}
}

func TestRookDisambiguation(t *testing.T) {
	g := gameFromFEN(t, "4k3/8/8/8/8/8/8/R4RK1 w - -")
	play(t, g, "a1d1")
	last, _ := g.LastMove()
	assert.Equal(t, "Rad1", last.Notation)

	g = gameFromFEN(t, "4k3/R7/8/8/8/8/8/R3K3 w - -")
	play(t, g, "a1a4")
	last, _ = g.LastMove()
	assert.Equal(t, "R1a4", last.Notation)
}
