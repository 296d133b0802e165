package chess

// apply performs the forward transformation of rec: board relocation,
// castling rights, en-passant target and side to move. Commit and Redo share
// it so a redone move lands exactly where the original did.
func (g *Game) apply(rec MoveRecord) {
	placed := Piece{Type: rec.Piece, Color: rec.Player}
	if rec.Promotion != NoPieceType {
		placed.Type = rec.Promotion
	}
	relocate(&g.board, rec.From, rec.To, placed, rec.Castle, rec.EnPassant)
	g.updateCastlingRights(rec)

	g.enPassant = EnPassantTarget{}
	if rec.Piece == Pawn && abs(rec.To.Row-rec.From.Row) == 2 {
		g.enPassant = EnPassantTarget{
			Square: Square{Row: (rec.From.Row + rec.To.Row) / 2, Col: rec.To.Col},
			Valid:  true,
		}
	}
	g.turn = rec.Player.Other()
}

// updateCastlingRights drops the rights rec makes impossible: a king move
// clears both sides, a rook leaving its corner clears that side, and a rook
// captured on its corner clears the opponent's side.
func (g *Game) updateCastlingRights(rec MoveRecord) {
	switch rec.Piece {
	case King:
		g.castling.revoke(rec.Player, Kingside)
		g.castling.revoke(rec.Player, Queenside)
	case Rook:
		if side, ok := cornerSide(rec.Player, rec.From); ok {
			g.castling.revoke(rec.Player, side)
		}
	}
	if rec.Captured == Rook && !rec.EnPassant {
		opp := rec.Player.Other()
		if side, ok := cornerSide(opp, rec.To); ok {
			g.castling.revoke(opp, side)
		}
	}
}

// unapply inverts rec using only what the record holds.
func (g *Game) unapply(rec MoveRecord) {
	opp := rec.Player.Other()
	g.board.Set(rec.From, Piece{Type: rec.Piece, Color: rec.Player})
	switch {
	case rec.EnPassant:
		g.board.Set(rec.To, NoPiece)
		g.board.Set(Square{Row: rec.From.Row, Col: rec.To.Col}, Piece{Type: Pawn, Color: opp})
	case rec.Captured != NoPieceType:
		g.board.Set(rec.To, Piece{Type: rec.Captured, Color: opp})
	default:
		g.board.Set(rec.To, NoPiece)
	}
	if rec.Castle != NoCastle {
		rf, rt := rookSquares(rec.From.Row, rec.Castle)
		g.board.Set(rf, g.board.Get(rt))
		g.board.Set(rt, NoPiece)
	}

	g.castling = rec.PrevCastling
	g.enPassant = rec.PrevEnPassant
	g.turn = rec.Player
	g.setOutcome(false, ResultInProgress, "")
}

// Play finds the legal move from -> to and commits it. When the move promotes
// and promotion is set, the promotion is resolved in the same call; otherwise
// the game is left in PhasePendingPromotion.
func (g *Game) Play(from, to Square, promotion PieceType) (*MoveResult, error) {
	if g.gameOver {
		return nil, ErrGameOver
	}
	if _, pending := g.input.(promotionState); pending {
		return nil, ErrPromotionPending
	}
	var mv Move
	found := false
	for _, m := range g.LegalMoves(from) {
		if m.To == to {
			mv, found = m, true
			break
		}
	}
	if !found {
		return nil, &IllegalMoveError{Move: Move{From: from, To: to}, Reason: "not a legal move"}
	}
	if !mv.Promotion && promotion != NoPieceType {
		return nil, &IllegalMoveError{Move: mv, Reason: "move does not promote"}
	}

	res, err := g.CommitMove(mv)
	if err != nil || !res.PendingPromotion || promotion == NoPieceType {
		return res, err
	}
	res, err = g.ResolvePromotion(promotion)
	if err != nil {
		g.CancelPromotion()
		return nil, err
	}
	return res, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
