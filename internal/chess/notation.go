package chess

import "strings"

// notate renders rec in algebraic notation without the check suffix. It must
// run before rec is applied.
func (g *Game) notate(rec MoveRecord) string {
	switch rec.Castle {
	case Kingside:
		return "O-O"
	case Queenside:
		return "O-O-O"
	}

	var sb strings.Builder
	capture := rec.Captured != NoPieceType
	if rec.Piece == Pawn {
		if capture {
			sb.WriteByte(rec.From.File())
		}
	} else {
		sb.WriteString(rec.Piece.Letter())
		sb.WriteString(g.disambiguation(rec))
	}
	if capture {
		sb.WriteByte('x')
	}
	sb.WriteString(rec.To.String())
	if rec.Promotion != NoPieceType {
		sb.WriteByte('=')
		sb.WriteString(rec.Promotion.Letter())
	}
	return sb.String()
}

// disambiguation returns the origin file, rank or both when another piece of
// the same type and color can also legally reach rec.To.
func (g *Game) disambiguation(rec MoveRecord) string {
	if rec.Piece == Pawn || rec.Piece == King {
		return ""
	}
	rivals := g.rivals(rec)
	if len(rivals) == 0 {
		return ""
	}
	sameFile, sameRank := false, false
	for _, sq := range rivals {
		if sq.Col == rec.From.Col {
			sameFile = true
		}
		if sq.Row == rec.From.Row {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string(rec.From.File())
	case !sameRank:
		return string(rec.From.Rank())
	}
	return rec.From.String()
}

func (g *Game) rivals(rec MoveRecord) []Square {
	var out []Square
	like := Piece{Type: rec.Piece, Color: rec.Player}
	for _, sq := range g.board.Squares(rec.Player) {
		if sq == rec.From || g.board.Get(sq) != like {
			continue
		}
		for _, mv := range g.legalMoves(sq) {
			if mv.To == rec.To {
				out = append(out, sq)
				break
			}
		}
	}
	return out
}
