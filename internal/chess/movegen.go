package chess

func homeRow(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

func lastRow(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// rookSquares returns where the castling rook stands before and after.
func rookSquares(row int, side CastleSide) (from, to Square) {
	if side == Kingside {
		return Square{Row: row, Col: 7}, Square{Row: row, Col: 5}
	}
	return Square{Row: row, Col: 0}, Square{Row: row, Col: 3}
}

// cornerSide reports which castling right a rook on sq guards for c.
func cornerSide(c Color, sq Square) (CastleSide, bool) {
	if sq.Row != homeRow(c) {
		return NoCastle, false
	}
	switch sq.Col {
	case 0:
		return Queenside, true
	case 7:
		return Kingside, true
	}
	return NoCastle, false
}

// pseudoMoves lists the moves of the piece on from that obey its movement
// rules, without regard to the safety of its own king.
func (g *Game) pseudoMoves(from Square) []Move {
	p := g.board.Get(from)
	if p.IsZero() {
		return nil
	}
	switch p.Type {
	case Pawn:
		return g.pawnMoves(from, p.Color)
	case Knight:
		return g.stepMoves(from, p.Color, knightOffsets[:])
	case Bishop:
		return g.rayMoves(nil, from, p.Color, diagonalDirs[:])
	case Rook:
		return g.rayMoves(nil, from, p.Color, straightDirs[:])
	case Queen:
		moves := g.rayMoves(nil, from, p.Color, straightDirs[:])
		return g.rayMoves(moves, from, p.Color, diagonalDirs[:])
	case King:
		moves := g.stepMoves(from, p.Color, kingOffsets[:])
		return g.castleMoves(moves, from, p.Color)
	}
	return nil
}

func (g *Game) pawnMoves(from Square, c Color) []Move {
	var moves []Move
	d := pawnDir(c)
	promotes := func(to Square) bool { return to.Row == lastRow(c) }

	one := from.offset(d, 0)
	if one.Valid() && g.board.Get(one).IsZero() {
		moves = append(moves, Move{From: from, To: one, Promotion: promotes(one)})
		two := from.offset(2*d, 0)
		if from.Row == homeRow(c)+d && g.board.Get(two).IsZero() {
			moves = append(moves, Move{From: from, To: two})
		}
	}

	for _, dc := range [2]int{-1, 1} {
		to := from.offset(d, dc)
		if !to.Valid() {
			continue
		}
		target := g.board.Get(to)
		switch {
		case !target.IsZero() && target.Color != c:
			moves = append(moves, Move{From: from, To: to, Promotion: promotes(to)})
		case target.IsZero() && g.enPassant.Is(to):
			victim := Square{Row: from.Row, Col: to.Col}
			if g.board.Get(victim) == (Piece{Type: Pawn, Color: c.Other()}) {
				moves = append(moves, Move{From: from, To: to, EnPassant: true})
			}
		}
	}
	return moves
}

func (g *Game) stepMoves(from Square, c Color, offsets [][2]int) []Move {
	var moves []Move
	for _, d := range offsets {
		to := from.offset(d[0], d[1])
		if !to.Valid() {
			continue
		}
		if t := g.board.Get(to); t.IsZero() || t.Color != c {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (g *Game) rayMoves(moves []Move, from Square, c Color, dirs [][2]int) []Move {
	for _, d := range dirs {
		for to := from.offset(d[0], d[1]); to.Valid(); to = to.offset(d[0], d[1]) {
			t := g.board.Get(to)
			if t.IsZero() {
				moves = append(moves, Move{From: from, To: to})
				continue
			}
			if t.Color != c {
				moves = append(moves, Move{From: from, To: to})
			}
			break
		}
	}
	return moves
}

// castleMoves appends the castling moves available to the king on from. The
// king may not castle out of, through or into check; the rook's corner is not
// checked for attacks.
func (g *Game) castleMoves(moves []Move, from Square, c Color) []Move {
	row := homeRow(c)
	if from != (Square{Row: row, Col: 4}) || InCheck(&g.board, c) {
		return moves
	}
	opp := c.Other()
	empty := func(cols ...int) bool {
		for _, col := range cols {
			if !g.board[row][col].IsZero() {
				return false
			}
		}
		return true
	}
	safe := func(cols ...int) bool {
		for _, col := range cols {
			if IsAttacked(&g.board, Square{Row: row, Col: col}, opp) {
				return false
			}
		}
		return true
	}
	rook := Piece{Type: Rook, Color: c}

	if g.castling.Allows(c, Kingside) && g.board[row][7] == rook && empty(5, 6) && safe(5, 6) {
		moves = append(moves, Move{From: from, To: Square{Row: row, Col: 6}, Castle: Kingside})
	}
	if g.castling.Allows(c, Queenside) && g.board[row][0] == rook && empty(1, 2, 3) && safe(3, 2) {
		moves = append(moves, Move{From: from, To: Square{Row: row, Col: 2}, Castle: Queenside})
	}
	return moves
}

// legalMoves filters pseudoMoves down to moves that do not leave the mover's
// king attacked. It works for either color.
func (g *Game) legalMoves(from Square) []Move {
	p := g.board.Get(from)
	if p.IsZero() {
		return nil
	}
	pseudo := g.pseudoMoves(from)
	legal := pseudo[:0]
	for _, mv := range pseudo {
		if !g.wouldLeaveKingInCheck(mv, p.Color) {
			legal = append(legal, mv)
		}
	}
	return legal
}

func (g *Game) wouldLeaveKingInCheck(mv Move, c Color) bool {
	restore := g.probe(mv)
	defer restore()
	return InCheck(&g.board, c)
}

type cellSnapshot struct {
	sq Square
	p  Piece
}

// probe plays mv on the live board and returns a func that puts back every
// cell it touched.
func (g *Game) probe(mv Move) func() {
	var saved [4]cellSnapshot
	n := 0
	save := func(sq Square) {
		saved[n] = cellSnapshot{sq: sq, p: g.board.Get(sq)}
		n++
	}
	save(mv.From)
	save(mv.To)
	if mv.EnPassant {
		save(Square{Row: mv.From.Row, Col: mv.To.Col})
	}
	if mv.Castle != NoCastle {
		rf, rt := rookSquares(mv.From.Row, mv.Castle)
		save(rf)
		save(rt)
	}

	relocate(&g.board, mv.From, mv.To, g.board.Get(mv.From), mv.Castle, mv.EnPassant)

	return func() {
		for i := n - 1; i >= 0; i-- {
			g.board.Set(saved[i].sq, saved[i].p)
		}
	}
}

// relocate performs the board part of a move: placed lands on to, the origin
// empties, an en-passant victim is removed and a castling rook is moved.
func relocate(b *Board, from, to Square, placed Piece, castle CastleSide, enPassant bool) {
	b.Set(from, NoPiece)
	b.Set(to, placed)
	if enPassant {
		b.Set(Square{Row: from.Row, Col: to.Col}, NoPiece)
	}
	if castle != NoCastle {
		rf, rt := rookSquares(from.Row, castle)
		b.Set(rt, b.Get(rf))
		b.Set(rf, NoPiece)
	}
}

func containsMove(moves []Move, mv Move) bool {
	for _, m := range moves {
		if m == mv {
			return true
		}
	}
	return false
}
