package chess

// Direction offsets as (row, col) deltas.
var (
	knightOffsets = [8][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingOffsets   = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	straightDirs  = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalDirs  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// pawnDir is the row delta of a forward pawn step for c. White moves toward
// row 0.
func pawnDir(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// IsAttacked reports whether any piece of color by attacks sq on b. It does
// not modify b and works on hypothetical boards.
func IsAttacked(b *Board, sq Square, by Color) bool {
	// An attacking pawn sits one row behind sq from its own point of view.
	from := sq.Row - pawnDir(by)
	if from >= 0 && from < 8 {
		for _, dc := range [2]int{-1, 1} {
			c := sq.Col + dc
			if c >= 0 && c < 8 && b[from][c] == (Piece{Type: Pawn, Color: by}) {
				return true
			}
		}
	}

	if attackedByStep(b, sq, by, knightOffsets[:], Knight) {
		return true
	}
	if attackedByRay(b, sq, by, straightDirs[:], Rook) {
		return true
	}
	if attackedByRay(b, sq, by, diagonalDirs[:], Bishop) {
		return true
	}
	return attackedByStep(b, sq, by, kingOffsets[:], King)
}

func attackedByStep(b *Board, sq Square, by Color, offsets [][2]int, t PieceType) bool {
	for _, d := range offsets {
		n := sq.offset(d[0], d[1])
		if n.Valid() && b.Get(n) == (Piece{Type: t, Color: by}) {
			return true
		}
	}
	return false
}

// attackedByRay walks each direction until the first occupied square. slider
// is Rook or Bishop; queens always count.
func attackedByRay(b *Board, sq Square, by Color, dirs [][2]int, slider PieceType) bool {
	for _, d := range dirs {
		for n := sq.offset(d[0], d[1]); n.Valid(); n = n.offset(d[0], d[1]) {
			p := b.Get(n)
			if p.IsZero() {
				continue
			}
			if p.Color == by && (p.Type == slider || p.Type == Queen) {
				return true
			}
			break
		}
	}
	return false
}

// InCheck reports whether c's king is attacked on b. A board without a king
// for c is never in check.
func InCheck(b *Board, c Color) bool {
	k, ok := b.FindKing(c)
	if !ok {
		return false
	}
	return IsAttacked(b, k, c.Other())
}
