package chess

import "strings"

// Board is an 8x8 grid of optional pieces. It is a plain value: copying a
// Board copies the position and two boards compare equal with ==.
type Board [8][8]Piece

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	var b Board
	for col, t := range backRank {
		b[0][col] = Piece{Type: t, Color: Black}
		b[1][col] = Piece{Type: Pawn, Color: Black}
		b[6][col] = Piece{Type: Pawn, Color: White}
		b[7][col] = Piece{Type: t, Color: White}
	}
	return b
}

func (b *Board) Get(sq Square) Piece {
	return b[sq.Row][sq.Col]
}

func (b *Board) Set(sq Square, p Piece) {
	b[sq.Row][sq.Col] = p
}

// FindKing returns the first king of color c in row-major order.
func (b *Board) FindKing(c Color) (Square, bool) {
	king := Piece{Type: King, Color: c}
	for r := 0; r < 8; r++ {
		for col := 0; col < 8; col++ {
			if b[r][col] == king {
				return Square{Row: r, Col: col}, true
			}
		}
	}
	return Square{}, false
}

// Validate checks that each side has exactly one king.
func (b *Board) Validate() error {
	var kings [2]int
	for r := range b {
		for _, p := range b[r] {
			if p.Type == King {
				kings[p.Color]++
			}
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return ErrKingCount
	}
	return nil
}

// Squares returns every square holding a piece of color c.
func (b *Board) Squares(c Color) []Square {
	out := make([]Square, 0, 16)
	for r := range b {
		for col, p := range b[r] {
			if !p.IsZero() && p.Color == c {
				out = append(out, Square{Row: r, Col: col})
			}
		}
	}
	return out
}

// Ranks renders the board as eight strings, rank 8 first.
func (b *Board) Ranks() []string {
	out := make([]string, 8)
	for r := range b {
		var sb strings.Builder
		for _, p := range b[r] {
			sb.WriteRune(p.Rune())
		}
		out[r] = sb.String()
	}
	return out
}

func (b Board) String() string {
	return strings.Join(b.Ranks(), "\n")
}
