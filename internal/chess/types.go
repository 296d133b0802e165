package chess

import (
	"fmt"
	"strings"
)

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusDraw     GameStatus = "draw"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	switch string(b) {
	case "white":
		*c = White
	case "black":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", b)
	}
	return nil
}

// PieceType identifies the kind of a piece. NoPieceType marks an empty cell
// or an absent capture/promotion in a MoveRecord.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceTypeNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (t PieceType) String() string {
	if int(t) >= len(pieceTypeNames) {
		return ""
	}
	return pieceTypeNames[t]
}

// Letter returns the SAN piece letter. Pawns have none.
func (t PieceType) Letter() string {
	switch t {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	return ""
}

func (t PieceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PieceType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = NoPieceType
		return nil
	}
	pt, err := ParsePieceType(string(b))
	if err != nil {
		return err
	}
	*t = pt
	return nil
}

// ParsePieceType accepts a full name ("queen") or a single letter ("q", "N").
func ParsePieceType(s string) (PieceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pawn":
		return Pawn, nil
	case "n", "knight":
		return Knight, nil
	case "b", "bishop":
		return Bishop, nil
	case "r", "rook":
		return Rook, nil
	case "q", "queen":
		return Queen, nil
	case "k", "king":
		return King, nil
	}
	return NoPieceType, fmt.Errorf("unknown piece type %q", s)
}

type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// NoPiece is the content of an empty square.
var NoPiece = Piece{}

func (p Piece) IsZero() bool {
	return p.Type == NoPieceType
}

// FEN-style letter, uppercase for white. Empty squares render as '.'.
func (p Piece) Rune() rune {
	if p.IsZero() {
		return '.'
	}
	r := rune("?pnbrqk"[p.Type])
	if p.Color == White {
		r -= 'a' - 'A'
	}
	return r
}

// Square addresses a board cell. Row 0 is rank 8, Col 0 is file a.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

func (s Square) File() byte { return byte('a' + s.Col) }
func (s Square) Rank() byte { return byte('8' - s.Row) }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{s.File(), s.Rank()})
}

func (s Square) offset(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

// ParseSquare converts algebraic coordinates ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	sq := Square{Row: int('8') - int(s[1]), Col: int(s[0]) - int('a')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

// MustSquare is ParseSquare for literals known to be valid.
func MustSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

type SideRights struct {
	Kingside  bool `json:"kingside"`
	Queenside bool `json:"queenside"`
}

type CastlingRights struct {
	White SideRights `json:"white"`
	Black SideRights `json:"black"`
}

func fullCastlingRights() CastlingRights {
	return CastlingRights{
		White: SideRights{Kingside: true, Queenside: true},
		Black: SideRights{Kingside: true, Queenside: true},
	}
}

func (cr CastlingRights) For(c Color) SideRights {
	if c == White {
		return cr.White
	}
	return cr.Black
}

func (cr *CastlingRights) side(c Color) *SideRights {
	if c == White {
		return &cr.White
	}
	return &cr.Black
}

func (cr CastlingRights) Allows(c Color, side CastleSide) bool {
	r := cr.For(c)
	switch side {
	case Kingside:
		return r.Kingside
	case Queenside:
		return r.Queenside
	}
	return false
}

func (cr *CastlingRights) revoke(c Color, side CastleSide) {
	r := cr.side(c)
	switch side {
	case Kingside:
		r.Kingside = false
	case Queenside:
		r.Queenside = false
	}
}

// EnPassantTarget is the square skipped by a pawn's two-step advance on the
// previous ply. Valid is false when no such square exists.
type EnPassantTarget struct {
	Square Square `json:"square"`
	Valid  bool   `json:"valid"`
}

func (ep EnPassantTarget) Is(sq Square) bool {
	return ep.Valid && ep.Square == sq
}

type CastleSide uint8

const (
	NoCastle CastleSide = iota
	Kingside
	Queenside
)

func (s CastleSide) String() string {
	switch s {
	case Kingside:
		return "kingside"
	case Queenside:
		return "queenside"
	}
	return ""
}

// Move is a generated candidate move. Callers hand one back to CommitMove
// unchanged.
type Move struct {
	From      Square     `json:"from"`
	To        Square     `json:"to"`
	Castle    CastleSide `json:"castle,omitempty"`
	EnPassant bool       `json:"enPassant,omitempty"`
	Promotion bool       `json:"promotion,omitempty"`
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// MoveRecord is a committed move. It carries the castling rights and
// en-passant target from before the move so it can be inverted exactly.
type MoveRecord struct {
	Player        Color           `json:"player"`
	Piece         PieceType       `json:"piece"`
	From          Square          `json:"from"`
	To            Square          `json:"to"`
	Notation      string          `json:"notation"`
	NAG           string          `json:"nag"`
	Annotation    Annotation      `json:"annotation,omitempty"`
	Captured      PieceType       `json:"captured,omitempty"`
	EnPassant     bool            `json:"enPassant"`
	Promotion     PieceType       `json:"promotion,omitempty"`
	Castle        CastleSide      `json:"castle,omitempty"`
	Check         bool            `json:"check"`
	Checkmate     bool            `json:"checkmate"`
	PrevCastling  CastlingRights  `json:"prevCastling"`
	PrevEnPassant EnPassantTarget `json:"prevEnPassant"`
}

// MoveResult summarizes the outcome of a mutating call for the caller.
type MoveResult struct {
	From             string `json:"from"`
	To               string `json:"to"`
	SAN              string `json:"san"`
	Check            bool   `json:"check"`
	Checkmate        bool   `json:"checkmate"`
	Draw             bool   `json:"draw"`
	GameOver         bool   `json:"gameOver"`
	Result           string `json:"result"`
	PendingPromotion bool   `json:"pendingPromotion"`
}

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// StandardPieceValues maps piece types to their conventional point values.
var StandardPieceValues = map[PieceType]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
	King:   0,
}
