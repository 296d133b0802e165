package chess

import (
	"fmt"
	"time"
)

// Phase is the state of the caller's input flow.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseSelected
	PhasePendingPromotion
)

func (p Phase) String() string {
	switch p {
	case PhaseSelected:
		return "selected"
	case PhasePendingPromotion:
		return "pending_promotion"
	}
	return "idle"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*p = PhaseIdle
	case "selected":
		*p = PhaseSelected
	case "pending_promotion":
		*p = PhasePendingPromotion
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// inputState is the payload of the current Phase.
type inputState interface {
	phase() Phase
}

type idleState struct{}

type selectedState struct {
	square Square
	moves  []Move
}

// promotionState holds a validated pawn move waiting for its piece choice.
// Nothing has been applied to the board yet.
type promotionState struct {
	move Move
}

func (idleState) phase() Phase      { return PhaseIdle }
func (selectedState) phase() Phase  { return PhaseSelected }
func (promotionState) phase() Phase { return PhasePendingPromotion }

const (
	ResultWhiteWins  = "1-0"
	ResultBlackWins  = "0-1"
	ResultDraw       = "1/2-1/2"
	ResultInProgress = "*"
)

// Game is the authoritative state of a single game. It is not safe for
// concurrent use; the owner serializes access.
type Game struct {
	board     Board
	turn      Color
	castling  CastlingRights
	enPassant EnPassantTarget

	history []MoveRecord
	redo    []MoveRecord

	gameOver    bool
	result      string
	termination string

	headers Headers
	input   inputState
	now     func() time.Time
}

type Option func(*Game)

// WithHeaders replaces the default PGN headers. Empty fields are filled from
// the defaults.
func WithHeaders(h Headers) Option {
	return func(g *Game) {
		g.headers = h.withDefaults(g.headers)
	}
}

// WithClock sets the clock used for the Date header.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		g.now = now
		g.headers.Date = FormatDate(now())
	}
}

// NewGame returns a game set up in the standard starting position.
func NewGame(opts ...Option) *Game {
	g := &Game{now: time.Now}
	g.headers = DefaultHeaders(g.now())
	for _, opt := range opts {
		opt(g)
	}
	g.setup()
	return g
}

func (g *Game) setup() {
	g.board = NewBoard()
	g.turn = White
	g.castling = fullCastlingRights()
	g.enPassant = EnPassantTarget{}
	g.history = nil
	g.redo = nil
	g.input = idleState{}
	g.setOutcome(false, ResultInProgress, "")
}

// Reset starts a new game. Player headers are kept; Result and Termination
// start over.
func (g *Game) Reset() {
	g.setup()
}

func (g *Game) setOutcome(over bool, result, termination string) {
	g.gameOver = over
	g.result = result
	g.termination = termination
	g.headers.Result = result
	g.headers.Termination = termination
}

func (g *Game) Board() Board { return g.board }
func (g *Game) Turn() Color { return g.turn }
func (g *Game) CastlingRights() CastlingRights { return g.castling }
func (g *Game) EnPassant() EnPassantTarget { return g.enPassant }
func (g *Game) IsGameOver() bool { return g.gameOver }
func (g *Game) Result() string { return g.result }
func (g *Game) Termination() string { return g.termination }
func (g *Game) Phase() Phase { return g.input.phase() }
func (g *Game) RedoDepth() int { return len(g.redo) }
func (g *Game) IsInCheck(c Color) bool { return InCheck(&g.board, c) }
func (g *Game) Material() MaterialCount { return CountMaterial(&g.board) }
func (g *Game) Piece(sq Square) Piece { return g.board.Get(sq) }
func (g *Game) Headers() Headers { return g.headers }

// SetHeaders updates the descriptive headers. Result and Termination are
// owned by the game and cannot be overridden.
func (g *Game) SetHeaders(h Headers) {
	h.Result = g.headers.Result
	h.Termination = g.headers.Termination
	g.headers = h
}

// History returns a copy of the committed moves, oldest first.
func (g *Game) History() []MoveRecord {
	out := make([]MoveRecord, len(g.history))
	copy(out, g.history)
	return out
}

func (g *Game) LastMove() (MoveRecord, bool) {
	if len(g.history) == 0 {
		return MoveRecord{}, false
	}
	return g.history[len(g.history)-1], true
}

func (g *Game) Status() GameStatus {
	switch g.result {
	case ResultWhiteWins:
		return StatusWhiteWon
	case ResultBlackWins:
		return StatusBlackWon
	case ResultDraw:
		return StatusDraw
	}
	return StatusActive
}

// LegalMoves returns the legal moves of the piece on sq. It is empty for an
// empty square, for a piece of the side not to move and once the game is over.
func (g *Game) LegalMoves(sq Square) []Move {
	if g.gameOver || !sq.Valid() {
		return nil
	}
	if p := g.board.Get(sq); p.IsZero() || p.Color != g.turn {
		return nil
	}
	return g.legalMoves(sq)
}

// Select caches the legal moves of sq and enters PhaseSelected. Selecting a
// square without moves returns to PhaseIdle. It does nothing while a
// promotion is pending.
func (g *Game) Select(sq Square) []Move {
	if _, pending := g.input.(promotionState); pending {
		return nil
	}
	moves := g.LegalMoves(sq)
	if len(moves) == 0 {
		g.input = idleState{}
		return nil
	}
	g.input = selectedState{square: sq, moves: moves}
	return moves
}

// Selection returns the selected square and its cached moves.
func (g *Game) Selection() (Square, []Move, bool) {
	s, ok := g.input.(selectedState)
	if !ok {
		return Square{}, nil, false
	}
	return s.square, s.moves, true
}

func (g *Game) Deselect() {
	if _, ok := g.input.(selectedState); ok {
		g.input = idleState{}
	}
}

// PendingPromotion returns the pawn move waiting for ResolvePromotion.
func (g *Game) PendingPromotion() (Move, bool) {
	s, ok := g.input.(promotionState)
	return s.move, ok
}

// CommitMove plays mv, which must be one of LegalMoves(mv.From). A pawn move
// to the last rank is not applied yet: the game enters
// PhasePendingPromotion and the result has PendingPromotion set.
func (g *Game) CommitMove(mv Move) (*MoveResult, error) {
	if g.gameOver {
		return nil, ErrGameOver
	}
	if _, pending := g.input.(promotionState); pending {
		return nil, ErrPromotionPending
	}
	if err := g.validate(mv); err != nil {
		return nil, err
	}

	if mv.Promotion {
		g.input = promotionState{move: mv}
		return &MoveResult{
			From:             mv.From.String(),
			To:               mv.To.String(),
			PendingPromotion: true,
		}, nil
	}
	return g.commit(mv, NoPieceType), nil
}

func (g *Game) validate(mv Move) error {
	if !mv.From.Valid() || !mv.To.Valid() {
		return &IllegalMoveError{Move: mv, Reason: "square off the board"}
	}
	p := g.board.Get(mv.From)
	if p.IsZero() {
		return &IllegalMoveError{Move: mv, Reason: "no piece on origin square"}
	}
	if p.Color != g.turn {
		return &IllegalMoveError{Move: mv, Reason: "not " + p.Color.String() + "'s turn"}
	}
	if !containsMove(g.legalMoves(mv.From), mv) {
		return &IllegalMoveError{Move: mv, Reason: "not a legal move"}
	}
	return nil
}

// ResolvePromotion finishes a pending promotion with piece type t.
func (g *Game) ResolvePromotion(t PieceType) (*MoveResult, error) {
	s, ok := g.input.(promotionState)
	if !ok {
		return nil, ErrNoPendingPromotion
	}
	switch t {
	case Knight, Bishop, Rook, Queen:
	default:
		return nil, ErrInvalidPromotion
	}
	return g.commit(s.move, t), nil
}

// CancelPromotion abandons a pending promotion. The board was never touched.
func (g *Game) CancelPromotion() bool {
	if _, ok := g.input.(promotionState); !ok {
		return false
	}
	g.input = idleState{}
	return true
}

func (g *Game) commit(mv Move, promotion PieceType) *MoveResult {
	p := g.board.Get(mv.From)
	rec := MoveRecord{
		Player:        p.Color,
		Piece:         p.Type,
		From:          mv.From,
		To:            mv.To,
		EnPassant:     mv.EnPassant,
		Promotion:     promotion,
		Castle:        mv.Castle,
		Captured:      g.board.Get(mv.To).Type,
		PrevCastling:  g.castling,
		PrevEnPassant: g.enPassant,
	}
	if mv.EnPassant {
		rec.Captured = Pawn
	}
	// Disambiguation needs the position before the move.
	rec.Notation = g.notate(rec)

	g.redo = nil
	g.input = idleState{}
	g.apply(rec)

	rec.Check = g.IsInCheck(g.turn)
	over := g.checkGameOver()
	rec.Checkmate = rec.Check && over
	switch {
	case rec.Checkmate:
		rec.Notation += "#"
	case rec.Check:
		rec.Notation += "+"
	}
	g.history = append(g.history, rec)
	return g.moveResult(rec)
}

func (g *Game) moveResult(rec MoveRecord) *MoveResult {
	res := &MoveResult{
		From:      rec.From.String(),
		To:        rec.To.String(),
		SAN:       rec.Notation,
		Check:     rec.Check,
		Checkmate: rec.Checkmate,
		GameOver:  g.gameOver,
	}
	if g.gameOver {
		res.Result = g.result
		res.Draw = g.result == ResultDraw
	}
	return res
}

// checkGameOver ends the game when the side to move has no legal move:
// checkmate if its king is attacked, stalemate otherwise.
func (g *Game) checkGameOver() bool {
	for _, sq := range g.board.Squares(g.turn) {
		if len(g.legalMoves(sq)) > 0 {
			return false
		}
	}
	if g.IsInCheck(g.turn) {
		winner := ResultWhiteWins
		if g.turn == White {
			winner = ResultBlackWins
		}
		g.setOutcome(true, winner, "Checkmate")
	} else {
		g.setOutcome(true, ResultDraw, "Stalemate")
	}
	return true
}

// Undo takes back the last committed move and keeps it for Redo. With a
// promotion pending, Undo only cancels the promotion. It reports whether
// anything changed.
func (g *Game) Undo() bool {
	if g.CancelPromotion() {
		return true
	}
	if len(g.history) == 0 {
		return false
	}
	rec := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.unapply(rec)
	g.redo = append(g.redo, rec)
	g.input = idleState{}
	return true
}

// Redo replays the most recently undone move.
func (g *Game) Redo() bool {
	if len(g.redo) == 0 {
		return false
	}
	g.CancelPromotion()
	rec := g.redo[len(g.redo)-1]
	g.redo = g.redo[:len(g.redo)-1]
	g.apply(rec)
	g.history = append(g.history, rec)
	g.input = idleState{}
	g.checkGameOver()
	return true
}
