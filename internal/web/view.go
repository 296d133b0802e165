package web

import (
	"github.com/justinabrahms/otbchess/internal/chess"
)

// GameView is the JSON snapshot of a game returned by every mutating endpoint.
type GameView struct {
	GameID           string               `json:"gameId"`
	Board            []string             `json:"board"`
	Turn             chess.Color          `json:"turn"`
	Castling         chess.CastlingRights `json:"castling"`
	EnPassant        string               `json:"enPassant,omitempty"`
	Check            bool                 `json:"check"`
	GameOver         bool                 `json:"gameOver"`
	Result           string               `json:"result"`
	Termination      string               `json:"termination,omitempty"`
	Status           chess.GameStatus     `json:"status"`
	Phase            chess.Phase          `json:"phase"`
	Selected         string               `json:"selected,omitempty"`
	PendingPromotion *MoveView            `json:"pendingPromotion,omitempty"`
	History          []RecordView         `json:"history"`
	MoveList         []string             `json:"moveList"`
	RedoDepth        int                  `json:"redoDepth"`
	Material         chess.MaterialCount  `json:"material"`
	Headers          chess.Headers        `json:"headers"`
	Watchers         int                  `json:"watchers"`
}

type MoveView struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Castle    string `json:"castle,omitempty"`
	EnPassant bool   `json:"enPassant,omitempty"`
	Promotion bool   `json:"promotion,omitempty"`
}

type RecordView struct {
	Player     chess.Color      `json:"player"`
	Piece      chess.PieceType  `json:"piece"`
	From       string           `json:"from"`
	To         string           `json:"to"`
	SAN        string           `json:"san"`
	Captured   chess.PieceType  `json:"captured,omitempty"`
	Promotion  chess.PieceType  `json:"promotion,omitempty"`
	Check      bool             `json:"check"`
	Checkmate  bool             `json:"checkmate"`
	Annotation chess.Annotation `json:"annotation,omitempty"`
	NAG        string           `json:"nag,omitempty"`
}

func newMoveView(mv chess.Move) MoveView {
	v := MoveView{
		From:      mv.From.String(),
		To:        mv.To.String(),
		EnPassant: mv.EnPassant,
		Promotion: mv.Promotion,
	}
	if mv.Castle != chess.NoCastle {
		v.Castle = mv.Castle.String()
	}
	return v
}

func newMoveViews(moves []chess.Move) []MoveView {
	out := make([]MoveView, 0, len(moves))
	for _, mv := range moves {
		out = append(out, newMoveView(mv))
	}
	return out
}

func newGameView(id string, g *chess.Game) GameView {
	board := g.Board()
	v := GameView{
		GameID:      id,
		Board:       board.Ranks(),
		Turn:        g.Turn(),
		Castling:    g.CastlingRights(),
		Check:       g.IsInCheck(g.Turn()),
		GameOver:    g.IsGameOver(),
		Result:      g.Result(),
		Termination: g.Termination(),
		Status:      g.Status(),
		Phase:       g.Phase(),
		MoveList:    g.MoveList(),
		RedoDepth:   g.RedoDepth(),
		Material:    g.Material(),
		Headers:     g.Headers(),
	}
	if ep := g.EnPassant(); ep.Valid {
		v.EnPassant = ep.Square.String()
	}
	if sq, _, ok := g.Selection(); ok {
		v.Selected = sq.String()
	}
	if mv, ok := g.PendingPromotion(); ok {
		pv := newMoveView(mv)
		v.PendingPromotion = &pv
	}
	history := g.History()
	v.History = make([]RecordView, 0, len(history))
	for _, rec := range history {
		v.History = append(v.History, RecordView{
			Player:     rec.Player,
			Piece:      rec.Piece,
			From:       rec.From.String(),
			To:         rec.To.String(),
			SAN:        rec.Notation,
			Captured:   rec.Captured,
			Promotion:  rec.Promotion,
			Check:      rec.Check,
			Checkmate:  rec.Checkmate,
			Annotation: rec.Annotation,
			NAG:        rec.NAG,
		})
	}
	return v
}
