package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/otbchess/internal/archive"
	"github.com/justinabrahms/otbchess/internal/chess"
	"github.com/justinabrahms/otbchess/internal/session"
)

const maxPGNBytes = 1 << 20

type Service struct {
	sessions *session.Manager
	hub      *Hub
}

func NewService(sessions *session.Manager, hub *Hub) *Service {
	return &Service{
		sessions: sessions,
		hub:      hub,
	}
}

// Routes registers the REST API under /api and the watcher socket at /ws.
func (s *Service) Routes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.ListGamesHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games/import", s.ImportGameHandler).Methods("POST")

	api.HandleFunc("/games/{id:[0-9]+}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id:[0-9]+}", s.DeleteGameHandler).Methods("DELETE")

	game := api.PathPrefix("/games/{id:[0-9]+}").Subrouter()
	game.HandleFunc("/reset", s.ResetGameHandler).Methods("POST")
	game.HandleFunc("/moves", s.LegalMovesHandler).Methods("GET")
	game.HandleFunc("/moves", s.MakeMoveHandler).Methods("POST")
	game.HandleFunc("/select", s.SelectHandler).Methods("POST")
	game.HandleFunc("/promotion", s.PromotionHandler).Methods("POST")
	game.HandleFunc("/undo", s.UndoHandler).Methods("POST")
	game.HandleFunc("/redo", s.RedoHandler).Methods("POST")
	game.HandleFunc("/annotation", s.AnnotationHandler).Methods("POST")
	game.HandleFunc("/headers", s.UpdateHeadersHandler).Methods("PUT")
	game.HandleFunc("/pgn", s.PGNHandler).Methods("GET")
	game.HandleFunc("/archive", s.ArchiveGameHandler).Methods("POST")

	api.HandleFunc("/archive/{id:[0-9]+}", s.GetArchiveHandler).Methods("GET")

	router.HandleFunc("/ws", s.WebSocketHandler)
}

// CORS allows browser clients served from other origins.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var headers chess.Headers
	if err := decodeOptionalJSON(r, &headers); err != nil {
		writeError(w, err)
		return
	}

	sess := s.sessions.Create(headers)
	var view GameView
	sess.View(func(g *chess.Game) {
		view = s.view(sess.ID, g)
	})
	writeJSON(w, http.StatusCreated, view)
}

func (s *Service) ImportGameHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Import(http.MaxBytesReader(w, r.Body, maxPGNBytes))
	if err != nil {
		log.Warn().Err(err).Msg("Rejected PGN import")
		writeError(w, badRequest(err))
		return
	}

	var view GameView
	sess.View(func(g *chess.Game) {
		view = s.view(sess.ID, g)
	})
	log.Info().Str("gameID", view.GameID).Int("moves", len(view.History)).Msg("Game imported")
	writeJSON(w, http.StatusCreated, view)
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, "", func(g *chess.Game) (interface{}, bool, error) {
		return nil, false, nil
	})
}

func (s *Service) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	id, err := s.gameID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	s.hub.Broadcast(GameUpdate{GameID: id.String(), Type: UpdateDeleted})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) ResetGameHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, UpdateReset, func(g *chess.Game) (interface{}, bool, error) {
		g.Reset()
		return nil, true, nil
	})
}

type MovesResponse struct {
	Square string     `json:"square"`
	Moves  []MoveView `json:"moves"`
	Game   GameView   `json:"game"`
}

func (s *Service) LegalMovesHandler(w http.ResponseWriter, r *http.Request) {
	sq, err := parseSquare(r.URL.Query().Get("square"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, "", func(g *chess.Game) (interface{}, bool, error) {
		return MovesResponse{Square: sq.String(), Moves: newMoveViews(g.LegalMoves(sq))}, false, nil
	})
}

type SelectRequest struct {
	Square string `json:"square"`
}

func (s *Service) SelectHandler(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sq, err := parseSquare(req.Square)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, "", func(g *chess.Game) (interface{}, bool, error) {
		return MovesResponse{Square: sq.String(), Moves: newMoveViews(g.Select(sq))}, false, nil
	})
}

type MakeMoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type MoveResponse struct {
	Move *chess.MoveResult `json:"move"`
	Game GameView          `json:"game"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	var req MakeMoveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	from, err := parseSquare(req.From)
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseSquare(req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	promotion := chess.NoPieceType
	if req.Promotion != "" {
		if promotion, err = chess.ParsePieceType(req.Promotion); err != nil {
			writeError(w, badRequest(err))
			return
		}
	}

	s.respondMove(w, r, func(g *chess.Game) (*chess.MoveResult, error) {
		return g.Play(from, to, promotion)
	})
}

type PromotionRequest struct {
	Piece string `json:"piece"`
}

func (s *Service) PromotionHandler(w http.ResponseWriter, r *http.Request) {
	var req PromotionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	piece, err := chess.ParsePieceType(req.Piece)
	if err != nil {
		writeError(w, badRequest(err))
		return
	}

	s.respondMove(w, r, func(g *chess.Game) (*chess.MoveResult, error) {
		return g.ResolvePromotion(piece)
	})
}

type HistoryResponse struct {
	Changed bool     `json:"changed"`
	Game    GameView `json:"game"`
}

func (s *Service) UndoHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, UpdateUndo, func(g *chess.Game) (interface{}, bool, error) {
		changed := g.Undo()
		return HistoryResponse{Changed: changed}, changed, nil
	})
}

func (s *Service) RedoHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, UpdateRedo, func(g *chess.Game) (interface{}, bool, error) {
		changed := g.Redo()
		return HistoryResponse{Changed: changed}, changed, nil
	})
}

type AnnotationRequest struct {
	Annotation string `json:"annotation"`
}

func (s *Service) AnnotationHandler(w http.ResponseWriter, r *http.Request) {
	var req AnnotationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	a, err := chess.ParseAnnotation(req.Annotation)
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	s.respond(w, r, UpdateAnnotation, func(g *chess.Game) (interface{}, bool, error) {
		return nil, true, g.Annotate(a)
	})
}

func (s *Service) UpdateHeadersHandler(w http.ResponseWriter, r *http.Request) {
	var h chess.Headers
	if err := decodeJSON(r, &h); err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, r, UpdateHeaders, func(g *chess.Game) (interface{}, bool, error) {
		g.SetHeaders(h)
		return nil, true, nil
	})
}

func (s *Service) PGNHandler(w http.ResponseWriter, r *http.Request) {
	id, err := s.gameID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var pgn, filename string
	if err := s.sessions.Do(id, func(g *chess.Game) error {
		pgn, filename = g.PGN(), g.Filename()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	writePGN(w, pgn, filename)
}

func (s *Service) ArchiveGameHandler(w http.ResponseWriter, r *http.Request) {
	id, err := s.gameID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.sessions.Archive(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// GetArchiveHandler returns an archived entry as JSON, or the bare transcript
// with ?format=pgn.
func (s *Service) GetArchiveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := s.gameID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.sessions.Archived(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "pgn" {
		writePGN(w, entry.PGN, entry.Filename)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Service) view(id snowflake.ID, g *chess.Game) GameView {
	v := newGameView(id.String(), g)
	v.Watchers = s.hub.Watchers(v.GameID)
	return v
}

// respond runs fn on the request's game and writes its payload with the
// resulting snapshot. A nil payload writes the snapshot alone. When fn
// reports a change, watchers get an update of type updateType.
func (s *Service) respond(w http.ResponseWriter, r *http.Request, updateType string, fn func(*chess.Game) (interface{}, bool, error)) {
	id, err := s.gameID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		payload interface{}
		view    GameView
		changed bool
	)
	err = s.sessions.Do(id, func(g *chess.Game) error {
		var err error
		payload, changed, err = fn(g)
		if err != nil {
			return err
		}
		view = s.view(id, g)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if changed && updateType != "" {
		s.hub.Broadcast(GameUpdate{GameID: view.GameID, Type: updateType, Data: view})
	}

	switch p := payload.(type) {
	case nil:
		writeJSON(w, http.StatusOK, view)
	case MovesResponse:
		p.Game = view
		writeJSON(w, http.StatusOK, p)
	case HistoryResponse:
		p.Game = view
		writeJSON(w, http.StatusOK, p)
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Service) respondMove(w http.ResponseWriter, r *http.Request, fn func(*chess.Game) (*chess.MoveResult, error)) {
	id, err := s.gameID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var resp MoveResponse
	err = s.sessions.Do(id, func(g *chess.Game) error {
		res, err := fn(g)
		if err != nil {
			return err
		}
		resp = MoveResponse{Move: res, Game: s.view(id, g)}
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("gameID", id.String()).Msg("Move rejected")
		writeError(w, err)
		return
	}

	updateType := UpdateMove
	if resp.Move.PendingPromotion {
		updateType = UpdatePromotionPending
	}
	s.hub.Broadcast(GameUpdate{GameID: resp.Game.GameID, Type: updateType, Data: resp})
	if resp.Move.GameOver {
		s.hub.Broadcast(GameUpdate{GameID: resp.Game.GameID, Type: UpdateGameEnd, Data: resp.Game})
		log.Info().
			Str("gameID", resp.Game.GameID).
			Str("result", resp.Game.Result).
			Str("termination", resp.Game.Termination).
			Msg("Game over")
	} else {
		log.Info().Str("gameID", resp.Game.GameID).Str("san", resp.Move.SAN).Msg("Move played")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) gameID(r *http.Request) (snowflake.ID, error) {
	return s.parseID(mux.Vars(r)["id"])
}

func (s *Service) parseID(raw string) (snowflake.ID, error) {
	id, err := session.ParseID(raw)
	if err != nil {
		return 0, badRequest(err)
	}
	return id, nil
}

func parseSquare(s string) (chess.Square, error) {
	sq, err := chess.ParseSquare(s)
	if err != nil {
		return chess.Square{}, badRequest(err)
	}
	return sq, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writePGN(w http.ResponseWriter, pgn, filename string) {
	w.Header().Set("Content-Type", "application/x-chess-pgn")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = io.WriteString(w, pgn)
}

// requestError marks input that could not be parsed.
type requestError struct {
	err error
}

func badRequest(err error) error {
	return &requestError{err: err}
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }
func (e *requestError) Code() string  { return "BAD_REQUEST" }

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var sentinelCodes = []struct {
	err  error
	code string
}{
	{chess.ErrGameOver, "GAME_OVER"},
	{chess.ErrPromotionPending, "PROMOTION_PENDING"},
	{chess.ErrNoPendingPromotion, "NO_PENDING_PROMOTION"},
	{chess.ErrInvalidPromotion, "INVALID_PROMOTION"},
	{chess.ErrEmptyHistory, "EMPTY_HISTORY"},
}

// writeError maps rule violations and bad input to 400, unknown games to 404
// and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"

	var coded chess.CodedError
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, archive.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &coded):
		status, code = http.StatusBadRequest, coded.Code()
	default:
		for _, sc := range sentinelCodes {
			if errors.Is(err, sc.err) {
				status, code = http.StatusBadRequest, sc.code
				break
			}
		}
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}
