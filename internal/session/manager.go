// Package session hosts many games at once. Each game is owned by a Session
// and every access goes through the session's lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/otbchess/internal/archive"
	"github.com/justinabrahms/otbchess/internal/chess"
)

var ErrNotFound = errors.New("game session not found")

type Session struct {
	ID      snowflake.ID
	Created time.Time

	mu      sync.Mutex
	game    *chess.Game
	updated time.Time
	now     func() time.Time
}

// Summary describes a session without exposing its game.
type Summary struct {
	ID        string              `json:"gameId"`
	White     string              `json:"white"`
	Black     string              `json:"black"`
	Status    chess.GameStatus    `json:"status"`
	MoveCount int                 `json:"moveCount"`
	Material  chess.MaterialCount `json:"materialCount"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*Session

	node     *snowflake.Node
	store    archive.Store
	defaults chess.Headers
	now      func() time.Time
}

// NewManager creates a manager whose IDs come from the given snowflake node.
// New games take their headers from defaults.
func NewManager(nodeID int64, store archive.Store, defaults chess.Headers) (*Manager, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id node: %w", err)
	}
	return &Manager{
		sessions: make(map[snowflake.ID]*Session),
		node:     node,
		store:    store,
		defaults: defaults,
		now:      time.Now,
	}, nil
}

// ParseID parses the string form of a session ID.
func ParseID(s string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid game id %q: %w", s, err)
	}
	return id, nil
}

func (m *Manager) Create(h chess.Headers) *Session {
	g := chess.NewGame(chess.WithClock(m.now), chess.WithHeaders(m.headers(h)))
	return m.add(g)
}

// Import replays a PGN transcript into a new session.
func (m *Manager) Import(r io.Reader) (*Session, error) {
	g, err := chess.ImportPGN(r, chess.WithClock(m.now), chess.WithHeaders(m.defaults))
	if err != nil {
		return nil, err
	}
	return m.add(g), nil
}

func (m *Manager) headers(h chess.Headers) chess.Headers {
	d := m.defaults
	if h.Event == "" {
		h.Event = d.Event
	}
	if h.Site == "" {
		h.Site = d.Site
	}
	if h.Round == "" {
		h.Round = d.Round
	}
	if h.White == "" {
		h.White = d.White
	}
	if h.Black == "" {
		h.Black = d.Black
	}
	return h
}

func (m *Manager) add(g *chess.Game) *Session {
	now := m.now()
	s := &Session{
		ID:      m.node.Generate(),
		Created: now,
		game:    g,
		updated: now,
		now:     m.now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Info().Str("gameID", s.ID.String()).Int("sessions", m.Len()).Msg("Game session created")
	return s
}

func (m *Manager) Get(id snowflake.ID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Do runs fn with exclusive access to the session's game.
func (m *Manager) Do(id snowflake.ID, fn func(*chess.Game) error) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Do(fn)
}

// View runs fn with read access to the game. The session's update time is
// left alone.
func (s *Session) View(fn func(*chess.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

func (s *Session) Do(fn func(*chess.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.game)
	s.updated = s.now()
	return err
}

func (m *Manager) Delete(id snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	log.Info().Str("gameID", id.String()).Msg("Game session deleted")
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List summarizes every session, most recently updated first.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		h := s.game.Headers()
		out = append(out, Summary{
			ID:        s.ID.String(),
			White:     h.White,
			Black:     h.Black,
			Status:    s.game.Status(),
			MoveCount: len(s.game.History()),
			Material:  s.game.Material(),
			UpdatedAt: s.updated,
		})
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Archive stores the session's current transcript under the session ID.
func (m *Manager) Archive(ctx context.Context, id snowflake.ID) (*archive.Entry, error) {
	var entry archive.Entry
	if err := m.Do(id, func(g *chess.Game) error {
		entry = archive.NewEntry(id.Int64(), g, m.now())
		return nil
	}); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, entry); err != nil {
		log.Error().Err(err).Str("gameID", id.String()).Msg("Failed to archive game")
		return nil, fmt.Errorf("failed to archive game %s: %w", id, err)
	}
	log.Info().Str("gameID", id.String()).Str("result", entry.Result).Int("moves", entry.Moves).Msg("Game archived")
	return &entry, nil
}

func (m *Manager) Archived(ctx context.Context, id snowflake.ID) (*archive.Entry, error) {
	return m.store.Get(ctx, id.Int64())
}
