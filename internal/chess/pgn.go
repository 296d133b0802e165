package chess

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const DefaultFilename = "chess_game.pgn"

// Headers are the PGN tag pairs of a game.
type Headers struct {
	Event        string `json:"event"`
	Site         string `json:"site"`
	Date         string `json:"date"`
	Round        string `json:"round"`
	White        string `json:"white"`
	Black        string `json:"black"`
	Result       string `json:"result"`
	WhiteElo     string `json:"whiteElo,omitempty"`
	BlackElo     string `json:"blackElo,omitempty"`
	WhiteTitle   string `json:"whiteTitle,omitempty"`
	BlackTitle   string `json:"blackTitle,omitempty"`
	WhiteURL     string `json:"whiteUrl,omitempty"`
	BlackURL     string `json:"blackUrl,omitempty"`
	WhiteCountry string `json:"whiteCountry,omitempty"`
	BlackCountry string `json:"blackCountry,omitempty"`
	Termination  string `json:"termination,omitempty"`
}

type TagPair struct {
	Key   string
	Value string
}

func DefaultHeaders(now time.Time) Headers {
	return Headers{
		Event:  "OTB",
		Site:   "?",
		Date:   FormatDate(now),
		Round:  "?",
		White:  "White",
		Black:  "Black",
		Result: ResultInProgress,
	}
}

// FormatDate renders t the way the PGN Date tag expects (YYYY.MM.DD).
func FormatDate(t time.Time) string {
	return t.Format("2006.01.02")
}

// withDefaults fills the seven-tag-roster fields of h that are empty from d.
func (h Headers) withDefaults(d Headers) Headers {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&h.Event, d.Event)
	fill(&h.Site, d.Site)
	fill(&h.Date, d.Date)
	fill(&h.Round, d.Round)
	fill(&h.White, d.White)
	fill(&h.Black, d.Black)
	fill(&h.Result, d.Result)
	return h
}

// Pairs returns every header in PGN order, empty ones included.
func (h Headers) Pairs() []TagPair {
	return []TagPair{
		{"Event", h.Event},
		{"Site", h.Site},
		{"Date", h.Date},
		{"Round", h.Round},
		{"White", h.White},
		{"Black", h.Black},
		{"Result", h.Result},
		{"WhiteElo", h.WhiteElo},
		{"BlackElo", h.BlackElo},
		{"WhiteTitle", h.WhiteTitle},
		{"BlackTitle", h.BlackTitle},
		{"WhiteUrl", h.WhiteURL},
		{"BlackUrl", h.BlackURL},
		{"WhiteCountry", h.WhiteCountry},
		{"BlackCountry", h.BlackCountry},
		{"Termination", h.Termination},
	}
}

// Set assigns a header by its PGN key. Unknown keys are ignored and reported.
func (h *Headers) Set(key, value string) bool {
	switch key {
	case "Event":
		h.Event = value
	case "Site":
		h.Site = value
	case "Date":
		h.Date = value
	case "Round":
		h.Round = value
	case "White":
		h.White = value
	case "Black":
		h.Black = value
	case "Result":
		h.Result = value
	case "WhiteElo":
		h.WhiteElo = value
	case "BlackElo":
		h.BlackElo = value
	case "WhiteTitle":
		h.WhiteTitle = value
	case "BlackTitle":
		h.BlackTitle = value
	case "WhiteUrl":
		h.WhiteURL = value
	case "BlackUrl":
		h.BlackURL = value
	case "WhiteCountry":
		h.WhiteCountry = value
	case "BlackCountry":
		h.BlackCountry = value
	case "Termination":
		h.Termination = value
	default:
		return false
	}
	return true
}

// PGN renders the game as a transcript: the non-empty headers, a blank line,
// numbered move pairs and the result token.
func (g *Game) PGN() string {
	var sb strings.Builder
	for _, tp := range g.headers.Pairs() {
		if tp.Value != "" {
			fmt.Fprintf(&sb, "[%s %q]\n", tp.Key, tp.Value)
		}
	}
	sb.WriteByte('\n')

	tokens := make([]string, 0, len(g.history)/2+2)
	for i := 0; i < len(g.history); i += 2 {
		pair := fmt.Sprintf("%d. %s", i/2+1, movetext(g.history[i]))
		if i+1 < len(g.history) {
			pair += " " + movetext(g.history[i+1])
		}
		tokens = append(tokens, pair)
	}
	result := g.headers.Result
	if result == "" {
		result = ResultInProgress
	}
	tokens = append(tokens, result)
	sb.WriteString(strings.Join(tokens, " "))
	return sb.String()
}

func movetext(rec MoveRecord) string {
	txt := rec.Notation
	if rec.NAG != "" {
		txt += " " + rec.NAG
	}
	if rec.Annotation != AnnotationNone {
		dest := rec.To.String()
		txt += fmt.Sprintf(" {[%%c_effect %s;square;%s;type;%s;persistent;true]}", dest, dest, rec.Annotation)
	}
	return txt
}

// MoveList renders the history the way a move list panel shows it: one line
// per move number, annotation symbols appended.
func (g *Game) MoveList() []string {
	lines := make([]string, 0, (len(g.history)+1)/2)
	for i := 0; i < len(g.history); i += 2 {
		w := g.history[i]
		line := fmt.Sprintf("%d. %s%s", i/2+1, w.Notation, w.Annotation.Symbol())
		if i+1 < len(g.history) {
			b := g.history[i+1]
			line += " " + b.Notation + b.Annotation.Symbol()
		}
		lines = append(lines, line)
	}
	return lines
}

var (
	nameJunk = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	spaces   = regexp.MustCompile(`\s+`)
	dateJunk = regexp.MustCompile(`[^0-9.]`)
)

// Filename derives a download name from the player names and date, falling
// back to DefaultFilename for unnamed players.
func (h Headers) Filename() string {
	white, black := h.White, h.Black
	if white == "" {
		white = "White"
	}
	if black == "" {
		black = "Black"
	}
	cleanWhite := spaces.ReplaceAllString(nameJunk.ReplaceAllString(white, ""), "_")
	cleanBlack := spaces.ReplaceAllString(nameJunk.ReplaceAllString(black, ""), "_")
	cleanDate := "unknown_date"
	if h.Date != "" {
		cleanDate = dateJunk.ReplaceAllString(h.Date, "_")
	}

	if (cleanWhite == "White" && cleanBlack == "Black") || cleanWhite == "" || cleanBlack == "" ||
		cleanWhite == "_" || cleanBlack == "_" {
		return DefaultFilename
	}
	return fmt.Sprintf("%s_vs_%s_%s.pgn", cleanWhite, cleanBlack, cleanDate)
}

func (g *Game) Filename() string {
	return g.headers.Filename()
}
