package chess

import (
	"errors"
	"fmt"
)

// Annotation is a move-quality tag a reviewer attaches to a move.
type Annotation string

const (
	AnnotationNone        Annotation = ""
	AnnotationBrilliant   Annotation = "Brilliant"
	AnnotationGreatFind   Annotation = "GreatFind"
	AnnotationBestMove    Annotation = "BestMove"
	AnnotationExcellent   Annotation = "Excellent"
	AnnotationGood        Annotation = "Good"
	AnnotationBook        Annotation = "Book"
	AnnotationInaccuracy  Annotation = "Inaccuracy"
	AnnotationInteresting Annotation = "Interesting"
	AnnotationMiss        Annotation = "Miss"
	AnnotationMistake     Annotation = "Mistake"
	AnnotationBlunder     Annotation = "Blunder"
)

var ErrEmptyHistory = errors.New("no moves to annotate")

var annotationNAGs = map[Annotation]string{
	AnnotationBrilliant:  "$3",
	AnnotationGreatFind:  "$1",
	AnnotationGood:       "$1",
	AnnotationInaccuracy: "$6",
	AnnotationMistake:    "$2",
	AnnotationMiss:       "$2",
	AnnotationBlunder:    "$4",
}

var annotationSymbols = map[Annotation]string{
	AnnotationBrilliant:  "!!",
	AnnotationGreatFind:  "!",
	AnnotationGood:       "!",
	AnnotationInaccuracy: "?!",
	AnnotationMistake:    "?",
	AnnotationMiss:       "?",
	AnnotationBlunder:    "??",
}

// ParseAnnotation accepts the annotation names; "None" and "" clear.
func ParseAnnotation(s string) (Annotation, error) {
	switch a := Annotation(s); a {
	case "None", AnnotationNone:
		return AnnotationNone, nil
	case AnnotationBrilliant, AnnotationGreatFind, AnnotationBestMove, AnnotationExcellent,
		AnnotationGood, AnnotationBook, AnnotationInaccuracy, AnnotationInteresting,
		AnnotationMiss, AnnotationMistake, AnnotationBlunder:
		return a, nil
	}
	return AnnotationNone, fmt.Errorf("unknown annotation %q", s)
}

// NAG returns the numeric annotation glyph for a, or "" if it has none.
func (a Annotation) NAG() string {
	return annotationNAGs[a]
}

// Symbol returns the move-list suffix for a, such as "?!".
func (a Annotation) Symbol() string {
	return annotationSymbols[a]
}

// Annotate tags the latest move. AnnotationNone clears the tag.
func (g *Game) Annotate(a Annotation) error {
	if len(g.history) == 0 {
		return ErrEmptyHistory
	}
	last := &g.history[len(g.history)-1]
	last.Annotation = a
	last.NAG = a.NAG()
	return nil
}
