package chess

import (
	"errors"
	"fmt"
)

var (
	ErrGameOver           = errors.New("game is over")
	ErrPromotionPending   = errors.New("promotion pending")
	ErrNoPendingPromotion = errors.New("no pending promotion")
	ErrInvalidPromotion   = errors.New("invalid promotion piece")
	ErrKingCount          = errors.New("each side must have exactly one king")
)

// CodedError is implemented by errors that carry a stable machine-readable code.
type CodedError interface {
	Code() string
}

// IllegalMoveError reports a move that is not among the legal moves of its
// origin square. The game is left untouched.
type IllegalMoveError struct {
	Move   Move
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %s", e.Move, e.Reason)
}

func (e *IllegalMoveError) Code() string {
	return "ILLEGAL_MOVE"
}
