package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("requested entity does not exist")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrDuplicateBid      = errors.New("seller already has a bid on this rfq")
	ErrUnauthorized      = errors.New("provided user does not have permission for this operation")
	ErrInvalidActor      = errors.New("no valid user supplied")
)

var (
	ErrNoProduct = fmt.Errorf("%w: product", ErrNotFound)
	ErrNoRFQ     = fmt.Errorf("%w: rfq", ErrNotFound)
	ErrNoBid     = fmt.Errorf("%w: bid", ErrNotFound)
	ErrNoOrder   = fmt.Errorf("%w: order", ErrNotFound)

	ErrRFQClosed    = fmt.Errorf("%w: rfq is already closed", ErrInvalidTransition)
	ErrBidFinalized = fmt.Errorf("%w: bid is already accepted or rejected", ErrInvalidTransition)
)
