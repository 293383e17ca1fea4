// Package service implements the auction marketplace use cases on top of
// the repository layer: listing creation, bid acceptance, immediate
// purchase, expiry settlement and the read models built on them.
package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP statuses; anything else is a storage or broker failure and maps
// to 500.
var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrAuctionClosed         = errors.New("auction is closed")
	ErrSelfBidForbidden      = errors.New("sellers cannot bid on their own auction")
	ErrSelfPurchaseForbidden = errors.New("sellers cannot purchase their own auction")
	ErrBidTooLow             = errors.New("bid amount below required minimum")
	ErrPurchaseUnavailable   = errors.New("immediate purchase not available")
)

// ValidationError reports which input field failed and why. It unwraps to
// ErrValidation so callers can match the whole class with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// BidTooLowError carries the minimum acceptable amount so the response can
// tell the bidder what to offer. Unwraps to ErrBidTooLow.
type BidTooLowError struct {
	Minimum int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low, minimum is %d", e.Minimum)
}

func (e *BidTooLowError) Unwrap() error { return ErrBidTooLow }
