// Package repository implements raw-SQL data access over MySQL. This file
// defines sentinel errors reused across repositories so that higher layers
// can distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrAuctionNotFound is returned when a referenced auction does not exist.
var ErrAuctionNotFound = errors.New("auction not found")

// ErrUserNotFound is returned when a referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned on registration when the email is taken.
var ErrEmailExists = errors.New("email already exists")
