// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrRaffleNotFound is returned when no raffle has the requested id.
// Handlers translate it into an HTTP 404 response.
var ErrRaffleNotFound = errors.New("raffle not found")

// ErrConflict is returned when an operation cannot proceed because of
// existing state, such as initializing the tickets of a raffle that
// already has them. Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSoldNeedsBuyer is returned when a bulk status change targets sold.
// Tickets become sold only through a sale, which records the buyer.
var ErrSoldNeedsBuyer = errors.New("sold tickets need a buyer")
