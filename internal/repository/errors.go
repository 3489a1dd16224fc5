// Package repository implements MySQL persistence for exam rounds,
// bookings and the identity tables.  Where a repository backs one of the
// engine's store interfaces it returns the engine's sentinel errors, so
// handlers only ever deal with one error taxonomy.  Failures that never
// reach the engine (duplicate email on registration) are defined here.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered.  Handlers should translate this into an HTTP 409
// response.
var ErrEmailExists = errors.New("email already exists")

// ErrSeatUnderflow is returned when a seat release would drive a
// round's counter below zero.  It indicates a bookkeeping bug rather
// than a user error and is surfaced as a 500.
var ErrSeatUnderflow = errors.New("seat count underflow")
