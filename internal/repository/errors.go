// Package repository defines the data access layer over the SQLite
// database. Sentinel errors let handlers distinguish failure scenarios
// and map them to HTTP status codes.
package repository

import "errors"

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as restoring an archive entry twice or
// starting a timer that is already running.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned by UserRepo.Create when the username is
// already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrArchiveFailed wraps failures while snapshotting done tasks into the
// archive during a delete. The delete is rolled back when it occurs.
var ErrArchiveFailed = errors.New("archive snapshot failed")
