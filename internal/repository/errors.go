package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrActiveSessionExists is returned when a ticket already owns a non-closed session.
	ErrActiveSessionExists = errors.New("repository: ticket already has an active session")
	// ErrTransitionRejected is returned when a guarded update found the row in a state it may not leave.
	ErrTransitionRejected = errors.New("repository: guarded update rejected")
	// ErrDuplicate is returned on unique key violations other than the active session index.
	ErrDuplicate = errors.New("repository: duplicate record")
)

const uniqueViolation = "23505"

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
