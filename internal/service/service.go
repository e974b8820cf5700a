// Package service provides the business logic for books, reading sessions,
// calendar aggregation, postings and accounts.
//
// Services return *errors.Error values; the HTTP layer maps their codes to
// status codes. Store failures that are not an expected miss surface as
// CodePersistence with the cause attached for logging.
package service

import (
	"errors"

	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/store"
	"github.com/booklens/booklens-server/internal/validation"
)

// validate is the shared validator for service inputs.
var validate = validation.New()

// persistenceError wraps a store failure unless it already carries a domain code.
func persistenceError(err error, msg string) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return domainerrors.Persistence(err, msg)
}

// notFoundOr maps store.ErrNotFound to a NotFound error with msg and
// anything else to a persistence error.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg)
	}
	return persistenceError(err, "database operation failed")
}
