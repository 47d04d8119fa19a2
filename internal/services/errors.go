package services

import (
	"errors"
	"fmt"

	pkgerrors "github.com/rematerial/rematerial-backend/internal/pkg/errors"
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrStore, err)
}

func invalidArg(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", pkgerrors.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", pkgerrors.ErrNotFound, fmt.Sprintf(format, args...))
}

var errMissingRow = errors.New("row not found after write")
