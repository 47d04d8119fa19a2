package handlers

import (
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/rematerial/rematerial-backend/internal/pkg/errors"
)

// parseID reads a positive integer path parameter.
func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", pkgerrors.ErrInvalidArgument, name, raw)
	}
	return id, nil
}
