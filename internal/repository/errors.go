package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/issueflow/internal/domain"
)

// ErrNotFound is returned when a row does not exist. It matches
// domain.ErrNotFound under errors.Is.
var ErrNotFound = fmt.Errorf("record %w", domain.ErrNotFound)

// wrapScanError maps sql.ErrNoRows to ErrNotFound and wraps anything else.
func wrapScanError(err error, entity, ref string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, ref, ErrNotFound)
	}
	return fmt.Errorf("scanning %s: %w", entity, err)
}
