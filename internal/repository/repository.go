// Package repository is the row-store access layer. Every method takes a
// context so callers can bound collaborator calls with a network timeout;
// infrastructure failures wrap model.ErrStorageUnavailable so callers can
// distinguish transient storage trouble from domain outcomes.
package repository

import (
	"errors"
	"fmt"

	"employee-portal/internal/model"
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(model.ErrStorageUnavailable, err))
}
