package usecase

import (
	"errors"
	"fmt"

	"hobbyhub/services/community/internal/entity"
)

// backendError keeps not-found results distinguishable and marks every other
// repository failure as a backend error.
func backendError(op string, err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrBackend, op, err)
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", entity.ErrValidation, msg)
}
