package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/apperr"
)

// translate maps gorm failures onto the application error kinds.
func translate(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what)
	default:
		return apperr.Storage(op, err)
	}
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
