package usecase

import (
	"errors"

	"github.com/fastygo/taskproof/domain"
)

// IsStorageFailure reports whether err came from the data source itself rather
// than from a domain rule. Only those failures are worth buffering.
func IsStorageFailure(err error) bool {
	if err == nil {
		return false
	}
	var dErr *domain.Error
	var vErr *domain.ValidationError
	return !errors.As(err, &dErr) && !errors.As(err, &vErr)
}

// Unavailable classifies a raw data-source failure; domain errors pass through.
func Unavailable(err error) error {
	if !IsStorageFailure(err) {
		return err
	}
	return domain.WrapError(domain.ErrCodeUnavailable, domain.ErrStorageUnavailable.Message, err)
}
