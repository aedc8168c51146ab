package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func orValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return validator.New()
	}
	return v
}

// notFoundOr maps sql.ErrNoRows to a not-found error and anything else to
// an internal error carrying msg.
func notFoundOr(err error, notFound, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
}

func invalid(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
}

func invalidf(msg string) error {
	return appErrors.Clone(appErrors.ErrValidation, msg)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
