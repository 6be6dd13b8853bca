package service

import (
	"errors"
	"fmt"
)

// ErrValidation — некорректный ввод, отклонён до любой записи.
var ErrValidation = errors.New("validation error")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
