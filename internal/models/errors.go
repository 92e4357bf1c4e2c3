package models

import (
	"errors"
	"fmt"

	"time-control/pkg/holidays"
)

// Виды ошибок, проверяются через errors.Is
var (
	ErrValidation        = errors.New("некорректные данные")
	ErrConflict          = errors.New("конфликт данных")
	ErrEditWindowExpired = errors.New("время редактирования истекло")
	ErrYearOutOfRange    = holidays.ErrYearOutOfRange
)

// Error - ошибка с сообщением для пользователя и видом
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewValidationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

func NewEditWindowError(format string, args ...any) error {
	return &Error{Kind: ErrEditWindowExpired, Msg: fmt.Sprintf(format, args...)}
}
