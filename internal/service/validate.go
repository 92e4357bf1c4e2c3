package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"time-control/internal/models"
)

var validate = validator.New()

// validateStruct проверяет теги validate и приводит ошибку к ErrValidation
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
		}
		return models.NewValidationError("некорректные поля: %s", strings.Join(fields, ", "))
	}
	return models.NewValidationError("некорректные данные: %v", err)
}
