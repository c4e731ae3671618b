package service

import "fmt"

// здесь происходит проверка ошибок бизнес-логики

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewNotFound(resource string, id any) *BusinessError {
	return &BusinessError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %v не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewVersionConflict(resource string, id any) *BusinessError {
	return &BusinessError{
		Code:    "VERSION_CONFLICT",
		Message: fmt.Sprintf("%s %v изменён(а) параллельным запросом, повторите с актуальной версией", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewConflict(resource, reason string) *BusinessError {
	return &BusinessError{
		Code:    "CONFLICT",
		Message: fmt.Sprintf("%s: %s", resource, reason),
		Details: map[string]any{
			"resource": resource,
			"reason":   reason,
		},
	}
}
