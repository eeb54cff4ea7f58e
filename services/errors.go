package services

import (
	"errors"
	"fmt"
	"strings"
)

// Общие ошибки бизнес-слоя, маппятся в HTTP-ответы в handlers.
var (
	// Ресурсы
	ErrUserNotFound         = errors.New("user not found")
	ErrChampionshipNotFound = errors.New("championship not found")
	ErrAnswerNotFound       = errors.New("answer not found")

	// Авторизация: владелец чемпионата / автор ответа
	ErrNotOwner  = errors.New("only the championship owner can perform this action")
	ErrNotAuthor = errors.New("only the answer author can perform this action")

	// Нарушение state-гейта жизненного цикла
	ErrInvalidStatus = errors.New("operation is not allowed in the current championship status")

	// Конфликты
	ErrAlreadyLiked = errors.New("answer is already liked")
)

// ValidationError несёт список сообщений по каждому невалидному полю.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, messages := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(messages, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
