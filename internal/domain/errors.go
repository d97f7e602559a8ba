package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate дубликат записи
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrPreconditionFailed операция вызвана до завершения обязательного предыдущего шага
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrSignatureInvalid не удалось проверить подпись вебхука
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrExternalService внешний сервис вернул ошибку
	ErrExternalService = errors.New("external service error")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")
)

// ValidationError представляет ошибку валидации входных данных
type ValidationError struct {
	Field   string
	Message string
}

// Error реализует интерфейс error
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is проверяет, является ли ошибка ошибкой валидации
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError создает новую ошибку валидации
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError представляет ошибку "не найдено"
type NotFoundError struct {
	Entity string
	Key    string
}

// Error реализует интерфейс error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// Is проверяет, является ли ошибка ошибкой типа "не найдено"
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError создает новую ошибку "не найдено"
func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// PreconditionError операция вызвана до выполнения обязательного условия
// (например, checkout для клуба без connected-аккаунта)
type PreconditionError struct {
	Message string
}

// Error реализует интерфейс error
func (e *PreconditionError) Error() string {
	return e.Message
}

// Is проверяет, является ли ошибка ошибкой precondition
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

// NewPreconditionError создает новую ошибку precondition
func NewPreconditionError(message string) *PreconditionError {
	return &PreconditionError{Message: message}
}

// ExternalServiceError представляет ошибку внешнего сервиса.
// Сообщение процессора передается вызывающему без изменений.
type ExternalServiceError struct {
	Service     string
	Message     string
	OriginalErr error
}

// Error реализует интерфейс error
func (e *ExternalServiceError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s service error: %s: %v", e.Service, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("%s service error: %s", e.Service, e.Message)
}

// Unwrap возвращает оригинальную ошибку
func (e *ExternalServiceError) Unwrap() error {
	return e.OriginalErr
}

// Is проверяет, является ли ошибка ошибкой внешнего сервиса
func (e *ExternalServiceError) Is(target error) bool {
	return target == ErrExternalService
}

// NewExternalServiceError создает новую ошибку внешнего сервиса
func NewExternalServiceError(service, message string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Message: message, OriginalErr: err}
}

// SignatureError подпись вебхука не прошла проверку
type SignatureError struct {
	Source      string
	OriginalErr error
}

// Error реализует интерфейс error
func (e *SignatureError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("invalid webhook signature (%s): %v", e.Source, e.OriginalErr)
	}
	return fmt.Sprintf("invalid webhook signature (%s)", e.Source)
}

// Unwrap возвращает оригинальную ошибку
func (e *SignatureError) Unwrap() error {
	return e.OriginalErr
}

// Is проверяет, является ли ошибка ошибкой подписи
func (e *SignatureError) Is(target error) bool {
	return target == ErrSignatureInvalid
}

// NewSignatureError создает новую ошибку подписи вебхука
func NewSignatureError(source string, err error) *SignatureError {
	return &SignatureError{Source: source, OriginalErr: err}
}

// DuplicateError представляет ошибку дубликата
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

// Error реализует интерфейс error
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Entity, e.Field, e.Value)
}

// Is проверяет, является ли ошибка ошибкой дубликата
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// NewDuplicateError создает новую ошибку дубликата
func NewDuplicateError(entity, field, value string) *DuplicateError {
	return &DuplicateError{Entity: entity, Field: field, Value: value}
}
