// Package errs содержит ошибки бизнес-уровня, по которым HTTP-обработчики
// выбирают код ответа.
package errs

import "errors"

var (
	// ErrNotFound сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrConflict сущность уже существует или конфликтует с имеющейся.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken код подтверждения или токен сброса неверен либо просрочен.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrForbidden операция запрещена для этого пользователя.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput запрос не проходит доменные проверки.
	ErrInvalidInput = errors.New("invalid input")
)
