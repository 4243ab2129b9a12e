package models

import "time"

// Otp одноразовый код подтверждения почты. Запись живёт до ExpiresAt,
// удаляется при успешной проверке.
type Otp struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// ResetToken одноразовый токен сброса пароля, привязан к почте.
type ResetToken struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}
