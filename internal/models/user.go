// Package models содержит доменные структуры платформы: пользователей,
// комиксы, главы, отзывы, платежи и тарифные планы.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Способы входа.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderHybrid = "hybrid"
)

// Планы подписки пользователя.
const (
	PlanNone    = "none"
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

// Subscription описывает состояние подписки пользователя.
// EndDate == nil означает бессрочную подписку.
type Subscription struct {
	Plan         string     `json:"plan"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	ReminderSent bool       `json:"reminder_sent"`
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string       `json:"uid"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone,omitempty"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name,omitempty"`
	PasswordHash string       `json:"-"`
	Avatar       string       `json:"avatar,omitempty"`
	Provider     string       `json:"provider"`
	GoogleID     string       `json:"-"`
	Role         string       `json:"role"`
	Subscription Subscription `json:"subscription"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HasActivePremium сообщает, есть ли у пользователя активная премиум-подписка
// на момент now. Администраторы всегда имеют доступ.
func (u *User) HasActivePremium(now time.Time) bool {
	if u.Role == RoleAdmin {
		return true
	}
	if u.Subscription.Plan != PlanPremium {
		return false
	}
	if u.Subscription.StartDate == nil || u.Subscription.StartDate.After(now) {
		return false
	}
	return u.Subscription.EndDate == nil || !u.Subscription.EndDate.Before(now)
}

// PendingRegistration хранит данные регистрации до подтверждения OTP.
// Запись живёт до ExpiresAt и удаляется при создании пользователя.
type PendingRegistration struct {
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	Avatar       string
	ExpiresAt    time.Time
}
