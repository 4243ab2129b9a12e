package models

import "time"

// Статусы платежа. Переходы только pending -> success | failed.
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// Типы тарифных планов.
const (
	PlanMonthly   = "monthly"
	PlanQuarterly = "quarterly"
	PlanYearly    = "yearly"
)

// IsKnownPlanType проверяет тип плана по списку допустимых.
func IsKnownPlanType(planType string) bool {
	return planType == PlanMonthly || planType == PlanQuarterly || planType == PlanYearly
}

// Payment запись о попытке оплаты подписки. ProviderPaymentID — идентификатор
// платежа на стороне шлюза, уникален.
type Payment struct {
	ID                int       `json:"id"`
	UserUID           string    `json:"user_uid"`
	PlanType          string    `json:"plan_type"`
	Amount            float64   `json:"amount"`
	ProviderPaymentID string    `json:"provider_payment_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
