package paymentprovider

import "time"

// Статусы платёжного намерения на стороне шлюза.
const (
	IntentPending   = "pending"
	IntentSucceeded = "succeeded"
	IntentCanceled  = "canceled"
)

// Amount сумма платежа в минорных единицах валюты.
type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// CreateIntentRequest запрос на создание платёжного намерения.
type CreateIntentRequest struct {
	Amount      Amount `json:"amount"`
	Description string `json:"description"`
	Metadata    struct {
		UserUID  string `json:"user_uid"`
		PlanType string `json:"plan_type"`
	} `json:"metadata"`
}

// Intent платёжное намерение, как его возвращает шлюз.
type Intent struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	Amount          Amount    `json:"amount"`
	ConfirmationURL string    `json:"confirmation_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
