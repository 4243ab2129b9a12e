package models

import "time"

// SubscriptionPlan тарифный план: цена и длительность по типу плана.
// Редактируется администратором.
type SubscriptionPlan struct {
	PlanType     string    `json:"plan_type"`
	Price        float64   `json:"price"`
	DurationDays int       `json:"duration_days"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DummyPlan используется для приёма тарифного плана из JSON-запроса.
type DummyPlan struct {
	PlanType     string  `json:"plan_type" validate:"required"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	DurationDays int     `json:"duration_days" validate:"required,gte=1"`
}
