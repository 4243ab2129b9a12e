package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_HasActivePremium(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-30 * 24 * time.Hour)
	future := now.Add(10 * 24 * time.Hour)

	tests := []struct {
		name     string
		user     User
		expected bool
	}{
		{
			name: "активная премиум-подписка",
			user: User{
				Role: RoleUser,
				Subscription: Subscription{
					Plan:      PlanPremium,
					StartDate: &past,
					EndDate:   &future,
				},
			},
			expected: true,
		},
		{
			name: "подписка истекла",
			user: User{
				Role: RoleUser,
				Subscription: Subscription{
					Plan:      PlanPremium,
					StartDate: &past,
					EndDate:   &past,
				},
			},
			expected: false,
		},
		{
			name: "подписка ещё не началась",
			user: User{
				Role: RoleUser,
				Subscription: Subscription{
					Plan:      PlanPremium,
					StartDate: &future,
					EndDate:   nil,
				},
			},
			expected: false,
		},
		{
			name: "бессрочная премиум-подписка",
			user: User{
				Role: RoleUser,
				Subscription: Subscription{
					Plan:      PlanPremium,
					StartDate: &past,
					EndDate:   nil,
				},
			},
			expected: true,
		},
		{
			name: "базовый план не даёт премиум-доступа",
			user: User{
				Role: RoleUser,
				Subscription: Subscription{
					Plan:      PlanBasic,
					StartDate: &past,
					EndDate:   &future,
				},
			},
			expected: false,
		},
		{
			name: "без подписки",
			user: User{
				Role:         RoleUser,
				Subscription: Subscription{Plan: PlanNone},
			},
			expected: false,
		},
		{
			name: "администратор без подписки имеет доступ",
			user: User{
				Role:         RoleAdmin,
				Subscription: Subscription{Plan: PlanNone},
			},
			expected: true,
		},
		{
			name: "подписка заканчивается ровно сейчас",
			user: User{
				Role: RoleUser,
				Subscription: Subscription{
					Plan:      PlanPremium,
					StartDate: &past,
					EndDate:   &now,
				},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.HasActivePremium(now))
		})
	}
}
